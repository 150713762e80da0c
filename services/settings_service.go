package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"

	"encanto-system/models"
)

// SettingsService is the per-user notification settings repository: a
// string-keyed JSON blob in Redis fronted by an in-memory cache, so each
// session reads the backing store once.
type SettingsService struct {
	Redis *redis.Client

	mu        sync.RWMutex
	cache     map[string]models.NotificationSettings
	permCache map[string]models.Permission
}

func NewSettingsService(redisClient *redis.Client) *SettingsService {
	return &SettingsService{
		Redis:     redisClient,
		cache:     make(map[string]models.NotificationSettings),
		permCache: make(map[string]models.Permission),
	}
}

func settingsKey(userID string) string {
	return fmt.Sprintf("settings:notifications:%s", userID)
}

func permissionKey(userID string) string {
	return fmt.Sprintf("settings:permission:%s", userID)
}

// Get returns the user's settings, falling back to defaults on a miss or a
// store failure. A failed load is logged, never surfaced: notification
// gating must not take the app down.
func (s *SettingsService) Get(ctx context.Context, userID string) models.NotificationSettings {
	s.mu.RLock()
	if cached, ok := s.cache[userID]; ok {
		s.mu.RUnlock()
		return cached
	}
	s.mu.RUnlock()

	settings := models.DefaultNotificationSettings()

	data, err := s.Redis.Get(ctx, settingsKey(userID)).Result()
	switch {
	case err == redis.Nil:
		// first session, keep defaults
	case err != nil:
		log.Printf("Error loading notification settings for %s: %v", userID, err)
		return settings
	default:
		if err := json.Unmarshal([]byte(data), &settings); err != nil {
			log.Printf("Error parsing notification settings for %s: %v", userID, err)
			settings = models.DefaultNotificationSettings()
		}
	}

	s.mu.Lock()
	s.cache[userID] = settings
	s.mu.Unlock()

	return settings
}

// Save persists the settings and refreshes the cache.
func (s *SettingsService) Save(ctx context.Context, userID string, settings models.NotificationSettings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshal notification settings: %w", err)
	}

	if err := s.Redis.Set(ctx, settingsKey(userID), data, 0).Err(); err != nil {
		return fmt.Errorf("save notification settings: %w", err)
	}

	s.mu.Lock()
	s.cache[userID] = settings
	s.mu.Unlock()

	return nil
}

// Reset restores the defaults for the user.
func (s *SettingsService) Reset(ctx context.Context, userID string) error {
	return s.Save(ctx, userID, models.DefaultNotificationSettings())
}

// Permission returns the user's notification permission state.
func (s *SettingsService) Permission(ctx context.Context, userID string) models.Permission {
	s.mu.RLock()
	if cached, ok := s.permCache[userID]; ok {
		s.mu.RUnlock()
		return cached
	}
	s.mu.RUnlock()

	perm := models.PermissionDefault

	data, err := s.Redis.Get(ctx, permissionKey(userID)).Result()
	switch {
	case err == redis.Nil:
		// never asked
	case err != nil:
		log.Printf("Error loading notification permission for %s: %v", userID, err)
		return perm
	default:
		if p := models.Permission(data); p.Valid() {
			perm = p
		}
	}

	s.mu.Lock()
	s.permCache[userID] = perm
	s.mu.Unlock()

	return perm
}

// SetPermission records the permission state the client reported.
func (s *SettingsService) SetPermission(ctx context.Context, userID string, perm models.Permission) error {
	if !perm.Valid() {
		return fmt.Errorf("invalid permission state %q", perm)
	}

	if err := s.Redis.Set(ctx, permissionKey(userID), string(perm), 0).Err(); err != nil {
		return fmt.Errorf("save notification permission: %w", err)
	}

	s.mu.Lock()
	s.permCache[userID] = perm
	s.mu.Unlock()

	return nil
}

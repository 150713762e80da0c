package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"encanto-system/models"
	"encanto-system/store"
)

// fakeClock lets tests pin and advance "now" without sleeping.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// stubSettings serves per-user settings from a map, defaulting like the real
// service does.
type stubSettings struct {
	mu       sync.Mutex
	settings map[string]models.NotificationSettings
	perms    map[string]models.Permission
}

func newStubSettings() *stubSettings {
	return &stubSettings{
		settings: make(map[string]models.NotificationSettings),
		perms:    make(map[string]models.Permission),
	}
}

func (s *stubSettings) Get(ctx context.Context, userID string) models.NotificationSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.settings[userID]; ok {
		return st
	}
	return models.DefaultNotificationSettings()
}

func (s *stubSettings) set(userID string, st models.NotificationSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings[userID] = st
}

func (s *stubSettings) Permission(ctx context.Context, userID string) models.Permission {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.perms[userID]; ok {
		return p
	}
	return models.PermissionDefault
}

func (s *stubSettings) SetPermission(ctx context.Context, userID string, perm models.Permission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.perms[userID] = perm
	return nil
}

type sentReminder struct {
	userID  string
	eventID string
	when    string
}

// captureReminders records NotifyReminder calls.
type captureReminders struct {
	mu   sync.Mutex
	sent []sentReminder
}

func (c *captureReminders) NotifyReminder(ctx context.Context, userID string, ev models.Event, when string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, sentReminder{userID: userID, eventID: ev.ID, when: when})
}

func (c *captureReminders) all() []sentReminder {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]sentReminder, len(c.sent))
	copy(out, c.sent)
	return out
}

type sentUpdate struct {
	userID string
	event  models.Event
	kind   string
}

// captureUpdates records NotifyEventUpdate calls.
type captureUpdates struct {
	mu   sync.Mutex
	sent []sentUpdate
}

func (c *captureUpdates) NotifyEventUpdate(ctx context.Context, userID string, ev models.Event, kind string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, sentUpdate{userID: userID, event: ev, kind: kind})
}

func (c *captureUpdates) all() []sentUpdate {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]sentUpdate, len(c.sent))
	copy(out, c.sent)
	return out
}

// memStore is an in-memory EventStore. Batch status writes do not fire the
// change callback, mirroring the hook-bypassing batch path of the real store.
type memStore struct {
	mu         sync.Mutex
	events     map[string]models.Event
	nextID     int
	listErr    error
	listHook   func()
	batchCalls int
	onChange   func()
}

func newMemStore() *memStore {
	return &memStore{events: make(map[string]models.Event)}
}

func (s *memStore) put(ev models.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[ev.ID] = ev
}

func (s *memStore) List(ctx context.Context, f store.Filter) ([]models.Event, error) {
	if hook := s.listHook; hook != nil {
		s.listHook = nil
		hook()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listErr != nil {
		return nil, s.listErr
	}

	var out []models.Event
	for _, ev := range s.events {
		if f.Matches(ev) {
			out = append(out, ev)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartDate.Before(out[j].StartDate)
	})
	return out, nil
}

func (s *memStore) Get(ctx context.Context, id string) (models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev, ok := s.events[id]
	if !ok {
		return models.Event{}, store.ErrNotFound
	}
	return ev, nil
}

func (s *memStore) Create(ctx context.Context, in store.EventInput) (models.Event, error) {
	s.mu.Lock()
	s.nextID++
	ev := models.Event{
		ID:           fmt.Sprintf("ev%d", s.nextID),
		Title:        in.Title,
		Description:  in.Description,
		Location:     in.Location,
		StartDate:    in.StartDate,
		EndDate:      in.EndDate,
		Category:     in.Category,
		Status:       in.Status,
		MaxAttendees: in.MaxAttendees,
		CreatedBy:    in.CreatedBy,
	}
	s.events[ev.ID] = ev
	onChange := s.onChange
	s.mu.Unlock()

	if onChange != nil {
		onChange()
	}
	return ev, nil
}

func (s *memStore) Update(ctx context.Context, ev models.Event) error {
	s.mu.Lock()
	if _, ok := s.events[ev.ID]; !ok {
		s.mu.Unlock()
		return store.ErrNotFound
	}
	s.events[ev.ID] = ev
	onChange := s.onChange
	s.mu.Unlock()

	if onChange != nil {
		onChange()
	}
	return nil
}

func (s *memStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	if _, ok := s.events[id]; !ok {
		s.mu.Unlock()
		return store.ErrNotFound
	}
	delete(s.events, id)
	onChange := s.onChange
	s.mu.Unlock()

	if onChange != nil {
		onChange()
	}
	return nil
}

func (s *memStore) UpdateStatusBatch(ctx context.Context, ids []string, status models.EventStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.batchCalls++
	for _, id := range ids {
		ev, ok := s.events[id]
		if !ok {
			continue
		}
		ev.Status = status
		s.events[id] = ev
	}
	return nil
}

func (s *memStore) Subscribe(onChange func()) func() {
	s.mu.Lock()
	s.onChange = onChange
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		s.onChange = nil
		s.mu.Unlock()
	}
}

// fakeReminderManager counts reminder lifecycle calls.
type fakeReminderManager struct {
	mu        sync.Mutex
	armed     []string
	rearmed   []string
	cancelled []string
	scans     int
	stopped   bool
}

func (f *fakeReminderManager) ArmEventReminders(ctx context.Context, ev models.Event) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.armed = append(f.armed, ev.ID)
	return 1
}

func (f *fakeReminderManager) RearmEventReminders(ctx context.Context, ev models.Event) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rearmed = append(f.rearmed, ev.ID)
	return 1
}

func (f *fakeReminderManager) CancelEventReminders(eventID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = append(f.cancelled, eventID)
}

func (f *fakeReminderManager) HorizonScan(ctx context.Context, events []models.Event) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scans++
	return 0
}

func (f *fakeReminderManager) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
}

// fakeReconciler counts Reconcile calls and optionally fails.
type fakeReconciler struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeReconciler) Reconcile(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.err
}

// capturePublisher records published messages per channel.
type capturePublisher struct {
	mu       sync.Mutex
	messages []publishedMessage
	err      error
}

type publishedMessage struct {
	channel string
	message map[string]any
}

func (p *capturePublisher) Publish(ctx context.Context, channel string, message map[string]any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, publishedMessage{channel: channel, message: message})
	return nil
}

func (p *capturePublisher) all() []publishedMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]publishedMessage, len(p.messages))
	copy(out, p.messages)
	return out
}

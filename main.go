package main

import (
	"context"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/plugins/migratecmd"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	pubnub "github.com/pubnub/go/v7"

	"encanto-system/config"
	"encanto-system/handlers"
	_ "encanto-system/migrations"
	"encanto-system/monitoring"
	"encanto-system/security"
	"encanto-system/services"
	"encanto-system/store"
	"encanto-system/utils"
)

func main() {
	app := pocketbase.New()

	// Load configuration
	cfg := config.LoadConfig()

	// Initialize Redis
	redisClient := utils.NewRedisClient(cfg.RedisURL)
	defer redisClient.Close()

	// Initialize PubNub
	pnConfig := pubnub.NewConfigWithUserId(pubnub.UserId("encanto-server"))
	pnConfig.PublishKey = cfg.PubNubPublishKey
	pnConfig.SubscribeKey = cfg.PubNubSubscribeKey
	pnConfig.SecretKey = cfg.PubNubSecretKey

	pn := pubnub.NewPubNub(pnConfig)

	clock := utils.SystemClock()
	monitor := monitoring.NewMonitor()

	// Initialize services
	settingsService := services.NewSettingsService(redisClient)
	notificationService := services.NewNotificationService(
		services.NewPubNubPublisher(pn), settingsService, monitor, clock)
	reminderScheduler := services.NewReminderScheduler(
		notificationService, settingsService, monitor, clock, cfg.ReminderLeads)

	eventStore := store.NewPBEventStore(app)
	reconciler := services.NewStatusReconciler(eventStore, monitor, clock)
	eventService := services.NewEventService(
		eventStore, reconciler, reminderScheduler, notificationService, monitor, clock,
		cfg.ReconcileInterval.String(), cfg.HorizonScanInterval.String())
	inventoryService := services.NewInventoryService(
		app, notificationService, settingsService, cfg.LowStockInterval)

	// Initialize handlers
	eventHandler := handlers.NewEventHandler(app, eventService)
	settingsHandler := handlers.NewSettingsHandler(settingsService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	rateLimiter := security.NewRateLimiter(redisClient, cfg.RateLimitPerMinute)

	// Enable migrations
	migratecmd.MustRegister(app, app.RootCmd, migratecmd.Config{
		Automigrate: true,
	})

	// Register routes
	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		// Business API, rate limited per caller
		g := se.Router.Group("/api/business")
		g.BindFunc(rateLimiter.BusinessRateLimit())

		// Event endpoints
		g.GET("/events", eventHandler.List)
		g.POST("/events", eventHandler.Create)
		g.PATCH("/events/{id}", eventHandler.Update)
		g.DELETE("/events/{id}", eventHandler.Delete)
		g.POST("/events/refresh", eventHandler.Refresh)

		// Settings endpoints
		g.GET("/settings/notifications", settingsHandler.Get)
		g.PUT("/settings/notifications", settingsHandler.Update)
		g.POST("/settings/notifications/reset", settingsHandler.Reset)

		// Notification endpoints
		g.POST("/notifications/permission/request", notificationHandler.RequestPermission)
		g.PUT("/notifications/permission", notificationHandler.ReportPermission)
		g.POST("/notifications/test", notificationHandler.Test)

		// Health check
		se.Router.GET("/health", func(e *core.RequestEvent) error {
			if err := utils.RedisHealthCheck(redisClient); err != nil {
				return e.JSON(503, map[string]string{
					"status": "unhealthy",
					"error":  err.Error(),
				})
			}
			return e.JSON(200, map[string]string{"status": "healthy"})
		})

		if cfg.EnableMetrics {
			se.Router.GET("/metrics", func(e *core.RequestEvent) error {
				promhttp.Handler().ServeHTTP(e.Response, e.Request)
				return nil
			})
		}

		// Start background coordination once the app is serving
		if err := eventService.Start(context.Background()); err != nil {
			return err
		}
		inventoryService.Start()

		log.Println("Server routes registered")

		return se.Next()
	})

	app.OnTerminate().BindFunc(func(te *core.TerminateEvent) error {
		eventService.Shutdown()
		inventoryService.Stop()
		return te.Next()
	})

	// Start server
	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}

package main

import (
	"context"
	"database/sql"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	_ "github.com/lib/pq"

	httpapi "github.com/hingham-practice/city-explorer/internal/api/http"
	"github.com/hingham-practice/city-explorer/internal/config"
	"github.com/hingham-practice/city-explorer/internal/explore"
	"github.com/hingham-practice/city-explorer/internal/logger"
	"github.com/hingham-practice/city-explorer/internal/providers"
	"github.com/hingham-practice/city-explorer/internal/scheduler"
	"github.com/hingham-practice/city-explorer/internal/store"
)

func main() {
	log := logger.New()
	defer log.Sync()

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Cache store. The database may still be starting in docker, so ping a
	// few times before giving up.
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		log.Infof("waiting for db: attempt %d, err: %v", i+1, err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		log.Fatalf("could not connect to db: %v", err)
	}

	if err := store.RunMigrations(db); err != nil {
		log.Fatalf("migrations: %v", err)
	}
	pgStore := store.NewPgStore(db)

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	geocoder := providers.NewGoogleGeocoder(httpClient, cfg.GeocodeAPIKey)
	forecast := providers.NewDarkSkyProvider(httpClient, cfg.WeatherAPIKey, log)
	listings := providers.NewYelpProvider(httpClient, cfg.YelpAPIKey, log)
	media := providers.NewTMDBProvider(httpClient, cfg.MovieAPIKey, log)

	// Cache coordinator orchestrating store lookups and provider fetches.
	service := explore.NewService(pgStore, geocoder, forecast, listings, media, log)

	// Scheduler that warms the cache for configured seed queries.
	sched := scheduler.New(cfg.WarmQueries, cfg.WarmInterval, service, log)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "city-explorer",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(cors.New())
	app.Use(fiberlogger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "city-explorer",
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, service)

	// Start server with graceful shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Infof("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Infof("error during shutdown: %v", err)
	}

	if err := db.Close(); err != nil {
		log.Infof("error closing db: %v", err)
	}
}

package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/himanshu123g/fitlife-plus-sub001/internal/cache"
	"github.com/himanshu123g/fitlife-plus-sub001/internal/config"
	"github.com/himanshu123g/fitlife-plus-sub001/internal/database"
	"github.com/himanshu123g/fitlife-plus-sub001/internal/middleware"
	"github.com/himanshu123g/fitlife-plus-sub001/internal/repository"
	"github.com/himanshu123g/fitlife-plus-sub001/internal/repository/memory"
	"github.com/himanshu123g/fitlife-plus-sub001/internal/routes"
	"github.com/himanshu123g/fitlife-plus-sub001/internal/services"
	sessionws "github.com/himanshu123g/fitlife-plus-sub001/internal/websocket"
	"github.com/himanshu123g/fitlife-plus-sub001/pkg/utils"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zl, err := utils.NewLogger(cfg.AppEnv)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, zl); err != nil {
		zl.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, zl *zap.Logger) error {
	// 2. Stores
	var (
		sessionStore services.SessionStore
		trainerStore services.TrainerStore
	)
	if cfg.UsesMemoryStore() {
		zl.Warn("using in-memory store; data is lost on restart")
		sessionStore = memory.NewSessionStore()
		trainerStore = memory.NewTrainerStore()
	} else {
		pool, err := database.ConnectDB(ctx, cfg.DBUrl, zl)
		if err != nil {
			return err
		}
		defer pool.Close()
		sessionStore = repository.NewSessionRepository(pool)
		trainerStore = repository.NewTrainerRepository(pool)
	}

	var availabilityCache services.AvailabilityCache
	if cfg.RedisURL != "" {
		client, err := database.ConnectRedis(ctx, cfg.RedisURL, zl)
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()
		availabilityCache = cache.NewAvailabilityCache(client, cfg.AvailabilityCacheTTL)
	}

	// 3. Services
	hub := sessionws.NewHub(zl.Named("events"))
	sessionService := services.NewSessionService(
		sessionStore,
		trainerStore,
		services.NewMembershipPolicy(cfg.CoachingPlans),
		services.NewRandomRoomIssuer(),
		hub,
		zl.Named("sessions"),
	)
	trainerService := services.NewTrainerService(trainerStore, availabilityCache, zl.Named("trainers"))
	bookingLimiter := middleware.NewCallerRateLimiter(cfg.BookingRatePerMinute, cfg.BookingRateBurst, zl.Named("ratelimit"))

	// 4. Setup Fiber
	app := fiber.New()

	app.Use(cors.New())
	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
		})
	})
	if err := routes.RegisterRoutes(app, cfg, routes.Dependencies{
		Sessions:     sessionService,
		Trainers:     trainerService,
		Hub:          hub,
		BookingLimit: bookingLimiter,
	}); err != nil {
		return err
	}

	// 5. Start Server
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return hub.Run(gctx)
	})
	g.Go(func() error {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				bookingLimiter.Sweep()
			}
		}
	})
	g.Go(func() error {
		zl.Info("server starting", zap.String("port", cfg.Port), zap.String("store", cfg.StoreDriver))
		return app.Listen(":" + cfg.Port)
	})
	g.Go(func() error {
		<-gctx.Done()
		zl.Info("shutting down")
		return app.ShutdownWithTimeout(cfg.ShutdownTimeout)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

package routes

import (
	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/himanshu123g/fitlife-plus-sub001/internal/config"
	"github.com/himanshu123g/fitlife-plus-sub001/internal/handlers"
	"github.com/himanshu123g/fitlife-plus-sub001/internal/middleware"
	"github.com/himanshu123g/fitlife-plus-sub001/internal/services"
	sessionws "github.com/himanshu123g/fitlife-plus-sub001/internal/websocket"
)

// Dependencies are the wired services the HTTP surface exposes.
type Dependencies struct {
	Sessions     *services.SessionService
	Trainers     *services.TrainerService
	Hub          *sessionws.Hub
	BookingLimit *middleware.CallerRateLimiter
}

func RegisterRoutes(app *fiber.App, cfg *config.Config, deps Dependencies) error {
	sessionHandler := handlers.NewSessionHandler(deps.Sessions)
	trainerHandler := handlers.NewTrainerHandler(deps.Trainers)
	adminHandler := handlers.NewAdminHandler(deps.Sessions, deps.Trainers)
	eventsHandler := handlers.NewEventsHandler(deps.Hub, cfg.JWTSecret)

	if err := registerDocsRoutes(app, cfg); err != nil {
		return err
	}

	// The event feed sits outside /api/v1 so the header-only auth
	// middleware does not run on upgrades that carry ?token=.
	app.Use("/ws", eventsHandler.WebSocketAuth)
	app.Get("/ws", websocket.New(eventsHandler.HandleWebSocket))

	api := app.Group("/api")
	authProtected := api.Group("/v1", middleware.AuthRequired(cfg.JWTSecret))

	sessions := authProtected.Group("/sessions")
	bookingHandlers := []fiber.Handler{middleware.RequireRole("user")}
	if deps.BookingLimit != nil {
		bookingHandlers = append(bookingHandlers, deps.BookingLimit.Handler())
	}
	bookingHandlers = append(bookingHandlers, sessionHandler.RequestSession)
	sessions.Post("", bookingHandlers...)
	sessions.Get("/mine", sessionHandler.ListMySessions)
	sessions.Get("/requests", sessionHandler.ListTrainerRequests)
	sessions.Get("/upcoming", sessionHandler.ListTrainerUpcoming)
	sessions.Get("/history", sessionHandler.ListTrainerHistory)
	sessions.Get("/:id", sessionHandler.GetSession)
	sessions.Put("/:id/status", sessionHandler.UpdateStatus)

	trainers := authProtected.Group("/trainers")
	trainers.Get("", trainerHandler.ListTrainers)
	trainers.Put("/me/availability", middleware.RequireRole("trainer"), trainerHandler.SetMyAvailability)
	trainers.Get("/:id", trainerHandler.GetTrainer)
	trainers.Get("/:id/availability", trainerHandler.GetAvailability)
	trainers.Get("/:id/slots/check", sessionHandler.CheckSlot)

	admin := authProtected.Group("/admin", middleware.RequireRole("admin"))
	admin.Get("/sessions", adminHandler.ListSessions)
	admin.Put("/sessions/:id/status", adminHandler.ForceStatus)
	admin.Delete("/sessions/:id", adminHandler.DeleteSession)
	admin.Post("/trainers", adminHandler.ProvisionTrainer)
	admin.Put("/trainers/:id/availability", trainerHandler.SetTrainerAvailability)

	return nil
}

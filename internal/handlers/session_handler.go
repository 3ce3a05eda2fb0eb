package handlers

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/himanshu123g/fitlife-plus-sub001/internal/models"
	"github.com/himanshu123g/fitlife-plus-sub001/internal/services"
)

type SessionHandler struct {
	service sessionApplicationService
}

type sessionApplicationService interface {
	RequestSession(ctx context.Context, caller models.Caller, input services.RequestSessionInput) (*models.SessionDetail, error)
	ListMySessions(ctx context.Context, caller models.Caller) ([]models.SessionDetail, error)
	ListTrainerRequests(ctx context.Context, caller models.Caller) ([]models.SessionDetail, error)
	ListTrainerUpcoming(ctx context.Context, caller models.Caller) ([]models.SessionDetail, error)
	ListTrainerHistory(ctx context.Context, caller models.Caller) ([]models.SessionDetail, error)
	GetSession(ctx context.Context, caller models.Caller, sessionID int64) (*models.SessionDetail, error)
	Transition(ctx context.Context, caller models.Caller, sessionID int64, requestedStatus string) (*models.SessionDetail, error)
	HasConflict(ctx context.Context, trainerID int64, date string, slotTime string) (bool, error)
}

func NewSessionHandler(service *services.SessionService) *SessionHandler {
	return &SessionHandler{service: service}
}

type requestSessionRequest struct {
	TrainerID       int64   `json:"trainer_id" validate:"required,gt=0"`
	ScheduledDate   string  `json:"scheduled_date" validate:"required"`
	ScheduledTime   string  `json:"scheduled_time" validate:"required"`
	DurationMinutes int     `json:"duration_minutes" validate:"omitempty,min=1,max=240"`
	UserMessage     *string `json:"user_message" validate:"omitempty,max=1000"`
}

type updateSessionStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (h *SessionHandler) RequestSession(c *fiber.Ctx) error {
	caller, err := callerFromContext(c)
	if err != nil {
		return invalidTokenResponse(c)
	}

	var req requestSessionRequest
	if msg, ok := bindJSON(c, &req); !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
	}

	detail, err := h.service.RequestSession(c.Context(), caller, services.RequestSessionInput{
		TrainerID:       req.TrainerID,
		ScheduledDate:   req.ScheduledDate,
		ScheduledTime:   req.ScheduledTime,
		DurationMinutes: req.DurationMinutes,
		UserMessage:     req.UserMessage,
	})
	if err != nil {
		return mapSessionError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"session": detail})
}

func (h *SessionHandler) ListMySessions(c *fiber.Ctx) error {
	return h.list(c, h.service.ListMySessions)
}

func (h *SessionHandler) ListTrainerRequests(c *fiber.Ctx) error {
	return h.list(c, h.service.ListTrainerRequests)
}

func (h *SessionHandler) ListTrainerUpcoming(c *fiber.Ctx) error {
	return h.list(c, h.service.ListTrainerUpcoming)
}

func (h *SessionHandler) ListTrainerHistory(c *fiber.Ctx) error {
	return h.list(c, h.service.ListTrainerHistory)
}

func (h *SessionHandler) list(
	c *fiber.Ctx,
	view func(context.Context, models.Caller) ([]models.SessionDetail, error),
) error {
	caller, err := callerFromContext(c)
	if err != nil {
		return invalidTokenResponse(c)
	}

	sessions, err := view(c.Context(), caller)
	if err != nil {
		return mapSessionError(c, err)
	}
	if sessions == nil {
		sessions = []models.SessionDetail{}
	}

	return c.JSON(fiber.Map{"sessions": sessions})
}

func (h *SessionHandler) GetSession(c *fiber.Ctx) error {
	caller, err := callerFromContext(c)
	if err != nil {
		return invalidTokenResponse(c)
	}

	sessionID, ok := parseIDParam(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	session, err := h.service.GetSession(c.Context(), caller, sessionID)
	if err != nil {
		return mapSessionError(c, err)
	}

	return c.JSON(fiber.Map{"session": session})
}

func (h *SessionHandler) UpdateStatus(c *fiber.Ctx) error {
	caller, err := callerFromContext(c)
	if err != nil {
		return invalidTokenResponse(c)
	}

	sessionID, ok := parseIDParam(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	var req updateSessionStatusRequest
	if msg, ok := bindJSON(c, &req); !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
	}

	session, err := h.service.Transition(c.Context(), caller, sessionID, req.Status)
	if err != nil {
		return mapSessionError(c, err)
	}

	return c.JSON(fiber.Map{"session": session})
}

// CheckSlot reports whether a trainer's slot is already held by an active
// session.
func (h *SessionHandler) CheckSlot(c *fiber.Ctx) error {
	if _, err := callerFromContext(c); err != nil {
		return invalidTokenResponse(c)
	}

	trainerID, ok := parseIDParam(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid trainer id"})
	}
	date := strings.TrimSpace(c.Query("date"))
	slotTime := strings.TrimSpace(c.Query("time"))
	if date == "" || slotTime == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "date and time are required"})
	}

	taken, err := h.service.HasConflict(c.Context(), trainerID, date, slotTime)
	if err != nil {
		return mapSessionError(c, err)
	}

	return c.JSON(fiber.Map{
		"trainer_id": trainerID,
		"date":       date,
		"time":       slotTime,
		"available":  !taken,
	})
}

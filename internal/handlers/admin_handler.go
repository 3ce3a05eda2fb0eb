package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/himanshu123g/fitlife-plus-sub001/internal/models"
	"github.com/himanshu123g/fitlife-plus-sub001/internal/services"
)

type AdminHandler struct {
	sessions adminSessionService
	trainers trainerApplicationService
}

type adminSessionService interface {
	ListAllSessions(ctx context.Context, caller models.Caller) ([]models.SessionDetail, error)
	ForceStatus(ctx context.Context, caller models.Caller, sessionID int64, requestedStatus string) (*models.SessionDetail, error)
	DeleteSession(ctx context.Context, caller models.Caller, sessionID int64) error
}

func NewAdminHandler(sessions *services.SessionService, trainers *services.TrainerService) *AdminHandler {
	return &AdminHandler{sessions: sessions, trainers: trainers}
}

type provisionTrainerRequest struct {
	ID             int64   `json:"id" validate:"required,gt=0"`
	FullName       string  `json:"full_name" validate:"required,max=200"`
	Specialization *string `json:"specialization" validate:"omitempty,max=200"`
	Bio            *string `json:"bio" validate:"omitempty,max=2000"`
	AvatarURL      *string `json:"avatar_url" validate:"omitempty,url"`
}

func (h *AdminHandler) ListSessions(c *fiber.Ctx) error {
	caller, err := callerFromContext(c)
	if err != nil {
		return invalidTokenResponse(c)
	}

	sessions, err := h.sessions.ListAllSessions(c.Context(), caller)
	if err != nil {
		return mapSessionError(c, err)
	}
	if sessions == nil {
		sessions = []models.SessionDetail{}
	}
	return c.JSON(fiber.Map{"sessions": sessions})
}

func (h *AdminHandler) ForceStatus(c *fiber.Ctx) error {
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

	session, err := h.sessions.ForceStatus(c.Context(), caller, sessionID, req.Status)
	if err != nil {
		return mapSessionError(c, err)
	}
	return c.JSON(fiber.Map{"session": session})
}

func (h *AdminHandler) DeleteSession(c *fiber.Ctx) error {
	caller, err := callerFromContext(c)
	if err != nil {
		return invalidTokenResponse(c)
	}

	sessionID, ok := parseIDParam(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	if err := h.sessions.DeleteSession(c.Context(), caller, sessionID); err != nil {
		return mapSessionError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AdminHandler) ProvisionTrainer(c *fiber.Ctx) error {
	caller, err := callerFromContext(c)
	if err != nil {
		return invalidTokenResponse(c)
	}

	var req provisionTrainerRequest
	if msg, ok := bindJSON(c, &req); !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
	}

	trainer, err := h.trainers.ProvisionTrainer(c.Context(), caller, services.ProvisionTrainerInput{
		ID:             req.ID,
		FullName:       req.FullName,
		Specialization: req.Specialization,
		Bio:            req.Bio,
		AvatarURL:      req.AvatarURL,
	})
	if err != nil {
		return mapSessionError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"trainer": trainer})
}

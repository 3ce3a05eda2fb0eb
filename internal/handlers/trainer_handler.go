package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/himanshu123g/fitlife-plus-sub001/internal/models"
	"github.com/himanshu123g/fitlife-plus-sub001/internal/services"
)

type TrainerHandler struct {
	service trainerApplicationService
}

type trainerApplicationService interface {
	ListTrainers(ctx context.Context) ([]models.Trainer, error)
	GetTrainer(ctx context.Context, trainerID int64) (*models.Trainer, error)
	GetAvailability(ctx context.Context, trainerID int64) ([]models.AvailabilitySlot, error)
	SetAvailability(ctx context.Context, caller models.Caller, trainerID int64, slots []models.AvailabilitySlot) (*models.Trainer, error)
	ProvisionTrainer(ctx context.Context, caller models.Caller, input services.ProvisionTrainerInput) (*models.Trainer, error)
}

func NewTrainerHandler(service *services.TrainerService) *TrainerHandler {
	return &TrainerHandler{service: service}
}

type availabilitySlotRequest struct {
	Day  string `json:"day" validate:"required"`
	Time string `json:"time" validate:"required"`
}

// Slots may start on any minute, so a week holds at most 7*24*60 of them.
type setAvailabilityRequest struct {
	Availability []availabilitySlotRequest `json:"availability" validate:"max=10080,dive"`
}

func (r setAvailabilityRequest) slots() []models.AvailabilitySlot {
	slots := make([]models.AvailabilitySlot, 0, len(r.Availability))
	for _, slot := range r.Availability {
		slots = append(slots, models.AvailabilitySlot{Day: slot.Day, Time: slot.Time})
	}
	return slots
}

func (h *TrainerHandler) ListTrainers(c *fiber.Ctx) error {
	trainers, err := h.service.ListTrainers(c.Context())
	if err != nil {
		return mapSessionError(c, err)
	}
	if trainers == nil {
		trainers = []models.Trainer{}
	}
	return c.JSON(fiber.Map{"trainers": trainers})
}

func (h *TrainerHandler) GetTrainer(c *fiber.Ctx) error {
	trainerID, ok := parseIDParam(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid trainer id"})
	}

	trainer, err := h.service.GetTrainer(c.Context(), trainerID)
	if err != nil {
		return mapSessionError(c, err)
	}
	return c.JSON(fiber.Map{"trainer": trainer})
}

func (h *TrainerHandler) GetAvailability(c *fiber.Ctx) error {
	trainerID, ok := parseIDParam(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid trainer id"})
	}

	slots, err := h.service.GetAvailability(c.Context(), trainerID)
	if err != nil {
		return mapSessionError(c, err)
	}
	if slots == nil {
		slots = []models.AvailabilitySlot{}
	}
	return c.JSON(fiber.Map{"trainer_id": trainerID, "availability": slots})
}

// SetMyAvailability replaces the calling trainer's own schedule.
func (h *TrainerHandler) SetMyAvailability(c *fiber.Ctx) error {
	caller, err := callerFromContext(c)
	if err != nil {
		return invalidTokenResponse(c)
	}
	return h.setAvailability(c, caller, caller.ID)
}

// SetTrainerAvailability is the admin path for editing any trainer's schedule.
func (h *TrainerHandler) SetTrainerAvailability(c *fiber.Ctx) error {
	caller, err := callerFromContext(c)
	if err != nil {
		return invalidTokenResponse(c)
	}
	trainerID, ok := parseIDParam(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid trainer id"})
	}
	return h.setAvailability(c, caller, trainerID)
}

func (h *TrainerHandler) setAvailability(c *fiber.Ctx, caller models.Caller, trainerID int64) error {
	var req setAvailabilityRequest
	if msg, ok := bindJSON(c, &req); !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
	}

	trainer, err := h.service.SetAvailability(c.Context(), caller, trainerID, req.slots())
	if err != nil {
		return mapSessionError(c, err)
	}
	return c.JSON(fiber.Map{"trainer": trainer})
}

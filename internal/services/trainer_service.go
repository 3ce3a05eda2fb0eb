package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/himanshu123g/fitlife-plus-sub001/internal/models"
	"github.com/himanshu123g/fitlife-plus-sub001/internal/repository"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// TrainerStore is satisfied by repository.TrainerRepository and memory.TrainerStore.
type TrainerStore interface {
	trainerReader
	Create(ctx context.Context, input repository.CreateTrainerInput) (*models.Trainer, error)
	List(ctx context.Context) ([]models.Trainer, error)
	UpdateAvailability(ctx context.Context, trainerID int64, slots []models.AvailabilitySlot) (*models.Trainer, error)
}

// AvailabilityCache fronts trainer availability reads. It never replaces the
// store: a miss or a cache error falls through to the trainer record.
type AvailabilityCache interface {
	Get(ctx context.Context, trainerID int64) ([]models.AvailabilitySlot, bool, error)
	Set(ctx context.Context, trainerID int64, slots []models.AvailabilitySlot) error
	Invalidate(ctx context.Context, trainerID int64) error
}

type noopAvailabilityCache struct{}

func (noopAvailabilityCache) Get(context.Context, int64) ([]models.AvailabilitySlot, bool, error) {
	return nil, false, nil
}

func (noopAvailabilityCache) Set(context.Context, int64, []models.AvailabilitySlot) error {
	return nil
}

func (noopAvailabilityCache) Invalidate(context.Context, int64) error {
	return nil
}

var weekdays = map[string]struct{}{
	"monday":    {},
	"tuesday":   {},
	"wednesday": {},
	"thursday":  {},
	"friday":    {},
	"saturday":  {},
	"sunday":    {},
}

type TrainerService struct {
	trainerRepo TrainerStore
	cache       AvailabilityCache
	logger      *zap.Logger
}

func NewTrainerService(trainerRepo TrainerStore, cache AvailabilityCache, logger *zap.Logger) *TrainerService {
	if cache == nil {
		cache = noopAvailabilityCache{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TrainerService{
		trainerRepo: trainerRepo,
		cache:       cache,
		logger:      logger,
	}
}

type ProvisionTrainerInput struct {
	ID             int64
	FullName       string
	Specialization *string
	Bio            *string
	AvatarURL      *string
}

// ProvisionTrainer creates the trainer record for an existing trainer
// identity, with no published availability.
func (s *TrainerService) ProvisionTrainer(
	ctx context.Context,
	caller models.Caller,
	input ProvisionTrainerInput,
) (*models.Trainer, error) {
	if caller.Role != models.RoleAdmin {
		return nil, ErrForbidden
	}
	fullName := strings.TrimSpace(input.FullName)
	if input.ID <= 0 || fullName == "" {
		return nil, invalidInput("id and full_name are required")
	}

	trainer, err := s.trainerRepo.Create(ctx, repository.CreateTrainerInput{
		ID:             input.ID,
		FullName:       fullName,
		Specialization: trimOptional(input.Specialization),
		Bio:            trimOptional(input.Bio),
		AvatarURL:      trimOptional(input.AvatarURL),
	})
	if err != nil {
		if errors.Is(err, repository.ErrTrainerExists) {
			return nil, fmt.Errorf("%w: trainer already exists", ErrConflict)
		}
		return nil, storeError(err)
	}

	s.logger.Info("trainer provisioned", zap.Int64("trainer_id", trainer.ID), zap.Int64("admin_id", caller.ID))
	return trainer, nil
}

func (s *TrainerService) ListTrainers(ctx context.Context) ([]models.Trainer, error) {
	trainers, err := s.trainerRepo.List(ctx)
	if err != nil {
		return nil, storeError(err)
	}
	return trainers, nil
}

func (s *TrainerService) GetTrainer(ctx context.Context, trainerID int64) (*models.Trainer, error) {
	trainer, err := s.trainerRepo.GetByID(ctx, trainerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTrainerNotFound
		}
		return nil, storeError(err)
	}
	return trainer, nil
}

func (s *TrainerService) GetAvailability(ctx context.Context, trainerID int64) ([]models.AvailabilitySlot, error) {
	if slots, ok, err := s.cache.Get(ctx, trainerID); err != nil {
		s.logger.Warn("availability cache read", zap.Int64("trainer_id", trainerID), zap.Error(err))
	} else if ok {
		return slots, nil
	}

	trainer, err := s.GetTrainer(ctx, trainerID)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, trainerID, trainer.Availability); err != nil {
		s.logger.Warn("availability cache write", zap.Int64("trainer_id", trainerID), zap.Error(err))
	}
	return trainer.Availability, nil
}

// SetAvailability replaces a trainer's offered slots. Only that trainer or
// an admin may write; the last write wins.
func (s *TrainerService) SetAvailability(
	ctx context.Context,
	caller models.Caller,
	trainerID int64,
	slots []models.AvailabilitySlot,
) (*models.Trainer, error) {
	if !canManageAvailability(caller, trainerID) {
		return nil, ErrForbidden
	}
	normalized, err := normalizeAvailability(slots)
	if err != nil {
		return nil, err
	}

	trainer, err := s.trainerRepo.UpdateAvailability(ctx, trainerID, normalized)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTrainerNotFound
		}
		return nil, storeError(err)
	}
	if err := s.cache.Invalidate(ctx, trainerID); err != nil {
		s.logger.Warn("availability cache invalidate", zap.Int64("trainer_id", trainerID), zap.Error(err))
	}

	s.logger.Info("availability updated",
		zap.Int64("trainer_id", trainerID),
		zap.Int64("actor_id", caller.ID),
		zap.Int("slots", len(normalized)),
	)
	return trainer, nil
}

func canManageAvailability(caller models.Caller, trainerID int64) bool {
	if caller.Role == models.RoleAdmin {
		return true
	}
	return caller.Role == models.RoleTrainer && caller.ID == trainerID
}

func normalizeAvailability(slots []models.AvailabilitySlot) ([]models.AvailabilitySlot, error) {
	normalized := make([]models.AvailabilitySlot, 0, len(slots))
	seen := make(map[models.AvailabilitySlot]struct{}, len(slots))
	for _, candidate := range slots {
		day := strings.ToLower(strings.TrimSpace(candidate.Day))
		if _, ok := weekdays[day]; !ok {
			return nil, invalidInput(fmt.Sprintf("unknown day %q", candidate.Day))
		}
		parsed, err := time.Parse(slotTimeLayout, strings.TrimSpace(candidate.Time))
		if err != nil {
			return nil, invalidInput(fmt.Sprintf("time %q must be HH:MM", candidate.Time))
		}
		entry := models.AvailabilitySlot{Day: day, Time: parsed.Format(slotTimeLayout)}
		if _, dup := seen[entry]; dup {
			continue
		}
		seen[entry] = struct{}{}
		normalized = append(normalized, entry)
	}
	return normalized, nil
}

func trimOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/himanshu123g/fitlife-plus-sub001/internal/models"
	"github.com/himanshu123g/fitlife-plus-sub001/internal/repository"
	"github.com/jackc/pgx/v5"
)

type TrainerStore struct {
	mu       sync.RWMutex
	trainers map[int64]models.Trainer
	now      func() time.Time
}

func NewTrainerStore() *TrainerStore {
	return &TrainerStore{
		trainers: make(map[int64]models.Trainer),
		now:      time.Now,
	}
}

func (s *TrainerStore) Create(_ context.Context, input repository.CreateTrainerInput) (*models.Trainer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.trainers[input.ID]; exists {
		return nil, repository.ErrTrainerExists
	}

	now := s.now().UTC()
	trainer := models.Trainer{
		ID:             input.ID,
		FullName:       input.FullName,
		Specialization: cloneString(input.Specialization),
		Bio:            cloneString(input.Bio),
		AvatarURL:      cloneString(input.AvatarURL),
		Availability:   []models.AvailabilitySlot{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	s.trainers[trainer.ID] = trainer
	return cloneTrainer(trainer), nil
}

func (s *TrainerStore) GetByID(_ context.Context, trainerID int64) (*models.Trainer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	trainer, ok := s.trainers[trainerID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return cloneTrainer(trainer), nil
}

func (s *TrainerStore) List(_ context.Context) ([]models.Trainer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	trainers := make([]models.Trainer, 0, len(s.trainers))
	for _, trainer := range s.trainers {
		trainers = append(trainers, *cloneTrainer(trainer))
	}
	sort.Slice(trainers, func(i, j int) bool {
		if trainers[i].FullName == trainers[j].FullName {
			return trainers[i].ID < trainers[j].ID
		}
		return trainers[i].FullName < trainers[j].FullName
	})
	return trainers, nil
}

func (s *TrainerStore) ListSummaries(
	_ context.Context,
	trainerIDs []int64,
) (map[int64]models.TrainerSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make(map[int64]models.TrainerSummary, len(trainerIDs))
	for _, id := range trainerIDs {
		if trainer, ok := s.trainers[id]; ok {
			summaries[id] = trainer.Summary()
		}
	}
	return summaries, nil
}

func (s *TrainerStore) UpdateAvailability(
	_ context.Context,
	trainerID int64,
	slots []models.AvailabilitySlot,
) (*models.Trainer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	trainer, ok := s.trainers[trainerID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	trainer.Availability = append([]models.AvailabilitySlot{}, slots...)
	trainer.UpdatedAt = s.now().UTC()
	s.trainers[trainerID] = trainer
	return cloneTrainer(trainer), nil
}

func cloneTrainer(trainer models.Trainer) *models.Trainer {
	out := trainer
	out.Availability = append([]models.AvailabilitySlot{}, trainer.Availability...)
	return &out
}

func sortByID(sessions []models.Session) {
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].ID < sessions[j].ID
	})
}

package services

import (
	"context"
	"sort"

	"github.com/himanshu123g/fitlife-plus-sub001/internal/models"
	"github.com/himanshu123g/fitlife-plus-sub001/internal/repository"
)

var historyStatuses = []models.SessionStatus{
	models.StatusCompleted,
	models.StatusRejected,
	models.StatusCancelled,
}

func (s *SessionService) ListMySessions(ctx context.Context, caller models.Caller) ([]models.SessionDetail, error) {
	if caller.Role != models.RoleUser {
		return nil, ErrForbidden
	}
	sessions, err := s.sessionRepo.List(ctx, repository.SessionListFilter{UserID: caller.ID})
	if err != nil {
		return nil, storeError(err)
	}
	sort.SliceStable(sessions, func(i, j int) bool {
		return scheduleAfter(sessions[i], sessions[j])
	})
	return s.withTrainers(ctx, sessions)
}

// ListTrainerRequests returns pending requests oldest first.
func (s *SessionService) ListTrainerRequests(ctx context.Context, caller models.Caller) ([]models.SessionDetail, error) {
	sessions, err := s.trainerSessions(ctx, caller, models.StatusPending)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(sessions, func(i, j int) bool {
		if !sessions[i].CreatedAt.Equal(sessions[j].CreatedAt) {
			return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
		}
		return sessions[i].ID < sessions[j].ID
	})
	return s.withTrainers(ctx, sessions)
}

func (s *SessionService) ListTrainerUpcoming(ctx context.Context, caller models.Caller) ([]models.SessionDetail, error) {
	sessions, err := s.trainerSessions(ctx, caller, models.StatusApproved)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(sessions, func(i, j int) bool {
		return scheduleAfter(sessions[j], sessions[i])
	})
	return s.withTrainers(ctx, sessions)
}

func (s *SessionService) ListTrainerHistory(ctx context.Context, caller models.Caller) ([]models.SessionDetail, error) {
	sessions, err := s.trainerSessions(ctx, caller, historyStatuses...)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(sessions, func(i, j int) bool {
		return scheduleAfter(sessions[i], sessions[j])
	})
	return s.withTrainers(ctx, sessions)
}

// ListAllSessions is the admin view, newest first.
func (s *SessionService) ListAllSessions(ctx context.Context, caller models.Caller) ([]models.SessionDetail, error) {
	if caller.Role != models.RoleAdmin {
		return nil, ErrForbidden
	}
	sessions, err := s.sessionRepo.List(ctx, repository.SessionListFilter{})
	if err != nil {
		return nil, storeError(err)
	}
	sort.SliceStable(sessions, func(i, j int) bool {
		if !sessions[i].CreatedAt.Equal(sessions[j].CreatedAt) {
			return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
		}
		return sessions[i].ID > sessions[j].ID
	})
	return s.withTrainers(ctx, sessions)
}

func (s *SessionService) trainerSessions(
	ctx context.Context,
	caller models.Caller,
	statuses ...models.SessionStatus,
) ([]models.Session, error) {
	if caller.Role != models.RoleTrainer {
		return nil, ErrForbidden
	}
	sessions, err := s.sessionRepo.List(ctx, repository.SessionListFilter{
		TrainerID: caller.ID,
		Statuses:  statuses,
	})
	if err != nil {
		return nil, storeError(err)
	}
	return sessions, nil
}

// scheduleAfter orders by (date, time, id); ISO dates and HH:MM labels
// compare correctly as strings.
func scheduleAfter(a, b models.Session) bool {
	if a.ScheduledDate != b.ScheduledDate {
		return a.ScheduledDate > b.ScheduledDate
	}
	if a.ScheduledTime != b.ScheduledTime {
		return a.ScheduledTime > b.ScheduledTime
	}
	return a.ID > b.ID
}

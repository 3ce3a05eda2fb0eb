// Package memory holds process-local implementations of the repository
// contracts. A single mutex per store makes every check-and-write atomic.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/himanshu123g/fitlife-plus-sub001/internal/models"
	"github.com/himanshu123g/fitlife-plus-sub001/internal/repository"
	"github.com/jackc/pgx/v5"
)

type SessionStore struct {
	mu       sync.Mutex
	sessions map[int64]models.Session
	nextID   int64
	now      func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[int64]models.Session),
		now:      time.Now,
	}
}

// WithClock replaces the clock used for updated_at stamps.
func (s *SessionStore) WithClock(now func() time.Time) *SessionStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
	return s
}

func (s *SessionStore) CreateIfSlotFree(
	_ context.Context,
	input repository.CreateSessionInput,
) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hasActiveLocked(input.TrainerID, input.ScheduledDate, input.ScheduledTime, 0) {
		return nil, repository.ErrSlotTaken
	}

	createdAt := input.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now().UTC()
	}

	s.nextID++
	session := models.Session{
		ID:              s.nextID,
		UserID:          input.UserID,
		TrainerID:       input.TrainerID,
		ScheduledDate:   input.ScheduledDate,
		ScheduledTime:   input.ScheduledTime,
		DurationMinutes: input.DurationMinutes,
		Status:          models.StatusPending,
		UserMessage:     cloneString(input.UserMessage),
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
	}
	s.sessions[session.ID] = session

	out := session
	return &out, nil
}

func (s *SessionStore) GetByID(_ context.Context, sessionID int64) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &session, nil
}

func (s *SessionStore) HasActiveSession(
	_ context.Context,
	trainerID int64,
	date string,
	slotTime string,
) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasActiveLocked(trainerID, date, slotTime, 0), nil
}

func (s *SessionStore) List(
	_ context.Context,
	filter repository.SessionListFilter,
) ([]models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions := make([]models.Session, 0)
	for _, session := range s.sessions {
		if filter.UserID > 0 && session.UserID != filter.UserID {
			continue
		}
		if filter.TrainerID > 0 && session.TrainerID != filter.TrainerID {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, session.Status) {
			continue
		}
		sessions = append(sessions, session)
	}
	sortByID(sessions)
	return sessions, nil
}

func (s *SessionStore) UpdateStatusIfCurrent(
	_ context.Context,
	sessionID int64,
	currentStatus models.SessionStatus,
	nextStatus models.SessionStatus,
	roomID string,
) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok || session.Status != currentStatus {
		return nil, pgx.ErrNoRows
	}
	if nextStatus.IsActive() && !currentStatus.IsActive() &&
		s.hasActiveLocked(session.TrainerID, session.ScheduledDate, session.ScheduledTime, session.ID) {
		return nil, repository.ErrSlotTaken
	}

	session.Status = nextStatus
	session.RoomID = roomID
	session.UpdatedAt = s.now().UTC()
	s.sessions[sessionID] = session

	out := session
	return &out, nil
}

func (s *SessionStore) Delete(_ context.Context, sessionID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return pgx.ErrNoRows
	}
	delete(s.sessions, sessionID)
	return nil
}

// Len reports how many sessions are stored.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *SessionStore) hasActiveLocked(trainerID int64, date string, slotTime string, excludeID int64) bool {
	for id, session := range s.sessions {
		if id == excludeID {
			continue
		}
		if session.TrainerID == trainerID &&
			session.ScheduledDate == date &&
			session.ScheduledTime == slotTime &&
			session.Status.IsActive() {
			return true
		}
	}
	return false
}

func containsStatus(statuses []models.SessionStatus, status models.SessionStatus) bool {
	for _, candidate := range statuses {
		if candidate == status {
			return true
		}
	}
	return false
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}

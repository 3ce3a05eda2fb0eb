package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/himanshu123g/fitlife-plus-sub001/internal/models"
	"github.com/himanshu123g/fitlife-plus-sub001/internal/repository"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// SessionStore is satisfied by repository.SessionRepository and memory.SessionStore.
// Lookups report a missing record with pgx.ErrNoRows.
type SessionStore interface {
	CreateIfSlotFree(ctx context.Context, input repository.CreateSessionInput) (*models.Session, error)
	GetByID(ctx context.Context, sessionID int64) (*models.Session, error)
	HasActiveSession(ctx context.Context, trainerID int64, date string, slotTime string) (bool, error)
	List(ctx context.Context, filter repository.SessionListFilter) ([]models.Session, error)
	UpdateStatusIfCurrent(
		ctx context.Context,
		sessionID int64,
		currentStatus models.SessionStatus,
		nextStatus models.SessionStatus,
		roomID string,
	) (*models.Session, error)
	Delete(ctx context.Context, sessionID int64) error
}

type trainerReader interface {
	GetByID(ctx context.Context, trainerID int64) (*models.Trainer, error)
	ListSummaries(ctx context.Context, trainerIDs []int64) (map[int64]models.TrainerSummary, error)
}

// SessionEventPublisher fans session changes out to the listed identities.
type SessionEventPublisher interface {
	PublishSessionEvent(event models.SessionEvent, recipients ...int64)
}

type noopPublisher struct{}

func (noopPublisher) PublishSessionEvent(models.SessionEvent, ...int64) {}

type SessionService struct {
	sessionRepo SessionStore
	trainerRepo trainerReader
	policy      MembershipPolicy
	rooms       RoomTokenIssuer
	events      SessionEventPublisher
	logger      *zap.Logger
	now         func() time.Time
}

func NewSessionService(
	sessionRepo SessionStore,
	trainerRepo trainerReader,
	policy MembershipPolicy,
	rooms RoomTokenIssuer,
	events SessionEventPublisher,
	logger *zap.Logger,
) *SessionService {
	if rooms == nil {
		rooms = NewRandomRoomIssuer()
	}
	if events == nil {
		events = noopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{
		sessionRepo: sessionRepo,
		trainerRepo: trainerRepo,
		policy:      policy,
		rooms:       rooms,
		events:      events,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *SessionService) GetSession(
	ctx context.Context,
	caller models.Caller,
	sessionID int64,
) (*models.SessionDetail, error) {
	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if relationshipOf(caller, session) == actorNone {
		return nil, ErrForbidden
	}
	return s.withTrainer(ctx, session)
}

// HasConflict reports whether an active session already occupies the slot.
func (s *SessionService) HasConflict(
	ctx context.Context,
	trainerID int64,
	date string,
	slotTime string,
) (bool, error) {
	if trainerID <= 0 {
		return false, invalidInput("trainer id is required")
	}
	slot, err := parseSlot(date, slotTime)
	if err != nil {
		return false, err
	}
	taken, err := s.sessionRepo.HasActiveSession(ctx, trainerID, slot.date, slot.time)
	if err != nil {
		return false, storeError(err)
	}
	return taken, nil
}

// Transition drives a session through the lifecycle table on behalf of caller.
func (s *SessionService) Transition(
	ctx context.Context,
	caller models.Caller,
	sessionID int64,
	requestedStatus string,
) (*models.SessionDetail, error) {
	target, err := normalizeRequestedStatus(requestedStatus)
	if err != nil {
		return nil, err
	}

	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := authorizeTransition(caller, session, target); err != nil {
		return nil, err
	}

	updated, err := s.applyStatus(ctx, session, target)
	if err != nil {
		return nil, err
	}

	s.logger.Info("session transitioned",
		zap.Int64("session_id", updated.ID),
		zap.Int64("trainer_id", updated.TrainerID),
		zap.Int64("user_id", updated.UserID),
		zap.Int64("actor_id", caller.ID),
		zap.String("from", session.Status.String()),
		zap.String("status", updated.Status.String()),
	)
	s.publish(models.SessionEventType(updated.Status), updated)
	return s.describeSaved(ctx, updated), nil
}

// ForceStatus lets an admin set any status, bypassing the actor table. The
// room and slot invariants still hold.
func (s *SessionService) ForceStatus(
	ctx context.Context,
	caller models.Caller,
	sessionID int64,
	requestedStatus string,
) (*models.SessionDetail, error) {
	if caller.Role != models.RoleAdmin {
		return nil, ErrForbidden
	}
	target, err := normalizeRequestedStatus(requestedStatus)
	if err != nil {
		return nil, err
	}

	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status == target {
		return s.describeSaved(ctx, session), nil
	}

	updated, err := s.applyStatus(ctx, session, target)
	if err != nil {
		return nil, err
	}

	s.logger.Warn("session status overridden",
		zap.Int64("session_id", updated.ID),
		zap.Int64("admin_id", caller.ID),
		zap.String("from", session.Status.String()),
		zap.String("status", updated.Status.String()),
	)
	s.publish(models.SessionEventType(updated.Status), updated)
	return s.describeSaved(ctx, updated), nil
}

func (s *SessionService) DeleteSession(ctx context.Context, caller models.Caller, sessionID int64) error {
	if caller.Role != models.RoleAdmin {
		return ErrForbidden
	}
	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if err := s.sessionRepo.Delete(ctx, sessionID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrSessionNotFound
		}
		return storeError(err)
	}

	s.logger.Warn("session deleted",
		zap.Int64("session_id", session.ID),
		zap.Int64("admin_id", caller.ID),
	)
	s.publish(models.SessionDeletedEvent, session)
	return nil
}

// applyStatus writes target with a compare-and-set on the status the caller
// observed, so a concurrent change turns into ErrInvalidTransition.
func (s *SessionService) applyStatus(
	ctx context.Context,
	session *models.Session,
	target models.SessionStatus,
) (*models.Session, error) {
	roomID, err := s.roomFor(session, target)
	if err != nil {
		return nil, err
	}

	updated, err := s.sessionRepo.UpdateStatusIfCurrent(ctx, session.ID, session.Status, target, roomID)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, fmt.Errorf("%w: session changed concurrently", ErrInvalidTransition)
		case errors.Is(err, repository.ErrSlotTaken):
			return nil, fmt.Errorf("%w: slot already booked", ErrConflict)
		}
		s.logger.Error("update session status", zap.Int64("session_id", session.ID), zap.Error(err))
		return nil, storeError(err)
	}
	return updated, nil
}

// roomFor keeps an assigned room while the session stays in a room-holding
// status, issues one on first entry, and releases it otherwise.
func (s *SessionService) roomFor(session *models.Session, target models.SessionStatus) (string, error) {
	if !target.HoldsRoom() {
		return "", nil
	}
	if session.RoomID != "" {
		return session.RoomID, nil
	}
	return s.rooms.Issue()
}

func (s *SessionService) loadSession(ctx context.Context, sessionID int64) (*models.Session, error) {
	if sessionID <= 0 {
		return nil, ErrSessionNotFound
	}
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, storeError(err)
	}
	return session, nil
}

func (s *SessionService) withTrainer(ctx context.Context, session *models.Session) (*models.SessionDetail, error) {
	details, err := s.withTrainers(ctx, []models.Session{*session})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

// describeSaved attaches the trainer summary to a session whose write already
// succeeded. A failed lookup leaves Trainer nil rather than failing the call.
func (s *SessionService) describeSaved(ctx context.Context, session *models.Session) *models.SessionDetail {
	detail, err := s.withTrainer(ctx, session)
	if err != nil {
		s.logger.Warn("load trainer summary",
			zap.Int64("session_id", session.ID),
			zap.Int64("trainer_id", session.TrainerID),
			zap.Error(err),
		)
		return &models.SessionDetail{Session: *session}
	}
	return detail
}

func (s *SessionService) withTrainers(ctx context.Context, sessions []models.Session) ([]models.SessionDetail, error) {
	seen := make(map[int64]struct{}, len(sessions))
	trainerIDs := make([]int64, 0, len(sessions))
	for _, session := range sessions {
		if _, ok := seen[session.TrainerID]; ok {
			continue
		}
		seen[session.TrainerID] = struct{}{}
		trainerIDs = append(trainerIDs, session.TrainerID)
	}

	summaries, err := s.trainerRepo.ListSummaries(ctx, trainerIDs)
	if err != nil {
		return nil, storeError(err)
	}

	details := make([]models.SessionDetail, 0, len(sessions))
	for _, session := range sessions {
		detail := models.SessionDetail{Session: session}
		if summary, ok := summaries[session.TrainerID]; ok {
			summaryCopy := summary
			detail.Trainer = &summaryCopy
		}
		details = append(details, detail)
	}
	return details, nil
}

func (s *SessionService) publish(eventType string, session *models.Session) {
	s.events.PublishSessionEvent(models.SessionEvent{
		Type:      eventType,
		Session:   *session,
		Timestamp: s.now().UTC().Format(time.RFC3339),
	}, session.UserID, session.TrainerID)
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/himanshu123g/fitlife-plus-sub001/internal/models"
	"github.com/himanshu123g/fitlife-plus-sub001/internal/repository"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const (
	dateLayout         = "2006-01-02"
	slotTimeLayout     = "15:04"
	maxDurationMinutes = 240
	maxUserMessageLen  = 1000
)

// MembershipPolicy decides which membership plans may book coaching.
type MembershipPolicy struct {
	plans map[string]struct{}
}

func NewMembershipPolicy(plans []string) MembershipPolicy {
	policy := MembershipPolicy{plans: make(map[string]struct{}, len(plans))}
	for _, plan := range plans {
		if key := normalizePlan(plan); key != "" {
			policy.plans[key] = struct{}{}
		}
	}
	return policy
}

func (p MembershipPolicy) Eligible(plan string) bool {
	_, ok := p.plans[normalizePlan(plan)]
	return ok
}

func normalizePlan(plan string) string {
	return strings.ToLower(strings.TrimSpace(plan))
}

type RequestSessionInput struct {
	TrainerID       int64
	ScheduledDate   string
	ScheduledTime   string
	DurationMinutes int
	UserMessage     *string
}

type slot struct {
	date    string
	time    string
	weekday string
}

func parseSlot(date string, slotTime string) (slot, error) {
	parsedDate, err := time.Parse(dateLayout, strings.TrimSpace(date))
	if err != nil {
		return slot{}, invalidInput("scheduled_date must be YYYY-MM-DD")
	}
	parsedTime, err := time.Parse(slotTimeLayout, strings.TrimSpace(slotTime))
	if err != nil {
		return slot{}, invalidInput("scheduled_time must be HH:MM")
	}
	return slot{
		date:    parsedDate.Format(dateLayout),
		time:    parsedTime.Format(slotTimeLayout),
		weekday: strings.ToLower(parsedDate.Weekday().String()),
	}, nil
}

// RequestSession books a pending session for an eligible user. Checks run in
// a fixed order: role and membership, input, trainer, offered slot, and
// finally the atomic conflict-checked insert.
func (s *SessionService) RequestSession(
	ctx context.Context,
	caller models.Caller,
	input RequestSessionInput,
) (*models.SessionDetail, error) {
	if caller.Role != models.RoleUser {
		return nil, ErrForbidden
	}
	if !s.policy.Eligible(caller.MembershipPlan) {
		return nil, ErrMembershipRequired
	}

	if input.TrainerID <= 0 {
		return nil, invalidInput("trainer id is required")
	}
	if input.TrainerID == caller.ID {
		return nil, invalidInput("cannot book a session with yourself")
	}
	requested, err := parseSlot(input.ScheduledDate, input.ScheduledTime)
	if err != nil {
		return nil, err
	}
	duration := input.DurationMinutes
	if duration == 0 {
		duration = models.DefaultSessionDurationMinutes
	}
	if duration < 0 || duration > maxDurationMinutes {
		return nil, invalidInput(fmt.Sprintf("duration_minutes must be between 1 and %d", maxDurationMinutes))
	}
	message, err := normalizeUserMessage(input.UserMessage)
	if err != nil {
		return nil, err
	}

	trainer, err := s.trainerRepo.GetByID(ctx, input.TrainerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTrainerNotFound
		}
		return nil, storeError(err)
	}
	if !offersSlot(trainer.Availability, requested) {
		return nil, ErrSlotNotOffered
	}

	session, err := s.sessionRepo.CreateIfSlotFree(ctx, repository.CreateSessionInput{
		UserID:          caller.ID,
		TrainerID:       trainer.ID,
		ScheduledDate:   requested.date,
		ScheduledTime:   requested.time,
		DurationMinutes: duration,
		UserMessage:     message,
		CreatedAt:       s.now().UTC(),
	})
	if err != nil {
		if errors.Is(err, repository.ErrSlotTaken) {
			return nil, fmt.Errorf("%w: slot already booked", ErrConflict)
		}
		s.logger.Error("create session",
			zap.Int64("trainer_id", trainer.ID),
			zap.Int64("user_id", caller.ID),
			zap.Error(err),
		)
		return nil, storeError(err)
	}

	s.logger.Info("session requested",
		zap.Int64("session_id", session.ID),
		zap.Int64("trainer_id", session.TrainerID),
		zap.Int64("user_id", session.UserID),
		zap.String("scheduled_date", session.ScheduledDate),
		zap.String("scheduled_time", session.ScheduledTime),
	)
	s.publish(models.SessionEventType(session.Status), session)

	summary := trainer.Summary()
	return &models.SessionDetail{Session: *session, Trainer: &summary}, nil
}

// offersSlot treats an empty availability list as "no published schedule".
func offersSlot(availability []models.AvailabilitySlot, requested slot) bool {
	if len(availability) == 0 {
		return true
	}
	for _, offered := range availability {
		if offered.Day == requested.weekday && offered.Time == requested.time {
			return true
		}
	}
	return false
}

func normalizeUserMessage(message *string) (*string, error) {
	if message == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*message)
	if trimmed == "" {
		return nil, invalidInput("user_message must not be blank")
	}
	if utf8.RuneCountInString(trimmed) > maxUserMessageLen {
		return nil, invalidInput(fmt.Sprintf("user_message must be at most %d characters", maxUserMessageLen))
	}
	return &trimmed, nil
}

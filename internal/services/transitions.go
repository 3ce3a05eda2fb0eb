package services

import (
	"fmt"
	"strings"

	"github.com/himanshu123g/fitlife-plus-sub001/internal/models"
)

// actor is the caller's relationship to a particular session.
type actor int

const (
	actorNone actor = iota
	actorOwningUser
	actorOwningTrainer
	actorAdmin
)

func (a actor) String() string {
	switch a {
	case actorOwningUser:
		return "owning user"
	case actorOwningTrainer:
		return "owning trainer"
	case actorAdmin:
		return "admin"
	default:
		return "none"
	}
}

type transitionKey struct {
	from models.SessionStatus
	to   models.SessionStatus
}

type transitionRule struct {
	actors []actor
}

func (r transitionRule) allows(a actor) bool {
	for _, allowed := range r.actors {
		if allowed == a {
			return true
		}
	}
	return false
}

// sessionTransitions is the complete set of legal status changes. Anything
// not listed is rejected.
var sessionTransitions = map[transitionKey]transitionRule{
	{models.StatusPending, models.StatusApproved}: {
		actors: []actor{actorOwningTrainer, actorAdmin},
	},
	{models.StatusPending, models.StatusRejected}: {
		actors: []actor{actorOwningTrainer, actorAdmin},
	},
	{models.StatusApproved, models.StatusCompleted}: {
		actors: []actor{actorOwningTrainer, actorAdmin},
	},
	{models.StatusPending, models.StatusCancelled}: {
		actors: []actor{actorOwningUser},
	},
	{models.StatusApproved, models.StatusCancelled}: {
		actors: []actor{actorOwningUser},
	},
}

func relationshipOf(caller models.Caller, session *models.Session) actor {
	switch caller.Role {
	case models.RoleAdmin:
		return actorAdmin
	case models.RoleTrainer:
		if caller.ID == session.TrainerID {
			return actorOwningTrainer
		}
	case models.RoleUser:
		if caller.ID == session.UserID {
			return actorOwningUser
		}
	}
	return actorNone
}

// mayEverMoveTo reports whether a could drive some session into target.
func mayEverMoveTo(a actor, target models.SessionStatus) bool {
	for key, rule := range sessionTransitions {
		if key.to == target && rule.allows(a) {
			return true
		}
	}
	return false
}

// authorizeTransition applies the transition table. Callers with no standing
// for the target get ErrForbidden; an unlisted (from, to) pair gets
// ErrInvalidTransition.
func authorizeTransition(
	caller models.Caller,
	session *models.Session,
	target models.SessionStatus,
) error {
	relationship := relationshipOf(caller, session)
	if relationship == actorNone || !mayEverMoveTo(relationship, target) {
		return ErrForbidden
	}

	rule, ok := sessionTransitions[transitionKey{from: session.Status, to: target}]
	if !ok || !rule.allows(relationship) {
		return invalidTransition(session.Status, target)
	}
	return nil
}

func invalidTransition(from, to models.SessionStatus) error {
	switch {
	case to == models.StatusCancelled && from == models.StatusCompleted:
		return fmt.Errorf("%w: cannot cancel completed session", ErrInvalidTransition)
	case from == to:
		return fmt.Errorf("%w: session is already %s", ErrInvalidTransition, from)
	default:
		return fmt.Errorf("%w: cannot move session from %s to %s", ErrInvalidTransition, from, to)
	}
}

func normalizeRequestedStatus(status string) (models.SessionStatus, error) {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "pending":
		return models.StatusPending, nil
	case "approve", "approved":
		return models.StatusApproved, nil
	case "reject", "rejected":
		return models.StatusRejected, nil
	case "complete", "completed":
		return models.StatusCompleted, nil
	case "cancel", "cancelled", "canceled":
		return models.StatusCancelled, nil
	default:
		return "", ErrInvalidStatus
	}
}

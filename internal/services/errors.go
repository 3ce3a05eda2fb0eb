package services

import (
	"errors"
	"fmt"
)

var (
	ErrForbidden          = errors.New("forbidden")
	ErrMembershipRequired = fmt.Errorf("%w: membership required", ErrForbidden)
	ErrTrainerNotFound    = errors.New("trainer not found")
	ErrSessionNotFound    = errors.New("session not found")
	ErrConflict           = errors.New("conflict")
	ErrInvalidTransition  = errors.New("invalid state transition")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrInvalidInput       = errors.New("invalid input")
	ErrSlotNotOffered     = fmt.Errorf("%w: slot not offered by trainer", ErrInvalidInput)
	ErrStoreUnavailable   = errors.New("store unavailable")
)

func storeError(err error) error {
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}

func invalidInput(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, reason)
}

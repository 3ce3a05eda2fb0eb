package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx, so repositories can be
// rebound to a transaction with New*Repository(tx).
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

var (
	ErrSlotTaken     = errors.New("slot already has an active session")
	ErrTrainerExists = errors.New("trainer already exists")
)

const (
	uniqueViolation      = "23505"
	activeSlotConstraint = "sessions_active_slot_key"
	trainersPrimaryKey   = "trainers_pkey"
)

// SlotKey identifies a bookable unit of a trainer's time.
func SlotKey(trainerID int64, date string, slotTime string) string {
	return fmt.Sprintf("%d|%s|%s", trainerID, date, slotTime)
}

func translateWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		switch pgErr.ConstraintName {
		case activeSlotConstraint:
			return ErrSlotTaken
		case trainersPrimaryKey:
			return ErrTrainerExists
		}
	}
	return err
}

package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/himanshu123g/fitlife-plus-sub001/internal/models"
	"github.com/jackc/pgx/v5"
)

type CreateSessionInput struct {
	UserID          int64
	TrainerID       int64
	ScheduledDate   string
	ScheduledTime   string
	DurationMinutes int
	UserMessage     *string
	CreatedAt       time.Time
}

// SessionListFilter narrows a listing; zero values match everything.
type SessionListFilter struct {
	UserID    int64
	TrainerID int64
	Statuses  []models.SessionStatus
}

const sessionColumns = `id, user_id, trainer_id, scheduled_date::text, scheduled_time, duration_min,
		status, user_message, room_id, created_at, updated_at`

type SessionRepository struct {
	db DBTX
}

func NewSessionRepository(db DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*models.Session, error) {
	var session models.Session
	var status string
	err := row.Scan(
		&session.ID,
		&session.UserID,
		&session.TrainerID,
		&session.ScheduledDate,
		&session.ScheduledTime,
		&session.DurationMinutes,
		&status,
		&session.UserMessage,
		&session.RoomID,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	session.Status = models.SessionStatus(status)
	return &session, nil
}

// CreateIfSlotFree inserts a pending session unless the slot already holds an
// active one. The check and the insert run under a per-slot advisory lock in
// one transaction; the partial unique index catches anything that slips past.
func (r *SessionRepository) CreateIfSlotFree(
	ctx context.Context,
	input CreateSessionInput,
) (*models.Session, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	lockKey := SlotKey(input.TrainerID, input.ScheduledDate, input.ScheduledTime)
	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", lockKey); err != nil {
		return nil, err
	}

	txRepo := NewSessionRepository(tx)
	taken, err := txRepo.HasActiveSession(ctx, input.TrainerID, input.ScheduledDate, input.ScheduledTime)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrSlotTaken
	}

	session, err := txRepo.insert(ctx, input)
	if err != nil {
		return nil, translateWriteError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, translateWriteError(err)
	}
	return session, nil
}

func (r *SessionRepository) insert(ctx context.Context, input CreateSessionInput) (*models.Session, error) {
	query := fmt.Sprintf(`
		INSERT INTO sessions (user_id, trainer_id, scheduled_date, scheduled_time, duration_min,
			status, user_message, room_id, created_at, updated_at)
		VALUES ($1, $2, $3::date, $4, $5, 'pending', $6, '', $7, $7)
		RETURNING %s
	`, sessionColumns)

	return scanSession(r.db.QueryRow(
		ctx,
		query,
		input.UserID,
		input.TrainerID,
		input.ScheduledDate,
		input.ScheduledTime,
		input.DurationMinutes,
		input.UserMessage,
		input.CreatedAt,
	))
}

func (r *SessionRepository) GetByID(ctx context.Context, sessionID int64) (*models.Session, error) {
	query := fmt.Sprintf(`SELECT %s FROM sessions WHERE id = $1`, sessionColumns)
	return scanSession(r.db.QueryRow(ctx, query, sessionID))
}

func (r *SessionRepository) HasActiveSession(
	ctx context.Context,
	trainerID int64,
	date string,
	slotTime string,
) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM sessions
			WHERE trainer_id = $1
			  AND scheduled_date = $2::date
			  AND scheduled_time = $3
			  AND status IN ('pending', 'approved')
		)
	`
	var taken bool
	if err := r.db.QueryRow(ctx, query, trainerID, date, slotTime).Scan(&taken); err != nil {
		return false, err
	}
	return taken, nil
}

func (r *SessionRepository) List(
	ctx context.Context,
	filter SessionListFilter,
) ([]models.Session, error) {
	args := []any{}
	whereParts := []string{}

	if filter.UserID > 0 {
		args = append(args, filter.UserID)
		whereParts = append(whereParts, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if filter.TrainerID > 0 {
		args = append(args, filter.TrainerID)
		whereParts = append(whereParts, fmt.Sprintf("trainer_id = $%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, status := range filter.Statuses {
			statuses = append(statuses, string(status))
		}
		args = append(args, statuses)
		whereParts = append(whereParts, fmt.Sprintf("status = ANY($%d)", len(args)))
	}

	where := ""
	if len(whereParts) > 0 {
		where = "WHERE " + strings.Join(whereParts, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM sessions
		%s
		ORDER BY id ASC
	`, sessionColumns, where)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := make([]models.Session, 0)
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}

// UpdateStatusIfCurrent moves a session from currentStatus to nextStatus and
// sets its room id in one statement. It returns pgx.ErrNoRows when the
// session is gone or no longer in currentStatus.
func (r *SessionRepository) UpdateStatusIfCurrent(
	ctx context.Context,
	sessionID int64,
	currentStatus models.SessionStatus,
	nextStatus models.SessionStatus,
	roomID string,
) (*models.Session, error) {
	query := fmt.Sprintf(`
		UPDATE sessions
		SET status = $3, room_id = $4, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING %s
	`, sessionColumns)

	session, err := scanSession(r.db.QueryRow(
		ctx,
		query,
		sessionID,
		string(currentStatus),
		string(nextStatus),
		roomID,
	))
	if err != nil {
		return nil, translateWriteError(err)
	}
	return session, nil
}

func (r *SessionRepository) Delete(ctx context.Context, sessionID int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, sessionID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

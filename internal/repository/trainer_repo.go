package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/himanshu123g/fitlife-plus-sub001/internal/models"
)

type CreateTrainerInput struct {
	ID             int64
	FullName       string
	Specialization *string
	Bio            *string
	AvatarURL      *string
}

const trainerColumns = `id, full_name, specialization, bio, avatar_url, availability, created_at, updated_at`

type TrainerRepository struct {
	db DBTX
}

func NewTrainerRepository(db DBTX) *TrainerRepository {
	return &TrainerRepository{db: db}
}

func scanTrainer(row rowScanner) (*models.Trainer, error) {
	var trainer models.Trainer
	var availability []byte
	err := row.Scan(
		&trainer.ID,
		&trainer.FullName,
		&trainer.Specialization,
		&trainer.Bio,
		&trainer.AvatarURL,
		&availability,
		&trainer.CreatedAt,
		&trainer.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	trainer.Availability = make([]models.AvailabilitySlot, 0)
	if len(availability) > 0 {
		if err := json.Unmarshal(availability, &trainer.Availability); err != nil {
			return nil, fmt.Errorf("decode availability for trainer %d: %w", trainer.ID, err)
		}
	}
	return &trainer, nil
}

// Create provisions a trainer record with an empty availability list.
func (r *TrainerRepository) Create(ctx context.Context, input CreateTrainerInput) (*models.Trainer, error) {
	query := fmt.Sprintf(`
		INSERT INTO trainers (id, full_name, specialization, bio, avatar_url, availability)
		VALUES ($1, $2, $3, $4, $5, '[]'::jsonb)
		RETURNING %s
	`, trainerColumns)

	trainer, err := scanTrainer(r.db.QueryRow(
		ctx,
		query,
		input.ID,
		input.FullName,
		input.Specialization,
		input.Bio,
		input.AvatarURL,
	))
	if err != nil {
		return nil, translateWriteError(err)
	}
	return trainer, nil
}

func (r *TrainerRepository) GetByID(ctx context.Context, trainerID int64) (*models.Trainer, error) {
	query := fmt.Sprintf(`SELECT %s FROM trainers WHERE id = $1`, trainerColumns)
	return scanTrainer(r.db.QueryRow(ctx, query, trainerID))
}

func (r *TrainerRepository) List(ctx context.Context) ([]models.Trainer, error) {
	query := fmt.Sprintf(`SELECT %s FROM trainers ORDER BY full_name ASC, id ASC`, trainerColumns)

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trainers := make([]models.Trainer, 0)
	for rows.Next() {
		trainer, err := scanTrainer(rows)
		if err != nil {
			return nil, err
		}
		trainers = append(trainers, *trainer)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return trainers, nil
}

func (r *TrainerRepository) ListSummaries(
	ctx context.Context,
	trainerIDs []int64,
) (map[int64]models.TrainerSummary, error) {
	summaries := make(map[int64]models.TrainerSummary, len(trainerIDs))
	if len(trainerIDs) == 0 {
		return summaries, nil
	}

	query := `
		SELECT id, full_name, specialization, avatar_url
		FROM trainers
		WHERE id = ANY($1)
	`
	rows, err := r.db.Query(ctx, query, trainerIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var summary models.TrainerSummary
		if err := rows.Scan(
			&summary.ID,
			&summary.FullName,
			&summary.Specialization,
			&summary.AvatarURL,
		); err != nil {
			return nil, err
		}
		summaries[summary.ID] = summary
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return summaries, nil
}

// UpdateAvailability replaces the trainer's slot list. It returns
// pgx.ErrNoRows when the trainer does not exist.
func (r *TrainerRepository) UpdateAvailability(
	ctx context.Context,
	trainerID int64,
	slots []models.AvailabilitySlot,
) (*models.Trainer, error) {
	if slots == nil {
		slots = []models.AvailabilitySlot{}
	}
	payload, err := json.Marshal(slots)
	if err != nil {
		return nil, fmt.Errorf("encode availability: %w", err)
	}

	query := fmt.Sprintf(`
		UPDATE trainers
		SET availability = $2::jsonb, updated_at = NOW()
		WHERE id = $1
		RETURNING %s
	`, trainerColumns)

	return scanTrainer(r.db.QueryRow(ctx, query, trainerID, string(payload)))
}

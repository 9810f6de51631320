package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"zoo-assistant/internal/domain"
	"zoo-assistant/internal/domain/model"
	"zoo-assistant/internal/domain/ports/repository"
)

var _ repository.ObservationRepository = (*observationRepo)(nil)

type observationRepo struct {
	pool *pgxpool.Pool
}

func NewObservationRepo(pool *pgxpool.Pool) *observationRepo {
	return &observationRepo{pool: pool}
}

const observationSelect = `
SELECT o.id, o.animal_id, o.behavior, o.health_status, o.notes, o.temperature, o.humidity,
       o.recorded_at, COALESCE(o.audio_file, ''), COALESCE(o.transcription, ''), COALESCE(o.job_id::text, ''),
       a.name, a.species
  FROM observations o
  JOIN animals a ON a.id = o.animal_id`

func (r *observationRepo) Create(ctx context.Context, tx repository.Tx, o *model.Observation) error {
	if o == nil || o.AnimalID == 0 {
		return domain.ErrInvalidArgument
	}
	if o.Timestamp.IsZero() {
		o.Timestamp = time.Now().UTC()
	}
	const q = `
INSERT INTO observations (animal_id, behavior, health_status, notes, temperature, humidity,
                          recorded_at, audio_file, transcription, job_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), NULLIF($9, ''), NULLIF($10, '')::uuid)
RETURNING id;`
	row, err := pickRow(ctx, r.pool, tx, q,
		o.AnimalID, o.Behavior, o.HealthStatus, o.Notes, o.Temperature, o.Humidity,
		o.Timestamp, o.AudioFile, o.Transcription, o.JobID)
	if err != nil {
		return err
	}
	if err := row.Scan(&o.ID); err != nil {
		return fmt.Errorf("create observation: %w", err)
	}
	return nil
}

func (r *observationRepo) List(ctx context.Context, tx repository.Tx, limit, offset int) ([]*model.Observation, error) {
	q := observationSelect + ` ORDER BY o.recorded_at DESC, o.id DESC LIMIT $1 OFFSET $2;`
	return r.query(ctx, tx, q, limit, offset)
}

func (r *observationRepo) ListByAnimal(ctx context.Context, tx repository.Tx, animalID int64, limit, offset int) ([]*model.Observation, error) {
	q := observationSelect + ` WHERE o.animal_id = $1 ORDER BY o.recorded_at DESC, o.id DESC LIMIT $2 OFFSET $3;`
	return r.query(ctx, tx, q, animalID, limit, offset)
}

func (r *observationRepo) LatestByAnimal(ctx context.Context, tx repository.Tx, animalID int64) (*model.Observation, error) {
	q := observationSelect + ` WHERE o.animal_id = $1 ORDER BY o.recorded_at DESC, o.id DESC LIMIT 1;`
	row, err := pickRow(ctx, r.pool, tx, q, animalID)
	if err != nil {
		return nil, err
	}
	o, err := scanObservation(row)
	if err != nil {
		return nil, scanErr(err)
	}
	return o, nil
}

// ListBetween returns observations with from <= recorded_at < to, oldest first.
func (r *observationRepo) ListBetween(ctx context.Context, tx repository.Tx, from, to time.Time) ([]*model.Observation, error) {
	q := observationSelect + ` WHERE o.recorded_at >= $1 AND o.recorded_at < $2 ORDER BY o.recorded_at, o.id;`
	return r.query(ctx, tx, q, from, to)
}

func (r *observationRepo) query(ctx context.Context, tx repository.Tx, q string, args ...interface{}) ([]*model.Observation, error) {
	rows, err := queryRows(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list observations: %w", err)
	}
	defer rows.Close()
	out := []*model.Observation{}
	for rows.Next() {
		o, err := scanObservation(rows)
		if err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func scanObservation(row pgx.Row) (*model.Observation, error) {
	var o model.Observation
	err := row.Scan(&o.ID, &o.AnimalID, &o.Behavior, &o.HealthStatus, &o.Notes, &o.Temperature, &o.Humidity,
		&o.Timestamp, &o.AudioFile, &o.Transcription, &o.JobID, &o.AnimalName, &o.AnimalSpecies)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

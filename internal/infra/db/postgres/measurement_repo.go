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

var _ repository.MeasurementRepository = (*measurementRepo)(nil)

type measurementRepo struct {
	pool *pgxpool.Pool
}

func NewMeasurementRepo(pool *pgxpool.Pool) *measurementRepo {
	return &measurementRepo{pool: pool}
}

const measurementSelect = `
SELECT m.id, m.animal_id, m.weight, m.length, m.height, m.temperature, m.recorded_at, a.name, a.species
  FROM measurements m
  JOIN animals a ON a.id = m.animal_id`

func (r *measurementRepo) Create(ctx context.Context, tx repository.Tx, m *model.Measurement) error {
	if m == nil || m.AnimalID == 0 {
		return domain.ErrInvalidArgument
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now().UTC()
	}
	const q = `
INSERT INTO measurements (animal_id, weight, length, height, temperature, recorded_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id;`
	row, err := pickRow(ctx, r.pool, tx, q, m.AnimalID, m.Weight, m.Length, m.Height, m.Temperature, m.Timestamp)
	if err != nil {
		return err
	}
	if err := row.Scan(&m.ID); err != nil {
		return fmt.Errorf("create measurement: %w", err)
	}
	return nil
}

func (r *measurementRepo) LatestByAnimal(ctx context.Context, tx repository.Tx, animalID int64) (*model.Measurement, error) {
	q := measurementSelect + ` WHERE m.animal_id = $1 ORDER BY m.recorded_at DESC, m.id DESC LIMIT 1;`
	row, err := pickRow(ctx, r.pool, tx, q, animalID)
	if err != nil {
		return nil, err
	}
	m, err := scanMeasurement(row)
	if err != nil {
		return nil, scanErr(err)
	}
	return m, nil
}

func (r *measurementRepo) ListBetween(ctx context.Context, tx repository.Tx, from, to time.Time) ([]*model.Measurement, error) {
	q := measurementSelect + ` WHERE m.recorded_at >= $1 AND m.recorded_at < $2 ORDER BY m.recorded_at, m.id;`
	rows, err := queryRows(ctx, r.pool, tx, q, from, to)
	if err != nil {
		return nil, fmt.Errorf("list measurements: %w", err)
	}
	defer rows.Close()
	out := []*model.Measurement{}
	for rows.Next() {
		m, err := scanMeasurement(rows)
		if err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func scanMeasurement(row pgx.Row) (*model.Measurement, error) {
	var m model.Measurement
	if err := row.Scan(&m.ID, &m.AnimalID, &m.Weight, &m.Length, &m.Height, &m.Temperature,
		&m.Timestamp, &m.AnimalName, &m.AnimalSpecies); err != nil {
		return nil, err
	}
	return &m, nil
}

package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"zoo-assistant/internal/domain"
	"zoo-assistant/internal/domain/model"
	"zoo-assistant/internal/domain/ports/repository"
)

var _ repository.FeedingRepository = (*feedingRepo)(nil)

type feedingRepo struct {
	pool *pgxpool.Pool
}

func NewFeedingRepo(pool *pgxpool.Pool) *feedingRepo {
	return &feedingRepo{pool: pool}
}

const feedingSelect = `
SELECT f.id, f.animal_id, f.food_type, f.quantity, f.notes, f.recorded_at, a.name, a.species
  FROM feedings f
  JOIN animals a ON a.id = f.animal_id`

func (r *feedingRepo) Create(ctx context.Context, tx repository.Tx, f *model.Feeding) error {
	if f == nil || f.AnimalID == 0 {
		return domain.ErrInvalidArgument
	}
	if strings.TrimSpace(f.FoodType) == "" {
		f.FoodType = model.UnknownValue
	}
	if f.Timestamp.IsZero() {
		f.Timestamp = time.Now().UTC()
	}
	const q = `
INSERT INTO feedings (animal_id, food_type, quantity, notes, recorded_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING id;`
	row, err := pickRow(ctx, r.pool, tx, q, f.AnimalID, f.FoodType, f.Quantity, f.Notes, f.Timestamp)
	if err != nil {
		return err
	}
	if err := row.Scan(&f.ID); err != nil {
		return fmt.Errorf("create feeding: %w", err)
	}
	return nil
}

func (r *feedingRepo) LatestByAnimal(ctx context.Context, tx repository.Tx, animalID int64) (*model.Feeding, error) {
	q := feedingSelect + ` WHERE f.animal_id = $1 ORDER BY f.recorded_at DESC, f.id DESC LIMIT 1;`
	row, err := pickRow(ctx, r.pool, tx, q, animalID)
	if err != nil {
		return nil, err
	}
	f, err := scanFeeding(row)
	if err != nil {
		return nil, scanErr(err)
	}
	return f, nil
}

func (r *feedingRepo) ListBetween(ctx context.Context, tx repository.Tx, from, to time.Time) ([]*model.Feeding, error) {
	q := feedingSelect + ` WHERE f.recorded_at >= $1 AND f.recorded_at < $2 ORDER BY f.recorded_at, f.id;`
	rows, err := queryRows(ctx, r.pool, tx, q, from, to)
	if err != nil {
		return nil, fmt.Errorf("list feedings: %w", err)
	}
	defer rows.Close()
	out := []*model.Feeding{}
	for rows.Next() {
		f, err := scanFeeding(rows)
		if err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func scanFeeding(row pgx.Row) (*model.Feeding, error) {
	var f model.Feeding
	if err := row.Scan(&f.ID, &f.AnimalID, &f.FoodType, &f.Quantity, &f.Notes,
		&f.Timestamp, &f.AnimalName, &f.AnimalSpecies); err != nil {
		return nil, err
	}
	return &f, nil
}

package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"zoo-assistant/internal/domain"
	"zoo-assistant/internal/domain/model"
	"zoo-assistant/internal/domain/ports/repository"
)

var _ repository.AnimalRepository = (*animalRepo)(nil)

type animalRepo struct {
	pool *pgxpool.Pool
}

func NewAnimalRepo(pool *pgxpool.Pool) *animalRepo {
	return &animalRepo{pool: pool}
}

// UpsertByNameSpecies inserts the animal or reuses the row that matches it
// case-insensitively. Age and enclosure are refreshed only when provided.
func (r *animalRepo) UpsertByNameSpecies(ctx context.Context, tx repository.Tx, a *model.Animal) error {
	if a == nil || a.Name == "" || a.Species == "" {
		return domain.ErrInvalidArgument
	}
	const q = `
INSERT INTO animals (name, species, age, enclosure, created_at, updated_at)
VALUES ($1, $2, $3, $4, now(), now())
ON CONFLICT ((lower(name)), (lower(species))) DO UPDATE SET
  age = COALESCE(EXCLUDED.age, animals.age),
  enclosure = COALESCE(EXCLUDED.enclosure, animals.enclosure),
  updated_at = now()
RETURNING id, name, species, age, enclosure, created_at, updated_at;`
	row, err := pickRow(ctx, r.pool, tx, q, a.Name, a.Species, a.Age, a.Enclosure)
	if err != nil {
		return err
	}
	if err := scanAnimalInto(row, a); err != nil {
		return fmt.Errorf("upsert animal: %w", err)
	}
	return nil
}

func (r *animalRepo) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.Animal, error) {
	const q = `
SELECT id, name, species, age, enclosure, created_at, updated_at
  FROM animals
 WHERE id = $1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	var a model.Animal
	if err := scanAnimalInto(row, &a); err != nil {
		return nil, scanErr(err)
	}
	return &a, nil
}

func (r *animalRepo) List(ctx context.Context, tx repository.Tx) ([]*model.Animal, error) {
	const q = `
SELECT id, name, species, age, enclosure, created_at, updated_at
  FROM animals
 ORDER BY name, species;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, fmt.Errorf("list animals: %w", err)
	}
	defer rows.Close()
	out := []*model.Animal{}
	for rows.Next() {
		var a model.Animal
		if err := scanAnimalInto(rows, &a); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

func scanAnimalInto(row pgx.Row, a *model.Animal) error {
	return row.Scan(&a.ID, &a.Name, &a.Species, &a.Age, &a.Enclosure, &a.CreatedAt, &a.UpdatedAt)
}

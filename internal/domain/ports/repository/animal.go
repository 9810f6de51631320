package repository

import (
	"context"

	"zoo-assistant/internal/domain/model"
)

type AnimalRepository interface {
	// UpsertByNameSpecies matches on lower(name), lower(species) and sets a.ID.
	UpsertByNameSpecies(ctx context.Context, tx Tx, a *model.Animal) error
	FindByID(ctx context.Context, tx Tx, id int64) (*model.Animal, error)
	List(ctx context.Context, tx Tx) ([]*model.Animal, error)
}

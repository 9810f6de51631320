package repository

import (
	"context"
	"time"

	"zoo-assistant/internal/domain/model"
)

type ObservationRepository interface {
	Create(ctx context.Context, tx Tx, o *model.Observation) error
	List(ctx context.Context, tx Tx, limit, offset int) ([]*model.Observation, error)
	ListByAnimal(ctx context.Context, tx Tx, animalID int64, limit, offset int) ([]*model.Observation, error)
	LatestByAnimal(ctx context.Context, tx Tx, animalID int64) (*model.Observation, error)
	ListBetween(ctx context.Context, tx Tx, from, to time.Time) ([]*model.Observation, error)
}

type MeasurementRepository interface {
	Create(ctx context.Context, tx Tx, m *model.Measurement) error
	LatestByAnimal(ctx context.Context, tx Tx, animalID int64) (*model.Measurement, error)
	ListBetween(ctx context.Context, tx Tx, from, to time.Time) ([]*model.Measurement, error)
}

type FeedingRepository interface {
	Create(ctx context.Context, tx Tx, f *model.Feeding) error
	LatestByAnimal(ctx context.Context, tx Tx, animalID int64) (*model.Feeding, error)
	ListBetween(ctx context.Context, tx Tx, from, to time.Time) ([]*model.Feeding, error)
}

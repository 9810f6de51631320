package usecase

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"zoo-assistant/internal/domain"
	"zoo-assistant/internal/domain/model"
	"zoo-assistant/internal/domain/ports/repository"
	"zoo-assistant/internal/infra/logging"
)

// Compile-time check
var _ AnimalUseCase = (*animalUC)(nil)

// AnimalUseCase serves the animal registry and each animal's history.
type AnimalUseCase interface {
	List(ctx context.Context) ([]*model.Animal, error)
	// Get returns the animal with its latest facts, or domain.ErrNotFound.
	Get(ctx context.Context, id int64) (*model.AnimalDetail, error)
	// Log lists an animal's observations, newest first.
	Log(ctx context.Context, id int64, limit, offset int) ([]*model.Observation, error)
	// Transcriptions lists observations across all animals, newest first.
	Transcriptions(ctx context.Context, limit, offset int) ([]*model.Observation, error)
}

type animalUC struct {
	animals      repository.AnimalRepository
	observations repository.ObservationRepository
	measurements repository.MeasurementRepository
	feedings     repository.FeedingRepository
	log          *zerolog.Logger
}

func NewAnimalUseCase(
	animals repository.AnimalRepository,
	observations repository.ObservationRepository,
	measurements repository.MeasurementRepository,
	feedings repository.FeedingRepository,
	logger *zerolog.Logger,
) *animalUC {
	return &animalUC{
		animals:      animals,
		observations: observations,
		measurements: measurements,
		feedings:     feedings,
		log:          logging.Component(logger, "AnimalUC"),
	}
}

func (u *animalUC) List(ctx context.Context) ([]*model.Animal, error) {
	defer logging.TraceDuration(u.log, "AnimalUC.List")()
	return u.animals.List(ctx, repository.NoTX)
}

func (u *animalUC) Get(ctx context.Context, id int64) (*model.AnimalDetail, error) {
	defer logging.TraceDuration(u.log, "AnimalUC.Get")()

	a, err := u.animals.FindByID(ctx, repository.NoTX, id)
	if err != nil {
		return nil, err
	}
	d := &model.AnimalDetail{Animal: a}

	if d.LatestObservation, err = u.observations.LatestByAnimal(ctx, repository.NoTX, id); noRow(err) != nil {
		return nil, err
	}
	if d.LatestMeasurement, err = u.measurements.LatestByAnimal(ctx, repository.NoTX, id); noRow(err) != nil {
		return nil, err
	}
	if d.LatestFeeding, err = u.feedings.LatestByAnimal(ctx, repository.NoTX, id); noRow(err) != nil {
		return nil, err
	}
	return d, nil
}

func (u *animalUC) Log(ctx context.Context, id int64, limit, offset int) ([]*model.Observation, error) {
	defer logging.TraceDuration(u.log, "AnimalUC.Log")()
	if err := CheckPage(limit, offset); err != nil {
		return nil, err
	}
	if _, err := u.animals.FindByID(ctx, repository.NoTX, id); err != nil {
		return nil, err
	}
	return u.observations.ListByAnimal(ctx, repository.NoTX, id, limit, offset)
}

func (u *animalUC) Transcriptions(ctx context.Context, limit, offset int) ([]*model.Observation, error) {
	defer logging.TraceDuration(u.log, "AnimalUC.Transcriptions")()
	if err := CheckPage(limit, offset); err != nil {
		return nil, err
	}
	return u.observations.List(ctx, repository.NoTX, limit, offset)
}

// noRow treats a missing latest fact as absent rather than an error.
func noRow(err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	return err
}

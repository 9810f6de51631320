package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"zoo-assistant/internal/domain/model"
	"zoo-assistant/internal/domain/ports/repository"
	"zoo-assistant/internal/infra/logging"
	"zoo-assistant/internal/infra/metrics"
)

// Compile-time check
var _ EntityConfigUseCase = (*entityConfigUC)(nil)

// EntityConfigUseCase toggles which entity types the extractor looks for.
type EntityConfigUseCase interface {
	List(ctx context.Context) ([]*model.EntityConfig, error)
	Upsert(ctx context.Context, entityType string, active bool, priority int) (*model.EntityConfig, error)
}

type entityConfigUC struct {
	configs repository.EntityConfigRepository
	log     *zerolog.Logger
}

func NewEntityConfigUseCase(configs repository.EntityConfigRepository, logger *zerolog.Logger) *entityConfigUC {
	return &entityConfigUC{
		configs: configs,
		log:     logging.Component(logger, "EntityConfigUC"),
	}
}

func (u *entityConfigUC) List(ctx context.Context) ([]*model.EntityConfig, error) {
	defer logging.TraceDuration(u.log, "EntityConfigUC.List")()
	return u.configs.List(ctx, repository.NoTX)
}

// Upsert accepts types the extractor does not know; they are stored and
// simply never match.
func (u *entityConfigUC) Upsert(ctx context.Context, entityType string, active bool, priority int) (*model.EntityConfig, error) {
	defer logging.TraceDuration(u.log, "EntityConfigUC.Upsert")()

	c, err := model.NewEntityConfig(entityType, active, priority)
	if err != nil {
		metrics.IncEntityConfigUpdate("invalid")
		return nil, err
	}
	if !model.IsKnownEntityType(c.EntityType) {
		u.log.Warn().Str("entity_type", c.EntityType).Msg("entity type has no extraction rules")
	}
	if err := u.configs.Upsert(ctx, repository.NoTX, c); err != nil {
		metrics.IncEntityConfigUpdate("error")
		return nil, err
	}
	metrics.IncEntityConfigUpdate("ok")
	u.log.Info().Str("entity_type", c.EntityType).Bool("is_active", c.IsActive).Int("priority", c.Priority).Msg("entity config saved")
	return c, nil
}

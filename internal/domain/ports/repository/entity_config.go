package repository

import (
	"context"

	"zoo-assistant/internal/domain/model"
)

type EntityConfigRepository interface {
	// List returns all configs ordered by priority, then entity type.
	List(ctx context.Context, tx Tx) ([]*model.EntityConfig, error)
	// ListActiveTypes returns the active entity types in priority order.
	ListActiveTypes(ctx context.Context, tx Tx) ([]string, error)
	Upsert(ctx context.Context, tx Tx, c *model.EntityConfig) error
}

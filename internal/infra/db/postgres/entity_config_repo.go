package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"zoo-assistant/internal/domain"
	"zoo-assistant/internal/domain/model"
	"zoo-assistant/internal/domain/ports/repository"
)

var _ repository.EntityConfigRepository = (*entityConfigRepo)(nil)

type entityConfigRepo struct {
	pool *pgxpool.Pool
}

func NewEntityConfigRepo(pool *pgxpool.Pool) *entityConfigRepo {
	return &entityConfigRepo{pool: pool}
}

func (r *entityConfigRepo) List(ctx context.Context, tx repository.Tx) ([]*model.EntityConfig, error) {
	const q = `
SELECT entity_type, is_active, priority, created_at, updated_at
  FROM entity_configs
 ORDER BY priority, entity_type;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, fmt.Errorf("list entity configs: %w", err)
	}
	defer rows.Close()
	out := []*model.EntityConfig{}
	for rows.Next() {
		var c model.EntityConfig
		if err := rows.Scan(&c.EntityType, &c.IsActive, &c.Priority, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

func (r *entityConfigRepo) ListActiveTypes(ctx context.Context, tx repository.Tx) ([]string, error) {
	cfgs, err := r.List(ctx, tx)
	if err != nil {
		return nil, err
	}
	return model.ActiveTypes(cfgs), nil
}

// Upsert creates the config or updates is_active and priority in place.
func (r *entityConfigRepo) Upsert(ctx context.Context, tx repository.Tx, c *model.EntityConfig) error {
	if c == nil || c.EntityType == "" {
		return domain.ErrInvalidArgument
	}
	const q = `
INSERT INTO entity_configs (entity_type, is_active, priority, created_at, updated_at)
VALUES ($1, $2, $3, now(), now())
ON CONFLICT (entity_type) DO UPDATE SET
  is_active = EXCLUDED.is_active,
  priority = EXCLUDED.priority,
  updated_at = now()
RETURNING created_at, updated_at;`
	row, err := pickRow(ctx, r.pool, tx, q, c.EntityType, c.IsActive, c.Priority)
	if err != nil {
		return err
	}
	if err := row.Scan(&c.CreatedAt, &c.UpdatedAt); err != nil {
		return fmt.Errorf("upsert entity config: %w", err)
	}
	return nil
}

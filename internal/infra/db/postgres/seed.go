package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"zoo-assistant/internal/domain/model"
	"zoo-assistant/internal/domain/ports/repository"
)

// DefaultAnimals is the starter roster loaded by Seed.
var DefaultAnimals = []struct {
	Name, Species, Enclosure string
	Age                      float64
}{
	{"Багира", "Тигрица", "Вольер хищников №1", 5},
	{"Змей Горыныч", "Питон", "Террариум №3", 8},
	{"Годзилла", "Игуана", "Террариум №2", 3},
	{"Тортила", "Черепаха", "Террариум №1", 80},
}

// Seed loads starter animals and enables every known entity type with its
// default priority. Existing rows keep their settings.
func Seed(ctx context.Context, pool *pgxpool.Pool) error {
	tm := NewTxManager(pool)
	animals := NewAnimalRepo(pool)
	return tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		for _, d := range DefaultAnimals {
			a := model.NewAnimal(d.Name, d.Species)
			a.Age = model.FloatPtr(d.Age)
			a.Enclosure = model.StrPtr(d.Enclosure)
			if err := animals.UpsertByNameSpecies(ctx, tx, a); err != nil {
				return fmt.Errorf("seed animal %s: %w", d.Name, err)
			}
		}
		const q = `
INSERT INTO entity_configs (entity_type, is_active, priority)
VALUES ($1, TRUE, $2)
ON CONFLICT (entity_type) DO NOTHING;`
		for i, typ := range model.KnownEntityTypes {
			if _, err := execSQL(ctx, pool, tx, q, typ, i+1); err != nil {
				return fmt.Errorf("seed entity config %s: %w", typ, err)
			}
		}
		return nil
	})
}

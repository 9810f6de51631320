package model

import (
	"strings"
	"time"

	"zoo-assistant/internal/domain"
)

// Entity type tags produced by the extractor.
const (
	EntityAnimalSpecies = "animal_species"
	EntityBehavior      = "behavior"
	EntityHealthStatus  = "health_status"
	EntityWeight        = "weight"
	EntityLength        = "length"
	EntityTemperature   = "temperature"
	EntityFood          = "food"
	EntityPerson        = "person"
	EntityLocation      = "location"
	EntityDate          = "date"
	EntityTime          = "time"
	EntityPercentage    = "percentage"
	EntityAge           = "age"
	EntityHeight        = "height"
	EntityHumidity      = "humidity"
	EntityEnclosure     = "enclosure"
)

// KnownEntityTypes lists every type the extractor can emit, in default priority order.
var KnownEntityTypes = []string{
	EntityAnimalSpecies, EntityBehavior, EntityHealthStatus,
	EntityWeight, EntityLength, EntityTemperature, EntityFood,
	EntityPerson, EntityLocation, EntityDate, EntityTime,
	EntityPercentage, EntityAge,
	EntityHeight, EntityHumidity, EntityEnclosure,
}

func IsKnownEntityType(t string) bool {
	for _, k := range KnownEntityTypes {
		if k == t {
			return true
		}
	}
	return false
}

// EntitySpan is one typed match in a transcription. Start and End are rune offsets.
type EntitySpan struct {
	Type       string   `json:"type"`
	Text       string   `json:"text"`
	Start      int      `json:"start"`
	End        int      `json:"end"`
	Value      *float64 `json:"value,omitempty"`
	Normalized string   `json:"normalized,omitempty"`
}

// EntityConfig governs which extraction rules run. Priority is a display hint only.
type EntityConfig struct {
	EntityType string
	IsActive   bool
	Priority   int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func NewEntityConfig(entityType string, active bool, priority int) (*EntityConfig, error) {
	entityType = strings.TrimSpace(entityType)
	if entityType == "" || len(entityType) > 50 {
		return nil, domain.ErrInvalidArgument
	}
	if priority < 0 {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now().UTC()
	return &EntityConfig{
		EntityType: entityType,
		IsActive:   active,
		Priority:   priority,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// ActiveTypes returns the entity types of all active configs.
func ActiveTypes(cfgs []*EntityConfig) []string {
	out := make([]string, 0, len(cfgs))
	for _, c := range cfgs {
		if c.IsActive {
			out = append(out, c.EntityType)
		}
	}
	return out
}

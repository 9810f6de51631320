package model

import (
	"strings"
	"time"
)

// UnknownValue is stored when a recording names no animal or species.
const UnknownValue = "Unknown"

// MaxIdentityLen bounds name and species, in runes, to fit the animals table.
const MaxIdentityLen = 100

type Animal struct {
	ID        int64
	Name      string
	Species   string
	Age       *float64
	Enclosure *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewAnimal trims the identity fields and substitutes UnknownValue for blanks.
func NewAnimal(name, species string) *Animal {
	name = clip(strings.TrimSpace(name), MaxIdentityLen)
	species = clip(strings.TrimSpace(species), MaxIdentityLen)
	if name == "" {
		name = UnknownValue
	}
	if species == "" {
		species = UnknownValue
	}
	return &Animal{Name: name, Species: species}
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n]))
}

// Key is the case-insensitive identity used to match animals across recordings.
func (a *Animal) Key() string {
	return strings.ToLower(a.Name) + "\x00" + strings.ToLower(a.Species)
}

// AnimalDetail is an animal with its most recent facts. Each latest entry may be nil.
type AnimalDetail struct {
	Animal            *Animal
	LatestObservation *Observation
	LatestMeasurement *Measurement
	LatestFeeding     *Feeding
}

package model

import "time"

// Observation is one processed recording about an animal. Append-only.
type Observation struct {
	ID            int64
	AnimalID      int64
	Behavior      *string
	HealthStatus  *string
	Notes         *string
	Temperature   *float64 // ambient, °C
	Humidity      *float64 // percent
	Timestamp     time.Time
	AudioFile     string
	Transcription string
	JobID         string

	// Joined from animals for list views.
	AnimalName    string
	AnimalSpecies string
}

// Measurement units are fixed by column: kilograms, meters, degrees Celsius.
type Measurement struct {
	ID          int64
	AnimalID    int64
	Weight      *float64
	Length      *float64
	Height      *float64
	Temperature *float64 // body
	Timestamp   time.Time

	AnimalName    string
	AnimalSpecies string
}

type Feeding struct {
	ID        int64
	AnimalID  int64
	FoodType  string
	Quantity  *float64 // kg
	Notes     *string
	Timestamp time.Time

	AnimalName    string
	AnimalSpecies string
}

// DailyReport collects every fact recorded on one UTC calendar day.
type DailyReport struct {
	Date         time.Time
	Observations []*Observation
	Measurements []*Measurement
	Feedings     []*Feeding
}

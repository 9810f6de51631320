package api

import (
	"time"

	"zoo-assistant/internal/domain/model"
)

type JobView struct {
	ID             string                  `json:"id"`
	Status         string                  `json:"status"`
	FileName       string                  `json:"file_name"`
	Transcription  string                  `json:"transcription,omitempty"`
	ProcessingTime *float64                `json:"processing_time,omitempty"`
	AudioDuration  *float64                `json:"audio_duration,omitempty"`
	Entities       []model.EntitySpan      `json:"entities,omitempty"`
	StructuredData *model.StructuredRecord `json:"structured_data,omitempty"`
	ErrorKind      string                  `json:"error_kind,omitempty"`
	Error          string                  `json:"error,omitempty"`
	AnimalID       *int64                  `json:"animal_id,omitempty"`
	ObservationID  *int64                  `json:"observation_id,omitempty"`
	CreatedAt      time.Time               `json:"created_at"`
	FinishedAt     *time.Time              `json:"finished_at,omitempty"`
}

func jobView(j *model.AudioJob) JobView {
	v := JobView{
		ID:            j.ID,
		Status:        string(j.Status),
		FileName:      j.FileName,
		Transcription: j.Transcription,
		ErrorKind:     string(j.ErrorKind),
		Error:         j.ErrorDetail,
		AnimalID:      j.AnimalID,
		ObservationID: j.ObservationID,
		CreatedAt:     j.CreatedAt,
		FinishedAt:    j.FinishedAt,
	}
	if j.IsTerminal() {
		pt := j.ProcessingTime
		v.ProcessingTime = &pt
	}
	if j.AudioDuration > 0 {
		d := j.AudioDuration
		v.AudioDuration = &d
	}
	if j.Status == model.AudioJobStatusCompleted {
		v.Entities = j.Entities
		if v.Entities == nil {
			v.Entities = []model.EntitySpan{}
		}
		v.StructuredData = j.StructuredData
	}
	return v
}

type SubmitView struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	FileName string `json:"file_name"`
	Error    string `json:"error,omitempty"`
}

type AnimalView struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Species   string    `json:"species"`
	Age       *float64  `json:"age"`
	Enclosure *string   `json:"enclosure"`
	CreatedAt time.Time `json:"created_at"`
}

func animalView(a *model.Animal) AnimalView {
	return AnimalView{ID: a.ID, Name: a.Name, Species: a.Species, Age: a.Age, Enclosure: a.Enclosure, CreatedAt: a.CreatedAt}
}

type AnimalDetailView struct {
	AnimalView
	LatestObservation *ObservationView `json:"latest_observation"`
	LatestMeasurement *MeasurementView `json:"latest_measurement"`
	LatestFeeding     *FeedingView     `json:"latest_feeding"`
}

type ObservationView struct {
	ID            int64     `json:"id"`
	AnimalID      int64     `json:"animal_id"`
	AnimalName    string    `json:"animal_name,omitempty"`
	AnimalSpecies string    `json:"animal_species,omitempty"`
	Behavior      *string   `json:"behavior"`
	HealthStatus  *string   `json:"health_status"`
	Notes         *string   `json:"notes"`
	Temperature   *float64  `json:"temperature"`
	Humidity      *float64  `json:"humidity"`
	Timestamp     time.Time `json:"timestamp"`
	AudioFile     string    `json:"audio_file"`
	Transcription string    `json:"transcription"`
}

func observationView(o *model.Observation) ObservationView {
	return ObservationView{
		ID: o.ID, AnimalID: o.AnimalID, AnimalName: o.AnimalName, AnimalSpecies: o.AnimalSpecies,
		Behavior: o.Behavior, HealthStatus: o.HealthStatus, Notes: o.Notes,
		Temperature: o.Temperature, Humidity: o.Humidity, Timestamp: o.Timestamp,
		AudioFile: o.AudioFile, Transcription: o.Transcription,
	}
}

func observationViews(os []*model.Observation) []ObservationView {
	out := make([]ObservationView, 0, len(os))
	for _, o := range os {
		out = append(out, observationView(o))
	}
	return out
}

type MeasurementView struct {
	ID            int64     `json:"id"`
	AnimalID      int64     `json:"animal_id"`
	AnimalName    string    `json:"animal_name,omitempty"`
	AnimalSpecies string    `json:"animal_species,omitempty"`
	Weight        *float64  `json:"weight"`
	Length        *float64  `json:"length"`
	Height        *float64  `json:"height"`
	Temperature   *float64  `json:"temperature"`
	Timestamp     time.Time `json:"timestamp"`
}

func measurementView(m *model.Measurement) MeasurementView {
	return MeasurementView{
		ID: m.ID, AnimalID: m.AnimalID, AnimalName: m.AnimalName, AnimalSpecies: m.AnimalSpecies,
		Weight: m.Weight, Length: m.Length, Height: m.Height, Temperature: m.Temperature, Timestamp: m.Timestamp,
	}
}

type FeedingView struct {
	ID            int64     `json:"id"`
	AnimalID      int64     `json:"animal_id"`
	AnimalName    string    `json:"animal_name,omitempty"`
	AnimalSpecies string    `json:"animal_species,omitempty"`
	FoodType      string    `json:"food_type"`
	Quantity      *float64  `json:"quantity"`
	Notes         *string   `json:"notes"`
	Timestamp     time.Time `json:"timestamp"`
}

func feedingView(f *model.Feeding) FeedingView {
	return FeedingView{
		ID: f.ID, AnimalID: f.AnimalID, AnimalName: f.AnimalName, AnimalSpecies: f.AnimalSpecies,
		FoodType: f.FoodType, Quantity: f.Quantity, Notes: f.Notes, Timestamp: f.Timestamp,
	}
}

func animalDetailView(d *model.AnimalDetail) AnimalDetailView {
	v := AnimalDetailView{AnimalView: animalView(d.Animal)}
	if d.LatestObservation != nil {
		o := observationView(d.LatestObservation)
		v.LatestObservation = &o
	}
	if d.LatestMeasurement != nil {
		m := measurementView(d.LatestMeasurement)
		v.LatestMeasurement = &m
	}
	if d.LatestFeeding != nil {
		f := feedingView(d.LatestFeeding)
		v.LatestFeeding = &f
	}
	return v
}

type DailyReportView struct {
	Date              string            `json:"date"`
	ObservationsCount int               `json:"observations_count"`
	MeasurementsCount int               `json:"measurements_count"`
	FeedingsCount     int               `json:"feedings_count"`
	Observations      []ObservationView `json:"observations"`
	Measurements      []MeasurementView `json:"measurements"`
	Feedings          []FeedingView     `json:"feedings"`
}

func dailyReportView(r *model.DailyReport) DailyReportView {
	v := DailyReportView{
		Date:              r.Date.Format(dateLayout),
		ObservationsCount: len(r.Observations),
		MeasurementsCount: len(r.Measurements),
		FeedingsCount:     len(r.Feedings),
		Observations:      observationViews(r.Observations),
		Measurements:      make([]MeasurementView, 0, len(r.Measurements)),
		Feedings:          make([]FeedingView, 0, len(r.Feedings)),
	}
	for _, m := range r.Measurements {
		v.Measurements = append(v.Measurements, measurementView(m))
	}
	for _, f := range r.Feedings {
		v.Feedings = append(v.Feedings, feedingView(f))
	}
	return v
}

type EntityConfigView struct {
	EntityType string    `json:"entity_type"`
	IsActive   bool      `json:"is_active"`
	Priority   int       `json:"priority"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func entityConfigView(c *model.EntityConfig) EntityConfigView {
	return EntityConfigView{EntityType: c.EntityType, IsActive: c.IsActive, Priority: c.Priority, CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt}
}

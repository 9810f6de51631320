package model

// StructuredRecord is the normalized result of one transcription.
// Missing categories are nil, never errors.
type StructuredRecord struct {
	Name            *string          `json:"name"`
	Species         *string          `json:"species"`
	Behavior        *string          `json:"behavior"`
	HealthStatus    *string          `json:"health_status"`
	Measurements    MeasurementsData `json:"measurements"`
	Feeding         FeedingData      `json:"feeding"`
	Environment     EnvironmentData  `json:"environment"`
	Enclosure       *string          `json:"enclosure,omitempty"`
	ObservationDate *string          `json:"observation_date,omitempty"`
	ObservationTime *string          `json:"observation_time,omitempty"`
}

type MeasurementsData struct {
	Weight      *float64 `json:"weight"`
	Length      *float64 `json:"length"`
	Height      *float64 `json:"height"`
	Temperature *float64 `json:"temperature"`
	Age         *float64 `json:"age"`
}

// HasAny reports whether a measurement row should be written.
// Age belongs to the animal, not to a measurement row.
func (m MeasurementsData) HasAny() bool {
	return m.Weight != nil || m.Length != nil || m.Height != nil || m.Temperature != nil
}

type FeedingData struct {
	FoodType *string  `json:"food_type"`
	Quantity *float64 `json:"quantity"`
}

func (f FeedingData) HasAny() bool {
	return f.FoodType != nil || f.Quantity != nil
}

type EnvironmentData struct {
	Temperature *float64 `json:"temperature"`
	Humidity    *float64 `json:"humidity"`
}

func (r *StructuredRecord) IsEmpty() bool {
	return r == nil || (r.Name == nil && r.Species == nil && r.Behavior == nil && r.HealthStatus == nil &&
		!r.Measurements.HasAny() && r.Measurements.Age == nil && !r.Feeding.HasAny() &&
		r.Environment.Temperature == nil && r.Environment.Humidity == nil && r.Enclosure == nil)
}

// StrPtr and FloatPtr are small helpers for optional fields.
func StrPtr(s string) *string     { return &s }
func FloatPtr(f float64) *float64 { return &f }
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

package adapter

import (
	"context"
	"time"
)

// Segment is one recognized word with timing and confidence when the provider reports them.
type Segment struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Conf  float64 `json:"conf"`
}

type Transcript struct {
	Text          string
	Segments      []Segment
	AudioDuration time.Duration
	Provider      string
}

// Transcriber is the port for speech-to-text backends.
type Transcriber interface {
	// Transcribe converts the audio file at path into text.
	Transcribe(ctx context.Context, path string) (Transcript, error)

	// NeedsPCM reports whether input must be 16 kHz mono PCM16 WAV before Transcribe.
	NeedsPCM() bool

	Name() string
}

package transcribe

import (
	"context"
	"sync/atomic"
	"time"

	"zoo-assistant/internal/domain/ports/adapter"
)

var _ adapter.Transcriber = (*FakeTranscriber)(nil)

// FakeTranscriber returns a fixed text. Used for local runs without a model
// or API key, and by tests.
type FakeTranscriber struct {
	Text  string
	Delay time.Duration
	Err   error
	PCM   bool

	calls atomic.Int64
}

func NewFakeTranscriber(text string) *FakeTranscriber {
	return &FakeTranscriber{Text: text}
}

func (f *FakeTranscriber) Name() string   { return "fake" }
func (f *FakeTranscriber) NeedsPCM() bool { return f.PCM }
func (f *FakeTranscriber) Calls() int64   { return f.calls.Load() }

func (f *FakeTranscriber) Transcribe(ctx context.Context, path string) (adapter.Transcript, error) {
	f.calls.Add(1)
	if f.Delay > 0 {
		select {
		case <-time.After(f.Delay):
		case <-ctx.Done():
			return adapter.Transcript{}, ctx.Err()
		}
	}
	if f.Err != nil {
		return adapter.Transcript{}, f.Err
	}
	return adapter.Transcript{Text: f.Text, Provider: f.Name()}, nil
}

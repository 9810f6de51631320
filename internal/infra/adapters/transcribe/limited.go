package transcribe

import (
	"context"

	"zoo-assistant/internal/domain/ports/adapter"
)

var _ adapter.Transcriber = (*limitedTranscriber)(nil)

type limitedTranscriber struct {
	inner adapter.Transcriber
	sem   chan struct{}
}

// NewLimited caps concurrent Transcribe calls. maxConcurrent <= 0 means no cap.
func NewLimited(inner adapter.Transcriber, maxConcurrent int) adapter.Transcriber {
	if maxConcurrent <= 0 {
		return inner
	}
	return &limitedTranscriber{
		inner: inner,
		sem:   make(chan struct{}, maxConcurrent),
	}
}

func (l *limitedTranscriber) Name() string   { return l.inner.Name() }
func (l *limitedTranscriber) NeedsPCM() bool { return l.inner.NeedsPCM() }

func (l *limitedTranscriber) Transcribe(ctx context.Context, path string) (adapter.Transcript, error) {
	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		return adapter.Transcript{}, ctx.Err()
	}
	defer func() { <-l.sem }()
	return l.inner.Transcribe(ctx, path)
}

func (l *limitedTranscriber) Close() { Close(l.inner) }

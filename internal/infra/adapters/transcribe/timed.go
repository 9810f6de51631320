package transcribe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"zoo-assistant/internal/domain/ports/adapter"
	"zoo-assistant/internal/infra/metrics"
)

var _ adapter.Transcriber = (*timedTranscriber)(nil)

type timedTranscriber struct {
	inner   adapter.Transcriber
	timeout time.Duration
}

// NewTimed bounds each call by timeout and records call outcomes.
func NewTimed(inner adapter.Transcriber, timeout time.Duration) adapter.Transcriber {
	return &timedTranscriber{inner: inner, timeout: timeout}
}

func (t *timedTranscriber) Name() string   { return t.inner.Name() }
func (t *timedTranscriber) NeedsPCM() bool { return t.inner.NeedsPCM() }

func (t *timedTranscriber) Transcribe(ctx context.Context, path string) (adapter.Transcript, error) {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}
	tr, err := t.inner.Transcribe(ctx, path)
	metrics.IncTranscriberCall(t.inner.Name(), err == nil)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return adapter.Transcript{}, fmt.Errorf("%s: no result within %s: %w", t.inner.Name(), t.timeout, err)
		}
		return adapter.Transcript{}, err
	}
	if tr.Provider == "" {
		tr.Provider = t.inner.Name()
	}
	return tr, nil
}

func (t *timedTranscriber) Close() { Close(t.inner) }

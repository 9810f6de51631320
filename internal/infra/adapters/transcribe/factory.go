// Package transcribe holds the speech-to-text backends.
package transcribe

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v2/option"
	"github.com/rs/zerolog"

	"zoo-assistant/internal/config"
	"zoo-assistant/internal/domain/ports/adapter"
)

// New builds the configured backend wrapped with the concurrency cap and timeout.
func New(ctx context.Context, cfg config.TranscriptionConfig, logger *zerolog.Logger) (adapter.Transcriber, error) {
	var (
		inner adapter.Transcriber
		err   error
	)
	switch strings.ToLower(cfg.Provider) {
	case "vosk":
		inner, err = NewVoskTranscriber(cfg.ModelPath)
	case "openai":
		inner, err = NewOpenAITranscriber(cfg.OpenAIKey, cfg.OpenAIModel, cfg.Language, option.WithRequestTimeout(cfg.Timeout))
	case "gemini":
		inner, err = NewGeminiTranscriber(ctx, cfg.GeminiKey, cfg.GeminiURL, cfg.GeminiModel)
	case "fake":
		inner = NewFakeTranscriber(cfg.FakeText)
	default:
		return nil, fmt.Errorf("unknown transcription provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("init %s transcriber: %w", cfg.Provider, err)
	}
	logger.Info().
		Str("provider", inner.Name()).
		Bool("needs_pcm", inner.NeedsPCM()).
		Int("concurrent_limit", cfg.ConcurrentLimit).
		Dur("timeout", cfg.Timeout).
		Msg("transcriber ready")
	return Wrap(inner, cfg.ConcurrentLimit, cfg.Timeout), nil
}

// Wrap caps concurrency around a per-call deadline. The deadline starts once
// a slot is held, so waiting behind other calls does not eat into it.
func Wrap(inner adapter.Transcriber, limit int, timeout time.Duration) adapter.Transcriber {
	return NewLimited(NewTimed(inner, timeout), limit)
}

// Close releases backend resources such as a loaded vosk model. Backends
// without any are left alone.
func Close(t adapter.Transcriber) {
	if c, ok := t.(interface{ Close() }); ok {
		c.Close()
	}
}

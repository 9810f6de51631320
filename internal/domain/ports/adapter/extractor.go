package adapter

import (
	"context"

	"zoo-assistant/internal/domain/model"
)

// EntityExtractor finds typed entity spans in a transcription.
// Only types listed in activeTypes are attempted.
type EntityExtractor interface {
	Extract(ctx context.Context, text string, activeTypes []string) ([]model.EntitySpan, error)
}

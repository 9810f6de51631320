//go:build !vosk

package transcribe

import (
	"errors"

	"zoo-assistant/internal/domain/ports/adapter"
)

// ErrVoskUnavailable is returned when the binary was built without the vosk tag.
var ErrVoskUnavailable = errors.New("vosk support not compiled in; rebuild with -tags vosk")

func NewVoskTranscriber(modelPath string) (adapter.Transcriber, error) {
	return nil, ErrVoskUnavailable
}

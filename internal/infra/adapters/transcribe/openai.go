package transcribe

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"zoo-assistant/internal/domain/ports/adapter"
)

var _ adapter.Transcriber = (*OpenAITranscriber)(nil)

// OpenAITranscriber sends the original upload to the Whisper transcription endpoint.
type OpenAITranscriber struct {
	client   openai.Client
	model    string
	language string
}

func NewOpenAITranscriber(apiKey, model, language string, opts ...option.RequestOption) (*OpenAITranscriber, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key empty")
	}
	if model == "" {
		model = string(openai.AudioModelWhisper1)
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(1)}, opts...)
	return &OpenAITranscriber{
		client:   openai.NewClient(opts...),
		model:    model,
		language: language,
	}, nil
}

func (o *OpenAITranscriber) Name() string   { return "openai" }
func (o *OpenAITranscriber) NeedsPCM() bool { return false }

func (o *OpenAITranscriber) Transcribe(ctx context.Context, path string) (adapter.Transcript, error) {
	f, err := os.Open(path)
	if err != nil {
		return adapter.Transcript{}, err
	}
	defer f.Close()

	params := openai.AudioTranscriptionNewParams{
		File:  openai.File(f, filepath.Base(path), contentType(path)),
		Model: openai.AudioModel(o.model),
	}
	if o.language != "" {
		params.Language = openai.String(o.language)
	}
	res, err := o.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return adapter.Transcript{}, fmt.Errorf("openai transcription: %w", err)
	}
	return adapter.Transcript{Text: strings.TrimSpace(res.Text), Provider: o.Name()}, nil
}

func contentType(path string) string {
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

package transcribe

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"google.golang.org/genai"

	"zoo-assistant/internal/domain/ports/adapter"
)

var _ adapter.Transcriber = (*GeminiTranscriber)(nil)

const geminiPrompt = "Transcribe this audio recording verbatim in its original language. " +
	"Write numbers as digits. Return only the transcription text, nothing else."

// GeminiTranscriber sends the audio inline to a multimodal Gemini model.
type GeminiTranscriber struct {
	client *genai.Client
	model  string
}

func NewGeminiTranscriber(ctx context.Context, apiKey, baseURL, model string) (*GeminiTranscriber, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: empty api key")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: baseURL,
		},
	})
	if err != nil {
		return nil, err
	}
	return &GeminiTranscriber{client: c, model: model}, nil
}

func (g *GeminiTranscriber) Name() string   { return "gemini" }
func (g *GeminiTranscriber) NeedsPCM() bool { return false }

func (g *GeminiTranscriber) Transcribe(ctx context.Context, path string) (adapter.Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return adapter.Transcript{}, err
	}
	parts := []*genai.Part{
		genai.NewPartFromText(geminiPrompt),
		genai.NewPartFromBytes(data, mimetype.Detect(data).String()),
	}
	temp := float32(0)
	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)},
		&genai.GenerateContentConfig{Temperature: &temp},
	)
	if err != nil {
		return adapter.Transcript{}, fmt.Errorf("gemini transcription: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return adapter.Transcript{}, errors.New("gemini returned an empty transcription")
	}
	return adapter.Transcript{Text: text, Provider: g.Name()}, nil
}

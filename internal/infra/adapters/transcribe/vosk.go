//go:build vosk

package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	vosk "github.com/alphacep/vosk-api/go"

	"zoo-assistant/internal/domain/ports/adapter"
	"zoo-assistant/internal/infra/audio"
)

var _ adapter.Transcriber = (*VoskTranscriber)(nil)

const voskSampleRate = 16000.0

// chunk fed to AcceptWaveform; 0.25 s of 16 kHz PCM16
const voskChunk = 8000

// VoskTranscriber runs an offline Vosk model. The model is shared; every call
// gets its own recognizer, so calls run in parallel up to the configured limit.
type VoskTranscriber struct {
	mu    sync.RWMutex
	model *vosk.VoskModel
}

type voskResult struct {
	Text   string `json:"text"`
	Result []struct {
		Word  string  `json:"word"`
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Conf  float64 `json:"conf"`
	} `json:"result"`
}

func NewVoskTranscriber(modelPath string) (*VoskTranscriber, error) {
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("vosk model not found at %s: %w", modelPath, err)
	}
	model, err := vosk.NewModel(modelPath)
	if err != nil {
		return nil, fmt.Errorf("load vosk model: %w", err)
	}
	return &VoskTranscriber{model: model}, nil
}

func (v *VoskTranscriber) Name() string   { return "vosk" }
func (v *VoskTranscriber) NeedsPCM() bool { return true }

func (v *VoskTranscriber) Transcribe(ctx context.Context, path string) (adapter.Transcript, error) {
	pcm, info, err := audio.ReadPCM(path)
	if err != nil {
		return adapter.Transcript{}, err
	}
	if !info.IsPCM16Mono16k() {
		return adapter.Transcript{}, fmt.Errorf("vosk needs 16 kHz mono PCM16, got %d Hz %d ch %d bit",
			info.SampleRate, info.Channels, info.BitDepth)
	}

	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.model == nil {
		return adapter.Transcript{}, fmt.Errorf("vosk model closed")
	}
	rec, err := vosk.NewRecognizer(v.model, voskSampleRate)
	if err != nil {
		return adapter.Transcript{}, fmt.Errorf("vosk recognizer: %w", err)
	}
	defer rec.Free()
	rec.SetWords(1)

	var texts []string
	var segments []adapter.Segment
	collect := func(js string) error {
		var r voskResult
		if err := json.Unmarshal([]byte(js), &r); err != nil {
			return err
		}
		if t := strings.TrimSpace(r.Text); t != "" {
			texts = append(texts, t)
		}
		for _, w := range r.Result {
			segments = append(segments, adapter.Segment{Word: w.Word, Start: w.Start, End: w.End, Conf: w.Conf})
		}
		return nil
	}

	for off := 0; off < len(pcm); off += voskChunk {
		if err := ctx.Err(); err != nil {
			return adapter.Transcript{}, err
		}
		end := off + voskChunk
		if end > len(pcm) {
			end = len(pcm)
		}
		if rec.AcceptWaveform(pcm[off:end]) != 0 {
			if err := collect(rec.Result()); err != nil {
				return adapter.Transcript{}, err
			}
		}
	}
	if err := collect(rec.FinalResult()); err != nil {
		return adapter.Transcript{}, err
	}
	return adapter.Transcript{
		Text:          strings.Join(texts, " "),
		Segments:      segments,
		AudioDuration: info.Duration,
		Provider:      v.Name(),
	}, nil
}

func (v *VoskTranscriber) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.model != nil {
		v.model.Free()
		v.model = nil
	}
}

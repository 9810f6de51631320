// Package audio prepares uploaded recordings for speech recognition.
package audio

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Converter turns any ffmpeg-readable file into 16 kHz mono PCM16 WAV.
type Converter struct {
	bin string
}

func NewConverter(ffmpegPath string) *Converter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &Converter{bin: ffmpegPath}
}

// ToPCM16 writes <dir>/<base>_16k.wav and returns its path. The caller owns the file.
func (c *Converter) ToPCM16(ctx context.Context, src, dir string) (string, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	out := filepath.Join(dir, base+"_16k.wav")

	// ffmpeg -y -i input -acodec pcm_s16le -ar 16000 -ac 1 output
	cmd := exec.CommandContext(ctx, c.bin,
		"-y", "-i", src,
		"-acodec", "pcm_s16le",
		"-ar", "16000",
		"-ac", "1",
		out,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		_ = os.Remove(out)
		return "", fmt.Errorf("ffmpeg: %w: %s", err, lastLine(stderr.String()))
	}
	return out, nil
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}

package audio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-audio/wav"
)

// WavInfo describes a decoded WAV header.
type WavInfo struct {
	SampleRate int
	Channels   int
	BitDepth   int
	Duration   time.Duration
}

// IsPCM16Mono16k reports whether the file can be fed to a 16 kHz recognizer as is.
func (i WavInfo) IsPCM16Mono16k() bool {
	return i.SampleRate == 16000 && i.Channels == 1 && i.BitDepth == 16
}

var ErrNotWav = errors.New("not a valid wav file")

// InspectWav reads the header of the WAV file at path.
func InspectWav(path string) (WavInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return WavInfo{}, err
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		return WavInfo{}, ErrNotWav
	}
	dur, err := d.Duration()
	if err != nil {
		return WavInfo{}, fmt.Errorf("wav duration: %w", err)
	}
	return WavInfo{
		SampleRate: int(d.SampleRate),
		Channels:   int(d.NumChans),
		BitDepth:   int(d.BitDepth),
		Duration:   dur,
	}, nil
}

// ReadPCM returns the raw sample bytes of a PCM WAV file together with its header info.
func ReadPCM(path string) ([]byte, WavInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, WavInfo{}, err
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		return nil, WavInfo{}, ErrNotWav
	}
	if err := d.FwdToPCM(); err != nil {
		return nil, WavInfo{}, fmt.Errorf("wav data chunk: %w", err)
	}
	info := WavInfo{
		SampleRate: int(d.SampleRate),
		Channels:   int(d.NumChans),
		BitDepth:   int(d.BitDepth),
	}
	pcm, err := io.ReadAll(io.LimitReader(d.PCMChunk, int64(d.PCMChunk.Size)))
	if err != nil {
		return nil, WavInfo{}, fmt.Errorf("read pcm: %w", err)
	}
	if bps := info.SampleRate * info.Channels * info.BitDepth / 8; bps > 0 {
		info.Duration = time.Duration(float64(len(pcm)) / float64(bps) * float64(time.Second))
	}
	return pcm, info, nil
}

//go:build !integration

package audio

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeWav writes a PCM16 WAV with `samples` zero samples per channel.
func writeWav(t *testing.T, dir string, rate, channels, samples int) string {
	t.Helper()
	dataLen := samples * channels * 2
	b := make([]byte, 44+dataLen)
	copy(b[0:], "RIFF")
	binary.LittleEndian.PutUint32(b[4:], uint32(36+dataLen))
	copy(b[8:], "WAVE")
	copy(b[12:], "fmt ")
	binary.LittleEndian.PutUint32(b[16:], 16)
	binary.LittleEndian.PutUint16(b[20:], 1)
	binary.LittleEndian.PutUint16(b[22:], uint16(channels))
	binary.LittleEndian.PutUint32(b[24:], uint32(rate))
	binary.LittleEndian.PutUint32(b[28:], uint32(rate*channels*2))
	binary.LittleEndian.PutUint16(b[32:], uint16(channels*2))
	binary.LittleEndian.PutUint16(b[34:], 16)
	copy(b[36:], "data")
	binary.LittleEndian.PutUint32(b[40:], uint32(dataLen))

	p := filepath.Join(dir, "rec.wav")
	require.NoError(t, os.WriteFile(p, b, 0o644))
	return p
}

func TestInspectWav(t *testing.T) {
	p := writeWav(t, t.TempDir(), 16000, 1, 32000)

	info, err := InspectWav(p)
	require.NoError(t, err)
	assert.Equal(t, 16000, info.SampleRate)
	assert.Equal(t, 1, info.Channels)
	assert.Equal(t, 16, info.BitDepth)
	assert.True(t, info.IsPCM16Mono16k())
	assert.InDelta(t, 2*time.Second, info.Duration, float64(50*time.Millisecond))
}

func TestInspectWav_Stereo44k(t *testing.T) {
	p := writeWav(t, t.TempDir(), 44100, 2, 4410)
	info, err := InspectWav(p)
	require.NoError(t, err)
	assert.False(t, info.IsPCM16Mono16k())
}

func TestInspectWav_NotWav(t *testing.T) {
	p := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(p, []byte("тигрица спит"), 0o644))
	_, err := InspectWav(p)
	assert.ErrorIs(t, err, ErrNotWav)
}

func TestReadPCM(t *testing.T) {
	p := writeWav(t, t.TempDir(), 16000, 1, 1600)
	pcm, info, err := ReadPCM(p)
	require.NoError(t, err)
	assert.Len(t, pcm, 3200)
	assert.InDelta(t, 100*time.Millisecond, info.Duration, float64(time.Millisecond))
}

func TestDetectMime(t *testing.T) {
	dir := t.TempDir()
	wav := writeWav(t, dir, 16000, 1, 160)
	m, err := DetectMime(wav)
	require.NoError(t, err)
	assert.Equal(t, "audio/wav", m)

	// the extension lies, the content decides
	fake := filepath.Join(dir, "fake.mp3")
	require.NoError(t, os.WriteFile(fake, []byte("just some text, not audio"), 0o644))
	m, err = DetectMime(fake)
	require.NoError(t, err)
	assert.NotContains(t, m, "audio/")
}

func TestAllowed(t *testing.T) {
	allow := []string{"audio/x-wav", "audio/mpeg"}
	assert.True(t, Allowed("audio/wav", allow), "alias of an allowed type")
	assert.True(t, Allowed("audio/mpeg", allow))
	assert.False(t, Allowed("text/plain; charset=utf-8", allow))
	assert.False(t, Allowed("audio/wav", nil))
}

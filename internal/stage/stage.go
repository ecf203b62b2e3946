// Package stage writes an extracted audio segment to a temporary WAV file
// so the output device can load it as a short standalone clip. A Handle is
// owned by exactly one playback session and must be removed on every exit
// path; Sweep clears leftovers from a crashed process.
package stage

import (
	"fmt"
	"os"
	"path/filepath"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cbegin/segloop-go/internal/pcm"
)

const tempPattern = "segloop-*.wav"

// Handle is an ephemeral staged clip backed by a temp file.
type Handle struct {
	path    string
	removed bool
}

// New encodes the segment to a 16-bit PCM WAV temp file.
func New(seg *pcm.Buffer) (*Handle, error) {
	f, err := os.CreateTemp("", tempPattern)
	if err != nil {
		return nil, fmt.Errorf("stage: %w", err)
	}
	h := &Handle{path: f.Name()}
	if err := encodeWAV(f, seg); err != nil {
		f.Close()
		_ = h.Remove()
		return nil, fmt.Errorf("stage %s: %w", filepath.Base(h.path), err)
	}
	if err := f.Close(); err != nil {
		_ = h.Remove()
		return nil, fmt.Errorf("stage %s: %w", filepath.Base(h.path), err)
	}
	return h, nil
}

func encodeWAV(f *os.File, seg *pcm.Buffer) error {
	enc := wav.NewEncoder(f, seg.SampleRate, 16, seg.Channels, 1)
	data := make([]int, len(seg.Samples))
	for i, s := range seg.Samples {
		if s > 1 {
			s = 1
		}
		if s < -1 {
			s = -1
		}
		data[i] = int(s * 32767)
	}
	err := enc.Write(&goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: seg.Channels, SampleRate: seg.SampleRate},
		Data:           data,
		SourceBitDepth: 16,
	})
	if err != nil {
		return err
	}
	return enc.Close()
}

// Path returns the staged file location.
func (h *Handle) Path() string { return h.path }

// Remove deletes the staged file. Safe to call more than once.
func (h *Handle) Remove() error {
	if h.removed {
		return nil
	}
	h.removed = true
	if err := os.Remove(h.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Sweep removes stray staged clips under dir, best effort. Pass
// os.TempDir() to clear what a crashed process left behind.
func Sweep(dir string) {
	matches, err := filepath.Glob(filepath.Join(dir, tempPattern))
	if err != nil {
		return
	}
	for _, m := range matches {
		_ = os.Remove(m)
	}
}

// Package decode turns audio files into pcm.Buffer values. Decoders are
// looked up by lowercase file extension; wav, mp3 and ogg are registered
// by default.
package decode

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cbegin/segloop-go/internal/pcm"
)

var ErrUnknownFormat = errors.New("unknown audio format")

// Decoder reads a complete audio stream into a decoded buffer.
type Decoder interface {
	Decode(r io.ReadSeeker) (*pcm.Buffer, error)
}

var (
	registryMu sync.Mutex
	registry   = map[string]Decoder{
		"wav": wavDecoder{},
		"mp3": mp3Decoder{},
		"ogg": vorbisDecoder{},
	}
)

// Register installs a decoder for the given extension (without dot),
// replacing any existing one.
func Register(ext string, d Decoder) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[strings.ToLower(ext)] = d
}

func lookup(ext string) (Decoder, bool) {
	registryMu.Lock()
	defer registryMu.Unlock()
	d, ok := registry[strings.ToLower(ext)]
	return d, ok
}

// Decode opens and fully decodes the audio file at path. The format is
// chosen by file extension.
func Decode(path string) (*pcm.Buffer, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	d, ok := lookup(ext)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	buf, err := d.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return buf, nil
}

// Extensions returns the registered extensions, for file pickers.
func Extensions() []string {
	registryMu.Lock()
	defer registryMu.Unlock()
	out := make([]string, 0, len(registry))
	for ext := range registry {
		out = append(out, ext)
	}
	return out
}

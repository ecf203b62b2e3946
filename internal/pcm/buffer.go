package pcm

import (
	"errors"
	"fmt"
)

// ErrRange is returned when a requested time range falls outside the buffer.
var ErrRange = errors.New("range outside buffer bounds")

// Buffer holds decoded audio as interleaved float32 samples in [-1, 1].
// A Buffer is immutable after decode; it is shared read-only between the
// waveform display and the playback session.
type Buffer struct {
	Samples    []float32
	SampleRate int
	Channels   int
}

// Frames returns the number of sample frames (samples per channel).
func (b *Buffer) Frames() int {
	if b.Channels == 0 {
		return 0
	}
	return len(b.Samples) / b.Channels
}

// Duration returns the buffer length in seconds.
func (b *Buffer) Duration() float64 {
	if b.SampleRate == 0 {
		return 0
	}
	return float64(b.Frames()) / float64(b.SampleRate)
}

// ExtractRange returns the sub-buffer covering [startSec, endSec). The
// returned buffer shares the underlying sample slice; callers must treat
// it as read-only. Bounds are frame-truncated from seconds.
func (b *Buffer) ExtractRange(startSec, endSec float64) (*Buffer, error) {
	if startSec < 0 || endSec > b.Duration() || startSec >= endSec {
		return nil, fmt.Errorf("%w: [%.2f, %.2f) of %.2fs", ErrRange, startSec, endSec, b.Duration())
	}
	startFrame := int(startSec * float64(b.SampleRate))
	endFrame := int(endSec * float64(b.SampleRate))
	if endFrame > b.Frames() {
		endFrame = b.Frames()
	}
	if endFrame <= startFrame {
		endFrame = startFrame + 1
	}
	return &Buffer{
		Samples:    b.Samples[startFrame*b.Channels : endFrame*b.Channels],
		SampleRate: b.SampleRate,
		Channels:   b.Channels,
	}, nil
}

// MonoPeaks downmixes the buffer to mono and reduces it to per-column
// min/max pairs for waveform rendering. columns is typically the pixel
// width of the display panel.
func (b *Buffer) MonoPeaks(columns int) [][2]float32 {
	frames := b.Frames()
	if columns < 1 || frames == 0 {
		return nil
	}
	if columns > frames {
		columns = frames
	}
	out := make([][2]float32, columns)
	for col := 0; col < columns; col++ {
		lo := col * frames / columns
		hi := (col + 1) * frames / columns
		if hi <= lo {
			hi = lo + 1
		}
		mn, mx := float32(1), float32(-1)
		for f := lo; f < hi; f++ {
			var mono float32
			base := f * b.Channels
			for c := 0; c < b.Channels; c++ {
				mono += b.Samples[base+c]
			}
			mono /= float32(b.Channels)
			if mono < mn {
				mn = mono
			}
			if mono > mx {
				mx = mono
			}
		}
		if mn > mx {
			mn, mx = 0, 0
		}
		out[col] = [2]float32{mn, mx}
	}
	return out
}

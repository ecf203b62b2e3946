package decode

import (
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"

	"github.com/cbegin/segloop-go/internal/pcm"
)

type mp3Decoder struct{}

func (mp3Decoder) Decode(r io.ReadSeeker) (*pcm.Buffer, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, err
	}
	// go-mp3 always emits 16-bit little-endian stereo.
	var samples []float32
	buf := make([]byte, 16384)
	for {
		n, err := dec.Read(buf)
		for i := 0; i+1 < n; i += 2 {
			v := int16(uint16(buf[i]) | uint16(buf[i+1])<<8)
			samples = append(samples, float32(v)/32768)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	return &pcm.Buffer{
		Samples:    samples,
		SampleRate: dec.SampleRate(),
		Channels:   2,
	}, nil
}

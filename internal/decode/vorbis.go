package decode

import (
	"io"

	"github.com/jfreymuth/oggvorbis"

	"github.com/cbegin/segloop-go/internal/pcm"
)

type vorbisDecoder struct{}

func (vorbisDecoder) Decode(r io.ReadSeeker) (*pcm.Buffer, error) {
	samples, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return &pcm.Buffer{
		Samples:    samples,
		SampleRate: format.SampleRate,
		Channels:   format.Channels,
	}, nil
}

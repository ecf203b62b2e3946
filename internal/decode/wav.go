package decode

import (
	"errors"
	"io"

	"github.com/go-audio/wav"

	"github.com/cbegin/segloop-go/internal/pcm"
)

type wavDecoder struct{}

func (wavDecoder) Decode(r io.ReadSeeker) (*pcm.Buffer, error) {
	dec := wav.NewDecoder(r)
	ib, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, err
	}
	if ib.Format == nil || ib.Format.NumChannels == 0 || ib.Format.SampleRate == 0 {
		return nil, errors.New("wav: missing format chunk")
	}
	depth := ib.SourceBitDepth
	if depth == 0 {
		depth = 16
	}
	scale := float32(int64(1) << (depth - 1))
	samples := make([]float32, len(ib.Data))
	for i, v := range ib.Data {
		samples[i] = float32(v) / scale
	}
	return &pcm.Buffer{
		Samples:    samples,
		SampleRate: ib.Format.SampleRate,
		Channels:   ib.Format.NumChannels,
	}, nil
}

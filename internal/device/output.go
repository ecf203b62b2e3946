// Package device drives the audio output for staged segment clips. It
// wraps the process-wide ebiten audio context; the context is created
// once and pinned to a single sample rate.
package device

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/go-audio/wav"
	ebitaudio "github.com/hajimehoshi/ebiten/v2/audio"
)

var (
	context     *ebitaudio.Context
	contextRate int
)

func sharedContext(sampleRate int) (*ebitaudio.Context, error) {
	if context == nil {
		context = ebitaudio.NewContext(sampleRate)
		contextRate = sampleRate
	}
	if contextRate != sampleRate {
		return nil, fmt.Errorf("audio context already initialized at %d Hz (requested %d Hz)", contextRate, sampleRate)
	}
	return context, nil
}

// Output is the exclusive audio output handle. One clip is loaded at a
// time; Play starts it from the beginning.
type Output struct {
	ctx    *ebitaudio.Context
	pcm    []byte // staged clip as float32 LE stereo at the context rate
	player *ebitaudio.Player
}

func New() *Output { return &Output{} }

// Init binds the output to the shared audio context. Re-initializing at
// the same rate is a no-op; a different rate is rejected because the
// context is process-global.
func (o *Output) Init(sampleRate int) error {
	ctx, err := sharedContext(sampleRate)
	if err != nil {
		return err
	}
	o.ctx = ctx
	return nil
}

// Load decodes the staged WAV clip at path and holds it in memory ready
// for Play. Mono clips are widened to stereo.
func (o *Output) Load(path string) error {
	if o.ctx == nil {
		return errors.New("device not initialized")
	}
	pcm, err := decodeClip(path)
	if err != nil {
		return err
	}
	o.pcm = pcm
	return nil
}

// decodeClip reads a WAV clip into float32 LE stereo bytes.
func decodeClip(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	ib, err := wav.NewDecoder(f).FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("load clip: %w", err)
	}
	if ib.Format == nil || ib.Format.NumChannels == 0 || ib.Format.SampleRate == 0 {
		return nil, errors.New("load clip: missing format chunk")
	}
	depth := ib.SourceBitDepth
	if depth == 0 {
		depth = 16
	}
	scale := float32(int64(1) << (depth - 1))
	channels := ib.Format.NumChannels
	frames := len(ib.Data) / channels

	buf := make([]byte, frames*8)
	for fi := 0; fi < frames; fi++ {
		var left, right float32
		if channels == 1 {
			left = float32(ib.Data[fi]) / scale
			right = left
		} else {
			left = float32(ib.Data[fi*channels]) / scale
			right = float32(ib.Data[fi*channels+1]) / scale
		}
		binary.LittleEndian.PutUint32(buf[fi*8:], math.Float32bits(left))
		binary.LittleEndian.PutUint32(buf[fi*8+4:], math.Float32bits(right))
	}
	return buf, nil
}

// Play restarts the loaded clip. A fresh backend player is built per
// play so each repetition starts from the top.
func (o *Output) Play() error {
	if o.pcm == nil {
		return errors.New("no clip loaded")
	}
	_ = o.Stop()
	p, err := o.ctx.NewPlayerF32(bytes.NewReader(o.pcm))
	if err != nil {
		return err
	}
	o.player = p
	p.Play()
	return nil
}

// Stop halts the current playback, if any.
func (o *Output) Stop() error {
	if o.player == nil {
		return nil
	}
	o.player.Pause()
	err := o.player.Close()
	o.player = nil
	return err
}

// Unload stops playback and drops the staged clip.
func (o *Output) Unload() error {
	err := o.Stop()
	o.pcm = nil
	return err
}

// IsBusy reports whether the clip is still audibly playing.
func (o *Output) IsBusy() bool {
	return o.player != nil && o.player.IsPlaying()
}

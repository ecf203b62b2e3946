// Package segloop is a practice looper for musicians: select a time
// segment of a decoded audio recording and play it back N times. The
// session drives a cooperative single-threaded loop, interleaving short
// sleeps with UI event pumping so the cancel key stays responsive while
// a clip repeats.
package segloop

import (
	"errors"
	"fmt"
	"time"

	"github.com/cbegin/segloop-go/internal/decode"
	"github.com/cbegin/segloop-go/internal/pcm"
	"github.com/cbegin/segloop-go/internal/stage"
)

// Device is the external audio output collaborator. It is an exclusive
// resource: one clip loaded at a time, owned by the active session.
type Device interface {
	Init(sampleRate int) error
	Load(path string) error
	Play() error
	Stop() error
	Unload() error
	IsBusy() bool
}

// Handle is an ephemeral staged segment clip. It must be removed on
// every exit path of a session.
type Handle interface {
	Path() string
	Remove() error
}

// Stager exports an extracted segment for the device to load.
type Stager interface {
	Stage(seg *pcm.Buffer) (Handle, error)
}

type tempStager struct{}

func (tempStager) Stage(seg *pcm.Buffer) (Handle, error) { return stage.New(seg) }

// Request describes one playback run over [Start, End) seconds,
// repeated Repeat times.
type Request struct {
	Start  float64
	End    float64
	Repeat int
}

// Duration returns the segment length in seconds.
func (r Request) Duration() float64 { return r.End - r.Start }

// State is the session's resting state. Terminal outcomes are reported
// as a Result; the session itself always returns to StateIdle.
type State int

const (
	StateIdle State = iota
	StatePreparing
	StatePlaying
)

// Result of the most recently finished run.
type Result int

const (
	ResultNone Result = iota
	ResultCompleted
	ResultCancelled
	ResultFailed
)

func (r Result) String() string {
	switch r {
	case ResultCompleted:
		return "completed"
	case ResultCancelled:
		return "cancelled"
	case ResultFailed:
		return "failed"
	default:
		return "none"
	}
}

const defaultTick = 10 * time.Millisecond

type SessionOption func(*Session)

// WithTick overrides the poll interval of the repetition loop.
func WithTick(d time.Duration) SessionOption {
	return func(s *Session) {
		if d > 0 {
			s.tick = d
		}
	}
}

// WithClock injects the time source used for repetition deadlines and
// tick sleeps.
func WithClock(c Clock) SessionOption {
	return func(s *Session) { s.clock = c }
}

// WithStager overrides segment staging.
func WithStager(st Stager) SessionOption {
	return func(s *Session) { s.stager = st }
}

// WithOnRepetition installs a progress callback invoked as each
// repetition starts (1-indexed).
func WithOnRepetition(fn func(rep, total int)) SessionOption {
	return func(s *Session) { s.onRepetition = fn }
}

// Session owns playback of segment requests over one decoded buffer.
// It is cooperative and single-threaded: the host either calls Run,
// which sleeps and pumps between ticks, or calls Step once per frame of
// its own loop. Only Cancel may be called from elsewhere.
type Session struct {
	buf    *pcm.Buffer
	dev    Device
	sig    Signal
	clock  Clock
	tick   time.Duration
	stager Stager

	onRepetition func(rep, total int)

	state      State
	req        Request
	rep        int
	handle     Handle
	deadline   time.Time
	lastResult Result
}

// NewSession creates a session over a decoded buffer and an output
// device. The buffer is shared read-only; the device is owned
// exclusively while a run is active.
func NewSession(buf *pcm.Buffer, dev Device, opts ...SessionOption) *Session {
	s := &Session{
		buf:    buf,
		dev:    dev,
		clock:  wallClock{},
		tick:   defaultTick,
		stager: tempStager{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Buffer returns the decoded audio this session plays from.
func (s *Session) Buffer() *pcm.Buffer { return s.buf }

// State returns the current resting state.
func (s *Session) State() State { return s.state }

// Result returns the outcome of the last finished run.
func (s *Session) Result() Result { return s.lastResult }

// CurrentRepetition returns the 1-indexed repetition in progress, or 0.
func (s *Session) CurrentRepetition() int { return s.rep }

// Cancel requests cooperative cancellation of the active run. It is
// observed within one tick. Cancel only touches the atomic flag, so it
// is safe from other goroutines (the CLI raises it from a
// signal-notify goroutine); with no run active the raise is cleared
// when the next request is accepted, keeping it a no-op.
func (s *Session) Cancel() {
	s.sig.Raise()
}

// Start validates the request, stages the segment, loads it into the
// device and issues the first play. Validation failures are rejected
// before any state changes; staging or device failures clean up and
// leave the session idle with ResultFailed.
func (s *Session) Start(req Request) error {
	if s.state != StateIdle {
		return ErrAlreadyPlaying
	}
	if req.Start < 0 || req.End > s.buf.Duration() || req.Start >= req.End || req.Repeat < 1 {
		return fmt.Errorf("%w: [%.2f, %.2f) x%d over %.2fs", ErrInvalidRange,
			req.Start, req.End, req.Repeat, s.buf.Duration())
	}

	// The flag is reset at accept time, not at play time, so a cancel
	// raised while staging is still observed on the first tick.
	s.sig.Reset()
	s.state = StatePreparing
	seg, err := s.buf.ExtractRange(req.Start, req.End)
	if err != nil {
		return s.abort(fmt.Errorf("%w: %w", ErrStaging, err))
	}
	h, err := s.stager.Stage(seg)
	if err != nil {
		return s.abort(fmt.Errorf("%w: %w", ErrStaging, err))
	}
	s.handle = h

	if err := s.dev.Init(s.buf.SampleRate); err != nil {
		return s.abort(fmt.Errorf("%w: %w", ErrDevice, err))
	}
	if err := s.dev.Load(h.Path()); err != nil {
		return s.abort(fmt.Errorf("%w: %w", ErrDevice, err))
	}

	s.req = req
	s.rep = 0
	s.state = StatePlaying

	if err := s.beginRepetition(); err != nil {
		return s.abort(fmt.Errorf("%w: %w", ErrDevice, err))
	}
	return nil
}

// Step advances the run by one tick: consume cancellation, then check
// whether the current repetition has ended (device no longer busy, or
// the segment-duration ceiling elapsed) and move on. It performs no
// sleeping or pumping; frame-driven hosts call it once per frame.
// done is true once the session is back to idle.
func (s *Session) Step() (done bool, err error) {
	if s.state != StatePlaying {
		return true, nil
	}
	if s.sig.Raised() {
		s.finish(ResultCancelled)
		return true, nil
	}
	if s.clock.Now().Before(s.deadline) && s.dev.IsBusy() {
		return false, nil
	}
	if s.rep >= s.req.Repeat {
		s.finish(ResultCompleted)
		return true, nil
	}
	if err := s.beginRepetition(); err != nil {
		wrapped := fmt.Errorf("%w: %w", ErrDevice, err)
		s.finish(ResultFailed)
		return true, wrapped
	}
	return false, nil
}

// Run drives a request to its terminal result: per tick it sleeps,
// pumps the host's event loop once, and steps. Returns the terminal
// result along with any error that caused it.
func (s *Session) Run(req Request, pump Pumper) (Result, error) {
	if pump == nil {
		pump = NopPump
	}
	if err := s.Start(req); err != nil {
		if errors.Is(err, ErrInvalidRange) || errors.Is(err, ErrAlreadyPlaying) {
			return ResultNone, err
		}
		return ResultFailed, err
	}
	for {
		s.clock.Sleep(s.tick)
		pump.Pump()
		done, err := s.Step()
		if done {
			return s.lastResult, err
		}
	}
}

// PlayAll loops the whole buffer, the "play full song" command.
func (s *Session) PlayAll(repeat int, pump Pumper) (Result, error) {
	return s.Run(Request{Start: 0, End: s.buf.Duration(), Repeat: repeat}, pump)
}

// beginRepetition issues the next play. Each repetition is bounded by
// the segment duration independent of device busy reporting, so a
// misreporting device cannot hang the loop.
func (s *Session) beginRepetition() error {
	if s.rep > 0 {
		_ = s.dev.Stop() // no overlap with the previous repetition
	}
	if err := s.dev.Play(); err != nil {
		return err
	}
	s.rep++
	s.deadline = s.clock.Now().Add(time.Duration(s.req.Duration() * float64(time.Second)))
	if s.onRepetition != nil {
		s.onRepetition(s.rep, s.req.Repeat)
	}
	return nil
}

// abort runs the guaranteed cleanup for failures during Start and
// passes the cause through.
func (s *Session) abort(cause error) error {
	s.finish(ResultFailed)
	return cause
}

// finish releases everything the run owned, in all terminal cases:
// stop and unload the device, delete the staged clip, return to idle.
func (s *Session) finish(result Result) {
	_ = s.dev.Stop()
	_ = s.dev.Unload()
	if s.handle != nil {
		_ = s.handle.Remove()
		s.handle = nil
	}
	s.rep = 0
	s.state = StateIdle
	s.lastResult = result
}

// Load decodes an audio file into a buffer ready for a session.
// Supported formats: wav, mp3, ogg.
func Load(path string) (*pcm.Buffer, error) {
	return decode.Decode(path)
}

package segloop

import (
	"errors"
	"testing"
	"time"

	"github.com/cbegin/segloop-go/internal/pcm"
)

func testBuffer(seconds float64) *pcm.Buffer {
	const rate = 100
	frames := int(seconds * rate)
	return &pcm.Buffer{
		Samples:    make([]float32, frames),
		SampleRate: rate,
		Channels:   1,
	}
}

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time        { return c.now }
func (c *fakeClock) Sleep(d time.Duration) { c.now = c.now.Add(d) }

type fakeDevice struct {
	inits, loads, plays, stops, unloads int
	loadedPath                          string

	alwaysBusy bool

	initErr error
	loadErr error
	playErr error
}

func (d *fakeDevice) Init(sampleRate int) error {
	d.inits++
	return d.initErr
}

func (d *fakeDevice) Load(path string) error {
	d.loads++
	d.loadedPath = path
	return d.loadErr
}

func (d *fakeDevice) Play() error {
	if d.playErr != nil {
		return d.playErr
	}
	d.plays++
	return nil
}

func (d *fakeDevice) Stop() error {
	d.stops++
	return nil
}

func (d *fakeDevice) Unload() error {
	d.unloads++
	return nil
}

func (d *fakeDevice) IsBusy() bool { return d.alwaysBusy }

type fakeStager struct {
	created int
	live    int
	fail    bool
}

func (st *fakeStager) Stage(seg *pcm.Buffer) (Handle, error) {
	if st.fail {
		return nil, errors.New("disk full")
	}
	st.created++
	st.live++
	return &fakeHandle{st: st}, nil
}

type fakeHandle struct {
	st      *fakeStager
	removed bool
}

func (h *fakeHandle) Path() string { return "fake-clip.wav" }

func (h *fakeHandle) Remove() error {
	if !h.removed {
		h.removed = true
		h.st.live--
	}
	return nil
}

func newTestSession(buf *pcm.Buffer, dev *fakeDevice, st *fakeStager, opts ...SessionOption) *Session {
	base := []SessionOption{
		WithClock(&fakeClock{}),
		WithStager(st),
	}
	return NewSession(buf, dev, append(base, opts...)...)
}

func TestRunCompletesExactRepetitions(t *testing.T) {
	dev := &fakeDevice{}
	st := &fakeStager{}
	s := newTestSession(testBuffer(120), dev, st)

	pumps := 0
	res, err := s.Run(Request{Start: 30, End: 45, Repeat: 5}, PumpFunc(func() { pumps++ }))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res != ResultCompleted {
		t.Fatalf("result = %v, want completed", res)
	}
	if dev.plays != 5 {
		t.Fatalf("play issued %d times, want exactly 5", dev.plays)
	}
	if s.State() != StateIdle {
		t.Fatalf("state = %v, want idle after completion", s.State())
	}
	if dev.unloads != 1 {
		t.Fatalf("device unloaded %d times, want 1", dev.unloads)
	}
	if st.live != 0 {
		t.Fatalf("%d staged clips leaked", st.live)
	}
	if pumps == 0 {
		t.Fatal("event pump was never invoked during the run")
	}
	if dev.loadedPath != "fake-clip.wav" {
		t.Fatalf("device loaded %q, want the staged clip", dev.loadedPath)
	}
}

func TestCancelDuringRepetition(t *testing.T) {
	const cancelAt = 3
	dev := &fakeDevice{}
	st := &fakeStager{}
	var s *Session
	s = newTestSession(testBuffer(120), dev, st,
		WithOnRepetition(func(rep, total int) {
			if rep == cancelAt {
				s.Cancel()
			}
		}))

	res, err := s.Run(Request{Start: 30, End: 45, Repeat: 5}, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res != ResultCancelled {
		t.Fatalf("result = %v, want cancelled", res)
	}
	if dev.plays > cancelAt {
		t.Fatalf("play issued %d times, want at most %d", dev.plays, cancelAt)
	}
	if s.State() != StateIdle {
		t.Fatalf("state = %v, want idle after cancellation", s.State())
	}
	if st.live != 0 {
		t.Fatalf("%d staged clips leaked after cancellation", st.live)
	}
}

func TestInvalidRequestsRejectedBeforeMutation(t *testing.T) {
	cases := []struct {
		name string
		req  Request
	}{
		{"negative start", Request{Start: -1, End: 10, Repeat: 1}},
		{"end past duration", Request{Start: 0, End: 121, Repeat: 1}},
		{"start at end", Request{Start: 10, End: 10, Repeat: 1}},
		{"inverted", Request{Start: 20, End: 10, Repeat: 1}},
		{"zero repeat", Request{Start: 0, End: 10, Repeat: 0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dev := &fakeDevice{}
			st := &fakeStager{}
			s := newTestSession(testBuffer(120), dev, st)
			if err := s.Start(tc.req); !errors.Is(err, ErrInvalidRange) {
				t.Fatalf("err = %v, want ErrInvalidRange", err)
			}
			if s.State() != StateIdle {
				t.Fatalf("state = %v, rejection must not change state", s.State())
			}
			if dev.inits != 0 || st.created != 0 {
				t.Fatalf("rejected request touched device (%d inits) or staging (%d)", dev.inits, st.created)
			}
		})
	}
}

func TestConcurrentStartRejected(t *testing.T) {
	dev := &fakeDevice{alwaysBusy: true}
	st := &fakeStager{}
	s := newTestSession(testBuffer(120), dev, st)

	if err := s.Start(Request{Start: 0, End: 10, Repeat: 1}); err != nil {
		t.Fatalf("first start: %v", err)
	}
	if err := s.Start(Request{Start: 0, End: 5, Repeat: 1}); !errors.Is(err, ErrAlreadyPlaying) {
		t.Fatalf("second start err = %v, want ErrAlreadyPlaying", err)
	}
	if dev.plays != 1 {
		t.Fatalf("rejected second start issued a play (%d total)", dev.plays)
	}

	s.Cancel()
	if done, _ := s.Step(); !done {
		t.Fatal("cancelled session should finish on the next tick")
	}
	if st.live != 0 {
		t.Fatalf("%d staged clips leaked", st.live)
	}
}

func TestStagingFailure(t *testing.T) {
	dev := &fakeDevice{}
	st := &fakeStager{fail: true}
	s := newTestSession(testBuffer(120), dev, st)

	res, err := s.Run(Request{Start: 0, End: 10, Repeat: 2}, nil)
	if !errors.Is(err, ErrStaging) {
		t.Fatalf("err = %v, want ErrStaging", err)
	}
	if res != ResultFailed {
		t.Fatalf("result = %v, want failed", res)
	}
	if s.State() != StateIdle {
		t.Fatalf("state = %v, want idle after failure", s.State())
	}
	if dev.plays != 0 {
		t.Fatal("staging failure must not reach the device")
	}
}

func TestDeviceLoadFailureCleansUpStagedClip(t *testing.T) {
	dev := &fakeDevice{loadErr: errors.New("device gone")}
	st := &fakeStager{}
	s := newTestSession(testBuffer(120), dev, st)

	res, err := s.Run(Request{Start: 0, End: 10, Repeat: 1}, nil)
	if !errors.Is(err, ErrDevice) {
		t.Fatalf("err = %v, want ErrDevice", err)
	}
	if res != ResultFailed {
		t.Fatalf("result = %v, want failed", res)
	}
	if st.created != 1 || st.live != 0 {
		t.Fatalf("staged clip not released: created=%d live=%d", st.created, st.live)
	}
}

func TestPlayFailureMidLoop(t *testing.T) {
	dev := &fakeDevice{playErr: errors.New("output stalled")}
	st := &fakeStager{}
	s := newTestSession(testBuffer(120), dev, st)

	res, err := s.Run(Request{Start: 0, End: 10, Repeat: 3}, nil)
	if !errors.Is(err, ErrDevice) {
		t.Fatalf("err = %v, want ErrDevice", err)
	}
	if res != ResultFailed {
		t.Fatalf("result = %v, want failed", res)
	}
	if st.live != 0 {
		t.Fatalf("%d staged clips leaked after play failure", st.live)
	}
}

func TestHungDeviceBoundedBySegmentDuration(t *testing.T) {
	// Device that reports busy forever: the per-repetition ceiling of
	// end-start seconds must still terminate the loop.
	dev := &fakeDevice{alwaysBusy: true}
	st := &fakeStager{}
	clock := &fakeClock{}
	s := newTestSession(testBuffer(120), dev, st, WithClock(clock))

	res, err := s.Run(Request{Start: 10, End: 11, Repeat: 2}, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res != ResultCompleted {
		t.Fatalf("result = %v, want completed despite busy device", res)
	}
	if dev.plays != 2 {
		t.Fatalf("play issued %d times, want 2", dev.plays)
	}
}

func TestCancelFromAnotherGoroutine(t *testing.T) {
	// The CLI raises cancellation from a signal-notify goroutine while
	// Run owns the session; Cancel must stay on the atomic flag only.
	dev := &fakeDevice{alwaysBusy: true}
	st := &fakeStager{}
	started := make(chan struct{})
	s := newTestSession(testBuffer(120), dev, st,
		WithOnRepetition(func(rep, total int) {
			if rep == 1 {
				close(started)
			}
		}))

	results := make(chan Result, 1)
	go func() {
		res, _ := s.Run(Request{Start: 0, End: 30, Repeat: 1000}, nil)
		results <- res
	}()

	<-started
	s.Cancel()

	if res := <-results; res != ResultCancelled {
		t.Fatalf("result = %v, want cancelled", res)
	}
	if st.live != 0 {
		t.Fatalf("%d staged clips leaked", st.live)
	}
}

type cancellingStager struct {
	fakeStager
	sess *Session
}

func (st *cancellingStager) Stage(seg *pcm.Buffer) (Handle, error) {
	st.sess.Cancel()
	return st.fakeStager.Stage(seg)
}

func TestCancelDuringPreparationIsObserved(t *testing.T) {
	// A cancel that lands while the segment is still being staged must
	// not be dropped: the run ends cancelled on its first tick.
	dev := &fakeDevice{alwaysBusy: true}
	st := &cancellingStager{}
	s := NewSession(testBuffer(120), dev,
		WithClock(&fakeClock{}),
		WithStager(st))
	st.sess = s

	res, err := s.Run(Request{Start: 0, End: 30, Repeat: 5}, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res != ResultCancelled {
		t.Fatalf("result = %v, want cancelled", res)
	}
	if dev.plays > 1 {
		t.Fatalf("play issued %d times, want at most 1", dev.plays)
	}
	if st.live != 0 {
		t.Fatalf("%d staged clips leaked", st.live)
	}
}

func TestCancelIsNoopWhenIdle(t *testing.T) {
	dev := &fakeDevice{}
	st := &fakeStager{}
	s := newTestSession(testBuffer(120), dev, st)

	s.Cancel() // nothing playing; must not poison the next run

	res, err := s.Run(Request{Start: 0, End: 5, Repeat: 2}, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res != ResultCompleted {
		t.Fatalf("result = %v, want completed (idle cancel must not stick)", res)
	}
	if dev.plays != 2 {
		t.Fatalf("play issued %d times, want 2", dev.plays)
	}
}

func TestNoLeakAcrossOutcomes(t *testing.T) {
	dev := &fakeDevice{}
	st := &fakeStager{}
	s := newTestSession(testBuffer(120), dev, st)

	// Completed, cancelled, and rejected runs, back to back.
	if _, err := s.Run(Request{Start: 0, End: 5, Repeat: 1}, nil); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := s.Start(Request{Start: 0, End: 5, Repeat: 10}); err != nil {
		t.Fatalf("second start: %v", err)
	}
	s.Cancel()
	for {
		done, err := s.Step()
		if err != nil {
			t.Fatalf("step: %v", err)
		}
		if done {
			break
		}
	}
	if err := s.Start(Request{Start: -1, End: 5, Repeat: 1}); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("third start err = %v, want ErrInvalidRange", err)
	}

	if st.live != 0 {
		t.Fatalf("%d staged clips leaked across runs", st.live)
	}
	if s.State() != StateIdle {
		t.Fatalf("state = %v, want idle", s.State())
	}
}

func TestPlayAllCoversWholeBuffer(t *testing.T) {
	dev := &fakeDevice{}
	st := &fakeStager{}
	s := newTestSession(testBuffer(60), dev, st)

	res, err := s.PlayAll(1, nil)
	if err != nil {
		t.Fatalf("play all: %v", err)
	}
	if res != ResultCompleted || dev.plays != 1 {
		t.Fatalf("result = %v plays = %d, want completed with 1 play", res, dev.plays)
	}
}

func TestStepWhenIdleIsDone(t *testing.T) {
	s := newTestSession(testBuffer(10), &fakeDevice{}, &fakeStager{})
	done, err := s.Step()
	if !done || err != nil {
		t.Fatalf("Step on idle session = (%v, %v), want (true, nil)", done, err)
	}
}

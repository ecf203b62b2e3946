// Package selection converts pointer gestures over the waveform's time
// axis into a committed segment selection. A short gesture is treated as
// a tap (the pointer hardware cannot produce a real double-click in this
// coordinate space) and yields an auto-play gesture instead of a range.
package selection

import "math"

// State of the gesture machine.
type State int

const (
	Idle State = iota
	Dragging
	Committed
)

// Config holds the gesture tuning constants. Both values are usability
// knobs, not semantic requirements.
type Config struct {
	// TapThreshold is the maximum span, in seconds, for a gesture to be
	// classified as a tap rather than a range selection.
	TapThreshold float64
	// AutoPlayWindow is how many seconds a tap plays from its position.
	AutoPlayWindow float64
}

func DefaultConfig() Config {
	return Config{TapThreshold: 0.5, AutoPlayWindow: 5}
}

// Gesture is the result of a completed pointer gesture. For a tap,
// AutoPlay is true and [Start, End] is the auto-play window; for a range
// selection, AutoPlay is false and the range is left committed for a
// later explicit playback command.
type Gesture struct {
	Start    float64
	End      float64
	AutoPlay bool
	Repeat   int
}

// Tracker is the gesture state machine. It is not safe for concurrent
// use; the UI event pump drives it from a single goroutine.
type Tracker struct {
	cfg      Config
	duration float64
	state    State

	startCand float64
	endCand   float64
	blocked   bool

	onDrag func(start, end float64)
}

// New creates a tracker over an audio buffer of the given duration.
func New(duration float64, cfg Config) *Tracker {
	if cfg.TapThreshold <= 0 {
		cfg.TapThreshold = DefaultConfig().TapThreshold
	}
	if cfg.AutoPlayWindow <= 0 {
		cfg.AutoPlayWindow = DefaultConfig().AutoPlayWindow
	}
	return &Tracker{cfg: cfg, duration: duration}
}

// SetOnDrag installs the redraw callback invoked on every transient
// selection update while dragging.
func (tr *Tracker) SetOnDrag(fn func(start, end float64)) { tr.onDrag = fn }

// SetBlocked gates pointer input while a playback session is active, so
// the selection cannot mutate under a running loop. Blocking aborts an
// in-flight drag.
func (tr *Tracker) SetBlocked(blocked bool) {
	tr.blocked = blocked
	if blocked && tr.state == Dragging {
		tr.state = Idle
	}
}

// State returns the current gesture state.
func (tr *Tracker) State() State { return tr.state }

// PointerDown begins a drag at time t. Ignored while blocked, while
// already dragging, or for events outside the axis.
func (tr *Tracker) PointerDown(t float64) {
	if tr.blocked || tr.state == Dragging || badAxis(t) {
		return
	}
	tr.state = Dragging
	tr.startCand = t
	tr.endCand = t
}

// PointerMove updates the transient end of an active drag.
func (tr *Tracker) PointerMove(t float64) {
	if tr.blocked || tr.state != Dragging || badAxis(t) {
		return
	}
	tr.endCand = t
	if tr.onDrag != nil {
		tr.onDrag(tr.startCand, tr.endCand)
	}
}

// PointerUp finalizes the drag and classifies the gesture. The boolean
// is false when no drag was active.
func (tr *Tracker) PointerUp(t float64) (Gesture, bool) {
	if tr.blocked || tr.state != Dragging {
		return Gesture{}, false
	}
	if !badAxis(t) {
		tr.endCand = t
	}

	start, end := tr.startCand, tr.endCand
	if start < 0 {
		start = 0
	}
	if start > end {
		start, end = end, start
	}
	if end > tr.duration {
		end = tr.duration
	}
	tr.startCand, tr.endCand = start, end
	tr.state = Committed

	if math.Abs(end-start) <= tr.cfg.TapThreshold {
		return Gesture{
			Start:    start,
			End:      math.Min(tr.duration, start+tr.cfg.AutoPlayWindow),
			AutoPlay: true,
			Repeat:   1,
		}, true
	}
	return Gesture{Start: start, End: end}, true
}

// Selection returns the committed range. ok is false when nothing is
// committed; this never fails.
func (tr *Tracker) Selection() (start, end float64, ok bool) {
	if tr.state != Committed {
		return 0, 0, false
	}
	return tr.startCand, tr.endCand, true
}

// Clear drops any committed selection.
func (tr *Tracker) Clear() {
	tr.state = Idle
}

func badAxis(t float64) bool {
	return math.IsNaN(t) || math.IsInf(t, 0)
}

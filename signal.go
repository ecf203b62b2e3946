package segloop

import "sync/atomic"

// Signal is the cancellation flag shared between a key handler and the
// playback tick loop. It only ever moves false -> true during a session;
// the session resets it when a new request is accepted. The atomic lets
// a CLI raise it from a signal-notify goroutine; in the UI both sides
// run on the frame loop anyway.
type Signal struct {
	raised atomic.Bool
}

// Raise requests cancellation. Idempotent.
func (s *Signal) Raise() { s.raised.Store(true) }

// Raised reports whether cancellation was requested.
func (s *Signal) Raised() bool { return s.raised.Load() }

// Reset clears the flag for a new session.
func (s *Signal) Reset() { s.raised.Store(false) }

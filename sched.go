package segloop

import "time"

// Pumper processes pending UI/input events once, without blocking. The
// repetition loop calls it every tick so a cancel key-press becomes
// observable and the display stays responsive; there is exactly one
// thread, and this interleaving is the substitute for real concurrency.
type Pumper interface {
	Pump()
}

// PumpFunc adapts a function to the Pumper interface.
type PumpFunc func()

func (f PumpFunc) Pump() { f() }

// NopPump is for hosts with no event pump, such as the CLI.
var NopPump Pumper = PumpFunc(func() {})

// Clock abstracts time for the tick loop so tests can drive repetitions
// without real sleeps.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type wallClock struct{}

func (wallClock) Now() time.Time        { return time.Now() }
func (wallClock) Sleep(d time.Duration) { time.Sleep(d) }

// Package idle reports the time elapsed since the last user input
// event (keyboard or pointer). Pure query, no state.
package idle

// Monitor reports whole seconds since the last detected user input.
// Implementations clamp to 0, so a reading is never negative.
type Monitor interface {
	Seconds() int
}

// Func adapts a plain function to the Monitor interface. Tests inject
// scripted idle series this way.
type Func func() int

func (f Func) Seconds() int { return f() }

// System returns the platform idle monitor.
func System() Monitor { return Func(osIdleSeconds) }

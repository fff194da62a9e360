// Package afk implements the away-from-keyboard auto-switch engine.
// The engine is a pure state machine: each tick takes the current
// configuration, runtime state, and fresh OS measurements, and returns
// the new state plus a list of side effects for the caller to perform.
// It never touches the OS itself, which keeps it fully unit-testable.
package afk

import (
	"errors"

	"github.com/google/uuid"
)

// ErrInvalidTimeout is returned when a timeout outside TimeoutOptions
// is requested.
var ErrInvalidTimeout = errors.New("afk: timeout not in the allowed set")

// TimeoutOptions are the selectable AFK timeouts in minutes. 0 is Off.
// These are the only values the menu exposes; arbitrary timeouts are
// rejected by ValidTimeout.
var TimeoutOptions = []int{0, 1, 5, 10, 15, 30, 45, 60}

// ValidTimeout reports whether minutes is one of TimeoutOptions.
func ValidTimeout(minutes int) bool {
	for _, m := range TimeoutOptions {
		if m == minutes {
			return true
		}
	}
	return false
}

// Config is the user's AFK preference. TargetPlan == uuid.Nil means no
// target is set; TimeoutMinutes == 0 disables the feature entirely,
// regardless of TargetPlan.
type Config struct {
	TimeoutMinutes int
	TargetPlan     uuid.UUID
}

// Enabled reports whether the AFK feature is active.
func (c Config) Enabled() bool { return c.TimeoutMinutes > 0 }

// State is the engine-owned runtime state. Applied is true while the
// engine believes the away plan is in effect. PreviousPlan is the plan
// captured when entering the away state, valid only while Applied.
// LastObservedActive caches the last active plan this process knows
// about, so the poll path can detect externally-triggered changes.
type State struct {
	Applied            bool
	PreviousPlan       uuid.UUID
	LastObservedActive uuid.UUID
}

// Inputs are the fresh measurements taken at the start of a tick.
// ActivePlan is uuid.Nil when the active-plan query failed.
type Inputs struct {
	IdleSeconds int
	ActivePlan  uuid.UUID
}

// EffectKind identifies a side effect requested by the engine.
type EffectKind int

const (
	// SwitchPlan asks the caller to activate Effect.To.
	SwitchPlan EffectKind = iota
	// RefreshTooltip asks the caller to re-render user-visible state.
	RefreshTooltip
)

// Effect is a side effect the caller must perform after a transition.
type Effect struct {
	Kind EffectKind
	To   uuid.UUID
}

// Tick runs one AFK check. Ticks arrive at a fixed 1-second cadence.
//
// Crossing the idle threshold captures the current plan and switches to
// the target; dropping back below it restores the captured plan. Both
// transitions fire exactly once per edge: steady away or steady active
// states are no-ops. If the target is unset when the threshold is
// crossed, the engine still marks itself applied so it does not retry
// every tick. Bookkeeping advances even if the caller's switch later
// fails; the engine does not retry within a tick.
func Tick(cfg Config, st State, in Inputs) (State, []Effect) {
	if !cfg.Enabled() {
		// Disabled-while-applied is handled by Disable, not here.
		return st, nil
	}
	threshold := cfg.TimeoutMinutes * 60

	switch {
	case in.IdleSeconds >= threshold && !st.Applied:
		st.PreviousPlan = in.ActivePlan
		var fx []Effect
		if cfg.TargetPlan != uuid.Nil && in.ActivePlan != cfg.TargetPlan {
			st.LastObservedActive = cfg.TargetPlan
			fx = append(fx,
				Effect{Kind: SwitchPlan, To: cfg.TargetPlan},
				Effect{Kind: RefreshTooltip},
			)
		}
		st.Applied = true
		return st, fx

	case in.IdleSeconds < threshold && st.Applied:
		st, fx := restore(st, in)
		st.Applied = false
		return st, fx
	}

	return st, nil
}

// Disable turns the feature off in response to an explicit user action.
// If the away plan is currently applied, the previous plan is restored
// immediately, independent of the current idle duration.
func Disable(cfg Config, st State, in Inputs) (Config, State, []Effect) {
	cfg.TimeoutMinutes = 0
	if !st.Applied {
		return cfg, st, nil
	}
	st, fx := restore(st, in)
	st.Applied = false
	return cfg, st, fx
}

// restore emits the switch back to PreviousPlan when it is set and not
// already active.
func restore(st State, in Inputs) (State, []Effect) {
	if st.PreviousPlan == uuid.Nil || in.ActivePlan == st.PreviousPlan {
		return st, nil
	}
	st.LastObservedActive = st.PreviousPlan
	return st, []Effect{
		{Kind: SwitchPlan, To: st.PreviousPlan},
		{Kind: RefreshTooltip},
	}
}

package afk

import (
	"testing"

	"github.com/google/uuid"
)

var (
	planHigh     = uuid.MustParse("8c5e7fda-e8bf-4a96-9a85-a6e23a8c635c")
	planBalanced = uuid.MustParse("381b4222-f694-41f0-9685-ff5bb260df2e")
	planSaver    = uuid.MustParse("a1841308-3541-4fab-bc81-f71556f20b4a")
)

func hasSwitch(fx []Effect, to uuid.UUID) bool {
	for _, f := range fx {
		if f.Kind == SwitchPlan && f.To == to {
			return true
		}
	}
	return false
}

func countSwitches(fx []Effect) int {
	n := 0
	for _, f := range fx {
		if f.Kind == SwitchPlan {
			n++
		}
	}
	return n
}

func TestValidTimeout(t *testing.T) {
	for _, m := range []int{0, 1, 5, 10, 15, 30, 45, 60} {
		if !ValidTimeout(m) {
			t.Errorf("ValidTimeout(%d) = false, want true", m)
		}
	}
	for _, m := range []int{-1, 2, 20, 90, 120} {
		if ValidTimeout(m) {
			t.Errorf("ValidTimeout(%d) = true, want false", m)
		}
	}
}

func TestTick_DisabledNeverSwitches(t *testing.T) {
	cfg := Config{TimeoutMinutes: 0, TargetPlan: planBalanced}
	st := State{}

	for _, idle := range []int{0, 59, 3600, 1 << 20} {
		var fx []Effect
		st, fx = Tick(cfg, st, Inputs{IdleSeconds: idle, ActivePlan: planHigh})
		if len(fx) != 0 {
			t.Fatalf("idle=%d: got %d effects, want none while disabled", idle, len(fx))
		}
		if st.Applied {
			t.Fatalf("idle=%d: Applied = true while disabled", idle)
		}
	}
}

// Scenario A: idle crosses the threshold, plan switches to the target
// and the previous plan is captured.
func TestTick_EnterAway(t *testing.T) {
	cfg := Config{TimeoutMinutes: 10, TargetPlan: planBalanced}
	st := State{LastObservedActive: planHigh}

	st, fx := Tick(cfg, st, Inputs{IdleSeconds: 601, ActivePlan: planHigh})

	if !st.Applied {
		t.Error("Applied = false, want true")
	}
	if st.PreviousPlan != planHigh {
		t.Errorf("PreviousPlan = %s, want %s", st.PreviousPlan, planHigh)
	}
	if st.LastObservedActive != planBalanced {
		t.Errorf("LastObservedActive = %s, want %s", st.LastObservedActive, planBalanced)
	}
	if !hasSwitch(fx, planBalanced) {
		t.Errorf("effects = %v, want switch to %s", fx, planBalanced)
	}
}

// Scenario B: activity resumes, the previous plan is restored.
func TestTick_ExitAway(t *testing.T) {
	cfg := Config{TimeoutMinutes: 10, TargetPlan: planBalanced}
	st := State{Applied: true, PreviousPlan: planHigh, LastObservedActive: planBalanced}

	st, fx := Tick(cfg, st, Inputs{IdleSeconds: 5, ActivePlan: planBalanced})

	if st.Applied {
		t.Error("Applied = true, want false")
	}
	if st.LastObservedActive != planHigh {
		t.Errorf("LastObservedActive = %s, want %s", st.LastObservedActive, planHigh)
	}
	if !hasSwitch(fx, planHigh) {
		t.Errorf("effects = %v, want switch to %s", fx, planHigh)
	}
}

// Scenario C: target unset. Applied still flips, no switch is issued.
func TestTick_UnsetTarget(t *testing.T) {
	cfg := Config{TimeoutMinutes: 5}
	st := State{}

	st, fx := Tick(cfg, st, Inputs{IdleSeconds: 300, ActivePlan: planHigh})

	if !st.Applied {
		t.Error("Applied = false, want true")
	}
	if countSwitches(fx) != 0 {
		t.Errorf("got %d switches, want 0 with unset target", countSwitches(fx))
	}
	if st.PreviousPlan != planHigh {
		t.Errorf("PreviousPlan = %s, want %s", st.PreviousPlan, planHigh)
	}
}

// Repeated ticks while steadily away issue at most one switch, on the
// crossing tick.
func TestTick_IdempotentWhileAway(t *testing.T) {
	cfg := Config{TimeoutMinutes: 1, TargetPlan: planSaver}
	st := State{}

	total := 0
	idle := 60
	active := planHigh
	for i := 0; i < 30; i++ {
		var fx []Effect
		st, fx = Tick(cfg, st, Inputs{IdleSeconds: idle, ActivePlan: active})
		if countSwitches(fx) > 0 {
			active = planSaver // caller performed the switch
		}
		total += countSwitches(fx)
		idle++
	}
	if total != 1 {
		t.Errorf("total switches = %d, want 1", total)
	}
	if !st.Applied {
		t.Error("Applied = false after steady away")
	}
}

// Threshold boundary: exactly threshold seconds is away, one below is not.
func TestTick_ThresholdEdge(t *testing.T) {
	cfg := Config{TimeoutMinutes: 1, TargetPlan: planSaver}

	st, _ := Tick(cfg, State{}, Inputs{IdleSeconds: 59, ActivePlan: planHigh})
	if st.Applied {
		t.Error("idle=59 < 60: Applied = true, want false")
	}

	st, _ = Tick(cfg, State{}, Inputs{IdleSeconds: 60, ActivePlan: planHigh})
	if !st.Applied {
		t.Error("idle=60 >= 60: Applied = false, want true")
	}
}

// Target already active at crossing: applied flips without a switch, and
// return to activity still restores nothing (previous == current).
func TestTick_TargetAlreadyActive(t *testing.T) {
	cfg := Config{TimeoutMinutes: 5, TargetPlan: planBalanced}

	st, fx := Tick(cfg, State{}, Inputs{IdleSeconds: 400, ActivePlan: planBalanced})
	if countSwitches(fx) != 0 {
		t.Errorf("got %d switches, want 0 when target already active", countSwitches(fx))
	}
	if !st.Applied {
		t.Error("Applied = false, want true")
	}

	st, fx = Tick(cfg, st, Inputs{IdleSeconds: 0, ActivePlan: planBalanced})
	if countSwitches(fx) != 0 {
		t.Errorf("got %d switches on exit, want 0 (previous plan unchanged)", countSwitches(fx))
	}
	if st.Applied {
		t.Error("Applied = true after exit, want false")
	}
}

// Active-plan query failed at crossing: previous plan is recorded as
// unset and no restore is attempted on exit.
func TestTick_ActiveQueryFailed(t *testing.T) {
	cfg := Config{TimeoutMinutes: 5, TargetPlan: planBalanced}

	st, _ := Tick(cfg, State{}, Inputs{IdleSeconds: 400, ActivePlan: uuid.Nil})
	if st.PreviousPlan != uuid.Nil {
		t.Errorf("PreviousPlan = %s, want Nil after failed query", st.PreviousPlan)
	}
	if !st.Applied {
		t.Error("Applied = false, want true")
	}

	st, fx := Tick(cfg, st, Inputs{IdleSeconds: 0, ActivePlan: planBalanced})
	if countSwitches(fx) != 0 {
		t.Errorf("got %d switches, want 0 with unset previous plan", countSwitches(fx))
	}
	if st.Applied {
		t.Error("Applied = true after exit, want false")
	}
}

// Scenario D: disabling while applied restores immediately, regardless
// of idle duration.
func TestDisable_WhileApplied(t *testing.T) {
	cfg := Config{TimeoutMinutes: 30, TargetPlan: planSaver}
	st := State{Applied: true, PreviousPlan: planHigh, LastObservedActive: planSaver}

	cfg, st, fx := Disable(cfg, st, Inputs{IdleSeconds: 9999, ActivePlan: planSaver})

	if cfg.TimeoutMinutes != 0 {
		t.Errorf("TimeoutMinutes = %d, want 0", cfg.TimeoutMinutes)
	}
	if st.Applied {
		t.Error("Applied = true, want false")
	}
	if !hasSwitch(fx, planHigh) {
		t.Errorf("effects = %v, want switch to %s", fx, planHigh)
	}
	if st.LastObservedActive != planHigh {
		t.Errorf("LastObservedActive = %s, want %s", st.LastObservedActive, planHigh)
	}
}

func TestDisable_NotApplied(t *testing.T) {
	cfg := Config{TimeoutMinutes: 15, TargetPlan: planSaver}

	cfg, st, fx := Disable(cfg, State{}, Inputs{ActivePlan: planHigh})

	if cfg.TimeoutMinutes != 0 {
		t.Errorf("TimeoutMinutes = %d, want 0", cfg.TimeoutMinutes)
	}
	if len(fx) != 0 {
		t.Errorf("effects = %v, want none", fx)
	}
	if st.Applied {
		t.Error("Applied = true, want false")
	}
}

// The engine's bookkeeping is optimistic: it advances even though the
// caller's switch may fail, and the same edge never fires twice.
func TestTick_NoRetryAfterEdge(t *testing.T) {
	cfg := Config{TimeoutMinutes: 1, TargetPlan: planSaver}

	// Crossing tick emits the switch; pretend it failed, so the active
	// plan stays planHigh on following ticks.
	st, fx := Tick(cfg, State{}, Inputs{IdleSeconds: 60, ActivePlan: planHigh})
	if countSwitches(fx) != 1 {
		t.Fatalf("got %d switches on crossing tick, want 1", countSwitches(fx))
	}
	for i := 0; i < 5; i++ {
		var more []Effect
		st, more = Tick(cfg, st, Inputs{IdleSeconds: 61 + i, ActivePlan: planHigh})
		if countSwitches(more) != 0 {
			t.Fatalf("tick %d retried the switch; bookkeeping should have advanced", i)
		}
	}
	if !st.Applied {
		t.Error("Applied = false, want true despite failed switch")
	}
}

package daemon

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/powertray/powertray/internal/idle"
	"github.com/powertray/powertray/internal/powerplan"
	"github.com/powertray/powertray/internal/singleinstance"
	"github.com/powertray/powertray/internal/tray"
)

// recordingSurface captures every model pushed to the tray.
type recordingSurface struct {
	mu     sync.Mutex
	models []tray.Model
}

func (s *recordingSurface) Update(m tray.Model) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.models = append(s.models, m)
}

func (s *recordingSurface) lastTooltip() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.models) == 0 {
		return ""
	}
	return s.models[len(s.models)-1].Tooltip
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Plans.Fake = true
	cfg.Timing.AfkCheckInterval = "10ms"
	cfg.Timing.PollInterval = "15ms"
	return cfg
}

// newTestDaemon builds a daemon on a fake directory with a scripted
// idle source and starts its event loop.
func newTestDaemon(t *testing.T) (*Daemon, *powerplan.Fake, *atomic.Int64, *recordingSurface) {
	t.Helper()
	t.Setenv("POWERTRAY_HOME", t.TempDir())

	d, err := NewWithConfig(testConfig())
	if err != nil {
		t.Fatalf("NewWithConfig: %v", err)
	}
	t.Cleanup(d.Close)

	idleSecs := &atomic.Int64{}
	d.Idle = idle.Func(func() int { return int(idleSecs.Load()) })
	surface := &recordingSurface{}
	d.Surface = surface

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go d.loop(ctx)

	return d, d.Directory.(*powerplan.Fake), idleSecs, surface
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func mustStatus(t *testing.T, d *Daemon) statusLike {
	t.Helper()
	s, err := d.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	return statusLike{s.AfkTimeoutMinutes, s.AfkTargetPlan, s.AfkApplied, s.ActivePlanID}
}

type statusLike struct {
	timeout int
	target  uuid.UUID
	applied bool
	active  uuid.UUID
}

func TestSecondInstanceRejected(t *testing.T) {
	t.Setenv("POWERTRAY_HOME", t.TempDir())

	d1, err := NewWithConfig(testConfig())
	if err != nil {
		t.Fatalf("first instance: %v", err)
	}
	defer d1.Close()

	_, err = NewWithConfig(testConfig())
	if !errors.Is(err, singleinstance.ErrAlreadyRunning) {
		t.Fatalf("second instance err = %v, want ErrAlreadyRunning", err)
	}
}

func TestSeedDefaultsTargetToActive(t *testing.T) {
	d, fake, _, _ := newTestDaemon(t)

	active, _ := fake.ActivePlan()
	if st := mustStatus(t, d); st.target != active {
		t.Errorf("target = %s, want seeded active %s", st.target, active)
	}
}

func TestAwaySwitchAndReturnRestore(t *testing.T) {
	d, fake, idleSecs, _ := newTestDaemon(t)
	plans, _ := fake.ListPlans()
	balanced, saver := plans[0].ID, plans[2].ID

	if err := d.SetAfkTarget(saver); err != nil {
		t.Fatalf("SetAfkTarget: %v", err)
	}
	if err := d.SetAfkTimeout(1); err != nil {
		t.Fatalf("SetAfkTimeout: %v", err)
	}

	// Cross the 60s threshold.
	idleSecs.Store(61)
	waitFor(t, "away switch", func() bool {
		id, _ := fake.ActivePlan()
		return id == saver
	})
	if st := mustStatus(t, d); !st.applied {
		t.Error("applied = false after away switch")
	}

	// User comes back.
	idleSecs.Store(0)
	waitFor(t, "restore", func() bool {
		id, _ := fake.ActivePlan()
		return id == balanced
	})
	if st := mustStatus(t, d); st.applied {
		t.Error("applied = true after restore")
	}
	if got := fake.SwitchCount(); got != 2 {
		t.Errorf("switches = %d, want 2 (away + restore)", got)
	}
}

func TestNoSwitchWhileDisabled(t *testing.T) {
	d, fake, idleSecs, _ := newTestDaemon(t)

	idleSecs.Store(3600)
	// Give several ticks a chance to misbehave.
	time.Sleep(100 * time.Millisecond)

	if got := fake.SwitchCount(); got != 0 {
		t.Errorf("switches = %d, want 0 while disabled", got)
	}
	if st := mustStatus(t, d); st.applied {
		t.Error("applied = true while disabled")
	}
}

func TestAfkOffRestoresImmediately(t *testing.T) {
	d, fake, idleSecs, _ := newTestDaemon(t)
	plans, _ := fake.ListPlans()
	balanced, high := plans[0].ID, plans[1].ID

	if err := d.SetAfkTarget(high); err != nil {
		t.Fatalf("SetAfkTarget: %v", err)
	}
	if err := d.SetAfkTimeout(1); err != nil {
		t.Fatalf("SetAfkTimeout: %v", err)
	}
	idleSecs.Store(120)
	waitFor(t, "away switch", func() bool {
		id, _ := fake.ActivePlan()
		return id == high
	})

	// Still idle, but the user turns the feature off: restore anyway.
	if err := d.AfkOff(); err != nil {
		t.Fatalf("AfkOff: %v", err)
	}
	id, _ := fake.ActivePlan()
	if id != balanced {
		t.Errorf("active = %s, want restored %s", id, balanced)
	}
	st := mustStatus(t, d)
	if st.timeout != 0 || st.applied {
		t.Errorf("status = %+v, want disabled and not applied", st)
	}
}

func TestExternalChangeUpdatesTooltip(t *testing.T) {
	_, fake, _, surface := newTestDaemon(t)
	plans, _ := fake.ListPlans()

	fake.SetActiveDirectly(plans[1].ID)
	waitFor(t, "tooltip refresh", func() bool {
		return surface.lastTooltip() == "High performance"
	})
	if got := fake.SwitchCount(); got != 0 {
		t.Errorf("switches = %d, want 0 (change was external)", got)
	}
}

func TestActivatePlan(t *testing.T) {
	d, fake, _, _ := newTestDaemon(t)
	plans, _ := fake.ListPlans()

	if err := d.ActivatePlanIndex(2); err != nil {
		t.Fatalf("ActivatePlanIndex: %v", err)
	}
	if id, _ := fake.ActivePlan(); id != plans[2].ID {
		t.Errorf("active = %s, want %s", id, plans[2].ID)
	}

	if err := d.ActivatePlan(plans[1].ID); err != nil {
		t.Fatalf("ActivatePlan: %v", err)
	}
	if id, _ := fake.ActivePlan(); id != plans[1].ID {
		t.Errorf("active = %s, want %s", id, plans[1].ID)
	}

	if err := d.ActivatePlanIndex(99); !errors.Is(err, powerplan.ErrUnknownPlan) {
		t.Errorf("out-of-range err = %v, want ErrUnknownPlan", err)
	}
	if err := d.ActivatePlan(uuid.New()); !errors.Is(err, powerplan.ErrUnknownPlan) {
		t.Errorf("unknown id err = %v, want ErrUnknownPlan", err)
	}
}

func TestSetAfkTimeoutValidation(t *testing.T) {
	d, _, _, _ := newTestDaemon(t)

	for _, bad := range []int{-1, 0, 7, 90} {
		if err := d.SetAfkTimeout(bad); err == nil {
			t.Errorf("SetAfkTimeout(%d) accepted", bad)
		}
	}
	if err := d.SetAfkTimeout(45); err != nil {
		t.Errorf("SetAfkTimeout(45): %v", err)
	}
	if st := mustStatus(t, d); st.timeout != 45 {
		t.Errorf("timeout = %d, want 45", st.timeout)
	}
}

func TestSettingsSurviveRestart(t *testing.T) {
	home := t.TempDir()
	t.Setenv("POWERTRAY_HOME", home)

	d1, err := NewWithConfig(testConfig())
	if err != nil {
		t.Fatalf("first daemon: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	go d1.loop(ctx)

	plans, _ := d1.Directory.ListPlans()
	if err := d1.SetAfkTimeout(30); err != nil {
		t.Fatalf("SetAfkTimeout: %v", err)
	}
	if err := d1.SetAfkTarget(plans[2].ID); err != nil {
		t.Fatalf("SetAfkTarget: %v", err)
	}
	cancel()
	d1.Close()

	d2, err := NewWithConfig(testConfig())
	if err != nil {
		t.Fatalf("second daemon: %v", err)
	}
	defer d2.Close()
	ctx2, cancel2 := context.WithCancel(context.Background())
	defer cancel2()
	go d2.loop(ctx2)

	st := mustStatus(t, d2)
	if st.timeout != 30 {
		t.Errorf("timeout = %d, want 30", st.timeout)
	}
	if st.target != plans[2].ID {
		t.Errorf("target = %s, want %s", st.target, plans[2].ID)
	}
}

func TestMenuReflectsState(t *testing.T) {
	d, fake, _, _ := newTestDaemon(t)
	plans, _ := fake.ListPlans()

	if err := d.SetAfkTimeout(10); err != nil {
		t.Fatalf("SetAfkTimeout: %v", err)
	}

	m, err := d.Menu()
	if err != nil {
		t.Fatalf("Menu: %v", err)
	}
	if m.Tooltip != "Balanced" {
		t.Errorf("tooltip = %q, want Balanced", m.Tooltip)
	}
	if len(m.Items) < len(plans)+2 {
		t.Errorf("menu too small: %d items", len(m.Items))
	}
}

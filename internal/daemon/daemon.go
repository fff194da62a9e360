package daemon

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/powertray/powertray/internal/afk"
	"github.com/powertray/powertray/internal/api"
	"github.com/powertray/powertray/internal/idle"
	"github.com/powertray/powertray/internal/metrics"
	"github.com/powertray/powertray/internal/powerplan"
	"github.com/powertray/powertray/internal/settings"
	"github.com/powertray/powertray/internal/singleinstance"
	"github.com/powertray/powertray/internal/startup"
	"github.com/powertray/powertray/internal/tray"
)

// ErrStopped is returned by controller calls once the event loop has
// exited.
var ErrStopped = errors.New("daemon: not running")

// Daemon owns the AFK configuration and runtime state. All state is
// mutated only on the event loop goroutine: the tickers and every
// controller call are serialized through it, so no locking is needed.
type Daemon struct {
	Config    Config
	Store     *settings.Store
	Directory powerplan.Directory
	Idle      idle.Monitor
	Surface   tray.Surface

	afkCfg   afk.Config
	afkState afk.State
	model    tray.Model

	afkInterval  time.Duration
	pollInterval time.Duration

	server *api.Server
	lock   *singleinstance.Lock
	cancel context.CancelFunc

	cmds chan func()
	done chan struct{}
}

// New creates a Daemon from the on-disk configuration.
func New() (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return NewWithConfig(cfg)
}

// NewWithConfig creates a Daemon with the given configuration. The
// single-instance guard is taken first; a second instance gets an
// error wrapping singleinstance.ErrAlreadyRunning and must exit
// without touching anything.
func NewWithConfig(cfg Config) (*Daemon, error) {
	lock, err := singleinstance.Acquire(Home())
	if err != nil {
		return nil, fmt.Errorf("instance guard: %w", err)
	}

	store, err := settings.Open(Home())
	if err != nil {
		lock.Release()
		return nil, fmt.Errorf("open settings: %w", err)
	}

	d := &Daemon{
		Config:       cfg,
		Store:        store,
		Idle:         idle.System(),
		Surface:      &logSurface{},
		afkInterval:  parseDuration(cfg.Timing.AfkCheckInterval, time.Second),
		pollInterval: parseDuration(cfg.Timing.PollInterval, 2*time.Second),
		lock:         lock,
		cmds:         make(chan func()),
		done:         make(chan struct{}),
	}

	if cfg.Plans.Fake {
		d.Directory = powerplan.NewFake(powerplan.DefaultFakePlans()...)
	} else {
		d.Directory = powerplan.System()
	}

	afkCfg, err := store.Load()
	if err != nil {
		// In-memory defaults stay authoritative for the session.
		log.Printf("[settings] load failed: %v", err)
	}
	d.afkCfg = afkCfg

	d.server = api.NewServer(d)
	if cfg.Telemetry.Prometheus {
		d.server.EnableMetrics()
	}

	d.seed()
	return d, nil
}

// seed initializes runtime state from the current OS state: the poll
// cache starts at the active plan, and an unset AFK target defaults to
// it so enabling AFK later causes no surprise switch.
func (d *Daemon) seed() {
	active, err := d.Directory.ActivePlan()
	if err != nil {
		return
	}
	d.afkState.LastObservedActive = active
	if d.afkCfg.TargetPlan == uuid.Nil {
		d.afkCfg.TargetPlan = active
		d.persistAfk()
	}
	d.refresh()
}

// Serve starts the event loop and the control API server, blocking
// until shutdown. On exit the away plan, if applied, deliberately
// stays active; only the explicit AFK-off action restores.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	go d.loop(ctx)

	addr := fmt.Sprintf("%s:%d", d.Config.API.Host, d.Config.API.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      d.server.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	notifyRefresh(ctx, func() { _ = d.Refresh() })

	go func() {
		select {
		case <-sigCh:
		case <-ctx.Done():
		}
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		_ = httpServer.Shutdown(shutdownCtx)
		cancel()
	}()

	fmt.Printf("powertray serving on http://%s\n", addr)
	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close shuts down daemon resources.
func (d *Daemon) Close() {
	if d.cancel != nil {
		d.cancel()
	}
	if d.Store != nil {
		_ = d.Store.Close()
	}
	if d.lock != nil {
		d.lock.Release()
	}
}

// ─── Event loop ─────────────────────────────────────────────────────────────

// loop is the single dispatch thread: the AFK ticker, the active-plan
// poll ticker, and controller commands are handled strictly one at a
// time, in arrival order.
func (d *Daemon) loop(ctx context.Context) {
	defer close(d.done)

	afkTicker := time.NewTicker(d.afkInterval)
	defer afkTicker.Stop()
	pollTicker := time.NewTicker(d.pollInterval)
	defer pollTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-afkTicker.C:
			d.handleAfkTick()
		case <-pollTicker.C:
			d.handlePoll()
		case fn := <-d.cmds:
			fn()
		}
	}
}

// do runs fn on the loop goroutine and waits for it.
func (d *Daemon) do(fn func()) error {
	ran := make(chan struct{})
	select {
	case d.cmds <- func() { fn(); close(ran) }:
	case <-d.done:
		return ErrStopped
	}
	select {
	case <-ran:
		return nil
	case <-d.done:
		return ErrStopped
	}
}

// doErr is do for functions that themselves can fail.
func (d *Daemon) doErr(fn func() error) error {
	var err error
	if derr := d.do(func() { err = fn() }); derr != nil {
		return derr
	}
	return err
}

func (d *Daemon) handleAfkTick() {
	in := afk.Inputs{
		IdleSeconds: d.Idle.Seconds(),
		ActivePlan:  d.activeOrNil(),
	}
	metrics.IdleSeconds.Set(float64(in.IdleSeconds))

	wasApplied := d.afkState.Applied
	st, fx := afk.Tick(d.afkCfg, d.afkState, in)
	d.afkState = st

	reason := "afk"
	if wasApplied && !st.Applied {
		reason = "restore"
	}
	d.applyEffects(fx, reason)

	if st.Applied != wasApplied {
		direction := "away"
		if !st.Applied {
			direction = "home"
		}
		metrics.AfkTransitions.WithLabelValues(direction).Inc()
		metrics.AfkApplied.Set(boolGauge(st.Applied))
		log.Printf("[afk] %s (idle %ds, threshold %ds)",
			direction, in.IdleSeconds, d.afkCfg.TimeoutMinutes*60)
	}
}

// handlePoll detects active-plan changes made outside this process
// (another app, powercfg, the OS) so the tooltip stays accurate.
func (d *Daemon) handlePoll() {
	active, err := d.Directory.ActivePlan()
	if err != nil {
		return // no information this tick
	}
	if active == d.afkState.LastObservedActive {
		return
	}
	d.afkState.LastObservedActive = active
	metrics.ExternalPlanChanges.Inc()
	log.Printf("[poll] active plan changed externally: %s", active)
	d.refresh()
}

// applyEffects performs the engine's requested side effects. Switch
// failures are logged and counted but never fed back into the engine;
// its bookkeeping has already advanced.
func (d *Daemon) applyEffects(fx []afk.Effect, reason string) {
	for _, f := range fx {
		switch f.Kind {
		case afk.SwitchPlan:
			if err := d.Directory.SetActivePlan(f.To); err != nil {
				log.Printf("[afk] switch to %s failed: %v", f.To, err)
				metrics.SwitchFailures.WithLabelValues(reason).Inc()
				continue
			}
			metrics.PlanSwitches.WithLabelValues(reason).Inc()
		case afk.RefreshTooltip:
			d.refresh()
		}
	}
}

// refresh re-queries the directory and re-renders the surface model.
func (d *Daemon) refresh() {
	plans, err := d.Directory.ListPlans()
	if err != nil {
		plans = nil
	}
	d.model = tray.BuildModel(plans, d.activeOrNil(), d.afkCfg, startup.Enabled())
	d.Surface.Update(d.model)
}

func (d *Daemon) activeOrNil() uuid.UUID {
	id, err := d.Directory.ActivePlan()
	if err != nil {
		return uuid.Nil
	}
	return id
}

func (d *Daemon) persistAfk() {
	// Best-effort: a failed save never blocks the feature for the
	// current session.
	if err := d.Store.Save(d.afkCfg); err != nil {
		log.Printf("[settings] save failed: %v", err)
	}
}

func (d *Daemon) switchPlan(id uuid.UUID, reason string) error {
	if err := d.Directory.SetActivePlan(id); err != nil {
		metrics.SwitchFailures.WithLabelValues(reason).Inc()
		return err
	}
	d.afkState.LastObservedActive = id
	metrics.PlanSwitches.WithLabelValues(reason).Inc()
	d.refresh()
	return nil
}

func (d *Daemon) planAt(index int) (powerplan.Plan, error) {
	plans, err := d.Directory.ListPlans()
	if err != nil {
		return powerplan.Plan{}, err
	}
	if index < 0 || index >= len(plans) {
		return powerplan.Plan{}, powerplan.ErrUnknownPlan
	}
	return plans[index], nil
}

// ─── Controller (api.Controller) ────────────────────────────────────────────

// Status reports the daemon's current user-visible state.
func (d *Daemon) Status() (api.Status, error) {
	var st api.Status
	err := d.do(func() {
		plans, _ := d.Directory.ListPlans()
		active := d.activeOrNil()
		name, _ := powerplan.NameOf(plans, active)
		st = api.Status{
			Tooltip:           tray.Tooltip(plans, active),
			ActivePlanID:      active,
			ActivePlanName:    name,
			AfkTimeoutMinutes: d.afkCfg.TimeoutMinutes,
			AfkTargetPlan:     d.afkCfg.TargetPlan,
			AfkApplied:        d.afkState.Applied,
			IdleSeconds:       d.Idle.Seconds(),
			StartupEnabled:    startup.Enabled(),
		}
	})
	return st, err
}

// Plans lists the current enumeration with the active plan flagged.
func (d *Daemon) Plans() ([]api.PlanEntry, error) {
	var entries []api.PlanEntry
	err := d.doErr(func() error {
		plans, err := d.Directory.ListPlans()
		if err != nil {
			return err
		}
		active := d.activeOrNil()
		for _, p := range plans {
			entries = append(entries, api.PlanEntry{Plan: p, Active: p.ID == active})
		}
		return nil
	})
	return entries, err
}

// Menu returns a freshly rendered menu model.
func (d *Daemon) Menu() (tray.Model, error) {
	var m tray.Model
	err := d.do(func() {
		d.refresh()
		m = d.model
	})
	return m, err
}

// ActivatePlan switches to the given plan (manual menu selection).
func (d *Daemon) ActivatePlan(id uuid.UUID) error {
	return d.doErr(func() error { return d.switchPlan(id, "manual") })
}

// ActivatePlanIndex switches to the plan at the given menu position.
func (d *Daemon) ActivatePlanIndex(index int) error {
	return d.doErr(func() error {
		p, err := d.planAt(index)
		if err != nil {
			return err
		}
		return d.switchPlan(p.ID, "manual")
	})
}

// SetAfkTimeout selects a timeout from the enumerated options and
// persists it. The next tick reconciles the runtime state naturally.
func (d *Daemon) SetAfkTimeout(minutes int) error {
	return d.doErr(func() error {
		if minutes <= 0 || !afk.ValidTimeout(minutes) {
			return afk.ErrInvalidTimeout
		}
		d.afkCfg.TimeoutMinutes = minutes
		d.persistAfk()
		d.refresh()
		return nil
	})
}

// SetAfkTarget selects the plan to switch to when away.
func (d *Daemon) SetAfkTarget(id uuid.UUID) error {
	return d.doErr(func() error {
		plans, err := d.Directory.ListPlans()
		if err != nil {
			return err
		}
		if _, ok := powerplan.NameOf(plans, id); !ok {
			return powerplan.ErrUnknownPlan
		}
		d.afkCfg.TargetPlan = id
		d.persistAfk()
		d.refresh()
		return nil
	})
}

// SetAfkTargetIndex selects the AFK target by menu position.
func (d *Daemon) SetAfkTargetIndex(index int) error {
	return d.doErr(func() error {
		p, err := d.planAt(index)
		if err != nil {
			return err
		}
		d.afkCfg.TargetPlan = p.ID
		d.persistAfk()
		d.refresh()
		return nil
	})
}

// AfkOff disables the feature and, if the away plan is applied,
// restores the previous plan immediately.
func (d *Daemon) AfkOff() error {
	return d.do(func() {
		in := afk.Inputs{ActivePlan: d.activeOrNil()}
		cfg, st, fx := afk.Disable(d.afkCfg, d.afkState, in)
		wasApplied := d.afkState.Applied
		d.afkCfg, d.afkState = cfg, st
		d.applyEffects(fx, "restore")
		if wasApplied {
			metrics.AfkTransitions.WithLabelValues("home").Inc()
			metrics.AfkApplied.Set(0)
		}
		d.persistAfk()
		d.refresh()
	})
}

// SetStartup toggles launch-at-login.
func (d *Daemon) SetStartup(enabled bool) error {
	return d.doErr(func() error {
		if err := startup.SetEnabled(enabled); err != nil {
			return err
		}
		d.refresh()
		return nil
	})
}

// Refresh re-reads OS state and re-renders. Also the handler for the
// power-personality change signal.
func (d *Daemon) Refresh() error {
	return d.do(d.refresh)
}

// ─── Helpers ────────────────────────────────────────────────────────────────

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// logSurface logs tooltip changes; a GUI front-end would draw them.
type logSurface struct {
	tooltip string
}

func (s *logSurface) Update(m tray.Model) {
	if m.Tooltip == s.tooltip {
		return
	}
	s.tooltip = m.Tooltip
	log.Printf("[tray] tooltip: %s", m.Tooltip)
}

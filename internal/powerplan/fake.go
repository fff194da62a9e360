package powerplan

import (
	"sync"

	"github.com/google/uuid"
)

// Fake is an in-memory directory for tests and the daemon's --fake
// mode. Unlike the platform directories it keeps state, so switches
// are observable. It is safe for concurrent use so tests can inspect
// it while a daemon loop drives it.
type Fake struct {
	mu       sync.Mutex
	plans    []Plan
	active   uuid.UUID
	switches []uuid.UUID

	// FailActive makes ActivePlan return ErrNoActivePlan.
	FailActive bool
	// FailSwitch makes SetActivePlan fail without changing state.
	FailSwitch bool
}

// NewFake creates a fake directory with the given plans. The first plan
// starts active.
func NewFake(plans ...Plan) *Fake {
	f := &Fake{plans: plans}
	if len(plans) > 0 {
		f.active = plans[0].ID
	}
	return f
}

// DefaultFakePlans mirrors the three stock Windows plans.
func DefaultFakePlans() []Plan {
	return []Plan{
		{ID: uuid.MustParse("381b4222-f694-41f0-9685-ff5bb260df2e"), Name: "Balanced"},
		{ID: uuid.MustParse("8c5e7fda-e8bf-4a96-9a85-a6e23a8c635c"), Name: "High performance"},
		{ID: uuid.MustParse("a1841308-3541-4fab-bc81-f71556f20b4a"), Name: "Power saver"},
	}
}

func (f *Fake) ListPlans() ([]Plan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Plan, len(f.plans))
	copy(out, f.plans)
	return out, nil
}

func (f *Fake) ActivePlan() (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailActive {
		return uuid.Nil, ErrNoActivePlan
	}
	return f.active, nil
}

func (f *Fake) SetActivePlan(id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailSwitch {
		return ErrUnknownPlan
	}
	if _, ok := NameOf(f.plans, id); !ok {
		return ErrUnknownPlan
	}
	f.active = id
	f.switches = append(f.switches, id)
	return nil
}

// SetActiveDirectly changes the active plan without recording a switch,
// simulating another application changing the plan behind our back.
func (f *Fake) SetActiveDirectly(id uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.active = id
}

// SwitchCount returns how many SetActivePlan calls succeeded.
func (f *Fake) SwitchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.switches)
}

// Switches returns the recorded SetActivePlan targets in order.
func (f *Fake) Switches() []uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]uuid.UUID, len(f.switches))
	copy(out, f.switches)
	return out
}

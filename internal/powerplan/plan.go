// Package powerplan enumerates OS power plans and switches the active
// one. The directory is a stateless query/dispatch layer: nothing is
// cached between calls, so results always reflect current OS state.
package powerplan

import (
	"errors"

	"github.com/google/uuid"
)

// Plan is an immutable snapshot of one OS power plan.
type Plan struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

var (
	// ErrUnsupported is returned on platforms without a power-plan API.
	ErrUnsupported = errors.New("powerplan: not supported on this platform")
	// ErrNoActivePlan is returned when the active plan cannot be resolved.
	ErrNoActivePlan = errors.New("powerplan: active plan unavailable")
	// ErrUnknownPlan is returned when a switch names a plan that does
	// not exist in the current enumeration.
	ErrUnknownPlan = errors.New("powerplan: unknown plan")
)

// Directory lists plans and resolves or switches the active one.
type Directory interface {
	// ListPlans enumerates plans in the OS's enumeration order.
	ListPlans() ([]Plan, error)
	// ActivePlan returns the identifier of the active plan.
	ActivePlan() (uuid.UUID, error)
	// SetActivePlan asks the OS to switch to the given plan.
	SetActivePlan(id uuid.UUID) error
}

// System returns the platform power-plan directory.
func System() Directory { return systemDirectory() }

// NameOf resolves id against an enumeration, returning ok=false when the
// plan is not present.
func NameOf(plans []Plan, id uuid.UUID) (string, bool) {
	for _, p := range plans {
		if p.ID == id {
			return p.Name, true
		}
	}
	return "", false
}

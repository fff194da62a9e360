//go:build !windows && !linux

package powerplan

import "github.com/google/uuid"

// Platforms without a supported power-plan API get a stub directory.
// The daemon still runs; the menu is just empty.
type unsupportedDirectory struct{}

func systemDirectory() Directory { return unsupportedDirectory{} }

func (unsupportedDirectory) ListPlans() ([]Plan, error)       { return nil, ErrUnsupported }
func (unsupportedDirectory) ActivePlan() (uuid.UUID, error)   { return uuid.Nil, ErrUnsupported }
func (unsupportedDirectory) SetActivePlan(uuid.UUID) error    { return ErrUnsupported }

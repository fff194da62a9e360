//go:build !linux && !darwin

package daemon

import "context"

// notifyRefresh is a no-op here; the poll ticker still picks up
// external plan changes within one interval.
func notifyRefresh(ctx context.Context, refresh func()) {}

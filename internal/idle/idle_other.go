//go:build !windows && !linux && !darwin

package idle

// osIdleSeconds always reports active on platforms without an idle
// query, keeping the AFK engine inert.
func osIdleSeconds() int { return 0 }

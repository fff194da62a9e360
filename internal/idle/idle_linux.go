//go:build linux

package idle

import (
	"os/exec"
	"strconv"
	"strings"
)

// osIdleSeconds returns how long the user has been idle on Linux.
// Uses xprintidle (X11); Wayland compositors expose no portable idle
// query, so without it the reading is 0 (assume active). A zero
// reading keeps the AFK engine in its home state, which is the safe
// direction to fail.
func osIdleSeconds() int {
	out, err := exec.Command("xprintidle").Output()
	if err != nil {
		return 0
	}
	ms, err := strconv.ParseInt(strings.TrimSpace(string(out)), 10, 64)
	if err != nil || ms < 0 {
		return 0
	}
	return int(ms / 1000)
}

//go:build darwin

package idle

import (
	"os/exec"
	"strconv"
	"strings"
)

// osIdleSeconds returns how long the user has been idle on macOS.
// Uses ioreg to query HIDIdleTime (reported in nanoseconds).
func osIdleSeconds() int {
	out, err := exec.Command("ioreg", "-c", "IOHIDSystem", "-d", "4").Output()
	if err != nil {
		return 0
	}
	for _, line := range strings.Split(string(out), "\n") {
		if !strings.Contains(line, "HIDIdleTime") {
			continue
		}
		parts := strings.Split(line, "=")
		if len(parts) != 2 {
			continue
		}
		ns, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
		if err != nil || ns < 0 {
			return 0
		}
		return int(ns / 1e9)
	}
	return 0
}

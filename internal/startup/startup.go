// Package startup manages the launch-at-login entry for powertray.
// The preference lives in the OS autostart mechanism itself (Run
// registry key on Windows, XDG autostart on Linux); presence of the
// entry means enabled.
package startup

import "errors"

// ErrUnsupported is returned on platforms without an autostart hook.
var ErrUnsupported = errors.New("startup: not supported on this platform")

// AppName is the registry value / desktop-entry name used for the hook.
const AppName = "PowerTray"

// Enabled reports whether launch-at-login is currently configured.
func Enabled() bool { return osEnabled() }

// SetEnabled adds or removes the launch-at-login entry for the current
// executable. Disabling an entry that does not exist is not an error.
func SetEnabled(enable bool) error { return osSetEnabled(enable) }

// runValue quotes the executable path so paths with spaces survive the
// shell/registry round trip. Plain quoting, not Go escaping: Windows
// paths contain backslashes.
func runValue(exe string) string {
	return `"` + exe + `"`
}

// desktopEntry renders the XDG autostart entry pointing at exe.
func desktopEntry(exe string) string {
	return "[Desktop Entry]\n" +
		"Type=Application\n" +
		"Name=" + AppName + "\n" +
		"Exec=" + runValue(exe) + " run\n" +
		"X-GNOME-Autostart-enabled=true\n"
}

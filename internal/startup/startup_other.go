//go:build !windows && !linux

package startup

func osEnabled() bool { return false }

func osSetEnabled(bool) error { return ErrUnsupported }

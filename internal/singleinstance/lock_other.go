//go:build !linux && !darwin && !windows

package singleinstance

import "os"

// No advisory locking available; the guard degrades to best-effort.
func lockFile(*os.File) error { return nil }

func unlockFile(*os.File) {}

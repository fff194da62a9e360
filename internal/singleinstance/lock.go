// Package singleinstance guards against two powertray processes
// fighting over the same power plan. The guard is a held file lock in
// the data directory; it is released by the OS even if the process
// dies, so there are no stale locks to clean up.
package singleinstance

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrAlreadyRunning means another process holds the lock.
var ErrAlreadyRunning = errors.New("singleinstance: already running")

// Lock is a held cross-process lock.
type Lock struct {
	f *os.File
}

// Acquire takes the instance lock under dir. It fails immediately with
// ErrAlreadyRunning when another process holds it; it never blocks.
func Acquire(dir string) (*Lock, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create lock dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, "powertray.lock"), os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}
	if err := lockFile(f); err != nil {
		f.Close()
		return nil, err
	}
	return &Lock{f: f}, nil
}

// Release drops the lock. Safe to call once at shutdown.
func (l *Lock) Release() {
	if l == nil || l.f == nil {
		return
	}
	unlockFile(l.f)
	l.f.Close()
	l.f = nil
}

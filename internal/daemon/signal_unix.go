//go:build linux || darwin

package daemon

import (
	"context"
	"os"
	"os/signal"

	"golang.org/x/sys/unix"
)

// notifyRefresh re-renders the tray model on SIGUSR1, the stand-in for
// the OS power-personality broadcast.
func notifyRefresh(ctx context.Context, refresh func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, unix.SIGUSR1)
	go func() {
		for {
			select {
			case <-ctx.Done():
				signal.Stop(ch)
				return
			case <-ch:
				refresh()
			}
		}
	}()
}

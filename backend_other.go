//go:build !linux

package watcher

import (
	"fmt"
	"runtime"
)

// Without inotify the tree is polled.
const defaultBackend = BackendPoll

func newInotifyAdapter(Config) (Adapter, error) {
	return nil, fmt.Errorf("%w: inotify is not available on %s", ErrUnknownBackend, runtime.GOOS)
}

//go:build !linux

package internal

import (
	"fmt"
	"runtime"
)

// Limits are the per-user inotify limits of this host.
type Limits struct {
	MaxUserWatches   int
	MaxUserInstances int
	MaxQueuedEvents  int
	CapSysAdmin      bool
}

func (l Limits) String() string { return "" }

// InotifyLimits is only meaningful on Linux.
func InotifyLimits() (Limits, error) {
	return Limits{}, fmt.Errorf("no inotify on %s", runtime.GOOS)
}

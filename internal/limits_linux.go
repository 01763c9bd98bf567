package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/syndtr/gocapability/capability"
)

const inotifySysctl = "/proc/sys/fs/inotify"

// Limits are the per-user inotify limits of this host.
type Limits struct {
	MaxUserWatches   int  // fs.inotify.max_user_watches
	MaxUserInstances int  // fs.inotify.max_user_instances
	MaxQueuedEvents  int  // fs.inotify.max_queued_events; beyond this IN_Q_OVERFLOW
	CapSysAdmin      bool // Whether this process may raise them
}

func (l Limits) String() string {
	return fmt.Sprintf("max_user_watches=%d max_user_instances=%d max_queued_events=%d cap_sys_admin=%t",
		l.MaxUserWatches, l.MaxUserInstances, l.MaxQueuedEvents, l.CapSysAdmin)
}

// InotifyLimits reads the inotify sysctls and checks CAP_SYS_ADMIN.
func InotifyLimits() (Limits, error) {
	var (
		l   Limits
		err error
	)
	if l.MaxUserWatches, err = readSysctl("max_user_watches"); err != nil {
		return l, err
	}
	if l.MaxUserInstances, err = readSysctl("max_user_instances"); err != nil {
		return l, err
	}
	if l.MaxQueuedEvents, err = readSysctl("max_queued_events"); err != nil {
		return l, err
	}
	l.CapSysAdmin, err = checkCapSysAdmin()
	return l, err
}

func readSysctl(name string) (int, error) {
	b, err := os.ReadFile(filepath.Join(inotifySysctl, name))
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(b)))
	if err != nil {
		return 0, fmt.Errorf("sysctl fs.inotify.%s: %w", name, err)
	}
	return n, nil
}

// return true if process has CAP_SYS_ADMIN privilege
// else return false
func checkCapSysAdmin() (bool, error) {
	capabilities, err := capability.NewPid2(os.Getpid())
	if err != nil {
		return false, err
	}
	if err := capabilities.Load(); err != nil {
		return false, err
	}
	return capabilities.Get(capability.EFFECTIVE, capability.CAP_SYS_ADMIN), nil
}

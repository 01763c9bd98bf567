package internal

import (
	"strings"

	"github.com/vogo/logger"
	"golang.org/x/sys/unix"
)

var names = []struct {
	n string
	m uint32
}{
	{"IN_ATTRIB", unix.IN_ATTRIB},
	{"IN_CREATE", unix.IN_CREATE},
	{"IN_DELETE", unix.IN_DELETE},
	{"IN_DELETE_SELF", unix.IN_DELETE_SELF},
	{"IN_IGNORED", unix.IN_IGNORED},
	{"IN_ISDIR", unix.IN_ISDIR},
	{"IN_MODIFY", unix.IN_MODIFY},
	{"IN_MOVED_FROM", unix.IN_MOVED_FROM},
	{"IN_MOVED_TO", unix.IN_MOVED_TO},
	{"IN_MOVE_SELF", unix.IN_MOVE_SELF},
	{"IN_Q_OVERFLOW", unix.IN_Q_OVERFLOW},
	{"IN_UNMOUNT", unix.IN_UNMOUNT},
}

// MaskString formats an inotify mask as "IN_CREATE | IN_ISDIR".
func MaskString(mask uint32) string {
	var l []string
	for _, n := range names {
		if mask&n.m == n.m {
			l = append(l, n.n)
		}
	}
	return strings.Join(l, " | ")
}

// Debug logs one raw inotify record; enabled with WTR_DEBUG=1.
func Debug(name string, mask uint32) {
	logger.Infof("WTR_DEBUG: %10d:%-40s → %q", mask, MaskString(mask), name)
}

//go:build !windows

package internal

import "syscall"

// IgnoringEINTR makes a function call and repeats it if it returns an
// EINTR error. Reads from an inotify fd were not restartable before Linux
// 3.8, and epoll_wait never is, regardless of SA_RESTART.
func IgnoringEINTR[T any](fn func() (T, error)) (T, error) {
	for {
		v, err := fn()
		if err != syscall.EINTR {
			return v, err
		}
	}
}

// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build linux

package watcher

import (
	"os"
	"time"

	"github.com/vogo/logger"
	"github.com/wtr-go/watcher/internal"
	"golang.org/x/sys/unix"
)

// openWatchSession creates a non-blocking inotify instance.
func openWatchSession(cb Callback) (int, bool) {
	fd, errno := unix.InotifyInit1(unix.IN_NONBLOCK | unix.IN_CLOEXEC)
	if fd == -1 {
		cb(diagnostic(TagWatchInit))
		logger.Errorf("watch session: %v", os.NewSyscallError("inotify_init1", errno))
		return -1, false
	}
	return fd, true
}

// openWaitSession creates an epoll instance with fd as its only source. If
// registering fd fails the epoll fd is closed again before returning; fd
// itself is left to the caller.
func openWaitSession(fd int, cb Callback) (int, bool) {
	epfd, errno := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if epfd == -1 {
		cb(diagnostic(TagWaitInit))
		logger.Errorf("wait session: %v", os.NewSyscallError("epoll_create1", errno))
		return -1, false
	}

	event := unix.EpollEvent{
		Fd:     int32(fd),
		Events: unix.EPOLLIN,
	}
	errno = unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, fd, &event)
	if errno != nil {
		cb(diagnostic(TagWaitInit))
		logger.Errorf("wait session: %v", os.NewSyscallError("epoll_ctl", errno))
		release(epfd, cb)
		return -1, false
	}
	return epfd, true
}

// release closes fd. A failure is reported but the descriptor is gone either
// way; it is never retried.
func release(fd int, cb Callback) bool {
	if err := unix.Close(fd); err != nil {
		cb(diagnostic(TagClose))
		logger.Errorf("release: %v", os.NewSyscallError("close", err))
		return false
	}
	return true
}

// waitReady blocks on epfd for at most timeout and returns the number of ready
// entries stored in events.
func waitReady(epfd int, events []unix.EpollEvent, timeout time.Duration) (int, error) {
	msec := int(timeout / time.Millisecond)
	if msec < 1 {
		msec = 1
	}
	n, err := internal.IgnoringEINTR(func() (int, error) {
		return unix.EpollWait(epfd, events, msec)
	})
	if err != nil {
		return 0, os.NewSyscallError("epoll_wait", err)
	}
	return n, nil
}

// Copyright 2010 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build linux

package watcher

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/vogo/logger"
	"github.com/wtr-go/watcher/internal"
	"golang.org/x/sys/unix"
)

// Events every watch is registered for. IN_IGNORED and IN_Q_OVERFLOW are
// always delivered; overflow is listed to make that explicit.
const watchMask = unix.IN_CREATE | unix.IN_MODIFY | unix.IN_DELETE |
	unix.IN_MOVED_FROM | unix.IN_MOVED_TO | unix.IN_Q_OVERFLOW

// A watched file has no parent watch to report its removal.
const fileRootMask = watchMask | unix.IN_DELETE_SELF

type inotify struct {
	interval time.Duration
	bufSize  int
}

func newInotifyAdapter(cfg Config) (Adapter, error) {
	return &inotify{interval: cfg.PollInterval, bufSize: cfg.BufferSize}, nil
}

// session is everything one Watch call owns: both descriptors, the registry,
// the scratch buffer and the callback. Nothing in it is shared.
type session struct {
	fd       int // inotify fd, as returned by inotify_init1()
	epfd     int // epoll fd, -1 until the wait session exists
	reg      *registry
	buf      []byte // Reused by every scan
	cb       Callback
	addWatch func(path string, mask uint32) (int, error)
}

func newSession(fd, bufSize int, cb Callback) *session {
	s := &session{
		fd:   fd,
		epfd: -1,
		reg:  newRegistry(),
		buf:  make([]byte, bufSize),
		cb:   cb,
	}
	s.addWatch = func(path string, mask uint32) (int, error) {
		return unix.InotifyAddWatch(s.fd, path, mask)
	}
	return s
}

// Watch watches path (a file or a directory tree) until isLiving(path) is
// false, the tree is gone, or something breaks.
func (a *inotify) Watch(path string, cb Callback, isLiving func(string) bool) bool {
	root, err := filepath.Abs(path)
	if err != nil {
		root = filepath.Clean(path)
	}

	fd, ok := openWatchSession(cb)
	if !ok {
		return false
	}
	s := newSession(fd, a.bufSize, cb)
	if !s.registerRoot(root) {
		s.close()
		return false
	}
	s.epfd, ok = openWaitSession(fd, cb)
	if !ok {
		s.close()
		return false
	}

	logger.Debugf("start watch %s: %d watches", root, s.reg.len())
	defer logger.Debugf("stop watch %s", root)
	return s.run(path, isLiving, a.interval)
}

// run waits on the wait session and drains the watch session until
// isLiving(path) is false or nothing is watched any more. Both sessions are
// released on every way out.
func (s *session) run(path string, isLiving func(string) bool, interval time.Duration) bool {
	var events [1]unix.EpollEvent
	for isLiving(path) && s.reg.len() > 0 {
		n, err := waitReady(s.epfd, events[:], interval)
		if err != nil {
			s.cb(diagnostic(TagWait))
			logger.Errorf("watch %s: %v", path, err)
			s.close()
			return false
		}
		for _, ev := range events[:n] {
			if int(ev.Fd) != s.fd || !isLiving(path) {
				continue
			}
			if !s.scan() {
				s.close()
				return false
			}
		}
	}
	return s.close()
}

// close releases the wait session (if any) and the watch session. Both are
// always attempted.
func (s *session) close() bool {
	ok := true
	if s.epfd != -1 {
		ok = release(s.epfd, s.cb)
		s.epfd = -1
	}
	if s.fd != -1 {
		ok = release(s.fd, s.cb) && ok
		s.fd = -1
	}
	return ok
}

// mark registers one watch. Failure is reported and otherwise ignored.
//
// With replace false a directory that is already watched keeps the path it
// was first registered under, so a symlink alias found later in the walk
// doesn't take over the real path.
func (s *session) mark(path string, mask uint32, replace bool) bool {
	wd, err := s.addWatch(path, mask)
	if err != nil {
		s.cb(diagnostic(TagWatchAdd))
		err = os.NewSyscallError("inotify_add_watch", err)
		if errors.Is(err, unix.ENOSPC) {
			if l, lerr := internal.InotifyLimits(); lerr == nil {
				logger.Warnf("watch %s: %v (max_user_watches=%d, can raise: %t)",
					path, err, l.MaxUserWatches, l.CapSysAdmin)
				return false
			}
		}
		logger.Warnf("watch %s: %v", path, err)
		return false
	}
	if replace {
		s.reg.add(wd, path)
	} else if !s.reg.addNew(wd, path) {
		logger.Debugf("watch %s: already watched as another path", path)
	}
	return true
}

// registerRoot watches root and, if it's a directory, every directory below
// it. Only a failure on root itself is fatal.
func (s *session) registerRoot(root string) bool {
	mask := uint32(watchMask)
	if st, err := os.Stat(root); err == nil && !st.IsDir() {
		mask = fileRootMask
	}
	if !s.mark(root, mask, false) {
		return false
	}
	for _, d := range enumerateDirs(root)[1:] {
		s.mark(d, watchMask, false)
	}
	return true
}

// registerTree watches a directory that appeared after the watch started,
// along with any directories already inside it. A directory moved within the
// tree keeps its wd, so the new path replaces the old one.
func (s *session) registerTree(dir string) {
	for _, d := range enumerateDirs(dir) {
		s.mark(d, watchMask, true)
	}
}

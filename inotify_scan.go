// Copyright 2010 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build linux

package watcher

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"unsafe"

	"github.com/vogo/logger"
	"github.com/wtr-go/watcher/internal"
	"golang.org/x/sys/unix"
)

// scan reads until the inotify fd has nothing left, decoding every record.
// One epoll wakeup can stand for many queued records.
//
// It returns false only if read failed; EAGAIN is the normal way out.
func (s *session) scan() bool {
	for {
		n, err := internal.IgnoringEINTR(func() (int, error) {
			return unix.Read(s.fd, s.buf)
		})
		if errors.Is(err, unix.EAGAIN) || (err == nil && n <= 0) {
			return true
		}
		if err != nil {
			s.cb(diagnostic(TagRead))
			logger.Errorf("scan: %v", os.NewSyscallError("read", err))
			return false
		}
		s.decode(s.buf[:n])
	}
}

// decode walks the raw records in buf and passes one Event per record to the
// callback, in buffer order.
func (s *session) decode(buf []byte) {
	var (
		offset uint32
		n      = uint32(len(buf))
	)
	// While the offset points to at least one whole record...
	for offset+unix.SizeofInotifyEvent <= n {
		// Point "raw" to the record in the buffer
		raw := (*unix.InotifyEvent)(unsafe.Pointer(&buf[offset]))
		nameLen := raw.Len
		end := offset + unix.SizeofInotifyEvent + nameLen
		if end > n {
			logger.Warnf("scan: short record at offset %d", offset)
			return
		}

		// The name is padded with NUL bytes; absent for the watched path itself.
		var name string
		if nameLen > 0 {
			name = strings.TrimRight(string(buf[offset+unix.SizeofInotifyEvent:end]), "\x00")
		}
		if debug {
			internal.Debug(name, raw.Mask)
		}

		s.record(int(raw.Wd), raw.Mask, name)
		offset = end
	}
}

// record turns one raw record into an Event. The first matching flag wins:
// overflow, create, delete, move, modify.
func (s *session) record(wd int, mask uint32, name string) {
	if mask&unix.IN_Q_OVERFLOW != 0 {
		// wd is -1 here; there's nothing to look up.
		s.cb(diagnostic(TagOverflow))
		logger.Warnf("inotify queue overflow; events were dropped")
		return
	}
	if mask&unix.IN_IGNORED != 0 {
		// The kernel removed this watch (deleted, unmounted, or moved away
		// and deleted); nothing will arrive for wd any more.
		s.reg.remove(wd)
		return
	}

	base, ok := s.reg.lookup(wd)
	if !ok {
		s.cb(diagnostic(TagLookup))
		logger.Warnf("scan: record for unknown watch %d (%q)", wd, name)
		return
	}
	path := base
	if name != "" {
		path = filepath.Join(base, name)
	}
	kind := KindFile
	if mask&unix.IN_ISDIR != 0 {
		kind = KindDir
	}

	switch {
	case mask&unix.IN_CREATE != 0:
		s.cb(Event{Path: path, What: Create, Kind: kind})
		if kind == KindDir {
			s.registerTree(path)
		}
	case mask&(unix.IN_DELETE|unix.IN_DELETE_SELF) != 0:
		s.cb(Event{Path: path, What: Destroy, Kind: kind})
	case mask&unix.IN_MOVE != 0:
		s.cb(Event{Path: path, What: Rename, Kind: kind})
		if kind == KindDir && mask&unix.IN_MOVED_TO != 0 {
			s.registerTree(path)
		}
	case mask&unix.IN_MODIFY != 0:
		s.cb(Event{Path: path, What: Modify, Kind: kind})
	default:
		s.cb(Event{Path: path, What: Other, Kind: kind})
	}
}

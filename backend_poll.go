// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// This code is inspired from github.com/radovskyb/watcher package.

package watcher

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/vogo/logger"
)

// poller is the generic fallback: it lists the whole tree every interval and
// reports the differences. It needs no OS support, costs a full walk per
// interval, and misses changes that are undone within one interval.
type poller struct {
	interval time.Duration
}

func newPoller(cfg Config) *poller {
	return &poller{interval: cfg.PollInterval}
}

// Watch polls path until isLiving(path) is false or path disappears.
func (p *poller) Watch(path string, cb Callback, isLiving func(string) bool) bool {
	root, err := filepath.Abs(path)
	if err != nil {
		root = filepath.Clean(path)
	}

	files, err := list(root)
	if err != nil {
		cb(diagnostic(TagWatchAdd))
		logger.Errorf("poll %s: %v", root, err)
		return false
	}

	logger.Debugf("start poll %s: %d entries", root, len(files))
	defer logger.Debugf("stop poll %s", root)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for isLiving(path) {
		<-ticker.C
		if !isLiving(path) {
			break
		}

		next, err := list(root)
		if errors.Is(err, fs.ErrNotExist) {
			pollEvents(files, map[string]os.FileInfo{}, cb)
			return true
		}
		if err != nil {
			cb(diagnostic(TagRead))
			logger.Errorf("poll %s: %v", root, err)
			return false
		}
		pollEvents(files, next, cb)
		files = next
	}
	return true
}

// list returns root and everything below it. Unreadable directories are
// skipped, like enumerateDirs does.
func list(root string) (map[string]os.FileInfo, error) {
	st, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	fileList := map[string]os.FileInfo{root: st}
	if !st.IsDir() {
		return fileList, nil
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path != root && (errors.Is(err, fs.ErrPermission) || errors.Is(err, fs.ErrNotExist)) {
				return fs.SkipDir
			}
			return err
		}
		if path == root {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			// Removed between readdir and lstat.
			return nil
		}
		fileList[path] = info
		return nil
	})
	return fileList, err
}

func kindOf(info os.FileInfo) Kind {
	switch {
	case info.IsDir():
		return KindDir
	case info.Mode().IsRegular():
		return KindFile
	default:
		return KindOther
	}
}

// pollEvents compares two listings and reports what changed, sorted by path
// within each group: renames, creates, modifies, destroys.
func pollEvents(old, cur map[string]os.FileInfo, cb Callback) {
	// Store create and remove events for use to check for rename events.
	creates := make(map[string]os.FileInfo)
	removes := make(map[string]os.FileInfo)
	var modifies []string

	for path, info := range old {
		if _, found := cur[path]; !found {
			removes[path] = info
		}
	}
	for path, info := range cur {
		oldInfo, found := old[path]
		if !found {
			creates[path] = info
			continue
		}
		// A directory's mtime changes when its entries do; those are
		// reported for the entries themselves.
		if !info.IsDir() && (!oldInfo.ModTime().Equal(info.ModTime()) || oldInfo.Size() != info.Size()) {
			modifies = append(modifies, path)
		}
	}

	// A freed inode is often handed straight to the next new file, so the
	// inode alone doesn't make a rename. A rename keeps mtime and size; a
	// reused inode gets a fresh mtime. Each create pairs with one remove.
	var renames []string
	paired := make(map[string]bool)
	for _, path1 := range keys(removes) {
		info1 := removes[path1]
		for _, path2 := range keys(creates) {
			info2 := creates[path2]
			if paired[path2] || !os.SameFile(info1, info2) || info1.IsDir() != info2.IsDir() {
				continue
			}
			if !info1.ModTime().Equal(info2.ModTime()) || (!info1.IsDir() && info1.Size() != info2.Size()) {
				continue
			}
			// The create for the new name is still sent.
			paired[path2] = true
			renames = append(renames, path1)
			break
		}
	}

	emit := func(paths []string, what What, infos map[string]os.FileInfo) {
		sort.Strings(paths)
		for _, p := range paths {
			cb(Event{Path: p, What: what, Kind: kindOf(infos[p])})
		}
	}
	for _, p := range renames {
		delete(removes, p)
	}
	emit(renames, Rename, old)
	emit(keys(creates), Create, creates)
	emit(modifies, Modify, cur)
	emit(keys(removes), Destroy, removes)
}

// keys returns the paths of m, sorted.
func keys(m map[string]os.FileInfo) []string {
	k := make([]string, 0, len(m))
	for p := range m {
		k = append(k, p)
	}
	sort.Strings(k)
	return k
}

package watcher

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/vogo/logger"
)

// enumerateDirs returns root followed by every directory below it.
//
// Symlinks to directories are followed; a link leading back to one of its own
// ancestors is not descended into again. Directories that can't be read
// (usually EACCES) are skipped. If root isn't a directory, or doesn't exist,
// the result is just root: registering the watch is what reports that.
func enumerateDirs(root string) []string {
	dirs := []string{root}
	st, err := os.Stat(root)
	if err != nil || !st.IsDir() {
		return dirs
	}
	walkDirs(root, []os.FileInfo{st}, func(dir string) { dirs = append(dirs, dir) })
	return dirs
}

func walkDirs(dir string, parents []os.FileInfo, fn func(string)) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !errors.Is(err, fs.ErrPermission) {
			logger.Debugf("walk %s: %v", dir, err)
		}
		return
	}

	for _, e := range entries {
		if !e.IsDir() && e.Type()&fs.ModeSymlink == 0 {
			continue
		}
		path := filepath.Join(dir, e.Name())

		// Stat follows symlinks, so this is the target's info.
		st, err := os.Stat(path)
		if err != nil || !st.IsDir() || isLoop(st, parents) {
			continue
		}

		fn(path)
		walkDirs(path, append(parents[:len(parents):len(parents)], st), fn)
	}
}

func isLoop(st os.FileInfo, parents []os.FileInfo) bool {
	for _, p := range parents {
		if os.SameFile(st, p) {
			return true
		}
	}
	return false
}

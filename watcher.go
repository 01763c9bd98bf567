package watcher

import (
	"os"
	"sync"

	"github.com/vogo/gstop"
	"github.com/vogo/logger"
)

// Set WTR_DEBUG=1 to log every raw record an adapter decodes.
var debug = func() bool {
	v, ok := os.LookupEnv("WTR_DEBUG")
	return ok && v != "" && v != "0"
}()

// Watcher is a running watch. It owns one goroutine, which runs the adapter
// loop until Close.
type Watcher struct {
	path    string
	stopper *gstop.Stopper
	once    sync.Once
	done    chan struct{}
	ok      bool // Set by the watch goroutine before done is closed
}

// Watch starts watching path, a file or a directory tree, and calls cb for
// every change and every diagnostic. The watch runs until Close is called or
// the path can't be watched any more.
//
// Errors setting up the watch are reported to cb as diagnostics, not
// returned; Close then returns false.
func Watch(path string, cb Callback, opts ...Option) *Watcher {
	w := &Watcher{
		path:    path,
		stopper: gstop.New(),
		done:    make(chan struct{}),
	}

	cfg := getConfig(opts...)
	a, err := NewAdapter(cfg)
	if err != nil {
		cb(diagnostic(TagWatchInit))
		logger.Errorf("watch %s: %v", path, err)
		close(w.done)
		return w
	}

	go func() {
		defer close(w.done)
		w.ok = a.Watch(path, cb, w.isLiving)
	}()
	return w
}

func (w *Watcher) isLiving(string) bool {
	select {
	case <-w.stopper.C:
		return false
	default:
		return true
	}
}

// Done is closed when the watch loop has returned, either after Close or
// because the watch failed or its root went away.
func (w *Watcher) Done() <-chan struct{} { return w.done }

// Close stops the watch and waits for the loop to release everything. It
// returns true if the watch ran and shut down cleanly. Calling Close again
// returns the same result.
func (w *Watcher) Close() bool {
	w.once.Do(w.stopper.Stop)
	<-w.done
	return w.ok
}

package watcher

import "fmt"

// Adapter is one platform's way of watching a path.
//
// Watch blocks until isLiving(path) returns false or an unrecoverable error
// happens. Every change and every failure is passed to cb; the return value
// is true if the watch ran and shut down cleanly.
type Adapter interface {
	Watch(path string, cb Callback, isLiving func(string) bool) bool
}

// NewAdapter returns the adapter named by cfg.Backend.
func NewAdapter(cfg Config) (Adapter, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Backend {
	case BackendPoll:
		return newPoller(cfg), nil
	case BackendInotify:
		return newInotifyAdapter(cfg)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
}

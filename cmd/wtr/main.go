// Command wtr prints every change under a path.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/vogo/logger"
	"github.com/wtr-go/watcher"
	"github.com/wtr-go/watcher/internal"
)

var usage = `
wtr prints changes to a file or directory tree, one event per line.

Usage:

    wtr [-config FILE] [PATH [-UNIT TIME]]
    wtr -limits
    wtr -h | --help

  PATH
    Any existing path, relative or absolute. Defaults to ".".

  UNIT
    One of:
    -nanoseconds,  -ns,
    -microseconds, -us,
    -milliseconds, -ms,
    -seconds,      -s,
    -minutes,      -m,
    -hours,        -h,
    -days,         -d,
    -weeks,        -w,
    -months,       -mts,
    -years,        -y

  TIME
    A positive number. Without it wtr runs until stdin is closed.

  -config FILE
    YAML file with backend, poll_interval, buffer_size, log_level.

  -limits
    Print the inotify limits of this host and exit.
`[1:]

func exit(format string, a ...interface{}) {
	fmt.Fprintf(os.Stderr, filepath.Base(os.Args[0])+": "+format+"\n", a...)
	fmt.Fprint(os.Stderr, "\n"+usage)
	os.Exit(1)
}

func help() {
	fmt.Print(usage)
	os.Exit(0)
}

func main() {
	a, err := parseArgs(os.Args[1:])
	if err != nil {
		exit("%s", err)
	}
	switch {
	case a.help:
		help()
	case a.limits:
		l, err := internal.InotifyLimits()
		if err != nil {
			exit("%s", err)
		}
		fmt.Println(l)
		return
	}

	cfg := watcher.DefaultConfig()
	if a.config != "" {
		cfg, err = watcher.LoadConfig(a.config)
		if err != nil {
			exit("%s", err)
		}
	}
	if err := cfg.ApplyLogLevel(); err != nil {
		exit("%s", err)
	}

	w := watcher.Watch(a.path, func(e watcher.Event) {
		fmt.Println(e)
	}, watcher.WithConfig(cfg))

	select {
	case <-w.Done():
	case <-until(a.time):
	}
	if !w.Close() {
		logger.Warnf("watch %s did not shut down cleanly", a.path)
	}
}

// until is closed after d, or when stdin reaches EOF if d is zero.
func until(d time.Duration) <-chan struct{} {
	ch := make(chan struct{})
	go func() {
		defer close(ch)
		if d > 0 {
			time.Sleep(d)
			return
		}
		_, err := io.Copy(io.Discard, os.Stdin)
		if err != nil && !errors.Is(err, os.ErrClosed) {
			logger.Debugf("stdin: %v", err)
		}
	}()
	return ch
}

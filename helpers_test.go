package watcher

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

type testCase struct {
	name string
	ops  func(*testing.T, string)
	want string
	opts []Option
}

// run creates a temporary directory, lets setup prepare it, then watches it,
// runs ops, and compares what was collected to want.
func (tt testCase) run(t *testing.T, setup func(*testing.T, string) string) {
	t.Helper()
	t.Run(tt.name, func(t *testing.T) {
		t.Helper()
		t.Parallel()
		tmp := t.TempDir()

		root := tmp
		if setup != nil {
			root = setup(t, tmp)
		}
		w := newCollector(t, root, tt.opts...)
		tt.ops(t, tmp)

		cmpEvents(t, tmp, w.stop(t), newEvents(t, tt.want))
	})
}

// We wait a little bit after most commands; gives the system some time to sync
// things and makes things more consistent.
func eventSeparator() { time.Sleep(50 * time.Millisecond) }
func waitForEvents()  { time.Sleep(500 * time.Millisecond) }

var join = filepath.Join

// mkdir
func mkdir(t *testing.T, path ...string) {
	t.Helper()
	if err := os.Mkdir(join(path...), 0o0755); err != nil {
		t.Fatalf("mkdir(%q): %s", join(path...), err)
	}
	eventSeparator()
}

// mkdir -p
func mkdirAll(t *testing.T, path ...string) {
	t.Helper()
	if err := os.MkdirAll(join(path...), 0o0755); err != nil {
		t.Fatalf("mkdirAll(%q): %s", join(path...), err)
	}
	eventSeparator()
}

// ln -s
func symlink(t *testing.T, target string, link ...string) {
	t.Helper()
	if err := os.Symlink(target, join(link...)); err != nil {
		t.Fatalf("symlink(%q, %q): %s", target, join(link...), err)
	}
	eventSeparator()
}

// cat appends data with a single write.
func cat(t *testing.T, data string, path ...string) {
	t.Helper()
	err := func() error {
		fp, err := os.OpenFile(join(path...), os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		if _, err := fp.WriteString(data); err != nil {
			fp.Close()
			return err
		}
		return fp.Close()
	}()
	if err != nil {
		t.Fatalf("cat(%q): %s", join(path...), err)
	}
	eventSeparator()
}

// touch
func touch(t *testing.T, path ...string) {
	t.Helper()
	fp, err := os.Create(join(path...))
	if err != nil {
		t.Fatalf("touch(%q): %s", join(path...), err)
	}
	if err := fp.Close(); err != nil {
		t.Fatalf("touch(%q): %s", join(path...), err)
	}
	eventSeparator()
}

// mv
func mv(t *testing.T, src string, dst ...string) {
	t.Helper()
	if err := os.Rename(src, join(dst...)); err != nil {
		t.Fatalf("mv(%q, %q): %s", src, join(dst...), err)
	}
	eventSeparator()
}

// rm
func rm(t *testing.T, path ...string) {
	t.Helper()
	if err := os.Remove(join(path...)); err != nil {
		t.Fatalf("rm(%q): %s", join(path...), err)
	}
	eventSeparator()
}

// rm -r
func rmAll(t *testing.T, path ...string) {
	t.Helper()
	if err := os.RemoveAll(join(path...)); err != nil {
		t.Fatalf("rmAll(%q): %s", join(path...), err)
	}
	eventSeparator()
}

// Collect all events in an array.
//
//	w := newCollector(t, dir)
//	.. do stuff ..
//	events := w.stop(t)
type eventCollector struct {
	w  *Watcher
	mu sync.Mutex
	e  Events
}

func newCollector(t *testing.T, path string, opts ...Option) *eventCollector {
	t.Helper()
	c := &eventCollector{e: make(Events, 0, 8)}
	c.w = Watch(path, func(e Event) {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.e = append(c.e, e)
	}, opts...)
	// Let the initial registration finish before anything is changed.
	eventSeparator()
	return c
}

// stop collecting events and return what we've got.
func (c *eventCollector) stop(t *testing.T) Events {
	t.Helper()
	waitForEvents()

	closed := make(chan bool, 1)
	go func() { closed <- c.w.Close() }()
	select {
	case <-time.After(time.Second):
		t.Fatalf("watch was not closed after %s", time.Second)
	case ok := <-closed:
		if !ok {
			t.Errorf("Close() = false; events:\n%s", indent(c.events()))
		}
	}
	return c.events()
}

func (c *eventCollector) events() Events {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := make(Events, len(c.e))
	copy(e, c.e)
	return e
}

func (e Events) TrimPrefix(prefix string) Events {
	out := make(Events, len(e))
	for i := range e {
		out[i] = e[i]
		if e[i].Kind == KindWatcher {
			continue
		}
		if e[i].Path == prefix {
			out[i].Path = "/"
		} else {
			out[i].Path = strings.TrimPrefix(e[i].Path, prefix)
		}
	}
	return out
}

// Create a new Events list from a string; for example:
//
//	create  file  /path
//	destroy dir   /path
//	other watcher e/self/overflow
//
// Every event is one line of what, kind and path. Anything after a "#" is
// ignored. A single line "empty" means no events.
func newEvents(t *testing.T, s string) Events {
	t.Helper()

	events := Events{}
	for no, line := range strings.Split(s, "\n") {
		if i := strings.IndexByte(line, '#'); i > -1 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" || strings.EqualFold(line, "empty") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 3 {
			t.Fatalf("newEvents: line %d doesn't have 3 fields: %s", no, line)
		}

		var e Event
		switch strings.ToLower(fields[0]) {
		case "create":
			e.What = Create
		case "modify":
			e.What = Modify
		case "destroy":
			e.What = Destroy
		case "rename":
			e.What = Rename
		case "other":
			e.What = Other
		default:
			t.Fatalf("newEvents: line %d has unknown action %q: %s", no, fields[0], line)
		}
		switch strings.ToLower(fields[1]) {
		case "file":
			e.Kind = KindFile
		case "dir":
			e.Kind = KindDir
		case "watcher":
			e.Kind = KindWatcher
		case "other":
			e.Kind = KindOther
		default:
			t.Fatalf("newEvents: line %d has unknown kind %q: %s", no, fields[1], line)
		}
		e.Path = strings.Trim(fields[2], `"`)
		events = append(events, e)
	}
	return events
}

// cmpEvents compares in order; the adapter doesn't reorder what the kernel
// reports.
func cmpEvents(t *testing.T, tmp string, have, want Events) {
	t.Helper()

	have = have.TrimPrefix(tmp)
	if have.String() != want.String() {
		t.Errorf("\nhave:\n%s\nwant:\n%s", indent(have), indent(want))
	}
}

func indent(s fmt.Stringer) string {
	return "\t" + strings.ReplaceAll(s.String(), "\n", "\n\t")
}

// collect is a Callback that appends to a slice; for synchronous adapter calls.
func collect(e *Events) Callback {
	return func(ev Event) { *e = append(*e, ev) }
}

// stopAfter returns a liveness predicate that turns false after d.
func stopAfter(d time.Duration) func(string) bool {
	deadline := time.Now().Add(d)
	return func(string) bool { return time.Now().Before(deadline) }
}

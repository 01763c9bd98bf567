// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package watcher watches a file or a directory tree and reports every change
// to a callback.
//
// An adapter reports real filesystem changes and its own failures through the
// same Event type; failures carry KindWatcher and one of the diagnostic tags
// below as the Path.
package watcher

import (
	"fmt"
	"strings"
)

// What describes the action behind an Event.
type What uint8

const (
	Other What = iota
	Create
	Modify
	Destroy
	Rename
)

func (w What) String() string {
	switch w {
	case Create:
		return "create"
	case Modify:
		return "modify"
	case Destroy:
		return "destroy"
	case Rename:
		return "rename"
	default:
		return "other"
	}
}

// Kind describes the entity an Event is about.
type Kind uint8

const (
	KindOther Kind = iota
	KindFile
	KindDir
	// KindWatcher marks a diagnostic: the adapter itself failed or lost
	// records; Path holds one of the diagnostic tags.
	KindWatcher
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDir:
		return "dir"
	case KindWatcher:
		return "watcher"
	default:
		return "other"
	}
}

// Diagnostic tags. This set is closed; all tags are relative while every real
// event carries an absolute path.
const (
	TagWatchInit = "e/sys/watch_init" // creating the watch session failed
	TagWaitInit  = "e/sys/wait_init"  // creating the wait session failed
	TagWatchAdd  = "e/sys/watch_add"  // registering one watch failed
	TagWait      = "e/sys/wait"       // waiting for readiness failed
	TagRead      = "e/sys/read"       // reading records failed
	TagClose     = "e/sys/close"      // releasing a session failed
	TagOverflow  = "e/self/overflow"  // the kernel queue dropped records
	TagLookup    = "e/self/lookup"    // a record named an unknown watch
)

var diagnosticTags = map[string]struct{}{
	TagWatchInit: {}, TagWaitInit: {}, TagWatchAdd: {}, TagWait: {},
	TagRead: {}, TagClose: {}, TagOverflow: {}, TagLookup: {},
}

// IsDiagnosticTag reports if s is one of the reserved diagnostic tags.
func IsDiagnosticTag(s string) bool {
	_, ok := diagnosticTags[s]
	return ok
}

// Event is one observed change, or one diagnostic.
type Event struct {
	Path string
	What What
	Kind Kind
}

// Callback receives events synchronously on the watch goroutine. It should
// return quickly; a slow callback delays both delivery and Close.
type Callback func(Event)

func diagnostic(tag string) Event {
	return Event{Path: tag, What: Other, Kind: KindWatcher}
}

// IsDiagnostic reports if e describes an adapter failure rather than a
// filesystem change.
func (e Event) IsDiagnostic() bool { return e.Kind == KindWatcher }

// String formats the event e in the form
// {"path": "/tmp/file", "what": "create", "kind": "file"}
func (e Event) String() string {
	return fmt.Sprintf(`{"path": %q, "what": %q, "kind": %q}`, e.Path, e.What, e.Kind)
}

// Events is a list of events with a one-line-per-event String form.
type Events []Event

func (e Events) String() string {
	b := new(strings.Builder)
	for i, ee := range e {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(b, "%-8s %-8s %q", ee.What, ee.Kind, ee.Path)
	}
	return b.String()
}

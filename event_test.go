package watcher

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestEventString(t *testing.T) {
	tests := []struct {
		in   Event
		want string
	}{
		{Event{"/tmp/file", Create, KindFile}, `{"path": "/tmp/file", "what": "create", "kind": "file"}`},
		{Event{"/tmp/dir", Destroy, KindDir}, `{"path": "/tmp/dir", "what": "destroy", "kind": "dir"}`},
		{Event{"/tmp/\"q\"", Rename, KindOther}, `{"path": "/tmp/\"q\"", "what": "rename", "kind": "other"}`},
		{diagnostic(TagOverflow), `{"path": "e/self/overflow", "what": "other", "kind": "watcher"}`},
		{Event{}, `{"path": "", "what": "other", "kind": "other"}`},
	}

	for _, tt := range tests {
		t.Run("", func(t *testing.T) {
			if have := tt.in.String(); have != tt.want {
				t.Errorf("\nhave: %s\nwant: %s", have, tt.want)
			}
		})
	}
}

func TestDiagnosticTags(t *testing.T) {
	tags := []string{
		TagWatchInit, TagWaitInit, TagWatchAdd, TagWait,
		TagRead, TagClose, TagOverflow, TagLookup,
	}
	if len(tags) != len(diagnosticTags) {
		t.Fatalf("%d tags, %d registered", len(tags), len(diagnosticTags))
	}
	for _, tag := range tags {
		if !IsDiagnosticTag(tag) {
			t.Errorf("IsDiagnosticTag(%q) = false", tag)
		}
		// Real events always carry absolute paths.
		if filepath.IsAbs(tag) || !strings.HasPrefix(tag, "e/") {
			t.Errorf("tag %q can collide with a real path", tag)
		}
		if e := diagnostic(tag); !e.IsDiagnostic() || e.What != Other {
			t.Errorf("diagnostic(%q) = %s", tag, e)
		}
	}

	for _, s := range []string{"", "/e/sys/read", "e/sys", "e/self/other"} {
		if IsDiagnosticTag(s) {
			t.Errorf("IsDiagnosticTag(%q) = true", s)
		}
	}
	if (Event{Path: "/x", What: Create, Kind: KindFile}).IsDiagnostic() {
		t.Error("file event is a diagnostic")
	}
}

func TestEventsString(t *testing.T) {
	e := Events{
		{"/a", Create, KindFile},
		{TagLookup, Other, KindWatcher},
	}
	want := `create   file     "/a"` + "\n" + `other    watcher  "e/self/lookup"`
	if have := e.String(); have != want {
		t.Errorf("\nhave:\n%s\nwant:\n%s", have, want)
	}
	if (Events{}).String() != "" {
		t.Error("empty Events has a String")
	}
}

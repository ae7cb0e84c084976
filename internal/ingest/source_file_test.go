package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileSourceBareArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.json")
	content := `[
		{"timestamp":"2026-03-02T09:00:00Z","duration":300,"data":{"title":"Draft motion.docx","app":"Microsoft Word"}},
		{"timestamp":"2026-03-03T09:00:00Z","duration":300,"data":{"title":"Out of range","app":"Safari"}}
	]`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	src := NewFileSource(path)
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 2, 23, 59, 59, 0, time.UTC)
	events, err := src.Events(context.Background(), "aw-export:"+path, start, end)
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1 in range", len(events))
	}
	if events[0].Data.App != "Microsoft Word" {
		t.Errorf("app = %q", events[0].Data.App)
	}
}

func TestFileSourceWrappedObject(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.json")
	content := `{"events":[{"timestamp":"2026-03-02T09:00:00Z","duration":300,"data":{"title":"inbox","app":"Mail"}}]}`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	src := NewFileSource(path)
	events, err := src.Events(context.Background(), "",
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
}

func TestFileSourceMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.json")
	if err := os.WriteFile(path, []byte("not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	src := NewFileSource(path)
	if _, err := src.Events(context.Background(), "", time.Time{}, time.Now()); err == nil {
		t.Error("expected decode error")
	}
}

package outlook_test

import (
	"path/filepath"
	"testing"

	"github.com/billexact/billexact/internal/outlook"
	"github.com/billexact/billexact/internal/storage"
)

func makeEvent(id, subject, start, end string) outlook.CalendarEvent {
	return outlook.CalendarEvent{
		ID:          id,
		Subject:     subject,
		BodyPreview: "",
		IsAllDay:    false,
		IsCancelled: false,
		Sensitivity: "normal",
		ShowAs:      "busy",
		Start: struct {
			DateTime string `json:"dateTime"`
			TimeZone string `json:"timeZone"`
		}{DateTime: start, TimeZone: "UTC"},
		End: struct {
			DateTime string `json:"dateTime"`
			TimeZone string `json:"timeZone"`
		}{DateTime: end, TimeZone: "UTC"},
	}
}

func newSyncer(t *testing.T) *outlook.Syncer {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return outlook.NewSyncer(storage.NewStore(db))
}

func TestMapEventToEntry(t *testing.T) {
	s := newSyncer(t)
	event := makeEvent("ext-id-1", "Settlement conference with opposing counsel", "2026-02-27T09:00:00", "2026-02-27T10:30:00")

	opts := outlook.SyncOptions{ClientID: "ACME", MatterID: "ACME-001", TimekeeperID: "TK1"}
	entry, err := s.MapEventToEntry(event, "UTC", opts)
	if err != nil {
		t.Fatalf("MapEventToEntry: %v", err)
	}
	if entry.ExternalID != "ext-id-1" {
		t.Errorf("ExternalID = %q, want %q", entry.ExternalID, "ext-id-1")
	}
	if entry.Description != "Settlement conference with opposing counsel" {
		t.Errorf("Description = %q", entry.Description)
	}
	if entry.ClientID != "ACME" || entry.MatterID != "ACME-001" {
		t.Errorf("billing context not applied: %+v", entry)
	}
	if entry.Source != "outlook" {
		t.Errorf("Source = %q, want %q", entry.Source, "outlook")
	}
	if entry.DurationHours != 1.5 {
		t.Errorf("DurationHours = %v, want 1.5", entry.DurationHours)
	}
	if entry.ActivityCode == "" {
		t.Error("expected an activity code for a meeting")
	}
	if entry.WorkDate == nil || entry.WorkDate.Format("2006-01-02") != "2026-02-27" {
		t.Errorf("WorkDate = %v", entry.WorkDate)
	}
}

func TestMapEventToEntry_WithLocation(t *testing.T) {
	s := newSyncer(t)
	event := makeEvent("ext-id-2", "Status hearing", "2026-02-27T10:00:00", "2026-02-27T10:15:00")
	event.Location.DisplayName = "Courtroom 4B"

	entry, err := s.MapEventToEntry(event, "UTC", outlook.SyncOptions{})
	if err != nil {
		t.Fatalf("MapEventToEntry: %v", err)
	}
	if entry.Description != "Status hearing - Courtroom 4B" {
		t.Errorf("Description = %q", entry.Description)
	}
}

func TestSyncEvents_Import(t *testing.T) {
	s := newSyncer(t)
	events := []outlook.CalendarEvent{
		makeEvent("ext-1", "Deposition prep meeting", "2026-02-27T09:00:00", "2026-02-27T10:30:00"),
	}
	opts := outlook.SyncOptions{ClientID: "ACME", MatterID: "ACME-001"}

	result, err := s.SyncEvents(events, opts, "UTC")
	if err != nil {
		t.Fatalf("SyncEvents: %v", err)
	}
	if result.Imported != 1 {
		t.Errorf("Imported = %d, want 1", result.Imported)
	}
	if result.Skipped != 0 {
		t.Errorf("Skipped = %d, want 0", result.Skipped)
	}

	// Verify persisted.
	got, err := s.Store.EntryByExternalID("ext-1")
	if err != nil {
		t.Fatalf("EntryByExternalID: %v", err)
	}
	if got.MatterID != "ACME-001" {
		t.Errorf("MatterID = %q", got.MatterID)
	}
}

func TestSyncEvents_Idempotent(t *testing.T) {
	s := newSyncer(t)
	events := []outlook.CalendarEvent{
		makeEvent("ext-1", "Deposition prep meeting", "2026-02-27T09:00:00", "2026-02-27T10:30:00"),
	}
	opts := outlook.SyncOptions{ClientID: "ACME", MatterID: "ACME-001"}

	// First sync.
	r1, err := s.SyncEvents(events, opts, "UTC")
	if err != nil {
		t.Fatalf("first SyncEvents: %v", err)
	}
	if r1.Imported != 1 {
		t.Errorf("first sync: Imported = %d, want 1", r1.Imported)
	}

	// Second sync — must not duplicate.
	r2, err := s.SyncEvents(events, opts, "UTC")
	if err != nil {
		t.Fatalf("second SyncEvents: %v", err)
	}
	if r2.Imported != 0 {
		t.Errorf("second sync: Imported = %d, want 0 (idempotent)", r2.Imported)
	}
	if r2.Skipped != 1 {
		t.Errorf("second sync: Skipped = %d, want 1", r2.Skipped)
	}

	entries, err := s.Store.AllEntries()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d after 2 syncs, want 1", len(entries))
	}
}

func TestSyncEvents_Update(t *testing.T) {
	s := newSyncer(t)
	event := makeEvent("ext-1", "Deposition prep meeting", "2026-02-27T09:00:00", "2026-02-27T10:30:00")
	opts := outlook.SyncOptions{ClientID: "ACME", MatterID: "ACME-001"}

	// First sync.
	if _, err := s.SyncEvents([]outlook.CalendarEvent{event}, opts, "UTC"); err != nil {
		t.Fatalf("first SyncEvents: %v", err)
	}

	// The meeting got renamed.
	event.Subject = "Deposition prep meeting (rescheduled)"

	r2, err := s.SyncEvents([]outlook.CalendarEvent{event}, opts, "UTC")
	if err != nil {
		t.Fatalf("second SyncEvents: %v", err)
	}
	if r2.Updated != 1 {
		t.Errorf("Updated = %d, want 1", r2.Updated)
	}

	entries, err := s.Store.AllEntries()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	if entries[0].Description != "Deposition prep meeting (rescheduled)" {
		t.Errorf("Description = %q, want updated subject", entries[0].Description)
	}
}

func TestSyncEvents_SkipFiltered(t *testing.T) {
	s := newSyncer(t)

	tests := []struct {
		name  string
		event outlook.CalendarEvent
	}{
		{
			name: "cancelled",
			event: func() outlook.CalendarEvent {
				e := makeEvent("c1", "Cancelled", "2026-02-27T09:00:00", "2026-02-27T10:00:00")
				e.IsCancelled = true
				return e
			}(),
		},
		{
			name: "all-day",
			event: func() outlook.CalendarEvent {
				e := makeEvent("c2", "All Day", "2026-02-27T00:00:00", "2026-02-28T00:00:00")
				e.IsAllDay = true
				return e
			}(),
		},
		{
			name: "private",
			event: func() outlook.CalendarEvent {
				e := makeEvent("c3", "Private", "2026-02-27T09:00:00", "2026-02-27T10:00:00")
				e.Sensitivity = "private"
				return e
			}(),
		},
		{
			name: "free",
			event: func() outlook.CalendarEvent {
				e := makeEvent("c4", "Free Block", "2026-02-27T09:00:00", "2026-02-27T10:00:00")
				e.ShowAs = "free"
				return e
			}(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := s.SyncEvents([]outlook.CalendarEvent{tt.event}, outlook.SyncOptions{}, "UTC")
			if err != nil {
				t.Fatalf("SyncEvents: %v", err)
			}
			if r.Imported != 0 {
				t.Errorf("expected 0 imported for %s event, got %d", tt.name, r.Imported)
			}
		})
	}
}

func TestSyncEvents_DryRun(t *testing.T) {
	s := newSyncer(t)
	events := []outlook.CalendarEvent{
		makeEvent("ext-dry", "Dry Run Event", "2026-02-27T09:00:00", "2026-02-27T10:00:00"),
	}
	opts := outlook.SyncOptions{DryRun: true}

	result, err := s.SyncEvents(events, opts, "UTC")
	if err != nil {
		t.Fatalf("SyncEvents dry-run: %v", err)
	}
	if result.Imported != 1 {
		t.Errorf("dry-run Imported = %d, want 1", result.Imported)
	}

	// Nothing should be persisted.
	entries, err := s.Store.AllEntries()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("dry-run wrote %d entries, want 0", len(entries))
	}
}

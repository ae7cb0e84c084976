package ingest_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/billexact/billexact/internal/ingest"
	"github.com/billexact/billexact/internal/model"
	"github.com/billexact/billexact/internal/storage"
)

type fakeSource struct {
	events []ingest.Event
}

func (f *fakeSource) WindowBuckets(ctx context.Context) ([]string, error) {
	return []string{"aw-watcher-window_test"}, nil
}

func (f *fakeSource) Events(ctx context.Context, bucketID string, start, end time.Time) ([]ingest.Event, error) {
	return f.events, nil
}

func newStore(t *testing.T) *storage.Store {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return storage.NewStore(db)
}

func testEvents() []ingest.Event {
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	return []ingest.Event{
		{Timestamp: base, Duration: 600, Data: ingest.EventData{Title: "Acme v Initech - motion to compel.docx", App: "Microsoft Word"}},
		{Timestamp: base.Add(15 * time.Minute), Duration: 300, Data: ingest.EventData{Title: "https://facebook.com/feed", App: "Safari"}},
	}
}

func TestIngestPersistsAndCategorizes(t *testing.T) {
	store := newStore(t)
	svc := ingest.NewService(store)
	svc.Filters.NonbillableHosts = []string{"facebook.com"}

	since := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	until := since.Add(24 * time.Hour)
	res, err := svc.Ingest(context.Background(), &fakeSource{events: testEvents()}, since, until,
		ingest.Options{ClientID: "ACME", MatterID: "ACME-001", TimekeeperID: "TK1"})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if res.Inserted != 1 {
		t.Fatalf("Inserted = %d, want 1", res.Inserted)
	}

	entries, err := store.AllEntries()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	e := entries[0]
	if e.Source != "activitywatch" {
		t.Errorf("Source = %q", e.Source)
	}
	if e.MatterID != "ACME-001" || e.ClientID != "ACME" {
		t.Errorf("binding defaults not applied: %+v", e)
	}
	if e.UTBMSCode == "" {
		t.Errorf("expected a task code for a motion narrative, got none")
	}
	if e.DurationHours != 0.1667 {
		t.Errorf("DurationHours = %v, want 0.1667", e.DurationHours)
	}
}

func TestIngestIsIdempotent(t *testing.T) {
	store := newStore(t)
	svc := ingest.NewService(store)
	src := &fakeSource{events: testEvents()}

	since := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	until := since.Add(24 * time.Hour)
	opts := ingest.Options{ClientID: "ACME", MatterID: "ACME-001"}

	if _, err := svc.Ingest(context.Background(), src, since, until, opts); err != nil {
		t.Fatal(err)
	}
	res, err := svc.Ingest(context.Background(), src, since, until, opts)
	if err != nil {
		t.Fatal(err)
	}
	if res.Inserted != 0 {
		t.Fatalf("second run Inserted = %d, want 0", res.Inserted)
	}
	if res.Skipped == 0 {
		t.Error("second run should report skipped duplicates")
	}
}

func TestIngestHonorsBindings(t *testing.T) {
	store := newStore(t)
	for _, b := range []model.Binding{
		{Kind: model.BindingDoNotBill, Pattern: `personal`, Target: ""},
		{Kind: model.BindingMatter, Pattern: `initech`, Target: "GLB-9"},
	} {
		binding := b
		if err := store.SaveBinding(&binding); err != nil {
			t.Fatal(err)
		}
	}

	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	src := &fakeSource{events: []ingest.Event{
		{Timestamp: base, Duration: 600, Data: ingest.EventData{Title: "Personal budget.xlsx", App: "Excel"}},
		{Timestamp: base.Add(30 * time.Minute), Duration: 600, Data: ingest.EventData{Title: "Initech contract review.docx", App: "Microsoft Word"}},
	}}

	svc := ingest.NewService(store)
	res, err := svc.Ingest(context.Background(), src, base.Add(-time.Hour), base.Add(time.Hour),
		ingest.Options{ClientID: "ACME", MatterID: "ACME-001"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Inserted != 1 {
		t.Fatalf("Inserted = %d, want 1 (do-not-bill skipped)", res.Inserted)
	}

	entries, err := store.AllEntries()
	if err != nil {
		t.Fatal(err)
	}
	if entries[0].MatterID != "GLB-9" {
		t.Errorf("MatterID = %q, want binding target GLB-9", entries[0].MatterID)
	}
}

func TestIngestAppliesOverrides(t *testing.T) {
	store := newStore(t)
	o := model.UTBMSOverride{Phrase: "Weekly team sync", TaskCode: "L190", ActivityCode: "A109"}
	if err := store.SaveOverride(&o); err != nil {
		t.Fatal(err)
	}

	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	src := &fakeSource{events: []ingest.Event{
		{Timestamp: base, Duration: 600, Data: ingest.EventData{Title: "Weekly team sync", App: "Zoom"}},
	}}

	svc := ingest.NewService(store)
	if _, err := svc.Ingest(context.Background(), src, base.Add(-time.Hour), base.Add(time.Hour), ingest.Options{}); err != nil {
		t.Fatal(err)
	}

	entries, err := store.AllEntries()
	if err != nil {
		t.Fatal(err)
	}
	if entries[0].UTBMSCode != "L190" || entries[0].ActivityCode != "A109" {
		t.Errorf("override codes not applied: %+v", entries[0])
	}
	if entries[0].Confidence != 0.98 {
		t.Errorf("Confidence = %v, want 0.98", entries[0].Confidence)
	}
}

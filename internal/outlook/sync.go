package outlook

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/billexact/billexact/internal/model"
	"github.com/billexact/billexact/internal/storage"
	"github.com/billexact/billexact/internal/timecalc"
	"github.com/billexact/billexact/internal/utbms"
)

// SyncResult holds counters for a sync operation.
type SyncResult struct {
	Imported int
	Skipped  int
	Updated  int
	Errors   int
}

// SyncOptions configures a sync run.
type SyncOptions struct {
	From         time.Time
	To           time.Time
	DryRun       bool
	ClientID     string
	MatterID     string
	TimekeeperID string
}

// parseGraphTime parses a Graph API dateTime string in the given timezone.
// Graph returns times like "2026-02-27T09:00:00.0000000" without a zone suffix
// when a Prefer: outlook.timezone header is set.
func parseGraphTime(dt, tz string) (time.Time, error) {
	// Try RFC3339 first (includes timezone offset).
	if t, err := time.Parse(time.RFC3339, dt); err == nil {
		return t, nil
	}
	// Try RFC3339Nano.
	if t, err := time.Parse(time.RFC3339Nano, dt); err == nil {
		return t, nil
	}

	loc := time.UTC
	if tz != "" {
		if l, err := time.LoadLocation(tz); err == nil {
			loc = l
		}
	}

	// Graph returns fractional seconds: "2026-02-27T09:00:00.0000000"
	for _, layout := range []string{
		"2006-01-02T15:04:05.0000000",
		"2006-01-02T15:04:05",
	} {
		if t, err := time.ParseInLocation(layout, dt, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse graph time %q", dt)
}

// buildNarrative turns a meeting into a billing narrative: the subject,
// plus the location when one is set.
func buildNarrative(event CalendarEvent) string {
	parts := []string{strings.TrimSpace(event.Subject)}
	if event.Location.DisplayName != "" {
		parts = append(parts, event.Location.DisplayName)
	}
	return strings.Join(parts, " - ")
}

// shouldSkip returns true if the event should not be imported.
func shouldSkip(event CalendarEvent) bool {
	if event.IsCancelled {
		return true
	}
	if event.IsAllDay {
		return true
	}
	if event.Sensitivity == "private" {
		return true
	}
	if event.ShowAs == "free" {
		return true
	}
	if event.Start.DateTime == "" || event.End.DateTime == "" {
		return true
	}
	return false
}

// Syncer imports calendar events into the store, categorizing each narrative.
type Syncer struct {
	Store       *storage.Store
	Categorizer *utbms.Categorizer
}

// NewSyncer wires a syncer over the store with the store-backed override hook.
func NewSyncer(store *storage.Store) *Syncer {
	cat := utbms.NewCategorizer()
	cat.Override = store.Override
	return &Syncer{Store: store, Categorizer: cat}
}

// MapEventToEntry converts a Graph CalendarEvent into a time entry.
func (s *Syncer) MapEventToEntry(event CalendarEvent, timezone string, opts SyncOptions) (model.TimeEntry, error) {
	startTime, err := parseGraphTime(event.Start.DateTime, timezone)
	if err != nil {
		return model.TimeEntry{}, fmt.Errorf("parsing start time: %w", err)
	}
	endTime, err := parseGraphTime(event.End.DateTime, timezone)
	if err != nil {
		return model.TimeEntry{}, fmt.Errorf("parsing end time: %w", err)
	}

	narrative := buildNarrative(event)
	res := s.Categorizer.Categorize(narrative)
	activityCode := res.ActivityCode
	if activityCode == "" {
		activityCode = "A109" // attending a meeting
	}

	hours := math.Round(endTime.Sub(startTime).Hours()*10000) / 10000
	workDate := timecalc.StartOfDay(startTime.UTC())

	return model.TimeEntry{
		ID:            uuid.NewString(),
		ExternalID:    event.ID,
		WorkDate:      &workDate,
		StartedAt:     &startTime,
		ClientID:      opts.ClientID,
		MatterID:      opts.MatterID,
		TimekeeperID:  opts.TimekeeperID,
		DurationHours: hours,
		Description:   narrative,
		UTBMSCode:     res.TaskCode,
		ActivityCode:  activityCode,
		Confidence:    res.Confidence,
		Source:        "outlook",
	}, nil
}

// unchanged reports whether the stored entry already reflects the event.
func unchanged(existing, entry model.TimeEntry) bool {
	return existing.Description == entry.Description &&
		existing.StartedAt != nil && entry.StartedAt != nil &&
		existing.StartedAt.Equal(*entry.StartedAt) &&
		existing.DurationHours == entry.DurationHours
}

// SyncEvents processes a slice of Graph events and persists them to storage.
// It prints progress to stdout and returns a SyncResult. Events are keyed on
// their Graph ID, so re-running a sync never duplicates entries.
func (s *Syncer) SyncEvents(events []CalendarEvent, opts SyncOptions, timezone string) (SyncResult, error) {
	var result SyncResult

	for _, event := range events {
		if shouldSkip(event) {
			continue
		}

		entry, err := s.MapEventToEntry(event, timezone, opts)
		if err != nil {
			fmt.Printf("  ! Error mapping event %q: %v\n", event.Subject, err)
			result.Errors++
			continue
		}

		existing, err := s.Store.EntryByExternalID(event.ID)
		switch {
		case err == nil:
			if unchanged(existing, entry) {
				fmt.Printf("  – Skipped:  %s (already exists)\n", event.Subject)
				result.Skipped++
				continue
			}
			// Update: preserve the original ID but update the content.
			entry.ID = existing.ID
			entry.CreatedAt = existing.CreatedAt
			if !opts.DryRun {
				if err := s.Store.SaveEntry(&entry); err != nil {
					fmt.Printf("  ! Error updating %q: %v\n", event.Subject, err)
					result.Errors++
					continue
				}
			}
			fmt.Printf("  ↑ Updated:  %s (%s)\n", event.Subject, timecalc.FormatHours(entry.DurationHours))
			result.Updated++

		case errors.Is(err, storage.ErrNotFound):
			if !opts.DryRun {
				if err := s.Store.CreateEntry(&entry); err != nil {
					fmt.Printf("  ! Error saving %q: %v\n", event.Subject, err)
					result.Errors++
					continue
				}
			}
			fmt.Printf("  ✓ Imported: %s (%s)\n", event.Subject, timecalc.FormatHours(entry.DurationHours))
			result.Imported++

		default:
			fmt.Printf("  ! Error looking up %q: %v\n", event.Subject, err)
			result.Errors++
		}
	}

	return result, nil
}

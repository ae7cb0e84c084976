package ingest

import (
	"context"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/billexact/billexact/internal/logging"
	"github.com/billexact/billexact/internal/model"
	"github.com/billexact/billexact/internal/storage"
	"github.com/billexact/billexact/internal/utbms"
)

// EventSource abstracts where raw events come from (live ActivityWatch API
// or spooled export files).
type EventSource interface {
	WindowBuckets(ctx context.Context) ([]string, error)
	Events(ctx context.Context, bucketID string, start, end time.Time) ([]Event, error)
}

// Options identifies who and what ingested entries are billed to.
type Options struct {
	ClientID     string
	MatterID     string
	TimekeeperID string
}

// Result counts one ingestion run.
type Result struct {
	Fetched  int
	Inserted int
	Skipped  int // duplicates and do-not-bill items
}

// Service runs the ingestion pipeline: fetch, summarize, bind, categorize,
// persist.
type Service struct {
	Store       *storage.Store
	Categorizer *utbms.Categorizer
	Filters     Filters
	Log         *logrus.Logger
}

// NewService wires a service over the store with default filters and the
// store-backed override hook.
func NewService(store *storage.Store) *Service {
	cat := utbms.NewCategorizer()
	cat.Override = store.Override
	return &Service{
		Store:       store,
		Categorizer: cat,
		Filters:     DefaultFilters(),
		Log:         logging.GetLogger(),
	}
}

// resolveBinding applies stored bindings to the item's title and host.
// It returns the bound matter ID (empty when unbound) and whether the item
// is billable at all. Broken patterns are skipped, never fatal.
func (s *Service) resolveBinding(bindings []model.Binding, it Item) (matterID string, billable bool) {
	text := it.Description + " " + it.Host
	for _, b := range bindings {
		re, err := regexp.Compile("(?i)" + b.Pattern)
		if err != nil {
			logging.LogError(s.Log, "ingest", "resolveBinding", "compile", b.Pattern, err)
			continue
		}
		if !re.MatchString(text) {
			continue
		}
		switch b.Kind {
		case model.BindingDoNotBill:
			return "", false
		case model.BindingMatter:
			return b.Target, true
		}
	}
	return "", true
}

// Ingest fetches window events in [since, until], summarizes them and
// persists new entries. Re-running over the same range inserts nothing:
// entries are keyed on (start timestamp, description).
func (s *Service) Ingest(ctx context.Context, src EventSource, since, until time.Time, opts Options) (Result, error) {
	var result Result

	buckets, err := src.WindowBuckets(ctx)
	if err != nil {
		return result, err
	}

	var events []Event
	for _, id := range buckets {
		evs, err := src.Events(ctx, id, since, until)
		if err != nil {
			// One unreachable bucket must not abort the run.
			logging.LogError(s.Log, "ingest", "Ingest", "fetch bucket", id, err)
			continue
		}
		events = append(events, evs...)
	}
	result.Fetched = len(events)

	bindings, err := s.Store.Bindings()
	if err != nil {
		return result, err
	}

	for _, it := range Summarize(events, s.Filters) {
		matterID, billable := s.resolveBinding(bindings, it)
		if !billable {
			result.Skipped++
			continue
		}
		if matterID == "" {
			matterID = opts.MatterID
		}

		start := it.Start
		exists, err := s.Store.EntryExists(start, it.Description)
		if err != nil {
			return result, err
		}
		if exists {
			result.Skipped++
			continue
		}

		res := s.Categorizer.Categorize(it.Description)
		taskCode := res.TaskCode
		if taskCode == "" {
			taskCode = utbms.MapTaskCode(it.Description, it.App, it.Host)
		}

		workDate := it.Date
		entry := model.TimeEntry{
			ID:            uuid.NewString(),
			WorkDate:      &workDate,
			StartedAt:     &start,
			ClientID:      opts.ClientID,
			MatterID:      matterID,
			TimekeeperID:  opts.TimekeeperID,
			DurationHours: it.Hours(),
			Description:   it.Description,
			UTBMSCode:     taskCode,
			ActivityCode:  res.ActivityCode,
			Confidence:    res.Confidence,
			App:           it.App,
			Host:          it.Host,
			Source:        "activitywatch",
		}
		if err := s.Store.CreateEntry(&entry); err != nil {
			return result, err
		}
		result.Inserted++
	}

	s.Log.WithFields(logrus.Fields{
		"fetched":  result.Fetched,
		"inserted": result.Inserted,
		"skipped":  result.Skipped,
	}).Info("ingestion complete")
	return result, nil
}

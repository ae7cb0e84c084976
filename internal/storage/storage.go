// Package storage persists time entries and billing reference data in a
// local SQLite database.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/billexact/billexact/internal/model"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// DefaultPath returns the default database location (~/.billexact/billexact.db).
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".billexact", "billexact.db"), nil
}

// Open opens (creating directories as needed) the SQLite database at path
// and bootstraps the schema. Safe to call repeatedly.
func Open(path string) (*gorm.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", path, err)
	}

	if err := db.AutoMigrate(
		&model.TimeEntry{},
		&model.Matter{},
		&model.Timekeeper{},
		&model.Binding{},
		&model.UTBMSOverride{},
	); err != nil {
		return nil, fmt.Errorf("migrating schema: %w", err)
	}
	return db, nil
}

// Store wraps the database with the queries the rest of the system needs.
type Store struct {
	db *gorm.DB
}

// NewStore wraps an open database.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// CreateEntry inserts a new time entry.
func (s *Store) CreateEntry(e *model.TimeEntry) error {
	if err := s.db.Create(e).Error; err != nil {
		return fmt.Errorf("creating entry: %w", err)
	}
	return nil
}

// SaveEntry updates an existing entry (or inserts it when absent).
func (s *Store) SaveEntry(e *model.TimeEntry) error {
	if err := s.db.Save(e).Error; err != nil {
		return fmt.Errorf("saving entry: %w", err)
	}
	return nil
}

// EntryExists reports whether an entry with the exact start timestamp and
// description is already stored. Ingestion uses this for idempotency.
func (s *Store) EntryExists(startedAt time.Time, description string) (bool, error) {
	var count int64
	err := s.db.Model(&model.TimeEntry{}).
		Where("started_at = ? AND description = ?", startedAt, description).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("checking for duplicate entry: %w", err)
	}
	return count > 0, nil
}

// EntryByExternalID fetches the entry imported from an external source
// (e.g. a calendar event). Returns ErrNotFound when absent.
func (s *Store) EntryByExternalID(externalID string) (model.TimeEntry, error) {
	var e model.TimeEntry
	err := s.db.Where("external_id = ?", externalID).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.TimeEntry{}, ErrNotFound
	}
	if err != nil {
		return model.TimeEntry{}, fmt.Errorf("looking up entry by external id: %w", err)
	}
	return e, nil
}

// EntryFilter narrows EntriesBetween. Zero values mean "any".
type EntryFilter struct {
	ClientID       string
	ClientMatterID string
	TimekeeperID   string
}

// EntriesBetween returns entries with a work date in [from, to] inclusive,
// ordered by work date then ID for reproducible batches.
func (s *Store) EntriesBetween(from, to time.Time, f EntryFilter) ([]model.TimeEntry, error) {
	q := s.db.Where("work_date IS NOT NULL AND work_date >= ? AND work_date <= ?", from, to)
	if f.ClientID != "" {
		q = q.Where("client_id = ?", f.ClientID)
	}
	if f.ClientMatterID != "" {
		q = q.Where("matter_id = ?", f.ClientMatterID)
	}
	if f.TimekeeperID != "" {
		q = q.Where("timekeeper_id = ?", f.TimekeeperID)
	}

	var entries []model.TimeEntry
	if err := q.Order("work_date ASC, id ASC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	return entries, nil
}

// AllEntries returns every stored entry ordered by work date.
func (s *Store) AllEntries() ([]model.TimeEntry, error) {
	var entries []model.TimeEntry
	if err := s.db.Order("work_date ASC, id ASC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	return entries, nil
}

// Matter fetches a matter by the client's matter ID.
func (s *Store) Matter(clientMatterID string) (model.Matter, error) {
	var m model.Matter
	err := s.db.First(&m, "client_matter_id = ?", clientMatterID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Matter{}, fmt.Errorf("matter %q: %w", clientMatterID, ErrNotFound)
	}
	if err != nil {
		return model.Matter{}, fmt.Errorf("looking up matter: %w", err)
	}
	return m, nil
}

// SaveMatter inserts or updates a matter.
func (s *Store) SaveMatter(m *model.Matter) error {
	if err := s.db.Save(m).Error; err != nil {
		return fmt.Errorf("saving matter: %w", err)
	}
	return nil
}

// Timekeepers returns all timekeepers keyed by ID.
func (s *Store) Timekeepers() (map[string]model.Timekeeper, error) {
	var tks []model.Timekeeper
	if err := s.db.Find(&tks).Error; err != nil {
		return nil, fmt.Errorf("querying timekeepers: %w", err)
	}
	out := make(map[string]model.Timekeeper, len(tks))
	for _, tk := range tks {
		out[tk.ID] = tk
	}
	return out, nil
}

// SaveTimekeeper inserts or updates a timekeeper.
func (s *Store) SaveTimekeeper(tk *model.Timekeeper) error {
	if err := s.db.Save(tk).Error; err != nil {
		return fmt.Errorf("saving timekeeper: %w", err)
	}
	return nil
}

// Bindings returns all activity bindings in insertion order.
func (s *Store) Bindings() ([]model.Binding, error) {
	var bs []model.Binding
	if err := s.db.Order("id ASC").Find(&bs).Error; err != nil {
		return nil, fmt.Errorf("querying bindings: %w", err)
	}
	return bs, nil
}

// SaveBinding appends an activity binding.
func (s *Store) SaveBinding(b *model.Binding) error {
	if err := s.db.Create(b).Error; err != nil {
		return fmt.Errorf("saving binding: %w", err)
	}
	return nil
}

// Override resolves an exact-phrase UTBMS override. ok is false when the
// phrase has no override.
func (s *Store) Override(phrase string) (taskCode, activityCode string, ok bool) {
	var o model.UTBMSOverride
	err := s.db.Where("phrase = ?", phrase).First(&o).Error
	if err != nil {
		return "", "", false
	}
	return o.TaskCode, o.ActivityCode, true
}

// SaveOverride inserts or replaces the override for a phrase.
func (s *Store) SaveOverride(o *model.UTBMSOverride) error {
	var existing model.UTBMSOverride
	err := s.db.Where("phrase = ?", o.Phrase).First(&existing).Error
	if err == nil {
		o.ID = existing.ID
	}
	if err := s.db.Save(o).Error; err != nil {
		return fmt.Errorf("saving override: %w", err)
	}
	return nil
}

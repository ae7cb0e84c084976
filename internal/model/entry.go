package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TimeEntry is a single billable (or potentially billable) unit of work.
// Entries are immutable for the purposes of compliance evaluation; rules
// receive the batch and must not modify it.
type TimeEntry struct {
	ID            string     `json:"id" gorm:"primaryKey"`
	ExternalID    string     `json:"external_id,omitempty" gorm:"index"`
	WorkDate      *time.Time `json:"work_date,omitempty" gorm:"index"`
	StartedAt     *time.Time `json:"started_at,omitempty" gorm:"index:idx_entry_start_desc"`
	ClientID      string     `json:"client_id,omitempty" gorm:"index"`
	MatterID      string     `json:"matter_id,omitempty" gorm:"index"`
	TimekeeperID  string     `json:"timekeeper_id,omitempty"`
	DurationHours float64    `json:"duration_hours"`
	Description   string     `json:"description" gorm:"index:idx_entry_start_desc"`
	UTBMSCode     string     `json:"utbms_code,omitempty"`
	ActivityCode  string     `json:"activity_code,omitempty"`
	Confidence    float64    `json:"confidence,omitempty"`
	App           string     `json:"app,omitempty"`
	Host          string     `json:"host,omitempty"`
	Source        string     `json:"source"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Day returns the entry's work date truncated to midnight UTC, and whether
// the entry has a work date at all. Entries without one are excluded from
// all per-day aggregates.
func (e TimeEntry) Day() (time.Time, bool) {
	if e.WorkDate == nil {
		return time.Time{}, false
	}
	y, m, d := e.WorkDate.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
}

// Matter links a client's matter identifiers to the firm's own.
type Matter struct {
	ClientMatterID  string `json:"client_matter_id" gorm:"primaryKey"`
	ClientID        string `json:"client_id" gorm:"index"`
	LawFirmMatterID string `json:"law_firm_matter_id"`
	LawFirmID       string `json:"law_firm_id"`
	Description     string `json:"description"`
}

// Timekeeper is a billable individual with an hourly rate.
type Timekeeper struct {
	ID             string          `json:"id" gorm:"primaryKey"`
	Name           string          `json:"name"`
	Classification string          `json:"classification"`
	Rate           decimal.Decimal `json:"rate" gorm:"type:decimal(10,2)"`
}

// Binding kinds understood by the ingestion pipeline.
const (
	BindingMatter    = "matter"
	BindingDoNotBill = "do_not_bill"
)

// Binding maps an activity title/URL regex to a matter, or marks it
// non-billable. Patterns are evaluated in insertion order; first match wins.
type Binding struct {
	ID      uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	Kind    string `json:"kind"`
	Pattern string `json:"pattern"`
	Target  string `json:"target"`
}

// UTBMSOverride pins an exact narrative phrase to fixed UTBMS codes,
// bypassing the heuristic categorizer.
type UTBMSOverride struct {
	ID           uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	Phrase       string `json:"phrase" gorm:"uniqueIndex"`
	TaskCode     string `json:"task_code"`
	ActivityCode string `json:"activity_code"`
	Notes        string `json:"notes"`
}

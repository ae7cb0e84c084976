package compliance_test

import (
	"strings"
	"testing"
	"time"

	"github.com/billexact/billexact/internal/compliance"
	"github.com/billexact/billexact/internal/model"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func entry(id, desc string, hours float64, workDate *time.Time) model.TimeEntry {
	return model.TimeEntry{
		ID:            id,
		Description:   desc,
		DurationHours: hours,
		WorkDate:      workDate,
	}
}

func countByRule(issues []compliance.Issue, ruleID string) int {
	n := 0
	for _, i := range issues {
		if i.RuleID == ruleID {
			n++
		}
	}
	return n
}

func TestDescriptionLengthRule(t *testing.T) {
	rule := compliance.NewDescriptionLengthRule()

	entries := []model.TimeEntry{
		entry("e1", "short", 1.0, nil),
		entry("e2", "   padded short   ", 1.0, nil),
		entry("e3", "A sufficiently detailed narrative about the motion.", 1.0, nil),
		entry("e4", "", 1.0, nil),
	}

	issues := rule.Apply(entries)
	if len(issues) != 3 {
		t.Fatalf("issues = %d, want 3", len(issues))
	}
	for _, is := range issues {
		if is.Severity != compliance.SeverityWarning {
			t.Errorf("severity = %q, want warning", is.Severity)
		}
	}
	// Trimmed length is reported, not raw length.
	if issues[1].EntryID != "e2" || !strings.Contains(issues[1].Message, "(12 chars)") {
		t.Errorf("trimmed-length message = %+v", issues[1])
	}
}

func TestDescriptionLengthRule_CustomThreshold(t *testing.T) {
	rule := compliance.DescriptionLengthRule{MinChars: 5}
	issues := rule.Apply([]model.TimeEntry{
		entry("e1", "okay narrative", 1.0, nil),
		entry("e2", "nope", 1.0, nil),
	})
	if len(issues) != 1 || issues[0].EntryID != "e2" {
		t.Fatalf("issues = %+v, want one for e2", issues)
	}
}

func TestVaguePhraseRule_ShortNarrativeFires(t *testing.T) {
	rule := compliance.NewVaguePhraseRule()
	issues := rule.Apply([]model.TimeEntry{entry("e1", "work on it", 1.0, nil)})
	if len(issues) != 1 {
		t.Fatalf("issues = %d, want 1", len(issues))
	}
	if !strings.Contains(issues[0].Message, `"work on"`) {
		t.Errorf("message = %q, want it to name the phrase", issues[0].Message)
	}
}

func TestVaguePhraseRule_SixWordsOrMoreDoesNotFire(t *testing.T) {
	rule := compliance.NewVaguePhraseRule()
	// Seven words, phrase present: the detail requirement is satisfied.
	issues := rule.Apply([]model.TimeEntry{
		entry("e1", "work on various discovery responses as discussed with co-counsel", 1.0, nil),
	})
	if len(issues) != 0 {
		t.Fatalf("issues = %+v, want none for a 6+ word narrative", issues)
	}
}

func TestVaguePhraseRule_OneIssuePerEntry(t *testing.T) {
	rule := compliance.NewVaguePhraseRule()
	// "misc" and "admin" both match; only the first configured phrase reports.
	issues := rule.Apply([]model.TimeEntry{entry("e1", "misc admin", 1.0, nil)})
	if len(issues) != 1 {
		t.Fatalf("issues = %d, want 1 (no duplicates per entry)", len(issues))
	}
	if !strings.Contains(issues[0].Message, `"misc"`) {
		t.Errorf("message = %q, want first matching phrase", issues[0].Message)
	}
}

func TestBlockBillingRule(t *testing.T) {
	rule := compliance.NewBlockBillingRule()

	tests := []struct {
		desc string
		want bool
	}{
		// >=2 separators and >=2 distinct verbs.
		{"Draft and revise the motion; then call client", true},
		// Single verb, no separators.
		{"Draft motion", false},
		// Two distinct verbs, no extra separators: verb heuristic alone fires,
		// even on a legitimate single-task narrative.
		{"Review and analyze the contract", true},
		// -ing suffixes count as verb matches.
		{"Drafting then emailing opposing counsel", true},
		// Only the bare form and -ing are matched; -ed conjugations are not.
		{"Reviewed and analyzed the contract", false},
		// Same verb twice is one distinct verb.
		{"Draft letter. Draft memo.", false},
		// Two distinct separators, no verbs.
		{"item one; item two, item three", true},
		// One separator only.
		{"apples, oranges", false},
		// Verb as substring of a larger word must not match.
		{"Called the maildrop office", false},
	}

	for _, tt := range tests {
		issues := rule.Apply([]model.TimeEntry{entry("e1", tt.desc, 1.0, nil)})
		got := len(issues) == 1
		if got != tt.want {
			t.Errorf("BlockBilling(%q) fired = %v, want %v", tt.desc, got, tt.want)
		}
	}
}

func TestDailyHoursCapRule(t *testing.T) {
	rule := compliance.NewDailyHoursCapRule()
	d1 := date(2026, 3, 2)
	d2 := date(2026, 3, 3)

	var entries []model.TimeEntry
	for i := 0; i < 9; i++ {
		entries = append(entries, entry("a", "Research", 1.5, d1)) // 13.5h
	}
	entries = append(entries, entry("b", "Research", 2.0, d2)) // 2h, under cap
	entries = append(entries, entry("c", "Research", 5.0, nil))

	issues := rule.Apply(entries)
	if len(issues) != 1 {
		t.Fatalf("issues = %d, want 1 (one per offending date)", len(issues))
	}
	if issues[0].EntryID != "" {
		t.Errorf("EntryID = %q, want empty for batch-level issue", issues[0].EntryID)
	}
	if !strings.Contains(issues[0].Message, "13.50h") || !strings.Contains(issues[0].Message, "2026-03-02") {
		t.Errorf("message = %q", issues[0].Message)
	}
}

func TestDailyHoursCapRule_NilDatesNeverContribute(t *testing.T) {
	rule := compliance.NewDailyHoursCapRule()
	entries := []model.TimeEntry{
		entry("a", "Research", 10.0, nil),
		entry("b", "Research", 10.0, nil),
	}
	if issues := rule.Apply(entries); len(issues) != 0 {
		t.Fatalf("issues = %+v, want none for an all-nil-date batch", issues)
	}
}

func TestDailyHoursCapRule_FirstSeenDateOrder(t *testing.T) {
	rule := compliance.DailyHoursCapRule{MaxHours: 1.0}
	d1 := date(2026, 3, 5) // seen first, later calendar date
	d2 := date(2026, 3, 1)
	entries := []model.TimeEntry{
		entry("a", "x", 2.0, d1),
		entry("b", "y", 2.0, d2),
	}

	issues := rule.Apply(entries)
	if len(issues) != 2 {
		t.Fatalf("issues = %d, want 2", len(issues))
	}
	if !strings.Contains(issues[0].Message, "2026-03-05") {
		t.Errorf("first issue = %q, want first-seen date first", issues[0].Message)
	}
	if !strings.Contains(issues[1].Message, "2026-03-01") {
		t.Errorf("second issue = %q", issues[1].Message)
	}
}

func TestTravelTimeRule(t *testing.T) {
	rule := compliance.NewTravelTimeRule()
	issues := rule.Apply([]model.TimeEntry{
		entry("e1", "Travel to court for hearing", 2.0, nil),
		entry("e2", "Uber to deposition", 0.5, nil),
		entry("e3", "Draft appellate brief regarding venue", 3.0, nil),
	})
	if len(issues) != 2 {
		t.Fatalf("issues = %d, want 2", len(issues))
	}
	if issues[0].EntryID != "e1" || issues[1].EntryID != "e2" {
		t.Errorf("entry IDs = %q, %q", issues[0].EntryID, issues[1].EntryID)
	}
	if !strings.Contains(issues[0].Suggestion, compliance.DefaultTravelNote) {
		t.Errorf("suggestion = %q, want the carrier note", issues[0].Suggestion)
	}
}

func TestTravelTimeRule_SubstringNotWordBounded(t *testing.T) {
	rule := compliance.NewTravelTimeRule()
	// "cab" inside "cabinet" matches: the keyword check is a plain substring.
	issues := rule.Apply([]model.TimeEntry{entry("e1", "Reorganize filing cabinet", 1.0, nil)})
	if len(issues) != 1 {
		t.Fatalf("issues = %d, want 1 (substring matching)", len(issues))
	}
}

func TestMaxEntryDurationRule(t *testing.T) {
	rule := compliance.MaxEntryDurationRule{MaxHours: 8.0}
	issues := rule.Apply([]model.TimeEntry{
		entry("e1", "Document review, first pass", 9.5, nil),
		entry("e2", "Hearing preparation", 8.0, nil),
	})
	if len(issues) != 1 || issues[0].EntryID != "e1" {
		t.Fatalf("issues = %+v, want one for e1 only", issues)
	}
	if !strings.Contains(issues[0].Message, "9.50h > 8.00h") {
		t.Errorf("message = %q", issues[0].Message)
	}
}

func TestMaxEntryDurationRule_InertWithoutCap(t *testing.T) {
	rule := compliance.MaxEntryDurationRule{}
	issues := rule.Apply([]model.TimeEntry{entry("e1", "x", 100.0, nil)})
	if len(issues) != 0 {
		t.Fatalf("issues = %+v, want none when no cap is set", issues)
	}
}

func TestRulesDoNotMutateEntries(t *testing.T) {
	d := date(2026, 3, 2)
	entries := []model.TimeEntry{entry("e1", "work on it; travel and call", 20.0, d)}
	snapshot := entries[0]

	for _, r := range compliance.DefaultRules() {
		r.Apply(entries)
	}

	if entries[0] != snapshot {
		t.Fatalf("entry mutated by rule evaluation: %+v", entries[0])
	}
}

package compliance

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/billexact/billexact/internal/model"
)

// Rule is one unit of compliance logic. Apply receives the entire entry
// batch (some rules are inherently aggregate), must not mutate it, must not
// perform I/O, and must return issues in a deterministic insertion order.
type Rule interface {
	// ID is the stable identifier used for issue attribution and
	// configuration lookup.
	ID() string
	Apply(entries []model.TimeEntry) []Issue
}

// Rule identifiers, in default evaluation order.
const (
	RuleDescriptionLength = "description_length"
	RuleVaguePhrase       = "vague_phrase"
	RuleBlockBilling      = "block_billing"
	RuleDailyHoursCap     = "daily_hours_cap"
	RuleTravelTime        = "travel_time"
	RuleMaxEntryDuration  = "max_entry_duration"
)

// DescriptionLengthRule flags narratives shorter than MinChars after
// whitespace trimming.
type DescriptionLengthRule struct {
	MinChars int
}

// DefaultMinChars is the minimum narrative length accepted by default.
const DefaultMinChars = 20

// NewDescriptionLengthRule returns the rule with the default threshold.
func NewDescriptionLengthRule() DescriptionLengthRule {
	return DescriptionLengthRule{MinChars: DefaultMinChars}
}

func (DescriptionLengthRule) ID() string { return RuleDescriptionLength }

func (r DescriptionLengthRule) Apply(entries []model.TimeEntry) []Issue {
	var issues []Issue
	for _, e := range entries {
		desc := strings.TrimSpace(e.Description)
		if len(desc) < r.MinChars {
			issues = append(issues, Issue{
				RuleID:     r.ID(),
				EntryID:    e.ID,
				Severity:   SeverityWarning,
				Message:    fmt.Sprintf("Description too short (%d chars).", len(desc)),
				Suggestion: fmt.Sprintf("Add specifics (who/what/why); at least %d chars.", r.MinChars),
			})
		}
	}
	return issues
}

// DefaultVaguePhrases are narratives fee auditors routinely reject.
var DefaultVaguePhrases = []string{
	"work on", "misc", "general", "review docs", "review documents",
	"admin", "administrative", "follow up", "follow-up",
}

// VaguePhraseRule flags short narratives built around a vague stock phrase.
// A phrase match only counts when the whole narrative has fewer than six
// words; longer narratives are assumed to carry enough detail.
type VaguePhraseRule struct {
	Phrases []string
}

// NewVaguePhraseRule returns the rule with the default phrase list.
func NewVaguePhraseRule() VaguePhraseRule {
	return VaguePhraseRule{Phrases: DefaultVaguePhrases}
}

func (VaguePhraseRule) ID() string { return RuleVaguePhrase }

func (r VaguePhraseRule) Apply(entries []model.TimeEntry) []Issue {
	var issues []Issue
	for _, e := range entries {
		desc := strings.ToLower(strings.TrimSpace(e.Description))
		if len(strings.Fields(desc)) >= 6 {
			continue
		}
		for _, p := range r.Phrases {
			if strings.Contains(desc, p) {
				issues = append(issues, Issue{
					RuleID:     r.ID(),
					EntryID:    e.ID,
					Severity:   SeverityWarning,
					Message:    fmt.Sprintf("Vague phrase %q without specifics.", p),
					Suggestion: "Specify document names, parties, dates, or purpose.",
				})
				break // one issue per entry, first matching phrase wins
			}
		}
	}
	return issues
}

// blockBillingVerbs is the fixed action-verb list used to detect multiple
// tasks folded into one narrative.
var blockBillingVerbs = []string{
	"draft", "revise", "review", "research", "analyze", "email", "call",
	"meet", "prepare", "edit", "summarize", "outline", "negotiate",
}

// blockBillingSeparators are counted as distinct separators present, not
// occurrences.
var blockBillingSeparators = []string{";", " & ", " and ", ", "}

var blockBillingVerbPatterns = compileVerbPatterns(blockBillingVerbs)

func compileVerbPatterns(verbs []string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, len(verbs))
	for i, v := range verbs {
		// Whole-word match with an optional -ing suffix: "draft", "drafting".
		patterns[i] = regexp.MustCompile(`\b` + regexp.QuoteMeta(v) + `(ing)?\b`)
	}
	return patterns
}

// BlockBillingRule flags narratives that look like several tasks billed as
// one entry: either two or more distinct separators are present, or two or
// more distinct action verbs match. The two heuristics are OR'd without
// weighting; a long single-task narrative with two verbs still fires.
type BlockBillingRule struct{}

// NewBlockBillingRule returns the parameterless block-billing rule.
func NewBlockBillingRule() BlockBillingRule { return BlockBillingRule{} }

func (BlockBillingRule) ID() string { return RuleBlockBilling }

func (r BlockBillingRule) Apply(entries []model.TimeEntry) []Issue {
	var issues []Issue
	for _, e := range entries {
		desc := strings.ToLower(e.Description)

		separators := 0
		for _, sep := range blockBillingSeparators {
			if strings.Contains(desc, sep) {
				separators++
			}
		}

		verbs := 0
		for _, pat := range blockBillingVerbPatterns {
			if pat.MatchString(desc) {
				verbs++ // distinct verbs matched, not occurrences
			}
		}

		if separators >= 2 || verbs >= 2 {
			issues = append(issues, Issue{
				RuleID:     r.ID(),
				EntryID:    e.ID,
				Severity:   SeverityWarning,
				Message:    "Possible block billing (multiple tasks).",
				Suggestion: "Split into discrete entries per task.",
			})
		}
	}
	return issues
}

// DefaultDailyHoursCap is the default per-day billed-hours ceiling.
const DefaultDailyHoursCap = 12.0

// DailyHoursCapRule flags calendar days whose summed billed hours exceed
// MaxHours. Entries without a work date never contribute to any total.
// Issues are batch-level (no entry ID), one per offending date, in
// first-seen date order.
type DailyHoursCapRule struct {
	MaxHours float64
}

// NewDailyHoursCapRule returns the rule with the default cap.
func NewDailyHoursCapRule() DailyHoursCapRule {
	return DailyHoursCapRule{MaxHours: DefaultDailyHoursCap}
}

func (DailyHoursCapRule) ID() string { return RuleDailyHoursCap }

func (r DailyHoursCapRule) Apply(entries []model.TimeEntry) []Issue {
	totals := make(map[time.Time]float64)
	var order []time.Time
	for _, e := range entries {
		day, ok := e.Day()
		if !ok {
			continue
		}
		if _, seen := totals[day]; !seen {
			order = append(order, day)
		}
		totals[day] += e.DurationHours
	}

	var issues []Issue
	for _, day := range order {
		total := totals[day]
		if total > r.MaxHours {
			issues = append(issues, Issue{
				RuleID:     r.ID(),
				Severity:   SeverityWarning,
				Message:    fmt.Sprintf("Total billed %.2fh on %s > %.1fh cap.", total, day.Format("2006-01-02"), r.MaxHours),
				Suggestion: "Add justification or reallocate if appropriate.",
			})
		}
	}
	return issues
}

// DefaultTravelKeywords are substrings that indicate travel time.
var DefaultTravelKeywords = []string{
	"travel", "drive", "commute", "flight", "uber", "lyft", "cab", "taxi",
}

// DefaultTravelNote prefixes the travel-time suggestion text.
const DefaultTravelNote = "Many carriers pay 50% for travel time."

// TravelTimeRule flags narratives containing a travel keyword. Matching is a
// case-insensitive substring check, deliberately not word-bounded.
type TravelTimeRule struct {
	Keywords []string
	Note     string
}

// NewTravelTimeRule returns the rule with the default keyword list.
func NewTravelTimeRule() TravelTimeRule {
	return TravelTimeRule{Keywords: DefaultTravelKeywords, Note: DefaultTravelNote}
}

func (TravelTimeRule) ID() string { return RuleTravelTime }

func (r TravelTimeRule) Apply(entries []model.TimeEntry) []Issue {
	var issues []Issue
	for _, e := range entries {
		desc := strings.ToLower(e.Description)
		for _, k := range r.Keywords {
			if strings.Contains(desc, k) {
				issues = append(issues, Issue{
					RuleID:     r.ID(),
					EntryID:    e.ID,
					Severity:   SeverityWarning,
					Message:    "Travel time detected.",
					Suggestion: r.Note + " Consider separate entry and reduced rate if required.",
				})
				break
			}
		}
	}
	return issues
}

// MaxEntryDurationRule flags single entries longer than MaxHours. The rule is
// inert when MaxHours is unset (<= 0) and is off by default, unlike the
// other rules.
type MaxEntryDurationRule struct {
	MaxHours float64
}

func (MaxEntryDurationRule) ID() string { return RuleMaxEntryDuration }

func (r MaxEntryDurationRule) Apply(entries []model.TimeEntry) []Issue {
	if r.MaxHours <= 0 {
		return nil
	}
	var issues []Issue
	for _, e := range entries {
		if e.DurationHours > r.MaxHours {
			issues = append(issues, Issue{
				RuleID:     r.ID(),
				EntryID:    e.ID,
				Severity:   SeverityWarning,
				Message:    fmt.Sprintf("Entry %.2fh > %.2fh guideline.", e.DurationHours, r.MaxHours),
				Suggestion: "Split into smaller tasks.",
			})
		}
	}
	return issues
}

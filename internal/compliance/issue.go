package compliance

// Severity classifies how serious an issue is. Both levels are always
// reported; severity orders display, it never suppresses.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Issue is a single compliance finding. EntryID is empty for batch-level
// findings (e.g. a daily aggregate cap); Suggestion is optional remediation
// text. The JSON shape is the stable contract consumed by presentation layers.
type Issue struct {
	RuleID     string   `json:"rule_id"`
	EntryID    string   `json:"entry_id,omitempty"`
	Severity   Severity `json:"severity"`
	Message    string   `json:"message"`
	Suggestion string   `json:"suggestion,omitempty"`
}

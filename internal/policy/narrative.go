package policy

import (
	"regexp"
	"strings"
)

var (
	forbiddenPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bvarious tasks\b`),
		regexp.MustCompile(`(?i)\betc\.`),
		regexp.MustCompile(`(?i)\badmin(istrative)?\b`),
	}
	detailRequiredPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\breview(ed)?\b`),
		regexp.MustCompile(`(?i)\bwork(ed)? on\b`),
		regexp.MustCompile(`(?i)\bprepare(d)?\b`),
	}
	travelPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\btravel\b`),
		regexp.MustCompile(`(?i)\bdrive\b`),
		regexp.MustCompile(`(?i)\bflight\b`),
		regexp.MustCompile(`(?i)\buber\b`),
		regexp.MustCompile(`(?i)\bcab\b`),
	}
)

func anyMatch(patterns []*regexp.Regexp, text string) bool {
	for _, p := range patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// CheckNarrative lints one narrative against carrier drafting guidelines and
// returns a warning per violated guideline. It is advisory and independent of
// the compliance rule engine: this runs at entry-edit time, the engine runs
// over batches.
func CheckNarrative(text string) []string {
	t := strings.TrimSpace(text)
	var warnings []string

	for _, p := range forbiddenPatterns {
		if p.MatchString(t) {
			warnings = append(warnings, "Avoid vague terms like 'various tasks' or 'etc.'")
		}
	}
	if anyMatch(detailRequiredPatterns, t) && len(strings.Fields(t)) < 6 {
		warnings = append(warnings, "Add who/what/why (e.g., which docs, purpose, counterpart).")
	}
	if anyMatch(travelPatterns, t) && !strings.Contains(strings.ToLower(t), " to ") {
		warnings = append(warnings, "Travel requires destination and purpose (e.g., 'Travel to court for hearing').")
	}
	return warnings
}

// Package utbms maps free-text activity descriptions to UTBMS billing codes
// (ABA Litigation code set). Two mechanisms are provided: MapTaskCode, a
// coarse first-match keyword mapper, and Categorizer, a seed-based scorer
// that also proposes an activity code with a confidence and explanation.
package utbms

import "strings"

// Keyword groups checked in order by MapTaskCode. The first group with a hit
// decides the task code.
var (
	keysResearch  = []string{"westlaw", "lexis", "casetext", "scholar.google", "fastcase", "heinonline"}
	keysEmail     = []string{"outlook", "gmail", "mail", "imap", "smtp", "owa"}
	keysDiscovery = []string{"relativity", "everlaw", "discovery", "interrogatories", "rfo", "rpd"}
	keysDepo      = []string{"zoom", "webex", "teams", "gotomeeting", "deposition"}
	keysMotion    = []string{"motion", "ms word", "word", ".doc", "pleading", "brief"}
)

func containsAny(text string, keys []string) bool {
	for _, k := range keys {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// MapTaskCode returns a UTBMS task code for a description plus the optional
// application and host that produced it. It is deliberately coarse: research
// tools map to L120, mail clients to L140, discovery platforms to L230,
// meeting tools to L330, drafting hints to L310, with app-based fallbacks and
// L130 (case assessment) as the default.
func MapTaskCode(desc, app, host string) string {
	s := strings.ToLower(desc)
	a := strings.ToLower(app)
	h := strings.ToLower(host)
	text := s + " " + a + " " + h

	switch {
	case containsAny(text, keysResearch):
		return "L120"
	case containsAny(text, keysEmail):
		return "L140"
	case containsAny(text, keysDiscovery):
		return "L230"
	case containsAny(text, keysDepo):
		return "L330"
	case containsAny(text, keysMotion):
		return "L310"
	}

	// Fallbacks by application or file type.
	if strings.Contains(s, "pdf") || strings.Contains(a, "preview") {
		return "L230"
	}
	if strings.Contains(a, "word") || strings.HasSuffix(s, ".doc") {
		return "L310"
	}
	if strings.Contains(a, "chrome") || strings.Contains(a, "safari") || strings.Contains(a, "firefox") {
		return "L120"
	}
	return "L130"
}

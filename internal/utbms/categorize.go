package utbms

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"sync"
)

// Seeds hold the keyword tables driving categorization: task codes keyed by
// phase nouns, activity codes keyed by verbs.
type Seeds struct {
	Task     map[string][]string `yaml:"task" json:"task"`
	Activity map[string][]string `yaml:"activity" json:"activity"`
}

// DefaultSeeds returns the built-in UTBMS seed tables.
func DefaultSeeds() Seeds {
	return Seeds{
		Activity: map[string][]string{
			"A101": {"plan", "prepare", "organize"},
			"A102": {"research"},
			"A103": {"draft", "revise", "edit"},
			"A104": {"review", "analyze", "summarize"},
			"A105": {"email", "call", "confer", "correspond"},
			"A109": {"attend", "appear", "hearing", "meeting"},
		},
		Task: map[string][]string{
			"L120": {"research", "westlaw", "lexis", "caselaw", "authority"},
			"L140": {"email", "correspondence", "letter"},
			"L210": {"complaint", "answer", "pleading"},
			"L230": {"discovery", "interrogatories", "production", "subpoena"},
			"L240": {"motion", "summary judgment"},
			"L310": {"brief", "memorandum"},
			"L330": {"deposition", "transcript"},
		},
	}
}

// Result is one categorization outcome. Why carries the matched evidence so
// suggestions stay auditable.
type Result struct {
	TaskCode     string   `json:"task_code,omitempty"`
	ActivityCode string   `json:"activity_code,omitempty"`
	Confidence   float64  `json:"confidence"`
	Why          []string `json:"why"`
	Description  string   `json:"description"`
}

// OverrideFunc resolves an exact narrative phrase to pinned codes. It returns
// ok=false when no override exists. Implementations are free to hit storage.
type OverrideFunc func(text string) (taskCode, activityCode string, ok bool)

// Categorizer scores narratives against seed tables, with an optional
// exact-phrase override hook consulted first.
type Categorizer struct {
	Seeds    Seeds
	Override OverrideFunc

	mu       sync.Mutex
	patterns map[string]*regexp.Regexp
}

// NewCategorizer returns a categorizer over the default seeds.
func NewCategorizer() *Categorizer {
	return &Categorizer{Seeds: DefaultSeeds()}
}

// wordPattern returns (caching) a case-insensitive whole-word matcher for w.
func (c *Categorizer) wordPattern(w string) *regexp.Regexp {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.patterns == nil {
		c.patterns = make(map[string]*regexp.Regexp)
	}
	if p, ok := c.patterns[w]; ok {
		return p
	}
	p := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(w) + `\b`)
	c.patterns[w] = p
	return p
}

func (c *Categorizer) matchList(text string, words []string) []string {
	var hits []string
	for _, w := range words {
		if c.wordPattern(w).MatchString(text) {
			hits = append(hits, w)
		}
	}
	return hits
}

// bestCode picks the code with the most keyword hits. Ties break on code
// order so results stay deterministic.
func (c *Categorizer) bestCode(text string, table map[string][]string) (string, []string) {
	codes := make([]string, 0, len(table))
	for code := range table {
		codes = append(codes, code)
	}
	sort.Strings(codes) // map order is random

	var best string
	var bestHits []string

	for _, code := range codes {
		hits := c.matchList(text, table[code])
		if len(hits) > len(bestHits) {
			best, bestHits = code, hits
		}
	}
	return best, bestHits
}

// Categorize scores a narrative. Overrides win outright at 0.98 confidence;
// otherwise the best activity and task seed matches are combined into a
// confidence between 0.35 and 0.99.
func (c *Categorizer) Categorize(text string) Result {
	t := strings.TrimSpace(text)
	if t == "" {
		return Result{Confidence: 0, Why: []string{}, Description: text}
	}

	if c.Override != nil {
		if task, activity, ok := c.Override(t); ok {
			return Result{
				TaskCode:     task,
				ActivityCode: activity,
				Confidence:   0.98,
				Why:          []string{"override: exact phrase"},
				Description:  text,
			}
		}
	}

	lower := strings.ToLower(t)
	why := []string{}

	activity, activityHits := c.bestCode(lower, c.Seeds.Activity)
	if activity != "" {
		why = append(why, activity+": "+strings.Join(activityHits, ", "))
	}
	task, taskHits := c.bestCode(lower, c.Seeds.Task)
	if task != "" {
		why = append(why, task+": "+strings.Join(taskHits, ", "))
	}

	conf := 0.35
	if activity != "" {
		conf += 0.25 + 0.05*float64(len(activityHits))
	}
	if task != "" {
		conf += 0.25 + 0.05*float64(len(taskHits))
	}
	if conf > 0.99 {
		conf = 0.99
	}
	conf = math.Round(conf*100) / 100

	return Result{
		TaskCode:     task,
		ActivityCode: activity,
		Confidence:   conf,
		Why:          why,
		Description:  text,
	}
}

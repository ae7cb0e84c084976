package compliance

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/billexact/billexact/internal/model"
)

// RuleSettings is the per-rule section of a compliance configuration.
// Nil fields mean "use the rule's built-in default".
type RuleSettings struct {
	Enabled  *bool    `yaml:"enabled" json:"enabled"`
	MinChars *int     `yaml:"min_chars" json:"min_chars"`
	MaxHours *float64 `yaml:"max_hours" json:"max_hours"`
	Phrases  []string `yaml:"phrases" json:"phrases"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}

// Config is a declarative rule configuration. It is loaded fresh for every
// compliance run so threshold edits take effect between invocations.
// Unknown rule names are ignored for forward compatibility.
type Config struct {
	Rules map[string]RuleSettings `yaml:"rules" json:"rules"`
}

// LoadConfig reads a YAML (.yml/.yaml) or JSON rule configuration. A missing
// or malformed file degrades to nil, which makes the driver fall back to the
// default rule set; it is never an error for the caller.
func LoadConfig(path string) *Config {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil
		}
	}
	return &cfg
}

// DefaultRules is the rule set used when no configuration is supplied.
// max_entry_duration is deliberately absent; it only runs when configured
// with an explicit cap.
func DefaultRules() []Rule {
	return []Rule{
		NewDescriptionLengthRule(),
		NewVaguePhraseRule(),
		NewBlockBillingRule(),
		NewDailyHoursCapRule(),
		NewTravelTimeRule(),
	}
}

// enabled reports the effective enabled flag for a rule, honoring the
// per-rule default when the configuration is silent.
func (c *Config) enabled(name string, def bool) bool {
	if s, ok := c.Rules[name]; ok && s.Enabled != nil {
		return *s.Enabled
	}
	return def
}

// ActiveRules assembles the ordered rule list for one run. A nil config
// yields DefaultRules. Callers needing to distinguish "rules ran but found
// nothing" from "rules did not run" inspect this list.
func ActiveRules(cfg *Config) []Rule {
	if cfg == nil {
		return DefaultRules()
	}

	var rules []Rule

	if cfg.enabled(RuleDescriptionLength, true) {
		r := NewDescriptionLengthRule()
		if s := cfg.Rules[RuleDescriptionLength]; s.MinChars != nil {
			r.MinChars = *s.MinChars
		}
		rules = append(rules, r)
	}
	if cfg.enabled(RuleVaguePhrase, true) {
		r := NewVaguePhraseRule()
		if s := cfg.Rules[RuleVaguePhrase]; len(s.Phrases) > 0 {
			r.Phrases = s.Phrases
		}
		rules = append(rules, r)
	}
	if cfg.enabled(RuleBlockBilling, true) {
		rules = append(rules, NewBlockBillingRule())
	}
	if cfg.enabled(RuleDailyHoursCap, true) {
		r := NewDailyHoursCapRule()
		if s := cfg.Rules[RuleDailyHoursCap]; s.MaxHours != nil {
			r.MaxHours = *s.MaxHours
		}
		rules = append(rules, r)
	}
	if cfg.enabled(RuleTravelTime, true) {
		r := NewTravelTimeRule()
		if s := cfg.Rules[RuleTravelTime]; len(s.Keywords) > 0 {
			r.Keywords = s.Keywords
		}
		rules = append(rules, r)
	}
	if cfg.enabled(RuleMaxEntryDuration, false) {
		if s := cfg.Rules[RuleMaxEntryDuration]; s.MaxHours != nil {
			rules = append(rules, MaxEntryDurationRule{MaxHours: *s.MaxHours})
		}
	}

	return rules
}

// Run applies the active rule set to the full entry batch and returns the
// flat issue list: rule-list order first, within-rule emission order second.
// Issues from different rules are never de-duplicated; one entry can
// legitimately collect issues from several rules.
func Run(entries []model.TimeEntry, cfg *Config) []Issue {
	return RunRules(entries, ActiveRules(cfg))
}

// RunRules evaluates an explicit rule list against the batch.
func RunRules(entries []model.TimeEntry, rules []Rule) []Issue {
	issues := []Issue{}
	for _, r := range rules {
		issues = append(issues, r.Apply(entries)...)
	}
	return issues
}

// RunFile is the convenience entry point used by the CLI and web layer:
// it loads the configuration at path (defaults on failure) and evaluates.
func RunFile(entries []model.TimeEntry, path string) []Issue {
	return Run(entries, LoadConfig(path))
}

// Package config loads the application configuration from
// ~/.billexact/config.yaml, environment variables, and an optional .env file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/billexact/billexact/internal/ingest"
)

// Config is the root configuration, stored in ~/.billexact/config.yaml.
type Config struct {
	// DBPath is the SQLite database location. Empty = ~/.billexact/billexact.db.
	DBPath string `yaml:"db_path"`
	// RulesPath points to a compliance rules config (YAML or JSON).
	// Empty = built-in defaults.
	RulesPath string `yaml:"rules_path"`
	// PolicyDir holds per-client billing guideline overlays (_base.yml + *.yml).
	PolicyDir string `yaml:"policy_dir"`

	ActivityWatch ActivityWatchConfig `yaml:"activitywatch"`
	Outlook       OutlookConfig       `yaml:"outlook"`
	Server        ServerConfig        `yaml:"server"`
}

// ActivityWatchConfig holds desktop activity ingestion settings.
type ActivityWatchConfig struct {
	// URL is the local ActivityWatch API base. Empty = http://127.0.0.1:5600/api/0.
	URL string `yaml:"url"`
	// MinSeconds drops focus spans shorter than this. 0 = 120.
	MinSeconds int `yaml:"min_seconds"`
	// GapMergeSeconds merges same-task spans separated by at most this gap. 0 = 300.
	GapMergeSeconds int `yaml:"gap_merge_seconds"`

	NonbillableApps          []string `yaml:"nonbillable_apps"`
	NonbillableHosts         []string `yaml:"nonbillable_hosts"`
	NonbillableTitleKeywords []string `yaml:"nonbillable_title_keywords"`
}

// Filters converts the configured thresholds into ingestion filters.
func (c ActivityWatchConfig) Filters() ingest.Filters {
	f := ingest.DefaultFilters()
	if c.MinSeconds > 0 {
		f.MinSeconds = c.MinSeconds
	}
	if c.GapMergeSeconds > 0 {
		f.GapMergeSeconds = c.GapMergeSeconds
	}
	f.NonbillableApps = c.NonbillableApps
	f.NonbillableHosts = c.NonbillableHosts
	f.NonbillableTitleKeywords = c.NonbillableTitleKeywords
	return f
}

// OutlookConfig holds Microsoft Graph / Outlook calendar sync settings.
type OutlookConfig struct {
	// TenantID is the Azure AD tenant. Use "common" for personal/multi-tenant accounts.
	TenantID string `yaml:"tenant_id"`
	// ClientID is the Azure app (client) ID for the OAuth2 device code flow.
	ClientID string `yaml:"client_id"`
	// Timezone is the IANA timezone for event times (e.g. "America/New_York"). Empty = UTC.
	Timezone string `yaml:"timezone"`
}

// ServerConfig holds settings for the local web dashboard.
type ServerConfig struct {
	// Addr is the listen address. Empty = 127.0.0.1:8787.
	Addr string `yaml:"addr"`
}

const (
	// DefaultTenantID is the Microsoft "common" tenant (supports personal and
	// multi-tenant organisational accounts without additional registration).
	DefaultTenantID = "common"
	// DefaultClientID is the well-known public Azure CLI app ID.
	// It supports device code flow without a client secret and requires no
	// app registration. Replace with your own registered app ID for
	// organisational or production deployments.
	DefaultClientID = "04b07795-8542-4c4a-95af-30b2c573d5ab"
	// DefaultServerAddr binds the dashboard to localhost only.
	DefaultServerAddr = "127.0.0.1:8787"
)

// defaultConfig returns a Config pre-filled with sensible defaults.
func defaultConfig() Config {
	return Config{
		Outlook: OutlookConfig{
			TenantID: DefaultTenantID,
			ClientID: DefaultClientID,
		},
		Server: ServerConfig{
			Addr: DefaultServerAddr,
		},
	}
}

// configTemplate is the annotated config written on first run.
const configTemplate = `# billexact configuration – ~/.billexact/config.yaml
#
# All settings are optional; the built-in defaults shown below work out of
# the box. Edit this file to customise billexact behaviour.

# SQLite database location. Empty = ~/.billexact/billexact.db
db_path: ""

# Compliance rules config (YAML or JSON). Empty = built-in default rules.
rules_path: ""

# Directory of per-client billing guideline overlays (_base.yml + <client>.yml).
policy_dir: ""

# ── Desktop activity ingestion (ActivityWatch) ─────────────────────────────
activitywatch:
  # Local ActivityWatch API base. Empty = http://127.0.0.1:5600/api/0
  url: ""
  # Drop focus spans shorter than this many seconds. 0 = 120.
  min_seconds: 0
  # Merge same-task spans separated by at most this many seconds. 0 = 300.
  gap_merge_seconds: 0
  # Activity that should never become a time entry.
  nonbillable_apps: []
  nonbillable_hosts: []
  nonbillable_title_keywords: []

# ── Microsoft Graph / Outlook calendar sync ────────────────────────────────
outlook:
  # Azure AD tenant ID.
  # • "common"  – personal Microsoft accounts and any organisation (default)
  # • Your organisation's tenant GUID
  tenant_id: "common"

  # Azure application (client) ID used for the OAuth2 device code flow.
  # The built-in value is the public Azure CLI app – no app registration needed.
  client_id: "04b07795-8542-4c4a-95af-30b2c573d5ab"

  # IANA timezone for interpreting calendar event times, e.g. "America/New_York".
  # Leave empty to use UTC.
  timezone: ""

# ── Local web dashboard ─────────────────────────────────────────────────────
server:
  addr: "127.0.0.1:8787"
`

// configFilePath returns the path to ~/.billexact/config.yaml.
func configFilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".billexact", "config.yaml"), nil
}

// applyEnv overlays BILLEXACT_* environment variables. A .env file in the
// working directory is honoured when present.
func applyEnv(cfg *Config) {
	_ = godotenv.Load()

	if v := os.Getenv("BILLEXACT_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("BILLEXACT_RULES_PATH"); v != "" {
		cfg.RulesPath = v
	}
	if v := os.Getenv("BILLEXACT_POLICY_DIR"); v != "" {
		cfg.PolicyDir = v
	}
	if v := os.Getenv("BILLEXACT_AW_URL"); v != "" {
		cfg.ActivityWatch.URL = v
	}
	if v := os.Getenv("BILLEXACT_SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
}

// Load reads ~/.billexact/config.yaml, creating it with annotated defaults on
// first run, then overlays BILLEXACT_* environment variables.
func Load() (Config, error) {
	path, err := configFilePath()
	if err != nil {
		return defaultConfig(), err
	}
	cfg, err := LoadFile(path)
	applyEnv(&cfg)
	return cfg, err
}

// LoadFile reads a specific config file, creating it with annotated defaults
// when absent.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		// First run: write the annotated template so users can discover options.
		if writeErr := writeDefault(path); writeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not create config file %s: %v\n", path, writeErr)
		}
		return defaultConfig(), nil
	}
	if err != nil {
		return defaultConfig(), fmt.Errorf("reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return defaultConfig(), fmt.Errorf("parsing config file %s: %w\nTip: delete the file to regenerate defaults", path, err)
	}

	// Fill zero-value fields with built-in defaults so callers always get
	// a usable Config even if the user only partially fills in the file.
	if cfg.Outlook.TenantID == "" {
		cfg.Outlook.TenantID = DefaultTenantID
	}
	if cfg.Outlook.ClientID == "" {
		cfg.Outlook.ClientID = DefaultClientID
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = DefaultServerAddr
	}

	return cfg, nil
}

// writeDefault creates the config directory and writes the annotated default
// config template.
func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}

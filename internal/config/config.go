package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/amishk599/cadre/internal/model"
)

// Backends the board can read from.
const (
	BackendAirtable = "airtable"
	BackendSupabase = "supabase"
	BackendSample   = "sample"
)

const (
	// EnvPath names the environment variable consulted when --config is unset.
	EnvPath = "CADRE_CONFIG"
	// DefaultPath is read when neither --config nor EnvPath is set.
	DefaultPath = "config.yaml"

	defaultAirtableBaseURL   = "https://api.airtable.com/v0"
	defaultClassifierBaseURL = "https://api.perplexity.ai"
	defaultClassifierModel   = "sonar"
	slackWebhookPrefix       = "https://hooks.slack.com/"
)

// Config is the root configuration for cadre.
type Config struct {
	Backend      string
	Airtable     AirtableConfig
	Supabase     SupabaseConfig
	Cache        CacheConfig
	Server       ServerConfig
	Classifier   ClassifierConfig
	Backfill     BackfillConfig
	Notification NotificationConfig
	Export       ExportConfig
}

// AirtableConfig locates the Airtable base.
type AirtableConfig struct {
	BaseURL           string
	BaseID            string
	APIKey            string // from the file, else the OS keychain
	Tables            model.TableNames
	PageSize          int
	RequestsPerSecond float64
}

// SupabaseConfig locates the Supabase project.
type SupabaseConfig struct {
	URL    string
	Key    string
	Tables model.TableNames
}

// CacheConfig controls how long a fetched dataset is served and where
// snapshots are persisted. An empty DBPath disables persistence.
type CacheConfig struct {
	Revalidate time.Duration
	DBPath     string
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr        string
	PageSize    int
	CORSOrigins []string // empty allows every origin
}

// ClassifierConfig controls the OpenAI-compatible endpoint used by backfills.
type ClassifierConfig struct {
	Enabled bool
	BaseURL string
	Model   string
	APIKey  string
	Timeout time.Duration
}

// BackfillConfig bounds a single maintenance run.
type BackfillConfig struct {
	BatchSize    int
	Delay        time.Duration
	MaxRuntime   time.Duration
	ATSBatchSize int
	ATSDelay     time.Duration
	LockPath     string
}

// NotificationConfig controls which notifier receives run reports.
type NotificationConfig struct {
	Type       string `yaml:"type"`        // "log" or "slack"
	WebhookURL string `yaml:"webhook_url"` // required if type is "slack"
}

// ExportConfig controls where `cadre export` publishes the snapshot. A
// non-empty Bucket selects S3, otherwise Path is written.
type ExportConfig struct {
	Path   string
	Bucket string
	Region string
	Key    string
}

// Tables returns the table names of the active backend.
func (c *Config) Tables() model.TableNames {
	if c.Backend == BackendSupabase {
		return c.Supabase.Tables
	}
	return c.Airtable.Tables
}

// Configured reports whether the active backend has the credentials it needs.
func (c *Config) Configured() bool {
	switch c.Backend {
	case BackendAirtable:
		return c.Airtable.BaseID != "" && c.Airtable.APIKey != ""
	case BackendSupabase:
		return c.Supabase.URL != "" && c.Supabase.Key != ""
	}
	return false
}

// Defaults returns the configuration used when no file exists. Credentials
// come from AIRTABLE_BASE_ID / AIRTABLE_API_KEY or the keychain.
func Defaults() *Config {
	return &Config{
		Backend: BackendAirtable,
		Airtable: AirtableConfig{
			BaseURL:           defaultAirtableBaseURL,
			BaseID:            os.Getenv("AIRTABLE_BASE_ID"),
			APIKey:            os.Getenv("AIRTABLE_API_KEY"),
			Tables:            model.DefaultTableNames(),
			PageSize:          100,
			RequestsPerSecond: 5,
		},
		Supabase: SupabaseConfig{
			URL:    os.Getenv("SUPABASE_URL"),
			Key:    os.Getenv("SUPABASE_KEY"),
			Tables: model.DefaultTableNames(),
		},
		Cache: CacheConfig{
			Revalidate: 5 * time.Minute,
			DBPath:     "cadre.db",
		},
		Server: ServerConfig{
			Addr:     ":8080",
			PageSize: 25,
		},
		Classifier: ClassifierConfig{
			BaseURL: defaultClassifierBaseURL,
			Model:   defaultClassifierModel,
			APIKey:  os.Getenv("PERPLEXITY_API_KEY"),
			Timeout: 30 * time.Second,
		},
		Backfill: BackfillConfig{
			BatchSize:    10,
			Delay:        200 * time.Millisecond,
			MaxRuntime:   8 * time.Second,
			ATSBatchSize: 15,
			ATSDelay:     500 * time.Millisecond,
			LockPath:     filepath.Join(os.TempDir(), "cadre-backfill.lock"),
		},
		Notification: NotificationConfig{Type: "log"},
		Export: ExportConfig{
			Path:   "snapshot.json",
			Region: "us-east-1",
			Key:    "cadre/snapshot.json",
		},
	}
}

// rawConfig is used for YAML unmarshaling (snake_case fields and durations as strings).
type rawConfig struct {
	Backend      string             `yaml:"backend"`
	Airtable     rawAirtableConfig  `yaml:"airtable"`
	Supabase     rawSupabaseConfig  `yaml:"supabase"`
	Cache        rawCacheConfig     `yaml:"cache"`
	Server       rawServerConfig    `yaml:"server"`
	Classifier   rawClassifier      `yaml:"classifier"`
	Backfill     rawBackfillConfig  `yaml:"backfill"`
	Notification NotificationConfig `yaml:"notification"`
	Export       rawExportConfig    `yaml:"export"`
}

type rawAirtableConfig struct {
	BaseURL           string           `yaml:"base_url"`
	BaseID            string           `yaml:"base_id"`
	APIKey            string           `yaml:"api_key"`
	Tables            model.TableNames `yaml:"tables"`
	PageSize          int              `yaml:"page_size"`
	RequestsPerSecond float64          `yaml:"requests_per_second"`
}

type rawSupabaseConfig struct {
	URL    string           `yaml:"url"`
	Key    string           `yaml:"key"`
	Tables model.TableNames `yaml:"tables"`
}

type rawCacheConfig struct {
	Revalidate string  `yaml:"revalidate"`
	DBPath     *string `yaml:"db_path"`
}

type rawServerConfig struct {
	Addr        string   `yaml:"addr"`
	PageSize    int      `yaml:"page_size"`
	CORSOrigins []string `yaml:"cors_origins"`
}

type rawClassifier struct {
	Enabled bool   `yaml:"enabled"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
	APIKey  string `yaml:"api_key"`
	Timeout string `yaml:"timeout"`
}

type rawBackfillConfig struct {
	BatchSize    int    `yaml:"batch_size"`
	Delay        string `yaml:"delay"`
	MaxRuntime   string `yaml:"max_runtime"`
	ATSBatchSize int    `yaml:"ats_batch_size"`
	ATSDelay     string `yaml:"ats_delay"`
	LockPath     string `yaml:"lock_path"`
}

type rawExportConfig struct {
	Path   string `yaml:"path"`
	Bucket string `yaml:"bucket"`
	Region string `yaml:"region"`
	Key    string `yaml:"key"`
}

// ResolvePath picks the config file: the flag value, then $CADRE_CONFIG, then
// ./config.yaml. explicit is false only for the built-in default.
func ResolvePath(flagValue string) (path string, explicit bool) {
	if flagValue != "" {
		return flagValue, true
	}
	if env := os.Getenv(EnvPath); env != "" {
		return env, true
	}
	return DefaultPath, false
}

// LoadOrDefault loads path. A missing file that was not asked for explicitly
// yields Defaults instead of an error.
func LoadOrDefault(path string, explicit bool) (*Config, error) {
	cfg, err := Load(path)
	if err != nil && !explicit && errors.Is(err, fs.ErrNotExist) {
		cfg = Defaults()
		cfg.resolveSecrets()
		return cfg, nil
	}
	return cfg, err
}

// Load reads and parses the YAML config file at path over Defaults, fills
// missing credentials from the keychain, validates it, and returns Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg := Defaults()
	if err := apply(cfg, raw); err != nil {
		return nil, err
	}
	cfg.resolveSecrets()

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func apply(cfg *Config, raw rawConfig) error {
	if raw.Backend != "" {
		cfg.Backend = strings.ToLower(raw.Backend)
	}

	setString(&cfg.Airtable.BaseURL, raw.Airtable.BaseURL)
	setString(&cfg.Airtable.BaseID, raw.Airtable.BaseID)
	setString(&cfg.Airtable.APIKey, raw.Airtable.APIKey)
	cfg.Airtable.Tables = mergeTables(cfg.Airtable.Tables, raw.Airtable.Tables)
	if raw.Airtable.PageSize != 0 {
		cfg.Airtable.PageSize = raw.Airtable.PageSize
	}
	if raw.Airtable.RequestsPerSecond != 0 {
		cfg.Airtable.RequestsPerSecond = raw.Airtable.RequestsPerSecond
	}

	setString(&cfg.Supabase.URL, raw.Supabase.URL)
	setString(&cfg.Supabase.Key, raw.Supabase.Key)
	cfg.Supabase.Tables = mergeTables(cfg.Supabase.Tables, raw.Supabase.Tables)

	if err := parseDuration("cache.revalidate", raw.Cache.Revalidate, &cfg.Cache.Revalidate); err != nil {
		return err
	}
	if raw.Cache.DBPath != nil {
		cfg.Cache.DBPath = *raw.Cache.DBPath
	}

	setString(&cfg.Server.Addr, raw.Server.Addr)
	if raw.Server.PageSize != 0 {
		cfg.Server.PageSize = raw.Server.PageSize
	}
	cfg.Server.CORSOrigins = raw.Server.CORSOrigins

	cfg.Classifier.Enabled = raw.Classifier.Enabled
	setString(&cfg.Classifier.BaseURL, raw.Classifier.BaseURL)
	setString(&cfg.Classifier.Model, raw.Classifier.Model)
	setString(&cfg.Classifier.APIKey, raw.Classifier.APIKey)
	if err := parseDuration("classifier.timeout", raw.Classifier.Timeout, &cfg.Classifier.Timeout); err != nil {
		return err
	}

	if raw.Backfill.BatchSize != 0 {
		cfg.Backfill.BatchSize = raw.Backfill.BatchSize
	}
	if raw.Backfill.ATSBatchSize != 0 {
		cfg.Backfill.ATSBatchSize = raw.Backfill.ATSBatchSize
	}
	if err := parseDuration("backfill.delay", raw.Backfill.Delay, &cfg.Backfill.Delay); err != nil {
		return err
	}
	if err := parseDuration("backfill.max_runtime", raw.Backfill.MaxRuntime, &cfg.Backfill.MaxRuntime); err != nil {
		return err
	}
	if err := parseDuration("backfill.ats_delay", raw.Backfill.ATSDelay, &cfg.Backfill.ATSDelay); err != nil {
		return err
	}
	setString(&cfg.Backfill.LockPath, raw.Backfill.LockPath)

	if raw.Notification.Type != "" {
		cfg.Notification = raw.Notification
	}

	setString(&cfg.Export.Path, raw.Export.Path)
	setString(&cfg.Export.Bucket, raw.Export.Bucket)
	setString(&cfg.Export.Region, raw.Export.Region)
	setString(&cfg.Export.Key, raw.Export.Key)
	return nil
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func parseDuration(field, v string, dst *time.Duration) error {
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("parse %s %q: %w", field, v, err)
	}
	*dst = d
	return nil
}

func mergeTables(base, override model.TableNames) model.TableNames {
	setString(&base.Jobs, override.Jobs)
	setString(&base.Companies, override.Companies)
	setString(&base.Investors, override.Investors)
	setString(&base.Functions, override.Functions)
	setString(&base.Industries, override.Industries)
	return base
}

func validate(cfg *Config) error {
	switch cfg.Backend {
	case BackendAirtable, BackendSupabase, BackendSample:
	default:
		return fmt.Errorf("backend must be one of airtable, supabase, sample; got %q", cfg.Backend)
	}

	if cfg.Cache.Revalidate <= 0 {
		return fmt.Errorf("cache.revalidate must be positive, got %v", cfg.Cache.Revalidate)
	}
	if cfg.Airtable.PageSize < 1 || cfg.Airtable.PageSize > 100 {
		return fmt.Errorf("airtable.page_size must be between 1 and 100, got %d", cfg.Airtable.PageSize)
	}
	if cfg.Airtable.RequestsPerSecond < 0 {
		return fmt.Errorf("airtable.requests_per_second must not be negative, got %v", cfg.Airtable.RequestsPerSecond)
	}
	if cfg.Server.PageSize < 1 || cfg.Server.PageSize > 100 {
		return fmt.Errorf("server.page_size must be between 1 and 100, got %d", cfg.Server.PageSize)
	}
	if cfg.Backfill.BatchSize < 1 || cfg.Backfill.BatchSize > 10 {
		return fmt.Errorf("backfill.batch_size must be between 1 and 10, got %d", cfg.Backfill.BatchSize)
	}
	if cfg.Backfill.ATSBatchSize < 1 {
		return fmt.Errorf("backfill.ats_batch_size must be positive, got %d", cfg.Backfill.ATSBatchSize)
	}
	if cfg.Backfill.MaxRuntime <= 0 {
		return fmt.Errorf("backfill.max_runtime must be positive, got %v", cfg.Backfill.MaxRuntime)
	}

	switch cfg.Notification.Type {
	case "log":
	case "slack":
		if cfg.Notification.WebhookURL == "" {
			return fmt.Errorf("notification.webhook_url is required when type is \"slack\"")
		}
		if !strings.HasPrefix(cfg.Notification.WebhookURL, slackWebhookPrefix) {
			return fmt.Errorf("notification.webhook_url must start with %s", slackWebhookPrefix)
		}
	default:
		return fmt.Errorf("notification.type must be \"log\" or \"slack\", got %q", cfg.Notification.Type)
	}

	if cfg.Classifier.Enabled {
		if cfg.Classifier.APIKey == "" {
			return fmt.Errorf("classifier.api_key is required when classifier.enabled is true")
		}
		if cfg.Classifier.Model == "" {
			return fmt.Errorf("classifier.model is required when classifier.enabled is true")
		}
	}
	return nil
}

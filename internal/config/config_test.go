package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/zalando/go-keyring"
)

// isolate clears credential env vars and swaps in an in-memory keychain.
func isolate(t *testing.T) {
	t.Helper()
	keyring.MockInit()
	for _, k := range []string{"AIRTABLE_BASE_ID", "AIRTABLE_API_KEY", "SUPABASE_URL", "SUPABASE_KEY", "PERPLEXITY_API_KEY", EnvPath} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	isolate(t)
	t.Setenv("TEST_AIRTABLE_KEY", "pat-from-env")
	path := writeConfig(t, `
backend: airtable
airtable:
  base_id: appXYZ
  api_key: ${TEST_AIRTABLE_KEY}
  tables:
    jobs: Roles
  requests_per_second: 2
cache:
  revalidate: 10m
  db_path: ""
server:
  addr: ":9090"
  page_size: 50
  cors_origins: ["https://board.example.com"]
backfill:
  batch_size: 5
  delay: 1s
  max_runtime: 30s
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Airtable.APIKey != "pat-from-env" || cfg.Airtable.BaseID != "appXYZ" {
		t.Errorf("Airtable = %+v", cfg.Airtable)
	}
	if !cfg.Configured() {
		t.Error("expected configured backend")
	}
	tables := cfg.Tables()
	if tables.Jobs != "Roles" || tables.Companies != "Companies" || tables.Industries != "Industry" {
		t.Errorf("Tables = %+v", tables)
	}
	if cfg.Airtable.RequestsPerSecond != 2 || cfg.Airtable.PageSize != 100 {
		t.Errorf("Airtable limits = %+v", cfg.Airtable)
	}
	if cfg.Cache.Revalidate != 10*time.Minute || cfg.Cache.DBPath != "" {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Server.Addr != ":9090" || cfg.Server.PageSize != 50 || len(cfg.Server.CORSOrigins) != 1 {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.Backfill.BatchSize != 5 || cfg.Backfill.Delay != time.Second || cfg.Backfill.MaxRuntime != 30*time.Second {
		t.Errorf("Backfill = %+v", cfg.Backfill)
	}
	if cfg.Backfill.ATSBatchSize != 15 || cfg.Backfill.ATSDelay != 500*time.Millisecond {
		t.Errorf("ATS backfill defaults not kept: %+v", cfg.Backfill)
	}
	if cfg.Classifier.Model != "sonar" || cfg.Classifier.BaseURL != "https://api.perplexity.ai" {
		t.Errorf("Classifier defaults = %+v", cfg.Classifier)
	}
	if cfg.Notification.Type != "log" {
		t.Errorf("Notification.Type = %q, want log", cfg.Notification.Type)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	isolate(t)
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	if err == nil {
		t.Fatal("Load: expected error for missing file")
	}
}

func TestLoadOrDefault(t *testing.T) {
	isolate(t)
	missing := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := LoadOrDefault(missing, false)
	if err != nil {
		t.Fatalf("LoadOrDefault(implicit): %v", err)
	}
	if cfg.Backend != BackendAirtable || cfg.Configured() {
		t.Errorf("expected unconfigured airtable defaults, got backend=%s configured=%v", cfg.Backend, cfg.Configured())
	}

	if _, err := LoadOrDefault(missing, true); err == nil {
		t.Fatal("LoadOrDefault(explicit): expected error for missing file")
	}
}

func TestResolvePath(t *testing.T) {
	isolate(t)
	if p, explicit := ResolvePath("custom.yaml"); p != "custom.yaml" || !explicit {
		t.Errorf("flag: got %q %v", p, explicit)
	}
	t.Setenv(EnvPath, "/etc/cadre.yaml")
	if p, explicit := ResolvePath(""); p != "/etc/cadre.yaml" || !explicit {
		t.Errorf("env: got %q %v", p, explicit)
	}
	t.Setenv(EnvPath, "")
	if p, explicit := ResolvePath(""); p != DefaultPath || explicit {
		t.Errorf("default: got %q %v", p, explicit)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	isolate(t)
	if _, err := Load(writeConfig(t, "backend: [broken")); err == nil {
		t.Fatal("Load: expected error for invalid YAML")
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown backend", "backend: mysql\n"},
		{"zero revalidate", "cache:\n  revalidate: 0s\n"},
		{"bad duration", "backfill:\n  delay: soon\n"},
		{"batch over airtable limit", "backfill:\n  batch_size: 11\n"},
		{"page size too large", "server:\n  page_size: 500\n"},
		{"slack without webhook", "notification:\n  type: slack\n"},
		{"slack wrong host", "notification:\n  type: slack\n  webhook_url: https://example.com/hook\n"},
		{"unknown notifier", "notification:\n  type: email\n"},
		{"classifier without key", "classifier:\n  enabled: true\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestLoad_SecretsFromKeychain(t *testing.T) {
	isolate(t)
	if err := SetSecret(AccountAirtable, "pat-from-keychain"); err != nil {
		t.Fatalf("SetSecret: %v", err)
	}
	if err := SetSecret(AccountClassifier, "pplx-key"); err != nil {
		t.Fatalf("SetSecret: %v", err)
	}

	cfg, err := Load(writeConfig(t, "airtable:\n  base_id: appXYZ\nclassifier:\n  enabled: true\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Airtable.APIKey != "pat-from-keychain" {
		t.Errorf("APIKey = %q, want keychain value", cfg.Airtable.APIKey)
	}
	if cfg.Classifier.APIKey != "pplx-key" {
		t.Errorf("Classifier.APIKey = %q, want keychain value", cfg.Classifier.APIKey)
	}
}

func TestLoad_FileKeyWinsOverKeychain(t *testing.T) {
	isolate(t)
	if err := SetSecret(AccountAirtable, "pat-from-keychain"); err != nil {
		t.Fatalf("SetSecret: %v", err)
	}
	cfg, err := Load(writeConfig(t, "airtable:\n  base_id: appXYZ\n  api_key: pat-from-file\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Airtable.APIKey != "pat-from-file" {
		t.Errorf("APIKey = %q, want file value", cfg.Airtable.APIKey)
	}
}

func TestSupabaseBackend(t *testing.T) {
	isolate(t)
	cfg, err := Load(writeConfig(t, `
backend: supabase
supabase:
  url: https://project.supabase.co
  key: service-key
  tables:
    jobs: jobs
    companies: companies
    investors: investors
    functions: functions
    industries: industries
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Configured() || cfg.Tables().Jobs != "jobs" {
		t.Errorf("supabase config = %+v", cfg.Supabase)
	}
}

func TestSecretHelpersRejectEmpty(t *testing.T) {
	isolate(t)
	if err := SetSecret("", "v"); err == nil {
		t.Error("expected error for empty account")
	}
	if err := SetSecret(AccountAirtable, " "); err == nil {
		t.Error("expected error for empty value")
	}
	if err := DeleteSecret(""); err == nil {
		t.Error("expected error for empty account")
	}
	if Secret(AccountSupabase) != "" {
		t.Error("expected empty secret for unknown account")
	}
}

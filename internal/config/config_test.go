package config

import (
	"os"
	"path/filepath"
	"testing"

	"solaintel/internal/domain"
)

func TestLoadDefaults(t *testing.T) {
	// Neutralize any ambient overrides from the developer's shell.
	for _, key := range []string{"SOLA_INTEL_CONFIG", "DIGEST_PERIOD", "DIGEST_RECIPIENTS", "DATABASE_DSN", "RESEND_API_KEY", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Digest.Period != domain.PeriodDaily {
		t.Fatalf("default period should be daily, got %s", cfg.Digest.Period)
	}
	if cfg.Digest.MaxArticles() != cfg.Digest.MaxArticlesDaily {
		t.Fatalf("daily cap expected, got %d", cfg.Digest.MaxArticles())
	}
	if cfg.Digest.MinRelevanceScore <= 0 || cfg.Digest.MinRelevanceScore >= 1 {
		t.Fatalf("unreasonable default min score %v", cfg.Digest.MinRelevanceScore)
	}
	if len(cfg.Sources) == 0 {
		t.Fatalf("default sources must not be empty")
	}
	for _, source := range cfg.Sources {
		if source.Scanner == "" || source.URL == "" {
			t.Fatalf("incomplete default source %+v", source)
		}
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("DIGEST_PERIOD", "weekly")
	t.Setenv("DIGEST_RECIPIENTS", "ana@example.com, maya@example.com ,")
	t.Setenv("RESEND_API_KEY", "re_test_123")
	t.Setenv("DATABASE_DSN", "postgres://test")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := Load()

	if cfg.Digest.Period != domain.PeriodWeekly {
		t.Fatalf("period override not applied: %s", cfg.Digest.Period)
	}
	if cfg.Digest.MaxArticles() != cfg.Digest.MaxArticlesWeekly {
		t.Fatalf("weekly cap expected, got %d", cfg.Digest.MaxArticles())
	}
	want := []string{"ana@example.com", "maya@example.com"}
	if len(cfg.Digest.Recipients) != len(want) {
		t.Fatalf("recipients not split: %v", cfg.Digest.Recipients)
	}
	for i, addr := range want {
		if cfg.Digest.Recipients[i] != addr {
			t.Fatalf("recipient %d: got %q, want %q", i, cfg.Digest.Recipients[i], addr)
		}
	}
	if cfg.Mail.APIKey != "re_test_123" {
		t.Fatalf("mail api key override not applied")
	}
	if cfg.Database.DSN != "postgres://test" {
		t.Fatalf("dsn override not applied")
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("log level override not applied")
	}
}

func TestLoadInvalidPeriodRevertsToDaily(t *testing.T) {
	t.Setenv("DIGEST_PERIOD", "hourly")

	cfg := Load()

	if cfg.Digest.Period != domain.PeriodDaily {
		t.Fatalf("invalid period should revert to daily, got %s", cfg.Digest.Period)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	raw := `
digest:
  period: weekly
  maxArticlesWeekly: 4
  minRelevanceScore: 0.5
  recipients:
    - team@sola.app
mail:
  from: "Sola Intel <brief@sola.app>"
sources:
  - name: "Skift"
    scanner: rss
    category: travel-industry
    url: "https://skift.com/feed/"
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("SOLA_INTEL_CONFIG", path)

	cfg := Load()

	if cfg.Digest.Period != domain.PeriodWeekly {
		t.Fatalf("yaml period not applied: %s", cfg.Digest.Period)
	}
	if cfg.Digest.MaxArticles() != 4 {
		t.Fatalf("yaml weekly cap not applied: %d", cfg.Digest.MaxArticles())
	}
	if cfg.Digest.MinRelevanceScore != 0.5 {
		t.Fatalf("yaml min score not applied: %v", cfg.Digest.MinRelevanceScore)
	}
	if len(cfg.Sources) != 1 || cfg.Sources[0].Name != "Skift" {
		t.Fatalf("yaml sources not applied: %+v", cfg.Sources)
	}
	if cfg.Mail.From != "Sola Intel <brief@sola.app>" {
		t.Fatalf("yaml from not applied: %q", cfg.Mail.From)
	}
	// Defaults survive where the file is silent.
	if cfg.Digest.MaxArticlesDaily != 6 {
		t.Fatalf("unset fields should keep defaults, got %d", cfg.Digest.MaxArticlesDaily)
	}
}

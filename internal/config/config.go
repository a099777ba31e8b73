package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"solaintel/internal/domain"
)

const (
	defaultTimezone = "UTC"
	configPathEnv   = "SOLA_INTEL_CONFIG"
	databaseDSNEnv  = "DATABASE_DSN"
	periodEnv       = "DIGEST_PERIOD"
	recipientsEnv   = "DIGEST_RECIPIENTS"
	fetchOnlyEnv    = "DIGEST_FETCH_ONLY"
	resendAPIKeyEnv = "RESEND_API_KEY"
	mailFromEnv     = "DIGEST_FROM"
	openAIAPIKeyEnv = "OPENAI_API_KEY"
	openAIModelEnv  = "OPENAI_MODEL"
	logLevelEnv     = "LOG_LEVEL"
)

// Config holds high-level settings required across the application.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Digest    DigestConfig    `yaml:"digest"`
	Mail      MailConfig      `yaml:"mail"`
	LLM       LLMConfig       `yaml:"llm"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Logging   LoggingConfig   `yaml:"logging"`
	Sources   []SourceConfig  `yaml:"sources"`
}

// DatabaseConfig describes Postgres connection details. An empty DSN
// disables persistence.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// DigestConfig defines selection thresholds and delivery targets.
type DigestConfig struct {
	Period            domain.Period `yaml:"period"`
	MaxArticlesDaily  int           `yaml:"maxArticlesDaily"`
	MaxArticlesWeekly int           `yaml:"maxArticlesWeekly"`
	MaxAgeDays        int           `yaml:"maxAgeDays"`
	MinRelevanceScore float64       `yaml:"minRelevanceScore"`
	Recipients        []string      `yaml:"recipients"`
	FetchOnly         bool          `yaml:"fetchOnly"`
}

// MaxArticles resolves the per-period article cap.
func (d DigestConfig) MaxArticles() int {
	if d.Period == domain.PeriodWeekly {
		return d.MaxArticlesWeekly
	}
	return d.MaxArticlesDaily
}

// MailConfig wires the transactional email API.
type MailConfig struct {
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"apiKey"`
	From     string `yaml:"from"`
}

// LLMConfig defines how to contact an OpenAI-compatible API for the
// optional digest writer.
type LLMConfig struct {
	Endpoint     string `yaml:"endpoint"`
	Model        string `yaml:"model"`
	APIKey       string `yaml:"apiKey"`
	SystemPrompt string `yaml:"systemPrompt"`
}

// SchedulerConfig defines recurring-run behavior. Disabled means a
// single one-shot run, which is the default.
type SchedulerConfig struct {
	Enabled  bool           `yaml:"enabled"`
	Timezone string         `yaml:"timezone"`
	location *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// LoggingConfig controls slog verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// SourceConfig describes a single source with its scanner strategy.
type SourceConfig struct {
	Name     string            `yaml:"name"`
	Scanner  string            `yaml:"scanner"`
	Category string            `yaml:"category"`
	URL      string            `yaml:"url"`
	Options  map[string]string `yaml:"options"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	if !cfg.Digest.Period.Valid() {
		log.Printf("config: unknown period %q, reverting to daily", cfg.Digest.Period)
		cfg.Digest.Period = domain.PeriodDaily
	}

	if len(cfg.Sources) == 0 {
		cfg.Sources = defaultConfig().Sources
	}

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(periodEnv); v != "" {
		c.Digest.Period = domain.Period(strings.ToLower(strings.TrimSpace(v)))
	}

	if v := os.Getenv(recipientsEnv); v != "" {
		c.Digest.Recipients = splitRecipients(v)
	}

	if v := os.Getenv(fetchOnlyEnv); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			c.Digest.FetchOnly = parsed
		}
	}

	if v := os.Getenv(resendAPIKeyEnv); v != "" {
		c.Mail.APIKey = v
	}

	if v := os.Getenv(mailFromEnv); v != "" {
		c.Mail.From = v
	}

	if v := os.Getenv(openAIAPIKeyEnv); v != "" {
		c.LLM.APIKey = v
	}

	if v := os.Getenv(openAIModelEnv); v != "" {
		c.LLM.Model = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
}

func splitRecipients(raw string) []string {
	parts := strings.Split(raw, ",")
	recipients := make([]string, 0, len(parts))
	for _, part := range parts {
		if addr := strings.TrimSpace(part); addr != "" {
			recipients = append(recipients, addr)
		}
	}
	return recipients
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Database.DSN != "" {
		base.Database = override.Database
	}

	if override.Digest.Period != "" {
		base.Digest.Period = override.Digest.Period
	}
	if override.Digest.MaxArticlesDaily > 0 {
		base.Digest.MaxArticlesDaily = override.Digest.MaxArticlesDaily
	}
	if override.Digest.MaxArticlesWeekly > 0 {
		base.Digest.MaxArticlesWeekly = override.Digest.MaxArticlesWeekly
	}
	if override.Digest.MaxAgeDays > 0 {
		base.Digest.MaxAgeDays = override.Digest.MaxAgeDays
	}
	if override.Digest.MinRelevanceScore > 0 {
		base.Digest.MinRelevanceScore = override.Digest.MinRelevanceScore
	}
	if len(override.Digest.Recipients) > 0 {
		base.Digest.Recipients = override.Digest.Recipients
	}
	if override.Digest.FetchOnly {
		base.Digest.FetchOnly = true
	}

	if override.Mail.Endpoint != "" {
		base.Mail.Endpoint = override.Mail.Endpoint
	}
	if override.Mail.APIKey != "" {
		base.Mail.APIKey = override.Mail.APIKey
	}
	if override.Mail.From != "" {
		base.Mail.From = override.Mail.From
	}

	if override.LLM.Endpoint != "" {
		base.LLM.Endpoint = override.LLM.Endpoint
	}
	if override.LLM.Model != "" {
		base.LLM.Model = override.LLM.Model
	}
	if override.LLM.APIKey != "" {
		base.LLM.APIKey = override.LLM.APIKey
	}
	if override.LLM.SystemPrompt != "" {
		base.LLM.SystemPrompt = override.LLM.SystemPrompt
	}

	if override.Scheduler.Enabled {
		base.Scheduler.Enabled = true
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if len(override.Sources) > 0 {
		base.Sources = override.Sources
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Database: DatabaseConfig{DSN: ""},
		Digest: DigestConfig{
			Period:            domain.PeriodDaily,
			MaxArticlesDaily:  6,
			MaxArticlesWeekly: 12,
			MaxAgeDays:        7,
			MinRelevanceScore: 0.35,
		},
		Mail: MailConfig{
			Endpoint: "https://api.resend.com/emails",
			From:     "Sola Intel <intel@sola.app>",
		},
		LLM: LLMConfig{
			Endpoint:     "https://api.openai.com/v1/chat/completions",
			Model:        "gpt-4o-mini",
			SystemPrompt: "You write concise intelligence briefs for a women's solo-travel product team.",
		},
		Scheduler: SchedulerConfig{Enabled: false, Timezone: defaultTimezone, location: tz},
		Logging:   LoggingConfig{Level: "info"},
		Sources: []SourceConfig{
			{Name: "Skift", Scanner: "rss", Category: "travel-industry", URL: "https://skift.com/feed/"},
			{Name: "Phocuswire", Scanner: "rss", Category: "travel-tech", URL: "https://www.phocuswire.com/rss"},
			{Name: "TechCrunch AI", Scanner: "rss", Category: "ai", URL: "https://techcrunch.com/category/artificial-intelligence/feed/"},
			{Name: "The Verge AI", Scanner: "rss", Category: "ai", URL: "https://www.theverge.com/rss/ai-artificial-intelligence/index.xml"},
			{Name: "Adventurous Kate", Scanner: "rss", Category: "solo-female-travel", URL: "https://www.adventurouskate.com/feed/"},
			{Name: "Be My Travel Muse", Scanner: "rss", Category: "solo-female-travel", URL: "https://www.bemytravelmuse.com/feed/"},
		},
	}
}

package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := Config{Embedding: EmbeddingConfig{APIKey: "test-key"}}
	cfg.ApplyDefaults()
	return cfg
}

func TestApplyDefaults(t *testing.T) {
	cfg := validConfig()

	if cfg.Database.Driver != DriverRedis || cfg.Database.Addrs[0] != "localhost:6379" {
		t.Errorf("unexpected database defaults: %+v", cfg.Database)
	}
	if cfg.Storage.KeyPrefix != "linkdex:" {
		t.Errorf("KeyPrefix = %q", cfg.Storage.KeyPrefix)
	}
	if cfg.Embedding.Model != "text-embedding-3-small" || cfg.Embedding.Dimensions != 1536 {
		t.Errorf("unexpected embedding defaults: %+v", cfg.Embedding)
	}
	if cfg.Embedding.PricePerMillionTokens != 0.02 || cfg.Embedding.MaxInputChars != 32000 {
		t.Errorf("unexpected pricing defaults: %+v", cfg.Embedding)
	}
	if !cfg.Embedding.QueryCacheEnabled() {
		t.Error("query cache must default to enabled")
	}
	if cfg.Cost.DailyLimitUSD != 1.0 || cfg.Cost.MonthlyLimitUSD != 30.0 || cfg.Cost.Action != ActionReject {
		t.Errorf("unexpected cost defaults: %+v", cfg.Cost)
	}
	s := cfg.Search
	if s.DefaultLimit != 20 || s.MaxLimit != 100 || s.SimilarityThreshold != 0.7 ||
		s.HybridSimilarityThreshold != 0.3 || s.BM25Weight != 0.6 || s.SemanticWeight != 0.4 ||
		s.RRFK != 60 || s.LexicalEngine != LexicalSubstring {
		t.Errorf("unexpected search defaults: %+v", s)
	}
	b := cfg.Backfill
	if b.DefaultLimit != 10 || b.MaxLimit != 50 || b.BodyPrefixChars != 1000 || b.ScheduleLimit != 50 {
		t.Errorf("unexpected backfill defaults: %+v", b)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestApplyDefaults_KeepsExplicitWeights(t *testing.T) {
	cfg := Config{Search: SearchConfig{BM25Weight: 1, SemanticWeight: 0}}
	cfg.ApplyDefaults()
	if cfg.Search.BM25Weight != 1 || cfg.Search.SemanticWeight != 0 {
		t.Errorf("explicit weights overwritten: %+v", cfg.Search)
	}
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown driver", func(c *Config) { c.Database.Driver = "mongo" }, "database.driver"},
		{"postgres without url", func(c *Config) { c.Database.Driver = DriverPostgres }, "database.url"},
		{"redis without addrs", func(c *Config) { c.Database.Addrs = nil }, "database.addrs"},
		{"missing api key", func(c *Config) { c.Embedding.APIKey = "" }, "embedding.api_key"},
		{"negative daily cap", func(c *Config) { c.Cost.DailyLimitUSD = -1 }, "cost limits"},
		{"bad action", func(c *Config) { c.Cost.Action = "invalid_action" }, `cost.action must be "warn" or "reject", got "invalid_action"`},
		{"bad lexical engine", func(c *Config) { c.Search.LexicalEngine = "fts" }, "search.lexical_engine"},
		{"backfill max above cap", func(c *Config) { c.Backfill.MaxLimit = 51 }, "backfill.max_limit"},
		{"bad cron", func(c *Config) { c.Backfill.Schedule = "not a cron" }, "backfill.schedule"},
		{"bad port", func(c *Config) { c.HTTP.Port = 70000 }, "http.port"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not mention %q", err.Error(), tc.want)
			}
		})
	}
}

func TestValidate_ValidActions(t *testing.T) {
	for _, action := range []string{ActionWarn, ActionReject} {
		t.Run("action="+action, func(t *testing.T) {
			cfg := validConfig()
			cfg.Cost.Action = action
			if err := cfg.Validate(); err != nil {
				t.Fatalf("unexpected error for valid action %q: %v", action, err)
			}
		})
	}
}

func TestValidate_CronSchedule(t *testing.T) {
	cfg := validConfig()
	cfg.Backfill.Schedule = "*/15 * * * *"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParse_ExpandsEnv(t *testing.T) {
	t.Setenv("LINKDEX_TEST_KEY", "sk-test")

	cfg, err := Parse([]byte(`
embedding:
  api_key: ${LINKDEX_TEST_KEY}
  query_cache: false
cost:
  action: ${LINKDEX_TEST_ACTION:-warn}
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Embedding.APIKey != "sk-test" {
		t.Errorf("APIKey = %q", cfg.Embedding.APIKey)
	}
	if cfg.Cost.Action != ActionWarn {
		t.Errorf("Action = %q, want default from expression", cfg.Cost.Action)
	}
	if cfg.Embedding.QueryCacheEnabled() {
		t.Error("explicit query_cache: false must disable the cache")
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	if _, err := Parse([]byte("http: [")); err == nil {
		t.Fatal("expected parse error")
	}
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/gorhill/cronexpr"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Database drivers.
const (
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

// Lexical engines.
const (
	LexicalSubstring = "substring"
	LexicalBleve     = "bleve"
)

// Cost actions.
const (
	ActionReject = "reject"
	ActionWarn   = "warn"
)

// MaxBackfillLimit caps a single backfill batch.
const MaxBackfillLimit = 50

// Config holds the linkdex configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Storage   StorageConfig   `yaml:"storage"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Cost      CostConfig      `yaml:"cost"`
	Search    SearchConfig    `yaml:"search"`
	Backfill  BackfillConfig  `yaml:"backfill"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // redis, postgres (default: redis)
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	URL              string   `yaml:"url"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
	MaxConns         int32    `yaml:"max_conns"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider              string  `yaml:"provider"`
	APIKey                string  `yaml:"api_key"`
	BaseURL               string  `yaml:"base_url"`
	Model                 string  `yaml:"model"`
	Dimensions            int     `yaml:"dimensions"`
	PricePerMillionTokens float64 `yaml:"price_per_million_tokens"`
	MaxInputChars         int     `yaml:"max_input_chars"`
	RequestsPerSecond     float64 `yaml:"requests_per_second"`
	QueryCache            *bool   `yaml:"query_cache"`
	QueryCacheTTLSec      int     `yaml:"query_cache_ttl_sec"`
}

// QueryCacheEnabled reports whether query embeddings are cached (default true).
func (e EmbeddingConfig) QueryCacheEnabled() bool {
	return e.QueryCache == nil || *e.QueryCache
}

// CostConfig holds spend caps.
type CostConfig struct {
	DailyLimitUSD   float64 `yaml:"daily_limit_usd"`
	MonthlyLimitUSD float64 `yaml:"monthly_limit_usd"`
	Action          string  `yaml:"action"` // "reject" (default) | "warn"
	RecentRequests  int     `yaml:"recent_requests"`
}

// SearchConfig holds search defaults.
type SearchConfig struct {
	DefaultLimit              int     `yaml:"default_limit"`
	MaxLimit                  int     `yaml:"max_limit"`
	SimilarityThreshold       float64 `yaml:"similarity_threshold"`
	HybridSimilarityThreshold float64 `yaml:"hybrid_similarity_threshold"`
	BM25Weight                float64 `yaml:"bm25_weight"`
	SemanticWeight            float64 `yaml:"semantic_weight"`
	RRFK                      int     `yaml:"rrf_k"`
	LexicalEngine             string  `yaml:"lexical_engine"`
}

// BackfillConfig holds embedding backfill settings.
type BackfillConfig struct {
	DefaultLimit    int    `yaml:"default_limit"`
	MaxLimit        int    `yaml:"max_limit"`
	BodyPrefixChars int    `yaml:"body_prefix_chars"`
	Schedule        string `yaml:"schedule"` // cron expression, empty disables the scheduler
	ScheduleLimit   int    `yaml:"schedule_limit"`
}

// Load reads configuration from a YAML file by environment name (local, prod).
func Load(env string) (Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse decodes YAML with ${VAR} expansion, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 15
	}

	if c.Database.Driver == "" {
		c.Database.Driver = DriverRedis
	}
	if c.Database.Driver == DriverRedis && len(c.Database.Addrs) == 0 {
		c.Database.Addrs = []string{"localhost:6379"}
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 30
	}
	if c.Database.MaxConns <= 0 {
		c.Database.MaxConns = 10
	}

	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "linkdex:"
	}

	c.applyEmbeddingDefaults()
	c.applyCostDefaults()
	c.applySearchDefaults()
	c.applyBackfillDefaults()
}

func (c *Config) applyEmbeddingDefaults() {
	e := &c.Embedding
	if e.Provider == "" {
		e.Provider = "openai"
	}
	if e.Model == "" {
		e.Model = "text-embedding-3-small"
	}
	if e.Dimensions <= 0 {
		e.Dimensions = 1536
	}
	if e.PricePerMillionTokens <= 0 {
		e.PricePerMillionTokens = 0.02
	}
	if e.MaxInputChars <= 0 {
		e.MaxInputChars = 32000
	}
	if e.QueryCacheTTLSec <= 0 {
		e.QueryCacheTTLSec = 86400
	}
}

func (c *Config) applyCostDefaults() {
	if c.Cost.DailyLimitUSD == 0 {
		c.Cost.DailyLimitUSD = 1.0
	}
	if c.Cost.MonthlyLimitUSD == 0 {
		c.Cost.MonthlyLimitUSD = 30.0
	}
	if c.Cost.Action == "" {
		c.Cost.Action = ActionReject
	}
	if c.Cost.RecentRequests <= 0 {
		c.Cost.RecentRequests = 10
	}
}

func (c *Config) applySearchDefaults() {
	s := &c.Search
	if s.DefaultLimit <= 0 {
		s.DefaultLimit = 20
	}
	if s.MaxLimit <= 0 {
		s.MaxLimit = 100
	}
	if s.SimilarityThreshold == 0 {
		s.SimilarityThreshold = 0.7
	}
	if s.HybridSimilarityThreshold == 0 {
		s.HybridSimilarityThreshold = 0.3
	}
	if s.BM25Weight == 0 && s.SemanticWeight == 0 {
		s.BM25Weight = 0.6
		s.SemanticWeight = 0.4
	}
	if s.RRFK <= 0 {
		s.RRFK = 60
	}
	if s.LexicalEngine == "" {
		s.LexicalEngine = LexicalSubstring
	}
}

func (c *Config) applyBackfillDefaults() {
	b := &c.Backfill
	if b.DefaultLimit <= 0 {
		b.DefaultLimit = 10
	}
	if b.MaxLimit <= 0 {
		b.MaxLimit = MaxBackfillLimit
	}
	if b.BodyPrefixChars <= 0 {
		b.BodyPrefixChars = 1000
	}
	if b.ScheduleLimit <= 0 {
		b.ScheduleLimit = b.MaxLimit
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}

	switch c.Database.Driver {
	case DriverRedis:
		if len(c.Database.Addrs) == 0 {
			return errors.New("database.addrs is required for the redis driver")
		}
	case DriverPostgres:
		if c.Database.URL == "" {
			return errors.New("database.url is required for the postgres driver")
		}
	default:
		return fmt.Errorf("database.driver must be %q or %q, got %q", DriverRedis, DriverPostgres, c.Database.Driver)
	}

	if c.Embedding.APIKey == "" {
		return errors.New("embedding.api_key is required")
	}

	if c.Cost.DailyLimitUSD <= 0 || c.Cost.MonthlyLimitUSD <= 0 {
		return fmt.Errorf("cost limits must be positive, got daily=%.2f monthly=%.2f",
			c.Cost.DailyLimitUSD, c.Cost.MonthlyLimitUSD)
	}
	switch c.Cost.Action {
	case ActionReject, ActionWarn:
	default:
		return fmt.Errorf("cost.action must be %q or %q, got %q", ActionWarn, ActionReject, c.Cost.Action)
	}

	switch c.Search.LexicalEngine {
	case LexicalSubstring, LexicalBleve:
	default:
		return fmt.Errorf("search.lexical_engine must be %q or %q, got %q",
			LexicalSubstring, LexicalBleve, c.Search.LexicalEngine)
	}
	if c.Search.DefaultLimit > c.Search.MaxLimit {
		return fmt.Errorf("search.default_limit %d exceeds search.max_limit %d", c.Search.DefaultLimit, c.Search.MaxLimit)
	}

	if c.Backfill.MaxLimit > MaxBackfillLimit {
		return fmt.Errorf("backfill.max_limit must be at most %d, got %d", MaxBackfillLimit, c.Backfill.MaxLimit)
	}
	if c.Backfill.DefaultLimit > c.Backfill.MaxLimit {
		return fmt.Errorf("backfill.default_limit %d exceeds backfill.max_limit %d",
			c.Backfill.DefaultLimit, c.Backfill.MaxLimit)
	}
	if c.Backfill.Schedule != "" {
		if _, err := cronexpr.Parse(c.Backfill.Schedule); err != nil {
			return fmt.Errorf("backfill.schedule: %w", err)
		}
	}

	return nil
}

// findConfigPath locates the config file, walking up from the working directory.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	if wd, err := os.Getwd(); err == nil {
		for dir := wd; ; dir = filepath.Dir(dir) {
			if path := filepath.Join(dir, "config", filename); fileExists(path) {
				return path
			}
			if parent := filepath.Dir(dir); parent == dir {
				break
			}
		}
	}

	// Relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}

package linkdex

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver    string
	addrs     []string
	password  string
	keyPrefix string

	embedder Embedder
	model    string
	price    float64

	dailyLimitUSD   float64
	monthlyLimitUSD float64
	warnOnLimit     bool

	bodyPrefix int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

func defaultConfig() *clientConfig {
	return &clientConfig{
		model:           "text-embedding-3-small",
		price:           0.02,
		dailyLimitUSD:   1,
		monthlyLimitUSD: 30,
	}
}

// WithRedis configures the client to connect to a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithKeyPrefix namespaces every key the client writes. Default: "linkdex:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithEmbedder sets the text embedding provider.
// Required for semantic search and backfill; lexical search works without it.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithModel names the embedding model and its price per million tokens.
// Defaults: text-embedding-3-small at $0.02.
func WithModel(model string, pricePerMillionTokens float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.model = model
		c.price = pricePerMillionTokens
	})
}

// WithCostLimits sets the daily and monthly spend caps in USD.
// Defaults: $1/day, $30/month.
func WithCostLimits(dailyUSD, monthlyUSD float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.dailyLimitUSD = dailyUSD
		c.monthlyLimitUSD = monthlyUSD
	})
}

// WithWarnOnCostLimit logs instead of rejecting calls once a cap is reached.
func WithWarnOnCostLimit() Option {
	return optionFunc(func(c *clientConfig) {
		c.warnOnLimit = true
	})
}

// WithBodyPrefix sets how many body characters backfill embeds. Default: 1000.
func WithBodyPrefix(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.bodyPrefix = n
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}

package fedsearch

import (
	"log/slog"
	"time"

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
	addrs            []string
	username         string
	password         string
	db               int
	readinessTimeout time.Duration

	timeout           time.Duration
	maxFanouts        int64
	defaultPageSize   int
	maxPageSize       int
	quickSearchSize   int
	entityMaxPageSize int
	normalization     string
	windowBuffer      int
	maxWindow         int
	synonymTTL        time.Duration

	breakerFailures int
	breakerReset    time.Duration

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithRedis configures the client to connect to a single Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithAddrs sets the seed addresses, e.g. for a Redis cluster.
func WithAddrs(addrs ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = append([]string(nil), addrs...)
	})
}

// WithAuth sets ACL credentials.
func WithAuth(username, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.username = username
		c.password = password
	})
}

// WithDB selects the logical database.
func WithDB(db int) Option {
	return optionFunc(func(c *clientConfig) {
		c.db = db
	})
}

// WithReadinessTimeout bounds the initial connection wait in New.
// Default: 10s.
func WithReadinessTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.readinessTimeout = d
	})
}

// WithTimeout sets the per-search deadline across all entity types.
// Entity types still pending when it expires are reported as failed.
// Default: 5s.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.timeout = d
	})
}

// WithMaxConcurrentSearches caps how many searches fan out at once.
// Default: 0 (unlimited).
func WithMaxConcurrentSearches(n int64) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxFanouts = n
	})
}

// WithPageSizes sets the default and maximum page size.
// Defaults: 20 and 1000.
func WithPageSizes(defaultSize, maxSize int) Option {
	return optionFunc(func(c *clientConfig) {
		c.defaultPageSize = defaultSize
		c.maxPageSize = maxSize
	})
}

// WithQuickSearchSize sets how many items QuickSearch returns. Default: 10.
func WithQuickSearchSize(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.quickSearchSize = n
	})
}

// WithEntityMaxPageSize caps the page size of SearchByEntityType. Default: 100.
func WithEntityMaxPageSize(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.entityMaxPageSize = n
	})
}

// WithScoreNormalization selects how scores from different entity types are
// made comparable: "minmax" (default) or "raw".
func WithScoreNormalization(mode string) Option {
	return optionFunc(func(c *clientConfig) {
		c.normalization = mode
	})
}

// WithWindow tunes how many extra candidates each entity index returns
// beyond the requested page, and the hard cap on that window.
// Defaults: 10 and 10000.
func WithWindow(buffer, maxWindow int) Option {
	return optionFunc(func(c *clientConfig) {
		c.windowBuffer = buffer
		c.maxWindow = maxWindow
	})
}

// WithSynonymCacheTTL sets how long a synonym table is reused. Default: 5m.
func WithSynonymCacheTTL(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.synonymTTL = d
	})
}

// WithBreaker configures the per-entity-type circuit breaker.
// Defaults: 5 consecutive failures, 30s reset.
func WithBreaker(maxFailures int, reset time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.breakerFailures = maxFailures
		c.breakerReset = reset
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

package breaker

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// ErrOpen is returned while the breaker fast-fails.
var ErrOpen = errors.New("circuit breaker is open")

// State is the breaker state.
type State int

// Breaker states. The values are exported as the breaker state gauge.
const (
	Closed State = iota
	Open
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

func fromGobreaker(s gobreaker.State) State {
	switch s {
	case gobreaker.StateOpen:
		return Open
	case gobreaker.StateHalfOpen:
		return HalfOpen
	default:
		return Closed
	}
}

// Config holds breaker thresholds.
type Config struct {
	// MaxFailures is the number of consecutive failures that opens the breaker.
	MaxFailures int
	// ResetTimeout is how long the breaker stays open before a trial call.
	ResetTimeout time.Duration
}

// Defaults.
const (
	DefaultMaxFailures  = 5
	DefaultResetTimeout = 30 * time.Second
)

type options struct {
	logger    *zap.Logger
	isFailure func(error) bool
	onState   func(string, State)
}

// Option configures a Breaker.
type Option func(*options)

// WithFailurePredicate decides which errors count against the breaker.
// By default every non-nil error does.
func WithFailurePredicate(fn func(error) bool) Option {
	return func(o *options) { o.isFailure = fn }
}

// WithStateHook is called on every state transition.
func WithStateHook(fn func(name string, s State)) Option {
	return func(o *options) { o.onState = fn }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Breaker guards calls to one dependency. It opens after MaxFailures
// consecutive failures, fast-fails for ResetTimeout, then lets a single trial
// call through; its outcome closes or reopens the breaker.
type Breaker struct {
	cb *gobreaker.CircuitBreaker
}

// New creates a closed breaker.
func New(name string, cfg Config, opts ...Option) *Breaker {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = DefaultMaxFailures
	}
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = DefaultResetTimeout
	}
	o := options{
		logger:    zap.NewNop(),
		isFailure: func(err error) bool { return err != nil },
	}
	for _, opt := range opts {
		opt(&o)
	}

	maxFailures := uint32(cfg.MaxFailures)
	st := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cfg.ResetTimeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= maxFailures
		},
		// Errors that do not count still prove the dependency answered.
		IsSuccessful: func(err error) bool {
			return err == nil || !o.isFailure(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			next := fromGobreaker(to)
			switch next {
			case Open:
				o.logger.Warn("breaker opened",
					zap.String("name", name),
					zap.String("from", fromGobreaker(from).String()),
					zap.Duration("reset_timeout", cfg.ResetTimeout),
				)
			case HalfOpen:
				o.logger.Info("breaker trial call", zap.String("name", name))
			case Closed:
				o.logger.Info("breaker closed", zap.String("name", name))
			}
			if o.onState != nil {
				o.onState(name, next)
			}
		},
	}
	return &Breaker{cb: gobreaker.NewCircuitBreaker(st)}
}

// Name returns the guarded dependency name.
func (b *Breaker) Name() string { return b.cb.Name() }

// State returns the current state.
func (b *Breaker) State() State { return fromGobreaker(b.cb.State()) }

// Execute runs op unless the breaker is open. A call rejected while the
// half-open trial is in flight also returns ErrOpen.
func (b *Breaker) Execute(ctx context.Context, op func(ctx context.Context) error) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, op(ctx)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrOpen
	}
	return err
}

package llm

import (
	"context"
	"time"

	"github.com/felixgeelhaar/fortify/circuitbreaker"

	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/logger"
)

// BreakerConfig configures the circuit breaker placed in front of a provider.
type BreakerConfig struct {
	Enabled bool `yaml:"enabled"`

	// ConsecutiveFailures trips the breaker open.
	ConsecutiveFailures uint32 `yaml:"consecutive_failures"`

	// OpenTimeout is how long the breaker stays open before a single
	// half-open probe is let through.
	OpenTimeout time.Duration `yaml:"open_timeout"`
}

// BreakerProvider short-circuits calls after repeated failures so a dead
// grading endpoint costs the learner one timeout, not one per answer.
type BreakerProvider struct {
	inner Provider
	cb    circuitbreaker.CircuitBreaker[*Response]
}

// WithCircuitBreaker wraps p with a fortify circuit breaker. State changes
// are logged at warn level.
func WithCircuitBreaker(p Provider, cfg BreakerConfig, log *logger.Logger) Provider {
	if !cfg.Enabled {
		return p
	}
	if log == nil {
		log = logger.Nop()
	}
	threshold := cfg.ConsecutiveFailures
	if threshold == 0 {
		threshold = 3
	}

	cb := circuitbreaker.New[*Response](circuitbreaker.Config{
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts circuitbreaker.Counts) bool {
			return uint64(counts.ConsecutiveFailures) >= uint64(threshold)
		},
		OnStateChange: func(from, to circuitbreaker.State) {
			log.Warn("llm circuit breaker state change",
				"model", p.ModelID(),
				"from", from.String(),
				"to", to.String())
		},
	})

	return &BreakerProvider{inner: p, cb: cb}
}

func (b *BreakerProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	resp, err := b.cb.Execute(ctx, func(ctx context.Context) (*Response, error) {
		return b.inner.Generate(ctx, req)
	})
	if err != nil && !IsTyped(err) && ctx.Err() == nil {
		// Open-circuit rejections come back untyped.
		return nil, &ErrProviderUnavailable{Err: err}
	}
	return resp, err
}

func (b *BreakerProvider) ModelID() string {
	return b.inner.ModelID()
}

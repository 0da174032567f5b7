package graphstore

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// BreakerConfig configures CircuitBreakerStore.
type BreakerConfig struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultBreakerConfig trips after 5 requests with at least 80% failures and
// probes again after 30 seconds.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:             "neo4j",
		MaxRequests:      3,
		Interval:         30 * time.Second,
		Timeout:          30 * time.Second,
		FailureThreshold: 0.8,
		MinRequests:      5,
	}
}

// CircuitBreakerStore stops sending statements to a failing database and
// answers ErrUnavailable until the breaker half-opens.
type CircuitBreakerStore struct {
	next Store
	cb   *gobreaker.CircuitBreaker
}

// NewCircuitBreakerStore wraps next. onStateChange may be nil.
func NewCircuitBreakerStore(next Store, config BreakerConfig, logger *zap.Logger, onStateChange func(name string, state gobreaker.State)) *CircuitBreakerStore {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        config.Name,
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < config.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= config.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			if onStateChange != nil {
				onStateChange(name, to)
			}
		},
		// A caller giving up is not a database failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	return &CircuitBreakerStore{next: next, cb: cb}
}

// Read implements Store.
func (s *CircuitBreakerStore) Read(ctx context.Context, cypher string, params map[string]interface{}) ([]Record, error) {
	return s.execute(func() ([]Record, error) {
		return s.next.Read(ctx, cypher, params)
	})
}

// Write implements Store.
func (s *CircuitBreakerStore) Write(ctx context.Context, cypher string, params map[string]interface{}) ([]Record, error) {
	return s.execute(func() ([]Record, error) {
		return s.next.Write(ctx, cypher, params)
	})
}

// Ping bypasses the breaker so readiness reflects the database itself.
func (s *CircuitBreakerStore) Ping(ctx context.Context) error {
	return s.next.Ping(ctx)
}

// Close implements Store.
func (s *CircuitBreakerStore) Close(ctx context.Context) error {
	return s.next.Close(ctx)
}

// State reports the current breaker state.
func (s *CircuitBreakerStore) State() gobreaker.State {
	return s.cb.State()
}

func (s *CircuitBreakerStore) execute(fn func() ([]Record, error)) ([]Record, error) {
	out, err := s.cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, errors.Join(ErrUnavailable, err)
		}
		return nil, err
	}
	records, _ := out.([]Record)
	return records, nil
}

package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
	"github.com/soundprediction/kgreason/pkg/alert"
	"github.com/soundprediction/kgreason/pkg/config"
	"github.com/soundprediction/kgreason/pkg/types"
)

// BreakerStore wraps a Store with circuit breaking so a failing disk or database
// is not hammered by save-on-write traffic. While the breaker is open, calls fail
// immediately with gobreaker.ErrOpenState.
type BreakerStore struct {
	inner Store
	cb    *gobreaker.CircuitBreaker
}

// NewBreakerStore wraps inner with a circuit breaker configured by cfg.
// A trip is reported through alerter, which may be nil.
func NewBreakerStore(inner Store, cfg config.CircuitBreakerConfig, alerter alert.Alerter, logger *slog.Logger) *BreakerStore {
	if logger == nil {
		logger = slog.Default()
	}
	if alerter == nil {
		alerter = alert.NoOpAlerter{}
	}
	st := gobreaker.Settings{
		Name:        "snapshot-store:" + inner.Location(),
		MaxRequests: cfg.MaxRequests,
		Interval:    time.Duration(cfg.Interval) * time.Second,
		Timeout:     time.Duration(cfg.Timeout) * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= cfg.ReadyToTripRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			if to == gobreaker.StateOpen {
				logger.Error("Circuit breaker tripped", "name", name, "from", from.String(), "to", to.String())
				msg := fmt.Sprintf("Circuit breaker '%s' changed state from %s to %s. Snapshot writes are failing.", name, from, to)
				if err := alerter.Alert("URGENT: Circuit Breaker Tripped - "+name, msg); err != nil {
					logger.Error("Alert delivery failed", "name", name, "error", err)
				}
				return
			}
			logger.Warn("Circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
		// A missing snapshot is an expected answer, not a store failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, types.ErrSnapshotNotFound)
		},
	}
	return &BreakerStore{inner: inner, cb: gobreaker.NewCircuitBreaker(st)}
}

// Save implements Store.
func (s *BreakerStore) Save(ctx context.Context, snap *types.Snapshot) error {
	_, err := s.cb.Execute(func() (interface{}, error) {
		return nil, s.inner.Save(ctx, snap)
	})
	return err
}

// Load implements Store.
func (s *BreakerStore) Load(ctx context.Context) (*types.Snapshot, error) {
	res, err := s.cb.Execute(func() (interface{}, error) {
		return s.inner.Load(ctx)
	})
	if err != nil {
		return nil, err
	}
	return res.(*types.Snapshot), nil
}

// Location implements Store.
func (s *BreakerStore) Location() string {
	return s.inner.Location()
}

// Close implements Store.
func (s *BreakerStore) Close() error {
	return s.inner.Close()
}

// State reports the breaker state.
func (s *BreakerStore) State() gobreaker.State {
	return s.cb.State()
}

package storage

import (
	"context"
	"errors"

	"github.com/2beens/fittrack/internal/telemetry/metrics"
)

var _ Store = (*InstrumentedStore)(nil)

// InstrumentedStore counts store operations by op and status.
type InstrumentedStore struct {
	next           Store
	metricsManager *metrics.Manager
}

func NewInstrumentedStore(next Store, metricsManager *metrics.Manager) *InstrumentedStore {
	return &InstrumentedStore{
		next:           next,
		metricsManager: metricsManager,
	}
}

func (s *InstrumentedStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.next.Get(ctx, key)
	s.count("get", err)
	return val, err
}

func (s *InstrumentedStore) Set(ctx context.Context, key string, value []byte) error {
	err := s.next.Set(ctx, key, value)
	s.count("set", err)
	return err
}

func (s *InstrumentedStore) Delete(ctx context.Context, key string) error {
	err := s.next.Delete(ctx, key)
	s.count("delete", err)
	return err
}

func (s *InstrumentedStore) count(op string, err error) {
	status := "ok"
	switch {
	case errors.Is(err, ErrNotFound):
		status = "not_found"
	case err != nil:
		status = "error"
	}
	s.metricsManager.CounterStoreOps.WithLabelValues(op, status).Inc()
}

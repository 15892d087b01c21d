package notify

import (
	"context"

	"github.com/2beens/fittrack/internal/telemetry/metrics"
)

var _ Notifier = (*InstrumentedNotifier)(nil)

type InstrumentedNotifier struct {
	next           Notifier
	metricsManager *metrics.Manager
}

func NewInstrumentedNotifier(next Notifier, metricsManager *metrics.Manager) *InstrumentedNotifier {
	return &InstrumentedNotifier{
		next:           next,
		metricsManager: metricsManager,
	}
}

func (n *InstrumentedNotifier) Notify(ctx context.Context, signal Signal) error {
	n.metricsManager.CounterCelebrations.WithLabelValues(string(signal.Kind)).Inc()
	return n.next.Notify(ctx, signal)
}

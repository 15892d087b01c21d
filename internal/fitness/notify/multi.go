package notify

import (
	"context"

	"go.uber.org/multierr"
)

var _ Notifier = Multi(nil)

// Multi delivers every signal to all notifiers, one failing does not stop the others.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, signal Signal) error {
	var err error
	for _, n := range m {
		err = multierr.Append(err, n.Notify(ctx, signal))
	}
	return err
}

package notify

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

type Kind string

const (
	KindPersonalRecord     Kind = "personal_record"
	KindChallengeCompleted Kind = "challenge_completed"
	KindMilestoneReached   Kind = "milestone_reached"
	KindGoalCreated        Kind = "goal_created"
	KindTimerDone          Kind = "timer_done"
)

// Signal is a celebration or notification meant for the user.
type Signal struct {
	Kind      Kind      `json:"kind"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewSignal(kind Kind, message string, createdAt time.Time) Signal {
	return Signal{
		Kind:      kind,
		Message:   message,
		CreatedAt: createdAt,
	}
}

type Notifier interface {
	Notify(ctx context.Context, signal Signal) error
}

// Send delivers the signal and only logs a failure, state changes that caused
// the signal are never rolled back.
func Send(ctx context.Context, notifier Notifier, signal Signal) {
	if notifier == nil {
		return
	}
	if err := notifier.Notify(ctx, signal); err != nil {
		log.Errorf("notify [%s] %q: %s", signal.Kind, signal.Message, err)
	}
}

package timer

import (
	"context"
	"sync"
	"time"
)

type Ticker interface {
	Chan() <-chan time.Time
	Stop()
}

type stdTicker struct {
	*time.Ticker
}

func (t stdTicker) Chan() <-chan time.Time {
	return t.C
}

func NewStdTicker(d time.Duration) Ticker {
	return stdTicker{time.NewTicker(d)}
}

// Timer counts down once per tick. Callbacks run on the timer goroutine
// and must not call Stop or Reset.
type Timer struct {
	mutex   sync.Mutex
	left    int
	running bool
	cancel  context.CancelFunc
	done    chan struct{}

	// NewTicker can be swapped in tests
	NewTicker func(d time.Duration) Ticker
	// OnDone is called when the countdown reaches zero
	OnDone func()
}

func New(onDone func()) *Timer {
	return &Timer{
		NewTicker: NewStdTicker,
		OnDone:    onDone,
	}
}

// Reset stops the timer and sets the seconds left.
func (t *Timer) Reset(seconds int) {
	t.Stop()

	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.left = max(seconds, 0)
}

// Start begins the countdown. It returns false when the timer is already
// running or there is nothing left to count.
func (t *Timer) Start(ctx context.Context, onTick func(left int)) bool {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if t.running || t.left <= 0 {
		return false
	}

	ctx, cancel := context.WithCancel(ctx)
	t.running = true
	t.cancel = cancel
	t.done = make(chan struct{})

	go t.run(ctx, cancel, t.NewTicker(time.Second), onTick, t.done)
	return true
}

func (t *Timer) run(
	ctx context.Context,
	cancel context.CancelFunc,
	ticker Ticker,
	onTick func(left int),
	done chan struct{},
) {
	defer close(done)
	defer cancel()
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			t.mutex.Lock()
			t.running = false
			t.mutex.Unlock()
			return
		case <-ticker.Chan():
			t.mutex.Lock()
			t.left--
			left := t.left
			if left == 0 {
				t.running = false
			}
			t.mutex.Unlock()

			if onTick != nil {
				onTick(left)
			}
			if left == 0 {
				if t.OnDone != nil {
					t.OnDone()
				}
				return
			}
		}
	}
}

// Stop pauses the countdown and waits for the timer goroutine to exit.
func (t *Timer) Stop() {
	t.mutex.Lock()
	if !t.running {
		t.mutex.Unlock()
		return
	}
	cancel, done := t.cancel, t.done
	t.mutex.Unlock()

	cancel()
	<-done
}

// Wait blocks until the current countdown finishes or is stopped.
func (t *Timer) Wait() {
	t.mutex.Lock()
	done := t.done
	t.mutex.Unlock()

	if done != nil {
		<-done
	}
}

func (t *Timer) Left() int {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return t.left
}

func (t *Timer) Running() bool {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return t.running
}

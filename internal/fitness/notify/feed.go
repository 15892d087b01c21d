package notify

import (
	"context"
	"sync"
)

var _ Notifier = (*Feed)(nil)

// Feed keeps the most recent signals in a fixed size ring.
type Feed struct {
	mutex   sync.RWMutex
	signals []Signal
	next    int
	full    bool
}

func NewFeed(size int) *Feed {
	if size <= 0 {
		size = 1
	}
	return &Feed{
		signals: make([]Signal, size),
	}
}

func (f *Feed) Notify(_ context.Context, signal Signal) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	f.signals[f.next] = signal
	f.next = (f.next + 1) % len(f.signals)
	if f.next == 0 {
		f.full = true
	}
	return nil
}

// Recent returns up to limit signals, newest first. A limit <= 0 returns all kept signals.
func (f *Feed) Recent(limit int) []Signal {
	f.mutex.RLock()
	defer f.mutex.RUnlock()

	count := f.next
	if f.full {
		count = len(f.signals)
	}
	if limit > 0 && limit < count {
		count = limit
	}

	recent := make([]Signal, 0, count)
	for i := 1; i <= count; i++ {
		idx := (f.next - i + len(f.signals)) % len(f.signals)
		recent = append(recent, f.signals[idx])
	}
	return recent
}

package events

import (
	"context"
	"sync"
	"time"
)

// DelayedSender schedules a single future event delivery. Scheduling again
// replaces any pending delivery; Abort cancels it. The zero value is ready
// to use.
type DelayedSender[T any] struct {
	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// Schedule arranges for event to be sent to target after delay, replacing
// any previously scheduled delivery. Cancellation of ctx also cancels the
// delivery.
func (s *DelayedSender[T]) Schedule(ctx context.Context, target chan<- T, event T, delay time.Duration) {
	s.Abort()

	sendCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	s.mu.Lock()
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	go func() {
		defer close(done)
		defer cancel()

		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-sendCtx.Done():
			return
		case <-timer.C:
		}

		select {
		case target <- event:
		case <-sendCtx.Done():
		}
	}()
}

// Abort cancels a pending delivery. It reports whether a delivery was
// scheduled, finished or not.
func (s *DelayedSender[T]) Abort() bool {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel == nil {
		return false
	}
	cancel()
	return true
}

// IsFinished reports whether no delivery is in flight.
func (s *DelayedSender[T]) IsFinished() bool {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()

	if done == nil {
		return true
	}
	select {
	case <-done:
		return true
	default:
		return false
	}
}

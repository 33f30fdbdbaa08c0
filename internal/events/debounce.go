package events

import (
	"context"
	"time"
)

// debounceBuffer sizes the intake channel so senders do not block during a
// burst.
const debounceBuffer = 100

// DebouncedSender delivers an event to the target channel only after a full
// quiet window has passed since the last Send. Every Send during the window
// replaces the pending event and restarts the window, so a burst collapses
// to its final event.
type DebouncedSender[T any] struct {
	in chan T
}

// NewDebouncedSender starts the debounce loop. The loop exits when ctx is
// cancelled; a pending event is dropped at that point.
func NewDebouncedSender[T any](ctx context.Context, window time.Duration, target chan<- T) *DebouncedSender[T] {
	s := &DebouncedSender[T]{in: make(chan T, debounceBuffer)}
	go s.run(ctx, window, target)
	return s
}

// Send submits an event and restarts the quiet window. The event is dropped
// when ctx is cancelled before the loop accepts it.
func (s *DebouncedSender[T]) Send(ctx context.Context, event T) {
	select {
	case s.in <- event:
	case <-ctx.Done():
	}
}

func (s *DebouncedSender[T]) run(ctx context.Context, window time.Duration, target chan<- T) {
	for {
		var pending T
		select {
		case <-ctx.Done():
			return
		case pending = <-s.in:
		}

		timer := time.NewTimer(window)
	settle:
		for {
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case pending = <-s.in:
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(window)
			case <-timer.C:
				break settle
			}
		}

		select {
		case target <- pending:
		case <-ctx.Done():
			return
		}
	}
}

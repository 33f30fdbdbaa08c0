package events

import (
	"context"
	"sync"
	"time"
)

// NextKind classifies the outcome of Multiplexer.Next.
type NextKind int

const (
	// NextEvent means an event was received.
	NextEvent NextKind = iota
	// NextTimeout means no event arrived within the timeout.
	NextTimeout
	// NextClosed means every source is closed and drained, or the context
	// was cancelled.
	NextClosed
)

// Multiplexer merges several event sources into one stream. Sources of any
// element type attach through Feed with a wrapping function into the common
// event type; the consumer pulls merged events with Next.
type Multiplexer[T any] struct {
	events chan T
	wg     sync.WaitGroup
	seal   sync.Once
}

// NewMultiplexer creates a multiplexer with the given merge buffer.
func NewMultiplexer[T any](buffer int) *Multiplexer[T] {
	return &Multiplexer[T]{events: make(chan T, buffer)}
}

// Feed attaches a source to the multiplexer, forwarding each element
// through wrap. Feed must be called before Seal. The forwarder stops when
// src closes or ctx is cancelled.
func Feed[S, T any](ctx context.Context, m *Multiplexer[T], src <-chan S, wrap func(S) T) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case s, ok := <-src:
				if !ok {
					return
				}
				select {
				case m.events <- wrap(s):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
}

// Seal marks the source set complete. Once every attached source has
// stopped, the merged stream closes and Next reports NextClosed.
func (m *Multiplexer[T]) Seal() {
	m.seal.Do(func() {
		go func() {
			m.wg.Wait()
			close(m.events)
		}()
	})
}

// Next returns the next merged event, a timeout marker when nothing arrives
// within timeout, or a closed marker when the stream has ended.
func (m *Multiplexer[T]) Next(ctx context.Context, timeout time.Duration) (T, NextKind) {
	var zero T
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case event, ok := <-m.events:
		if !ok {
			return zero, NextClosed
		}
		return event, NextEvent
	case <-timer.C:
		return zero, NextTimeout
	case <-ctx.Done():
		return zero, NextClosed
	}
}

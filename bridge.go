package mfcam

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// sample is a frame held by the capture engine until it is copied out.
type sample interface {
	copyFrame(width, height uint32) (*Frame, error)
	release()
}

const eventQueueSize = 32

// bridge turns the capture engine's callbacks, which arrive on OS worker
// threads, into channel receives for the blocking Camera API. Callbacks never
// block: the sample slot holds one frame and a newer frame evicts the older
// one.
type bridge struct {
	log *slog.Logger

	events  chan Event
	samples chan sample

	failed   chan struct{}
	failOnce sync.Once
	err      error

	closed    chan struct{}
	closeOnce sync.Once

	dropped atomic.Uint64
}

func newBridge(log *slog.Logger) *bridge {
	return &bridge{
		log:     log,
		events:  make(chan Event, eventQueueSize),
		samples: make(chan sample, 1),
		failed:  make(chan struct{}),
		closed:  make(chan struct{}),
	}
}

func (b *bridge) isClosed() bool {
	select {
	case <-b.closed:
		return true
	default:
		return false
	}
}

func (b *bridge) hasFailed() bool {
	select {
	case <-b.failed:
		return true
	default:
		return false
	}
}

// fail latches the first fatal engine error.
func (b *bridge) fail(err error) {
	b.failOnce.Do(func() {
		b.err = err
		close(b.failed)
	})
}

func (b *bridge) pushEvent(ev Event) {
	if b.isClosed() {
		return
	}
	b.log.Debug("capture engine event", "event", ev)
	if ev.Kind == EventError {
		b.fail(ev.Err())
	}
	for {
		select {
		case b.events <- ev:
			return
		default:
		}
		select {
		case old := <-b.events:
			b.log.Warn("capture engine event queue full, dropping event", "event", old)
		default:
		}
	}
}

// pushSample queues s, replacing any frame nobody has picked up yet. A nil
// sample marks the end of the stream.
func (b *bridge) pushSample(s sample) {
	if b.isClosed() || b.hasFailed() {
		if s != nil {
			s.release()
		}
		return
	}
	for {
		select {
		case b.samples <- s:
			if b.isClosed() || b.hasFailed() {
				b.drain()
			}
			return
		default:
		}
		select {
		case old := <-b.samples:
			if old != nil {
				old.release()
			}
			if n := b.dropped.Add(1); n&(n-1) == 0 {
				b.log.Debug("dropped stale frames", "count", n)
			}
		default:
		}
	}
}

// waitEvent discards events until one of the given kind arrives. Error
// events and timeouts abort the wait.
func (b *bridge) waitEvent(kind EventKind, timeout time.Duration) (Event, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		select {
		case ev := <-b.events:
			if ev.Kind == kind {
				if err := ev.Status; err != nil {
					return ev, fmt.Errorf("%s: %w", kind, err)
				}
				return ev, nil
			}
			if err := ev.Err(); err != nil {
				return ev, fmt.Errorf("waiting for %s: %w", kind, err)
			}
		case <-timer.C:
			return Event{}, fmt.Errorf("waiting for %s: %w", kind, ErrTimeout)
		case <-b.closed:
			return Event{}, ErrClosed
		}
	}
}

// nextSample blocks until a frame arrives, the engine fails, the bridge is
// closed or ctx is done. Once the engine has failed, frames still queued are
// released and the latched error wins.
func (b *bridge) nextSample(ctx context.Context) (sample, error) {
	if b.isClosed() {
		return nil, ErrClosed
	}
	if b.hasFailed() {
		b.drain()
		return nil, b.err
	}
	select {
	case s := <-b.samples:
		if b.hasFailed() {
			if s != nil {
				s.release()
			}
			b.drain()
			return nil, b.err
		}
		return s, nil
	case <-b.failed:
		return nil, b.err
	case <-b.closed:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (b *bridge) close() {
	b.closeOnce.Do(func() {
		close(b.closed)
		b.drain()
	})
}

func (b *bridge) drain() {
	for {
		select {
		case s := <-b.samples:
			if s != nil {
				s.release()
			}
		default:
			return
		}
	}
}

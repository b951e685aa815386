package timer

import (
	"sync"
	"sync/atomic"
	"time"

	"k8s.io/utils/clock"

	"github.com/dshills/physkey/internal/logging"
)

// LoopConfig configures a Loop.
type LoopConfig struct {
	// Clock provides time and delayed execution. Default: clock.RealClock.
	Clock clock.WithDelayedExecution

	// BufferSize is the capacity of the work queue. Default: 256.
	BufferSize int

	// Logger receives recovered panics. Default: logging.NullLogger.
	Logger *logging.Logger
}

// DefaultLoopConfig returns a configuration with sensible defaults.
func DefaultLoopConfig() LoopConfig {
	return LoopConfig{
		Clock:      clock.RealClock{},
		BufferSize: 256,
		Logger:     logging.NullLogger,
	}
}

// Loop serializes posted work and timer callbacks on a single goroutine.
type Loop struct {
	config LoopConfig
	work   chan func()
	done   chan struct{}
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewLoop starts a loop goroutine.
func NewLoop(config LoopConfig) *Loop {
	def := DefaultLoopConfig()
	if config.Clock == nil {
		config.Clock = def.Clock
	}
	if config.BufferSize <= 0 {
		config.BufferSize = def.BufferSize
	}
	if config.Logger == nil {
		config.Logger = def.Logger
	}

	l := &Loop{
		config: config,
		work:   make(chan func(), config.BufferSize),
		done:   make(chan struct{}),
	}
	l.wg.Add(1)
	go l.run()
	return l
}

func (l *Loop) run() {
	defer l.wg.Done()
	for {
		select {
		case fn := <-l.work:
			l.safeCall(fn)
		case <-l.done:
			for {
				select {
				case fn := <-l.work:
					l.safeCall(fn)
				default:
					return
				}
			}
		}
	}
}

func (l *Loop) safeCall(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.config.Logger.Error("loop callback panicked: %v", r)
		}
	}()
	fn()
}

// Post queues fn to run on the loop goroutine.
// Returns false if the loop is closed.
func (l *Loop) Post(fn func()) bool {
	l.mu.Lock()
	closed := l.closed
	l.mu.Unlock()
	if closed {
		return false
	}

	select {
	case l.work <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Do runs fn on the loop goroutine and waits for it to return.
// Returns false if the loop is closed.
func (l *Loop) Do(fn func()) bool {
	finished := make(chan struct{})
	if !l.Post(func() {
		defer close(finished)
		fn()
	}) {
		return false
	}
	select {
	case <-finished:
		return true
	case <-l.done:
		select {
		case <-finished:
			return true
		default:
			return false
		}
	}
}

// Now returns the loop clock's current time.
func (l *Loop) Now() time.Time {
	return l.config.Clock.Now()
}

// Schedule runs fn on the loop goroutine after delay.
func (l *Loop) Schedule(delay time.Duration, fn func()) Handle {
	h := &loopHandle{}
	h.timer = l.config.Clock.AfterFunc(delay, func() {
		l.Post(func() {
			if h.state.CompareAndSwap(handlePending, handleFired) {
				fn()
			}
		})
	})
	return h
}

// Close stops the loop after draining queued work. Safe to call repeatedly.
func (l *Loop) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	l.mu.Unlock()

	close(l.done)
	l.wg.Wait()
}

const (
	handlePending int32 = iota
	handleFired
	handleCancelled
)

type loopHandle struct {
	timer clock.Timer
	state atomic.Int32
}

// Cancel implements Handle.
func (h *loopHandle) Cancel() bool {
	if !h.state.CompareAndSwap(handlePending, handleCancelled) {
		return false
	}
	if h.timer != nil {
		h.timer.Stop()
	}
	return true
}

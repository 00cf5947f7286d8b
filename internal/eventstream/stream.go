package eventstream

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/mrzor/file-tracer/internal/etw"
	"github.com/mrzor/file-tracer/internal/eventprocessor"
	"github.com/mrzor/file-tracer/internal/metrics"
)

// DefaultQueueSize is used when New is given a non-positive size.
const DefaultQueueSize = 4096

// dropLogInterval rate-limits the queue-full warning.
const dropLogInterval = 1000

var (
	// ErrAlreadyStarted is returned by Start when the worker is running.
	ErrAlreadyStarted = errors.New("stream already started")
	// ErrClosed is returned by Start after Stop.
	ErrClosed = errors.New("stream closed")
)

// Classifier turns a raw record into an event.
type Classifier interface {
	Classify(rec etw.RawRecord) (*etw.Event, bool)
}

// Processor handles one enriched event.
type Processor interface {
	Process(ev *etw.Event) eventprocessor.Outcome
}

// Stream queues events for the post-processing worker.
type Stream struct {
	classifier Classifier
	processor  Processor
	logger     *zap.Logger
	metrics    *metrics.Metrics

	mu      sync.RWMutex
	queue   chan *etw.Event
	closed  atomic.Bool
	started atomic.Bool
	quit    chan struct{}
	done    chan struct{}

	dropped   atomic.Uint64
	processed atomic.Uint64
}

// New creates a stream with a queue of size events.
func New(classifier Classifier, processor Processor, size int, logger *zap.Logger, m *metrics.Metrics) *Stream {
	if size <= 0 {
		size = DefaultQueueSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Stream{
		classifier: classifier,
		processor:  processor,
		logger:     logger.Named("eventstream"),
		metrics:    m,
		queue:      make(chan *etw.Event, size),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Submit classifies rec on the caller's goroutine and queues the resulting
// event. It reports whether an event was queued. rec is not retained.
func (s *Stream) Submit(rec etw.RawRecord) bool {
	ev, ok := s.classifier.Classify(rec)
	if !ok {
		return false
	}
	return s.Enqueue(ev)
}

// Enqueue queues an already classified event without blocking.
func (s *Stream) Enqueue(ev *etw.Event) bool {
	if ev == nil || s.closed.Load() {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed.Load() {
		return false
	}

	select {
	case s.queue <- ev:
		return true
	default:
		n := s.dropped.Add(1)
		s.metrics.IncQueueDropped()
		if n%dropLogInterval == 1 {
			s.logger.Warn("Event queue full, dropping events",
				zap.Stringer("kind", ev.Header.Kind),
				zap.Uint64("dropped_total", n))
		}
		return false
	}
}

// SubmitWait is Submit for sources that can afford to wait, such as a
// recorded trace. It blocks while the queue is full until the event is
// queued, ctx is done or the stream is stopped.
func (s *Stream) SubmitWait(ctx context.Context, rec etw.RawRecord) bool {
	ev, ok := s.classifier.Classify(rec)
	if !ok {
		return false
	}
	return s.EnqueueWait(ctx, ev)
}

// EnqueueWait queues an already classified event, waiting for room.
func (s *Stream) EnqueueWait(ctx context.Context, ev *etw.Event) bool {
	if ev == nil || s.closed.Load() {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed.Load() {
		return false
	}

	select {
	case s.queue <- ev:
		return true
	case <-ctx.Done():
		return false
	case <-s.quit:
		return false
	}
}

// Start runs the post-processing worker until Stop is called or ctx is
// cancelled. Events already queued at that point are still processed.
func (s *Stream) Start(ctx context.Context) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if !s.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}
	go s.run(ctx)
	return nil
}

// Stop closes the queue and waits for the worker to drain it.
func (s *Stream) Stop() error {
	s.closeQueue()
	if s.started.Load() {
		<-s.done
	}
	return nil
}

// Dropped returns the number of events lost to a full queue.
func (s *Stream) Dropped() uint64 {
	return s.dropped.Load()
}

// Processed returns the number of events handed to the processor.
func (s *Stream) Processed() uint64 {
	return s.processed.Load()
}

func (s *Stream) closeQueue() {
	if !s.closed.CompareAndSwap(false, true) {
		return
	}
	// Release waiters blocked on a full queue before taking the write lock.
	close(s.quit)
	s.mu.Lock()
	close(s.queue)
	s.mu.Unlock()
}

func (s *Stream) run(ctx context.Context) {
	defer close(s.done)

	for {
		select {
		case ev, ok := <-s.queue:
			if !ok {
				return
			}
			s.handle(ev)
		case <-ctx.Done():
			s.closeQueue()
			for ev := range s.queue {
				s.handle(ev)
			}
			return
		}
	}
}

func (s *Stream) handle(ev *etw.Event) {
	if err := Enrich(ev); err != nil {
		s.metrics.IncPostProcessDropped()
		s.logger.Debug("Dropping event", zap.Stringer("kind", ev.Header.Kind), zap.Error(err))
		return
	}
	s.processor.Process(ev)
	s.processed.Add(1)
}

// Package publisher fans dispatched events out to named subscribers.
package publisher

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/mrzor/file-tracer/internal/etw"
	"github.com/mrzor/file-tracer/internal/metrics"
)

// Subscriber consumes a dispatched event. Events are shared between
// subscribers and must not be modified.
type Subscriber func(ev *etw.Event) error

type subscription struct {
	name string
	fn   Subscriber
}

// Publisher delivers each fired event to every subscriber in registration
// order. A failing subscriber never affects the others.
type Publisher struct {
	mu     sync.RWMutex
	subs   []subscription
	logger *zap.Logger

	metrics *metrics.Metrics
}

// New creates an empty publisher.
func New(logger *zap.Logger, m *metrics.Metrics) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{
		logger:  logger.Named("publisher"),
		metrics: m,
	}
}

// Subscribe registers fn under name.
func (p *Publisher) Subscribe(name string, fn Subscriber) {
	if fn == nil {
		return
	}
	p.mu.Lock()
	p.subs = append(p.subs, subscription{name: name, fn: fn})
	p.mu.Unlock()
}

// Subscribers returns the registered subscriber names.
func (p *Publisher) Subscribers() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	names := make([]string, len(p.subs))
	for i, s := range p.subs {
		names[i] = s.name
	}
	return names
}

// Fire delivers ev synchronously.
func (p *Publisher) Fire(ev *etw.Event) {
	if ev == nil {
		return
	}

	p.mu.RLock()
	subs := p.subs
	p.mu.RUnlock()

	for _, s := range subs {
		if err := p.deliver(s, ev); err != nil {
			p.metrics.IncSubscriberError(s.name)
			p.logger.Warn("Subscriber failed",
				zap.String("subscriber", s.name),
				zap.Stringer("kind", ev.Header.Kind),
				zap.String("event_id", ev.Header.EventID),
				zap.Error(err))
		}
	}
}

func (p *Publisher) deliver(s subscription, ev *etw.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return s.fn(ev)
}

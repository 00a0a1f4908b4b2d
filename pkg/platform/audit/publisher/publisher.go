// Package publisher fans audit events out to one or more sinks, filling in
// request metadata from context.
package publisher

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/mssola/useragent"

	audit "academy/pkg/platform/audit"
	"academy/pkg/requestcontext"
)

var (
	// ErrBufferFull is returned in async mode when the buffer cannot take the event.
	ErrBufferFull = errors.New("audit buffer full")
	// ErrClosed is returned by Emit after Close.
	ErrClosed = errors.New("audit publisher closed")
)

// Store is an audit sink.
type Store interface {
	Append(ctx context.Context, event audit.Event) error
}

// Reader lists recent events. The primary store implements it when it can.
type Reader interface {
	ListRecent(ctx context.Context, limit int) ([]audit.Event, error)
}

// Publisher captures structured audit events. It is append-only. In sync
// mode Emit writes to every sink before returning; in async mode a single
// worker drains a bounded buffer.
type Publisher struct {
	primary Store
	sinks   []Store
	logger  *slog.Logger
	sampler *Sampler

	// mu guards closed and the send on buffer against Close.
	mu     sync.RWMutex
	closed bool
	buffer chan queued
	wg     sync.WaitGroup
}

type queued struct {
	ctx   context.Context
	event audit.Event
}

type Option func(*Publisher)

// WithAsyncBuffer enables async mode with a buffer of n events.
func WithAsyncBuffer(n int) Option {
	return func(p *Publisher) {
		if n > 0 {
			p.buffer = make(chan queued, n)
		}
	}
}

// WithSink adds a secondary sink such as Kafka.
func WithSink(s Store) Option {
	return func(p *Publisher) {
		if s != nil {
			p.sinks = append(p.sinks, s)
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithSampler drops a fraction of operations events. Compliance and security
// events are never sampled.
func WithSampler(s *Sampler) Option {
	return func(p *Publisher) {
		p.sampler = s
	}
}

func NewPublisher(store Store, opts ...Option) *Publisher {
	p := &Publisher{primary: store, sinks: []Store{store}}
	for _, opt := range opts {
		opt(p)
	}
	if p.buffer != nil {
		p.wg.Add(1)
		go p.run()
	}
	return p
}

// Emit enriches and records event.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	event = enrich(ctx, event)
	if event.Category == audit.CategoryOperations && p.sampler != nil && !p.sampler.ShouldSample(event.Action) {
		return nil
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	if p.buffer == nil {
		return p.write(ctx, event)
	}

	// Detach from request cancellation; the worker outlives the request.
	q := queued{ctx: context.WithoutCancel(ctx), event: event}
	select {
	case p.buffer <- q:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrBufferFull
	}
}

func (p *Publisher) write(ctx context.Context, event audit.Event) error {
	var errs []error
	for _, s := range p.sinks {
		if err := s.Append(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (p *Publisher) run() {
	defer p.wg.Done()
	for q := range p.buffer {
		if err := p.write(q.ctx, q.event); err != nil && p.logger != nil {
			p.logger.ErrorContext(q.ctx, "failed to persist audit event",
				"action", q.event.Action,
				"request_id", q.event.RequestID,
				"error", err,
			)
		}
	}
}

// ListRecent returns the most recent events from the primary store.
func (p *Publisher) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	r, ok := p.primary.(Reader)
	if !ok {
		return []audit.Event{}, nil
	}
	return r.ListRecent(ctx, limit)
}

// Close drains the async buffer. Later Emit calls return ErrClosed. Safe to
// call more than once.
func (p *Publisher) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	if p.buffer != nil {
		close(p.buffer)
	}
	p.mu.Unlock()
	p.wg.Wait()
}

func enrich(ctx context.Context, event audit.Event) audit.Event {
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.ActorID == "" {
		event.ActorID = requestcontext.Actor(ctx)
	}
	if event.ClientIP == "" {
		event.ClientIP = requestcontext.ClientIP(ctx)
	}
	if event.UserAgent == "" {
		event.UserAgent = requestcontext.UserAgent(ctx)
	}
	if event.UserAgent != "" && event.Browser == "" {
		ua := useragent.New(event.UserAgent)
		name, version := ua.Browser()
		if name != "" {
			event.Browser = name
			if version != "" {
				event.Browser += " " + version
			}
		}
		event.OS = ua.OS()
		if ua.Bot() {
			if event.Attributes == nil {
				event.Attributes = map[string]string{}
			}
			event.Attributes["bot"] = "true"
		}
	}
	return event
}

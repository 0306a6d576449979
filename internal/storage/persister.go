// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/time/rate"
)

// DefaultWritesPerSecond bounds how often a Persister touches the backend.
const DefaultWritesPerSecond = 5.0

// =============================================================================
// PERSISTER
// =============================================================================

// Persister writes snapshots of one record in the background. Save never
// blocks on I/O: it replaces the pending snapshot and wakes the writer.
// Snapshots saved faster than the rate limit are coalesced so only the
// latest one is written. Write failures are logged and otherwise ignored.
type Persister struct {
	store   Storage
	key     string
	limiter *rate.Limiter
	logger  *slog.Logger

	mu         sync.Mutex
	pending    []byte
	hasPending bool
	writing    bool
	closed     bool
	writes     int
	failures   int

	wake     chan struct{}
	flushReq chan chan struct{}
	done     chan struct{}
	ctx      context.Context
	cancel   context.CancelFunc
}

// PersisterOption configures a Persister.
type PersisterOption func(*Persister)

// WithLogger sets the logger used for write failures.
func WithLogger(l *slog.Logger) PersisterOption {
	return func(p *Persister) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithRate sets the maximum writes per second. Zero or negative disables
// throttling.
func WithRate(perSecond float64) PersisterOption {
	return func(p *Persister) {
		if perSecond <= 0 {
			p.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		p.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// NewPersister starts a background writer for key.
func NewPersister(store Storage, key string, opts ...PersisterOption) *Persister {
	ctx, cancel := context.WithCancel(context.Background())
	p := &Persister{
		store:    store,
		key:      key,
		limiter:  rate.NewLimiter(rate.Limit(DefaultWritesPerSecond), 1),
		logger:   slog.Default(),
		wake:     make(chan struct{}, 1),
		flushReq: make(chan chan struct{}),
		done:     make(chan struct{}),
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(p)
	}
	go p.run()
	return p
}

// Save schedules data to be written. A nil data removes the record.
func (p *Persister) Save(data []byte) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.logger.Warn("persister closed, dropping snapshot", "key", p.key)
		return
	}
	p.pending = data
	p.hasPending = true
	p.mu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// Flush blocks until every snapshot saved before the call is written.
func (p *Persister) Flush() {
	ack := make(chan struct{})
	select {
	case p.flushReq <- ack:
		<-ack
	case <-p.done:
	}
}

// Close writes any pending snapshot and stops the writer.
func (p *Persister) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		<-p.done
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	p.cancel()
	<-p.done
	return nil
}

// Pending reports whether a saved snapshot has not reached the backend yet,
// either queued behind the rate limit or in the middle of a write.
func (p *Persister) Pending() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hasPending || p.writing
}

// Stats returns the number of successful and failed writes.
func (p *Persister) Stats() (writes, failures int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.writes, p.failures
}

func (p *Persister) run() {
	defer close(p.done)

	for {
		select {
		case <-p.ctx.Done():
			p.writePending()
			return

		case <-p.wake:
			if err := p.limiter.Wait(p.ctx); err != nil {
				// Cancelled while throttled; the Done branch writes the tail.
				continue
			}
			p.writePending()

		case ack := <-p.flushReq:
			p.writePending()
			close(ack)
		}
	}
}

func (p *Persister) writePending() {
	p.mu.Lock()
	if !p.hasPending {
		p.mu.Unlock()
		return
	}
	data := p.pending
	p.pending = nil
	p.hasPending = false
	p.writing = true
	p.mu.Unlock()

	var err error
	if data == nil {
		err = p.store.Remove(p.key)
	} else {
		err = p.store.Set(p.key, data)
	}

	p.mu.Lock()
	p.writing = false
	if err != nil {
		p.failures++
	} else {
		p.writes++
	}
	p.mu.Unlock()

	if err != nil {
		p.logger.Error("failed to persist state", "key", p.key, "err", err)
	}
}

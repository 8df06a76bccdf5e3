// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

package database

import (
	"context"
	"errors"
	"fmt"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/plan-player-analytics/Plan-sub001/internal/config"
	"github.com/plan-player-analytics/Plan-sub001/internal/logging"
	"github.com/plan-player-analytics/Plan-sub001/internal/metrics"
	"github.com/plan-player-analytics/Plan-sub001/internal/validation"
)

// WriterName labels the writer in logs, metrics and the supervisor tree.
const WriterName = "database-writer"

type writeRequest struct {
	ctx  context.Context
	t    Transaction
	done chan error
}

// Writer serializes transactions through one goroutine.
//
// Submissions are served in FIFO order. Execution passes through a circuit
// breaker: after BreakerMaxFailures consecutive store failures Submit fails
// fast with ErrStoreUnavailable until BreakerTimeout has passed. Failed
// transactions are never retried.
//
// Writer implements suture.Service.
type Writer struct {
	db      *DB
	queue   chan *writeRequest
	breaker *gobreaker.CircuitBreaker[struct{}]
}

// NewWriter creates a writer for db. Serve must be running for Submit to
// make progress.
func NewWriter(db *DB, cfg *config.WriterConfig) *Writer {
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 1
	}
	maxFailures := cfg.BreakerMaxFailures
	if maxFailures == 0 {
		maxFailures = 1
	}

	settings := gobreaker.Settings{
		Name:        WriterName,
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.RecordCircuitBreakerState(name, from.String(), to.String())
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Writer circuit breaker changed state")
		},
		IsSuccessful: isStoreHealthy,
	}

	return &Writer{
		db:      db,
		queue:   make(chan *writeRequest, queueSize),
		breaker: gobreaker.NewCircuitBreaker[struct{}](settings),
	}
}

// isStoreHealthy reports whether err leaves the store usable. Caller
// mistakes and gated operations do not count against the breaker.
func isStoreHealthy(err error) bool {
	if err == nil {
		return true
	}
	var structErr *validation.StructError
	return errors.Is(err, ErrSchemaNotReady) ||
		errors.Is(err, ErrAmbiguousSessionMatch) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.As(err, &structErr)
}

// Submit queues t and blocks until it has committed or failed.
func (w *Writer) Submit(ctx context.Context, t Transaction) error {
	req := &writeRequest{ctx: ctx, t: t, done: make(chan error, 1)}

	select {
	case w.queue <- req:
		metrics.WriterQueueDepth.Inc()
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-req.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Serve executes queued transactions until ctx is done. Requests still
// queued on exit fail with ErrStoreUnavailable.
func (w *Writer) Serve(ctx context.Context) error {
	logging.Info().Str("service", WriterName).Msg("Writer started")
	for {
		select {
		case <-ctx.Done():
			w.drain()
			logging.Info().Str("service", WriterName).Msg("Writer stopped")
			return ctx.Err()
		case req := <-w.queue:
			metrics.WriterQueueDepth.Dec()
			req.done <- w.execute(req)
		}
	}
}

func (w *Writer) execute(req *writeRequest) error {
	_, err := w.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, w.db.ExecuteTransaction(req.ctx, req.t)
	})

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(WriterName, "rejected").Inc()
		return &OperationError{Op: req.t.Name(), Err: fmt.Errorf("%w: %v", ErrStoreUnavailable, err)}
	case err != nil:
		metrics.CircuitBreakerRequests.WithLabelValues(WriterName, "failure").Inc()
		return err
	default:
		metrics.CircuitBreakerRequests.WithLabelValues(WriterName, "success").Inc()
		return nil
	}
}

func (w *Writer) drain() {
	for {
		select {
		case req := <-w.queue:
			metrics.WriterQueueDepth.Dec()
			req.done <- &OperationError{Op: req.t.Name(), Err: fmt.Errorf("%w: writer stopped", ErrStoreUnavailable)}
		default:
			return
		}
	}
}

// State returns the breaker state.
func (w *Writer) State() gobreaker.State {
	return w.breaker.State()
}

// String implements fmt.Stringer for suture logging.
func (w *Writer) String() string {
	return WriterName
}

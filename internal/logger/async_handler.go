package logger

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

const (
	defaultAsyncBufferSize   = 512
	defaultAsyncFlushTimeout = 3 * time.Second
)

// AsyncOptions configures the buffer in front of a slow log sink.
type AsyncOptions struct {
	BufferSize   int
	FlushTimeout time.Duration
}

type queuedRecord struct {
	ctx     context.Context
	record  slog.Record
	handler slog.Handler
}

// sink owns the queue and the single goroutine draining it. It is shared by
// every handler derived through WithAttrs/WithGroup.
type sink struct {
	queue        chan queuedRecord
	flushTimeout time.Duration
	closed       atomic.Bool
	dropped      atomic.Uint64
	done         sync.WaitGroup
}

func newSink(opts AsyncOptions) *sink {
	size := opts.BufferSize
	if size <= 0 {
		size = defaultAsyncBufferSize
	}
	flush := opts.FlushTimeout
	if flush <= 0 {
		flush = defaultAsyncFlushTimeout
	}

	s := &sink{
		queue:        make(chan queuedRecord, size),
		flushTimeout: flush,
	}
	s.done.Go(func() {
		for q := range s.queue {
			_ = q.handler.Handle(q.ctx, q.record)
		}
	})
	return s
}

// AsyncHandler hands records to a background goroutine so remote log
// shipping never blocks event processing. Records are dropped when the
// buffer is full.
type AsyncHandler struct {
	sink    *sink
	handler slog.Handler
}

// NewAsyncHandler wraps handler with a buffered background writer.
func NewAsyncHandler(handler slog.Handler, opts AsyncOptions) *AsyncHandler {
	return &AsyncHandler{sink: newSink(opts), handler: handler}
}

// Enabled reports whether the underlying handler is enabled for the given level.
func (h *AsyncHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle enqueues a clone of the record.
func (h *AsyncHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.sink.closed.Load() {
		return nil
	}
	select {
	case h.sink.queue <- queuedRecord{ctx: context.WithoutCancel(ctx), record: r.Clone(), handler: h.handler}:
	default:
		h.sink.dropped.Add(1)
	}
	return nil
}

// WithAttrs returns a handler sharing the same queue.
func (h *AsyncHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &AsyncHandler{sink: h.sink, handler: h.handler.WithAttrs(attrs)}
}

// WithGroup returns a handler sharing the same queue.
func (h *AsyncHandler) WithGroup(name string) slog.Handler {
	return &AsyncHandler{sink: h.sink, handler: h.handler.WithGroup(name)}
}

// Dropped returns how many records were discarded because the buffer was full.
func (h *AsyncHandler) Dropped() uint64 {
	return h.sink.dropped.Load()
}

// Shutdown stops accepting records and waits for the queue to drain.
// Without a deadline on ctx the configured flush timeout applies.
func (h *AsyncHandler) Shutdown(ctx context.Context) error {
	if h == nil || h.sink == nil || h.sink.closed.Swap(true) {
		return nil
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.sink.flushTimeout)
		defer cancel()
	}
	close(h.sink.queue)

	drained := make(chan struct{})
	go func() {
		h.sink.done.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

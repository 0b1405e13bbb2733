package notify

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/logger"
)

// DefaultQueueSize is used when NewQueue receives a non-positive size.
const DefaultQueueSize = 256

// Queue is the bounded hand-off between the dispatcher and the sink.
// Publish never blocks: when the buffer is full the record is dropped and
// counted.
type Queue struct {
	ch      chan Record
	sink    Sink
	log     logger.Logger
	timeout time.Duration
	dropped atomic.Uint64
	failed  atomic.Uint64
}

// QueueOption customises a Queue.
type QueueOption func(*Queue)

// WithDeliveryTimeout bounds each Notify call.
func WithDeliveryTimeout(d time.Duration) QueueOption {
	return func(q *Queue) { q.timeout = d }
}

// WithQueueLogger sets the logger used for delivery failures.
func WithQueueLogger(l logger.Logger) QueueOption {
	return func(q *Queue) { q.log = logger.OrNop(l) }
}

// NewQueue creates a queue draining into sink.
func NewQueue(sink Sink, size int, opts ...QueueOption) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	if sink == nil {
		sink = NopSink{}
	}
	q := &Queue{
		ch:      make(chan Record, size),
		sink:    sink,
		log:     logger.Nop{},
		timeout: 5 * time.Second,
	}
	for _, o := range opts {
		o(q)
	}
	return q
}

// Publish enqueues rec and reports whether it was accepted.
func (q *Queue) Publish(rec Record) bool {
	select {
	case q.ch <- rec:
		return true
	default:
		q.dropped.Add(1)
		return false
	}
}

// Run delivers queued records until ctx is cancelled. Records still
// buffered at cancellation are flushed before returning.
func (q *Queue) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			q.flush()
			return nil
		case rec := <-q.ch:
			q.deliver(ctx, rec)
		}
	}
}

func (q *Queue) flush() {
	for {
		select {
		case rec := <-q.ch:
			q.deliver(context.Background(), rec)
		default:
			return
		}
	}
}

func (q *Queue) deliver(parent context.Context, rec Record) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), q.timeout)
	defer cancel()
	if err := q.sink.Notify(ctx, rec); err != nil {
		q.failed.Add(1)
		q.log.Warnf("notify %s for %s: %v", rec.ID, rec.AssetID, err)
	}
}

// Len returns the number of buffered records.
func (q *Queue) Len() int { return len(q.ch) }

// Dropped returns how many records were rejected because the queue was full.
func (q *Queue) Dropped() uint64 { return q.dropped.Load() }

// Failed returns how many deliveries returned an error.
func (q *Queue) Failed() uint64 { return q.failed.Load() }

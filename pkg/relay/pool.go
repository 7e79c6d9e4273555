// Package relay provides an asynchronous worker pool that publishes decoded
// events using the provided eventstream.Publisher.
//
// The pool decouples publishing from the read loop so a slow backend does not
// stall decoding of the upstream stream.
package relay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/papercomputeco/ssecodec/pkg/eventstream"
	"github.com/papercomputeco/ssecodec/pkg/logger"
)

var (
	// One worker keeps publish order equal to decode order.
	defaultNumWorkers   uint = 1
	defaultJobQueueSize uint = 256
)

// Config is the configuration options for the worker pool.
type Config struct {
	// Publisher receives every enqueued envelope.
	Publisher eventstream.Publisher

	// NumWorkers is the number of background workers in the pool (defaults to 1).
	NumWorkers uint

	// QueueSize is the capacity of the buffered job channel (defaults to 256).
	QueueSize uint

	// PublishTimeout bounds each Publish call. Zero means no timeout.
	PublishTimeout time.Duration

	Logger *slog.Logger
}

// Stats counts pool outcomes.
type Stats struct {
	Published uint64
	Failed    uint64
	Dropped   uint64
}

// Pool publishes envelopes asynchronously via a worker pool.
type Pool struct {
	config *Config
	queue  chan *eventstream.DecodedEvent
	wg     sync.WaitGroup
	logger *slog.Logger

	published atomic.Uint64
	failed    atomic.Uint64
	dropped   atomic.Uint64
}

// NewPool creates a new Pool and starts its worker goroutines.
func NewPool(c *Config) (*Pool, error) {
	if c.Publisher == nil {
		return nil, errors.New("relay pool requires a publisher")
	}

	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}

	if c.QueueSize == 0 {
		c.QueueSize = defaultJobQueueSize
	}

	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}

	if c.Logger == nil {
		c.Logger = logger.Nop()
	}

	wp := &Pool{
		config: c,
		queue:  make(chan *eventstream.DecodedEvent, c.QueueSize),
		logger: c.Logger,
	}

	wp.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go wp.worker(i)
	}

	return wp, nil
}

// Enqueue submits an envelope for publishing.
// Returns true if enqueued, false if the queue is full, resulting in the event being dropped
func (p *Pool) Enqueue(event *eventstream.DecodedEvent) bool {
	select {
	case p.queue <- event:
		p.logger.Debug("event queued",
			"source", event.Source,
			"sequence", event.Sequence,
		)
		return true
	default:
		p.dropped.Add(1)
		p.logger.Error("event not queued, queue full, event dropped",
			"source", event.Source,
			"sequence", event.Sequence,
		)
		return false
	}
}

// Submit queues an envelope for publishing, waiting for queue capacity when
// the workers are behind. If ctx ends first the envelope is not queued and
// ctx.Err() is returned.
// Submit must not be called after Close.
func (p *Pool) Submit(ctx context.Context, event *eventstream.DecodedEvent) error {
	select {
	case p.queue <- event:
		p.logger.Debug("event queued",
			"source", event.Source,
			"sequence", event.Sequence,
		)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close signals workers to stop and waits for queued events to drain.
// Enqueue must not be called after Close.
func (p *Pool) Close() {
	close(p.queue)
	p.wg.Wait()
}

// Stats returns a snapshot of the pool's counters.
func (p *Pool) Stats() Stats {
	return Stats{
		Published: p.published.Load(),
		Failed:    p.failed.Load(),
		Dropped:   p.dropped.Load(),
	}
}

// worker is the inner worker thread that continuously pulls jobs off the jobs queue
func (p *Pool) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("worker started", "worker_id", id)

	for event := range p.queue {
		p.publish(event)
	}

	p.logger.Debug("worker stopped", "worker_id", id)
}

func (p *Pool) publish(event *eventstream.DecodedEvent) {
	ctx := context.Background()
	if p.config.PublishTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.PublishTimeout)
		defer cancel()
	}

	if err := p.config.Publisher.Publish(ctx, event); err != nil {
		p.failed.Add(1)
		p.logger.Error("publish failed",
			"source", event.Source,
			"sequence", event.Sequence,
			"event_id", event.EventID,
			"error", err,
		)
		return
	}

	p.published.Add(1)
	p.logger.Debug("event published",
		"source", event.Source,
		"sequence", event.Sequence,
		"event_id", event.EventID,
	)
}

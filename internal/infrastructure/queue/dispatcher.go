package queue

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/sirahabazaar/dispatch-system/internal/api/metrics"
	"github.com/sirahabazaar/dispatch-system/internal/core/ports"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

// Dispatcher routes per-order broadcast jobs to a fixed set of workers using
// consistent hashing on the order id, so repeated broadcasts for the same
// order are processed in order while different orders fan out in parallel.
// The bulk "notify all ready/processing" operations feed this pool.
type Dispatcher struct {
	workers []chan ports.NotifyInput
	service ports.DispatchService
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service ports.DispatchService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.NotifyInput, numWorkers),
		service: service,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.NotifyInput, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue sends a broadcast job to the worker responsible for its order.
// Non-blocking up to channelBuffer capacity.
func (d *Dispatcher) Enqueue(job ports.NotifyInput) {
	idx := d.shardIndex(job.OrderID)
	d.workers[idx] <- job
	metrics.QueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
}

// shardIndex maps an order id deterministically to a worker index.
func (d *Dispatcher) shardIndex(orderID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(orderID))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.NotifyInput) {
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-ch:
			if !ok {
				return
			}
			metrics.QueueDepth.WithLabelValues(strconv.Itoa(id)).Set(float64(len(ch)))
			if _, err := d.service.NotifyForOrder(ctx, job); err != nil {
				// One order's failure never aborts the rest of the batch.
				d.log.Error().Err(err).
					Str("order_id", job.OrderID).
					Int("worker_id", id).
					Msg("broadcast job failed")
			}
		}
	}
}

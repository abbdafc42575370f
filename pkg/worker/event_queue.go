package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-api/pkg/messaging"
	"github.com/jwalitptl/clinic-api/pkg/metrics"
)

var (
	ErrQueueFull   = errors.New("event queue is full")
	ErrQueueClosed = errors.New("event queue is closed")
)

type EventQueueConfig struct {
	QueueSize     int
	Workers       int
	RetryAttempts int
	RetryDelay    time.Duration
}

type event struct {
	eventType string
	payload   json.RawMessage
	logger    *zerolog.Logger
}

// EventQueue implements messaging.Publisher. Events are queued and published by a pool
// of workers, so callers never wait on the broker.
type EventQueue struct {
	publisher messaging.Publisher
	config    EventQueueConfig
	metrics   *metrics.Metrics

	events chan event
	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewEventQueue(publisher messaging.Publisher, config EventQueueConfig, metrics *metrics.Metrics) *EventQueue {
	if config.QueueSize <= 0 {
		config.QueueSize = 1024
	}
	if config.Workers <= 0 {
		config.Workers = 1
	}
	if config.RetryAttempts <= 0 {
		config.RetryAttempts = 1
	}

	return &EventQueue{
		publisher: publisher,
		config:    config,
		metrics:   metrics,
		events:    make(chan event, config.QueueSize),
	}
}

// Start launches the workers. They publish with ctx and exit once the queue is closed
// and drained.
func (q *EventQueue) Start(ctx context.Context) {
	log.Info().Int("workers", q.config.Workers).Int("queue_size", q.config.QueueSize).Msg("starting event queue")

	for i := 0; i < q.config.Workers; i++ {
		q.wg.Add(1)
		go func() {
			defer q.wg.Done()
			for evt := range q.events {
				q.metrics.QueueSize.Dec()
				q.process(ctx, evt)
			}
		}()
	}
}

// Publish serialises payload and enqueues it. The payload is captured as it is now.
func (q *EventQueue) Publish(ctx context.Context, eventType string, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}

	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		q.metrics.EventsDropped.Inc()
		return ErrQueueClosed
	}

	// counted before the send so a worker's Dec never runs first
	q.metrics.QueueSize.Inc()
	select {
	case q.events <- event{eventType: eventType, payload: raw, logger: log.Ctx(ctx)}:
		return nil
	default:
		q.metrics.QueueSize.Dec()
		q.metrics.EventsDropped.Inc()
		return ErrQueueFull
	}
}

// Stop rejects new events and waits for the queued ones to be published.
func (q *EventQueue) Stop() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.events)
	q.mu.Unlock()

	q.wg.Wait()
	log.Info().Msg("event queue drained")
}

func (q *EventQueue) process(ctx context.Context, evt event) {
	start := time.Now()
	defer func() {
		q.metrics.PublishLatency.Observe(time.Since(start).Seconds())
	}()

	attempt := 0
	err := retry(q.config.RetryAttempts, q.config.RetryDelay, func() error {
		if attempt > 0 {
			q.metrics.EventRetries.WithLabelValues(evt.eventType).Inc()
		}
		attempt++
		return q.publisher.Publish(ctx, evt.eventType, evt.payload)
	})
	if err != nil {
		q.metrics.EventsFailed.Inc()
		evt.logger.Error().Err(err).Str("event_type", evt.eventType).Int("attempts", attempt).Msg("failed to publish event")
		return
	}

	q.metrics.EventsPublished.Inc()
}

func retry(attempts int, delay time.Duration, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i < attempts-1 {
			time.Sleep(delay)
		}
	}
	return err
}

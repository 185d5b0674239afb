package outbox

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Store is what the relay worker needs from the persistence layer.
type Store interface {
	FetchUnsentEvents(ctx context.Context, limit int) ([]Event, error)
	MarkEventsSent(ctx context.Context, ids []uuid.UUID, sentAt time.Time) error
}

// Config controls the relay loop.
type Config struct {
	PollInterval time.Duration
	BatchSize    int
	MaxRetries   int
	RetryDelay   time.Duration
}

func DefaultConfig() Config {
	return Config{
		PollInterval: 5 * time.Second,
		BatchSize:    100,
		MaxRetries:   3,
		RetryDelay:   time.Second,
	}
}

// Worker polls the outbox store and relays unsent events to the publisher.
// At-least-once: an event is marked sent only after a successful publish, so
// consumers must tolerate duplicates (the JetStream publisher deduplicates by
// event ID).
type Worker struct {
	store     Store
	publisher EventPublisher
	config    Config
	clock     clockwork.Clock

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	wg       sync.WaitGroup
}

func NewWorker(store Store, publisher EventPublisher, cfg Config, clock clockwork.Clock) *Worker {
	return &Worker{
		store:     store,
		publisher: publisher,
		config:    cfg,
		clock:     clock,
		stopChan:  make(chan struct{}),
	}
}

func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("outbox worker already running")
	}
	w.running = true
	w.mu.Unlock()

	w.wg.Add(1)
	go w.run(ctx)

	log.Info().
		Dur("poll_interval", w.config.PollInterval).
		Int("batch_size", w.config.BatchSize).
		Msg("outbox worker started")

	return nil
}

func (w *Worker) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return fmt.Errorf("outbox worker not running")
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopChan)
	w.wg.Wait()

	log.Info().Msg("outbox worker stopped")
	return nil
}

func (w *Worker) run(ctx context.Context) {
	defer w.wg.Done()

	ticker := w.clock.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	// Drain whatever is pending before the first tick.
	w.relayBatch(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case <-ticker.Chan():
			w.relayBatch(ctx)
		}
	}
}

func (w *Worker) relayBatch(ctx context.Context) {
	events, err := w.store.FetchUnsentEvents(ctx, w.config.BatchSize)
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch unsent events")
		return
	}
	if len(events) == 0 {
		return
	}

	log.Debug().Int("count", len(events)).Msg("relaying outbox events")

	var sentIDs []uuid.UUID
	for _, event := range events {
		if err := w.publishWithRetry(ctx, event); err != nil {
			log.Error().
				Err(err).
				Str("event_id", event.ID.String()).
				Str("event_type", event.EventType).
				Msg("failed to publish event")
			continue
		}
		sentIDs = append(sentIDs, event.ID)
	}

	if len(sentIDs) > 0 {
		if err := w.store.MarkEventsSent(ctx, sentIDs, w.clock.Now()); err != nil {
			log.Error().Err(err).Msg("failed to mark events as sent")
			return
		}
	}

	log.Info().
		Int("total", len(events)).
		Int("sent", len(sentIDs)).
		Msg("relayed outbox events")
}

func (w *Worker) publishWithRetry(ctx context.Context, event Event) error {
	var lastErr error

	for attempt := 0; attempt <= w.config.MaxRetries; attempt++ {
		if attempt > 0 {
			timer := w.clock.NewTimer(w.config.RetryDelay * time.Duration(attempt))
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.Chan():
			}
		}

		if err := w.publisher.Publish(ctx, event); err != nil {
			lastErr = err
			log.Warn().
				Str("event_id", event.ID.String()).
				Int("attempt", attempt+1).
				Err(err).
				Msg("failed to publish event, retrying")
			continue
		}
		return nil
	}

	return fmt.Errorf("publish failed after %d attempts: %w", w.config.MaxRetries+1, lastErr)
}

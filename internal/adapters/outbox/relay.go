package outbox

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/AchilleasB/kinder/nursery-service/internal/adapters/repository"
	"github.com/AchilleasB/kinder/nursery-service/internal/config"
	"github.com/AchilleasB/kinder/nursery-service/internal/core/ports"
)

const (
	// PostgreSQL NOTIFY/LISTEN configuration
	listenerMinReconnectInterval = 10 * time.Second
	listenerMaxReconnectInterval = time.Minute

	// Event processing timeouts
	eventProcessTimeout     = 30 * time.Second
	batchProcessTimeout     = 60 * time.Second
	periodicProcessInterval = 90 * time.Second

	healthCheckStaleThreshold = 5 * time.Minute

	maxEventsPerBatch = 100
)

// Relay listens for notifications on the outbox channel and publishes the
// pending outbox events (enrollments, notices) to the broker.
type Relay struct {
	db        *sql.DB
	publisher ports.EventPublisher
	dbURL     string
	dbCB      *gobreaker.CircuitBreaker
	log       zerolog.Logger

	mu            sync.Mutex
	lastProcessed time.Time
	healthy       atomic.Bool
}

func NewRelay(db *sql.DB, dbURL string, publisher ports.EventPublisher, log zerolog.Logger) *Relay {
	r := &Relay{
		db:            db,
		dbURL:         dbURL,
		publisher:     publisher,
		dbCB:          config.NewCircuitBreaker("Relay-PostgreSQL", log),
		log:           log.With().Str("component", "outbox-relay").Logger(),
		lastProcessed: time.Now(),
	}
	r.healthy.Store(true)
	return r
}

// IsHealthy is the liveness signal: the worker loop is alive. An open
// breaker is degraded but recoverable and does not make the relay unhealthy.
func (r *Relay) IsHealthy() bool {
	return r.healthy.Load()
}

// IsReady reports whether events can currently be processed.
func (r *Relay) IsReady() bool {
	if r.dbCB.State() == gobreaker.StateOpen {
		return false
	}
	r.mu.Lock()
	stale := time.Since(r.lastProcessed) > healthCheckStaleThreshold
	r.mu.Unlock()
	if stale {
		return false
	}
	return r.healthy.Load()
}

func (r *Relay) markProcessed() {
	r.mu.Lock()
	r.lastProcessed = time.Now()
	r.mu.Unlock()
	r.healthy.Store(true)
}

// Start opens the listener and blocks until ctx is cancelled.
func (r *Relay) Start(ctx context.Context) error {
	reportProblem := func(ev pq.ListenerEventType, err error) {
		if err != nil {
			r.log.Error().Err(err).Msg("listener error")
		}
	}

	listener := pq.NewListener(r.dbURL, listenerMinReconnectInterval, listenerMaxReconnectInterval, reportProblem)
	defer listener.Close()

	if err := listener.Listen(repository.OutboxChannel); err != nil {
		return err
	}
	r.log.Info().Str("channel", repository.OutboxChannel).Msg("listening for notifications")

	return r.Run(ctx, listener.Notify, func() {
		if err := listener.Ping(); err != nil {
			r.log.Warn().Err(err).Msg("listener ping failed")
		}
	})
}

// Run processes the startup backlog, then one event per notification, plus a
// periodic sweep for anything missed.
func (r *Relay) Run(ctx context.Context, notifications <-chan *pq.Notification, ping func()) error {
	if err := r.processUnprocessedEvents(ctx); err != nil {
		r.log.Error().Err(err).Msg("startup backlog failed")
	}

	ticker := time.NewTicker(periodicProcessInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info().Msg("shutting down")
			return ctx.Err()

		case notification, ok := <-notifications:
			if !ok {
				return errors.New("notification channel closed")
			}
			if notification == nil {
				r.log.Warn().Msg("received nil notification (reconnecting)")
				r.healthy.Store(false)
				continue
			}
			if err := r.processEventByID(ctx, notification.Extra); err != nil {
				r.log.Error().Err(err).Str("event_id", notification.Extra).Msg("processing event failed")
				continue
			}
			r.markProcessed()

		case <-ticker.C:
			if ping != nil {
				go ping()
			}
			if err := r.processUnprocessedEvents(ctx); err != nil {
				r.log.Error().Err(err).Msg("periodic processing failed")
				continue
			}
			r.markProcessed()
		}
	}
}

func (r *Relay) processEventByID(ctx context.Context, eventID string) error {
	ctx, cancel := context.WithTimeout(ctx, eventProcessTimeout)
	defer cancel()

	_, err := r.dbCB.Execute(func() (interface{}, error) {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, err
		}
		defer tx.Rollback()

		var evt ports.OutboxEvent
		err = tx.QueryRowContext(ctx, `
			SELECT id, event_type, payload, created_at
			FROM outbox_events
			WHERE id = $1 AND processed_at IS NULL
			FOR UPDATE SKIP LOCKED`, eventID).Scan(&evt.ID, &evt.Type, &evt.Payload, &evt.CreatedAt)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}

		if err := r.publisher.Publish(ctx, evt); err != nil {
			return nil, err
		}
		if err := markEvent(ctx, tx, evt.ID); err != nil {
			return nil, err
		}
		return nil, tx.Commit()
	})
	return err
}

func (r *Relay) processUnprocessedEvents(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, batchProcessTimeout)
	defer cancel()

	_, err := r.dbCB.Execute(func() (interface{}, error) {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, err
		}
		defer tx.Rollback()

		rows, err := tx.QueryContext(ctx, `
			SELECT id, event_type, payload, created_at
			FROM outbox_events
			WHERE processed_at IS NULL
			ORDER BY created_at
			LIMIT $1
			FOR UPDATE SKIP LOCKED`, maxEventsPerBatch)
		if err != nil {
			return nil, err
		}

		var events []ports.OutboxEvent
		for rows.Next() {
			var evt ports.OutboxEvent
			if err := rows.Scan(&evt.ID, &evt.Type, &evt.Payload, &evt.CreatedAt); err != nil {
				rows.Close()
				return nil, err
			}
			events = append(events, evt)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, err
		}

		for _, evt := range events {
			if err := r.publisher.Publish(ctx, evt); err != nil {
				r.log.Error().Err(err).Str("event_id", evt.ID).Msg("publish failed")
				continue
			}
			if err := markEvent(ctx, tx, evt.ID); err != nil {
				return nil, err
			}
			r.log.Debug().Str("event_id", evt.ID).Str("type", evt.Type).Msg("processed event")
		}
		return nil, tx.Commit()
	})
	return err
}

func markEvent(ctx context.Context, tx *sql.Tx, id string) error {
	_, err := tx.ExecContext(ctx, `UPDATE outbox_events SET processed_at = NOW() WHERE id = $1`, id)
	return err
}

package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"

	"github.com/lib/pq"
	"github.com/sony/gobreaker"

	"github.com/AchilleasB/kinder/nursery-service/internal/core/domain"
	"github.com/AchilleasB/kinder/nursery-service/internal/core/ports"
)

// Channels used with pg_notify.
const (
	NoticeChannel = "notices_channel"
	OutboxChannel = "outbox_channel"
)

const uniqueViolation = "23505"

//go:embed schema.sql
var schema string

// SQLRepository implements every store port over one PostgreSQL database.
type SQLRepository struct {
	db *sql.DB
	cb *gobreaker.CircuitBreaker
}

var (
	_ ports.EnrollmentRepository = (*SQLRepository)(nil)
	_ ports.EducatorRepository   = (*SQLRepository)(nil)
	_ ports.AttendanceRepository = (*SQLRepository)(nil)
	_ ports.NoticeRepository     = (*SQLRepository)(nil)
)

func NewSQLRepository(db *sql.DB, cb *gobreaker.CircuitBreaker) *SQLRepository {
	return &SQLRepository{db: db, cb: cb}
}

// Migrate creates missing tables and indexes.
func (r *SQLRepository) Migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, schema)
	return err
}

// run executes fn behind the circuit breaker. Unique violations are reported
// as validation errors and do not count against the breaker.
func (r *SQLRepository) run(op string, fn func() error) error {
	var conflict error
	_, err := r.cb.Execute(func() (any, error) {
		err := fn()
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			conflict = domain.NewValidationError(domain.FieldError{Field: "email", Message: "is already registered"})
			return nil, nil
		}
		return nil, err
	})
	if conflict != nil {
		return conflict
	}
	return domain.StoreError(op, err)
}

func insertOutbox(ctx context.Context, tx *sql.Tx, event ports.OutboxEvent) error {
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO outbox_events (id, event_type, payload, created_at) VALUES ($1, $2, $3, $4)",
		event.ID, event.Type, event.Payload, event.CreatedAt,
	); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx, "SELECT pg_notify($1, $2)", OutboxChannel, event.ID)
	return err
}

func deleteByID(ctx context.Context, db *sql.DB, query, id string) error {
	res, err := db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errNoRows
	}
	return nil
}

var errNoRows = errors.New("no rows affected")

// runDelete reports domain.ErrNotFound when fn deleted nothing, after the
// breaker has seen a success.
func (r *SQLRepository) runDelete(op string, fn func() error) error {
	var missing bool
	err := r.run(op, func() error {
		err := fn()
		if errors.Is(err, errNoRows) {
			missing = true
			return nil
		}
		return err
	})
	if err != nil {
		return err
	}
	if missing {
		return domain.ErrNotFound
	}
	return nil
}

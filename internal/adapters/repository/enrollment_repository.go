package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/AchilleasB/kinder/nursery-service/internal/core/domain"
	"github.com/AchilleasB/kinder/nursery-service/internal/core/ports"
)

const enrollmentColumns = "id, parent_name, child_name, email, program, password_hash, created_at"

// CreateEnrollment stores the enrollment and its outbox event in one transaction.
func (r *SQLRepository) CreateEnrollment(ctx context.Context, e domain.Enrollment, event ports.OutboxEvent) error {
	return r.run("create enrollment", func() error {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		if _, err := tx.ExecContext(ctx,
			"INSERT INTO enrollments ("+enrollmentColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7)",
			e.ID, e.ParentName, e.ChildName, e.Email, e.Program, e.PasswordHash, e.CreatedAt,
		); err != nil {
			return err
		}
		if err := insertOutbox(ctx, tx, event); err != nil {
			return err
		}
		return tx.Commit()
	})
}

func (r *SQLRepository) FindEnrollmentsByEmail(ctx context.Context, email string) ([]domain.Enrollment, error) {
	var out []domain.Enrollment
	err := r.run("find enrollments by email", func() error {
		var err error
		out, err = r.queryEnrollments(ctx,
			"SELECT "+enrollmentColumns+" FROM enrollments WHERE lower(email) = lower($1)", email)
		return err
	})
	return out, err
}

// FindEnrollmentByID returns nil without error when no enrollment has id.
func (r *SQLRepository) FindEnrollmentByID(ctx context.Context, id string) (*domain.Enrollment, error) {
	var out *domain.Enrollment
	err := r.run("find enrollment", func() error {
		var e domain.Enrollment
		err := r.db.QueryRowContext(ctx,
			"SELECT "+enrollmentColumns+" FROM enrollments WHERE id = $1", id,
		).Scan(&e.ID, &e.ParentName, &e.ChildName, &e.Email, &e.Program, &e.PasswordHash, &e.CreatedAt)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		out = &e
		return nil
	})
	return out, err
}

func (r *SQLRepository) ListEnrollmentsByProgram(ctx context.Context, program string) ([]domain.Enrollment, error) {
	var out []domain.Enrollment
	err := r.run("list enrollments by program", func() error {
		var err error
		out, err = r.queryEnrollments(ctx,
			"SELECT "+enrollmentColumns+" FROM enrollments WHERE program = $1 ORDER BY child_name", program)
		return err
	})
	return out, err
}

func (r *SQLRepository) ListEnrollments(ctx context.Context) ([]domain.Enrollment, error) {
	var out []domain.Enrollment
	err := r.run("list enrollments", func() error {
		var err error
		out, err = r.queryEnrollments(ctx,
			"SELECT "+enrollmentColumns+" FROM enrollments ORDER BY created_at DESC")
		return err
	})
	return out, err
}

func (r *SQLRepository) DeleteEnrollment(ctx context.Context, id string) error {
	return r.runDelete("delete enrollment", func() error {
		return deleteByID(ctx, r.db, "DELETE FROM enrollments WHERE id = $1", id)
	})
}

func (r *SQLRepository) queryEnrollments(ctx context.Context, query string, args ...any) ([]domain.Enrollment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Enrollment
	for rows.Next() {
		var e domain.Enrollment
		if err := rows.Scan(&e.ID, &e.ParentName, &e.ChildName, &e.Email, &e.Program, &e.PasswordHash, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

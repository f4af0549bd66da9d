package repository

import (
	"context"

	"github.com/AchilleasB/kinder/nursery-service/internal/core/domain"
)

const educatorColumns = "id, name, email, program, password_hash, created_at"

func (r *SQLRepository) CreateEducator(ctx context.Context, e domain.Educator) error {
	return r.run("create educator", func() error {
		_, err := r.db.ExecContext(ctx,
			"INSERT INTO educators ("+educatorColumns+") VALUES ($1, $2, $3, $4, $5, $6)",
			e.ID, e.Name, e.Email, e.Program, e.PasswordHash, e.CreatedAt,
		)
		return err
	})
}

func (r *SQLRepository) FindEducatorsByEmail(ctx context.Context, email string) ([]domain.Educator, error) {
	var out []domain.Educator
	err := r.run("find educators by email", func() error {
		var err error
		out, err = r.queryEducators(ctx,
			"SELECT "+educatorColumns+" FROM educators WHERE lower(email) = lower($1)", email)
		return err
	})
	return out, err
}

func (r *SQLRepository) ListEducators(ctx context.Context) ([]domain.Educator, error) {
	var out []domain.Educator
	err := r.run("list educators", func() error {
		var err error
		out, err = r.queryEducators(ctx,
			"SELECT "+educatorColumns+" FROM educators ORDER BY created_at DESC")
		return err
	})
	return out, err
}

func (r *SQLRepository) DeleteEducator(ctx context.Context, id string) error {
	return r.runDelete("delete educator", func() error {
		return deleteByID(ctx, r.db, "DELETE FROM educators WHERE id = $1", id)
	})
}

func (r *SQLRepository) queryEducators(ctx context.Context, query string, args ...any) ([]domain.Educator, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Educator
	for rows.Next() {
		var e domain.Educator
		if err := rows.Scan(&e.ID, &e.Name, &e.Email, &e.Program, &e.PasswordHash, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/AchilleasB/kinder/nursery-service/internal/core/domain"
	"github.com/AchilleasB/kinder/nursery-service/internal/core/ports"
)

// CreateNotice stores the notice with its outbox event and wakes the notice
// feed of the program.
func (r *SQLRepository) CreateNotice(ctx context.Context, n domain.Notice, event ports.OutboxEvent) error {
	return r.run("create notice", func() error {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		if _, err := tx.ExecContext(ctx,
			"INSERT INTO notices (id, text, program, sender, date, type, recipient_id) VALUES ($1, $2, $3, $4, $5, $6, $7)",
			n.ID, n.Text, n.Program, n.Sender, n.Date, n.Type, n.RecipientID,
		); err != nil {
			return err
		}
		if err := insertOutbox(ctx, tx, event); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "SELECT pg_notify($1, $2)", NoticeChannel, n.Program); err != nil {
			return err
		}
		return tx.Commit()
	})
}

func (r *SQLRepository) ListNoticesByProgram(ctx context.Context, program string) ([]domain.Notice, error) {
	var out []domain.Notice
	err := r.run("list notices", func() error {
		rows, err := r.db.QueryContext(ctx,
			"SELECT id, text, program, sender, date, type, recipient_id FROM notices WHERE program = $1", program)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var n domain.Notice
			var recipient sql.NullString
			if err := rows.Scan(&n.ID, &n.Text, &n.Program, &n.Sender, &n.Date, &n.Type, &recipient); err != nil {
				return err
			}
			if recipient.Valid {
				id := recipient.String
				n.RecipientID = &id
			}
			out = append(out, n)
		}
		return rows.Err()
	})
	return out, err
}

// DeleteNotice removes a notice and wakes the feed of its program.
func (r *SQLRepository) DeleteNotice(ctx context.Context, id string) error {
	return r.runDelete("delete notice", func() error {
		var program string
		err := r.db.QueryRowContext(ctx, "DELETE FROM notices WHERE id = $1 RETURNING program", id).Scan(&program)
		if errors.Is(err, sql.ErrNoRows) {
			return errNoRows
		}
		if err != nil {
			return err
		}
		_, err = r.db.ExecContext(ctx, "SELECT pg_notify($1, $2)", NoticeChannel, program)
		return err
	})
}

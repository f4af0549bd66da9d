package repository

import (
	"context"

	"github.com/AchilleasB/kinder/nursery-service/internal/core/domain"
)

// UpsertAttendance keeps one record per child, day and kind. A resubmission
// overwrites status, reason and author but keeps the original id.
func (r *SQLRepository) UpsertAttendance(ctx context.Context, rec domain.AttendanceRecord) error {
	return r.run("upsert attendance", func() error {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO attendance
				(id, enrollment_id, child_name, parent_name, program, status, kind, date, marked_by, report_reason, reported, recorded_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			ON CONFLICT (enrollment_id, date, kind) DO UPDATE SET
				status = EXCLUDED.status,
				marked_by = EXCLUDED.marked_by,
				report_reason = EXCLUDED.report_reason,
				reported = EXCLUDED.reported,
				recorded_at = EXCLUDED.recorded_at`,
			rec.ID, rec.EnrollmentID, rec.ChildName, rec.ParentName, rec.Program,
			rec.Status, rec.Kind, rec.Date, rec.MarkedBy, rec.ReportReason, rec.Reported, rec.Timestamp,
		)
		return err
	})
}

// ListAttendance returns all records ordered by timestamp, newest first.
func (r *SQLRepository) ListAttendance(ctx context.Context) ([]domain.AttendanceRecord, error) {
	var out []domain.AttendanceRecord
	err := r.run("list attendance", func() error {
		rows, err := r.db.QueryContext(ctx, `
			SELECT id, enrollment_id, child_name, parent_name, program, status, kind, date, marked_by, report_reason, reported, recorded_at
			FROM attendance
			ORDER BY recorded_at DESC`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var rec domain.AttendanceRecord
			if err := rows.Scan(
				&rec.ID, &rec.EnrollmentID, &rec.ChildName, &rec.ParentName, &rec.Program,
				&rec.Status, &rec.Kind, &rec.Date, &rec.MarkedBy, &rec.ReportReason, &rec.Reported, &rec.Timestamp,
			); err != nil {
				return err
			}
			out = append(out, rec)
		}
		return rows.Err()
	})
	return out, err
}

func (r *SQLRepository) DeleteAttendance(ctx context.Context, id string) error {
	return r.runDelete("delete attendance", func() error {
		return deleteByID(ctx, r.db, "DELETE FROM attendance WHERE id = $1", id)
	})
}

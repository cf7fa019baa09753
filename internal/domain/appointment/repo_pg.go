package appointment

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinic/clinic/internal/platform/apperr"
	"github.com/clinic/clinic/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const apptCols = `id, patient_id, doctor_id, date_time, COALESCE(reason, ''), scheduled_at, reminded_at, created_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.DateTime, &a.Reason,
		&a.ScheduledAt, &a.RemindedAt, &a.CreatedAt)
	return &a, err
}

func (r *repoPG) Create(ctx context.Context, a *Appointment) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO appointments (patient_id, doctor_id, date_time, scheduled_at, reason)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''))
		RETURNING id, created_at`,
		a.PatientID, a.DoctorID, a.DateTime, a.ScheduledAt, a.Reason,
	).Scan(&a.ID, &a.CreatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id int64) (*Appointment, error) {
	a, err := scanAppointment(r.conn(ctx).QueryRow(ctx, `SELECT `+apptCols+` FROM appointments WHERE id = $1`, id))
	if db.IsNoRows(err) {
		return nil, apperr.New(apperr.ErrNotFound, "Appointment not found")
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *repoPG) UpdateDateTime(ctx context.Context, id int64, dateTime string, scheduledAt time.Time) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointments SET date_time = $2, scheduled_at = $3, reminded_at = NULL
		WHERE id = $1`, id, dateTime, scheduledAt)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id int64) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	return err
}

func (r *repoPG) ListByUser(ctx context.Context, userID int64) ([]*Appointment, error) {
	return r.list(ctx, `SELECT `+apptCols+` FROM appointments
		WHERE patient_id = $1 OR doctor_id = $1 ORDER BY scheduled_at, id`, userID)
}

func (r *repoPG) ListDue(ctx context.Context, from, to time.Time) ([]*Appointment, error) {
	return r.list(ctx, `SELECT `+apptCols+` FROM appointments
		WHERE reminded_at IS NULL AND scheduled_at >= $1 AND scheduled_at < $2
		ORDER BY scheduled_at, id`, from, to)
}

func (r *repoPG) MarkReminded(ctx context.Context, id int64, at time.Time) error {
	_, err := r.conn(ctx).Exec(ctx, `UPDATE appointments SET reminded_at = $2 WHERE id = $1`, id, at)
	return err
}

func (r *repoPG) list(ctx context.Context, query string, args ...interface{}) ([]*Appointment, error) {
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []*Appointment{}
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

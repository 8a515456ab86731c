package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medicareplus/hms/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type apptRepoPG struct{ pool *pgxpool.Pool }

func NewAppointmentRepoPG(pool *pgxpool.Pool) AppointmentRepository { return &apptRepoPG{pool: pool} }

func (r *apptRepoPG) conn(ctx context.Context) queryable {
	if q := db.ConnFromContext(ctx); q != nil {
		return q
	}
	return r.pool
}

const apptCols = `a.id, a.patient_id, a.doctor_id, a.appointment_date, a.appointment_time,
	a.status, a.reason, a.notes, a.amount, a.created_at, a.updated_at`

func scanAppt(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var date time.Time
	err := row.Scan(&a.ID, &a.PatientID, &a.DoctorID, &date, &a.Time,
		&a.Status, &a.Reason, &a.Notes, &a.Amount, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.Date = date.Format("2006-01-02")
	return &a, nil
}

func scanApptWithNames(rows pgx.Rows) (*Appointment, error) {
	var a Appointment
	var date time.Time
	err := rows.Scan(&a.ID, &a.PatientID, &a.DoctorID, &date, &a.Time,
		&a.Status, &a.Reason, &a.Notes, &a.Amount, &a.CreatedAt, &a.UpdatedAt,
		&a.PatientName, &a.DoctorName)
	if err != nil {
		return nil, err
	}
	a.Date = date.Format("2006-01-02")
	return &a, nil
}

func (r *apptRepoPG) Create(ctx context.Context, a *Appointment) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO appointments (patient_id, doctor_id, appointment_date, appointment_time, status, reason, notes, amount)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id, created_at, updated_at`,
		a.PatientID, a.DoctorID, a.Date, a.Time, a.Status, a.Reason, a.Notes, a.Amount).
		Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

func (r *apptRepoPG) CreateConfirmed(ctx context.Context, a *Appointment) (bool, error) {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO appointments (patient_id, doctor_id, appointment_date, appointment_time, status, reason, notes, amount)
		SELECT $1, $2, $3, $4, 'Confirmed', $5, $6, $7
		WHERE NOT EXISTS (
			SELECT 1 FROM appointments
			WHERE doctor_id = $2 AND appointment_date = $3 AND appointment_time = $4
			  AND status = 'Confirmed')
		RETURNING id, created_at, updated_at`,
		a.PatientID, a.DoctorID, a.Date, a.Time, a.Reason, a.Notes, a.Amount).
		Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *apptRepoPG) GetByID(ctx context.Context, id int64) (*Appointment, error) {
	return scanAppt(r.conn(ctx).QueryRow(ctx,
		`SELECT `+apptCols+` FROM appointments a WHERE a.id = $1`, id))
}

func (r *apptRepoPG) Update(ctx context.Context, a *Appointment) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointments SET patient_id=$2, doctor_id=$3, appointment_date=$4,
			appointment_time=$5, status=$6, reason=$7, notes=$8, amount=$9, updated_at=NOW()
		WHERE id = $1`,
		a.ID, a.PatientID, a.DoctorID, a.Date, a.Time, a.Status, a.Reason, a.Notes, a.Amount)
	return err
}

func (r *apptRepoPG) ConfirmIfFree(ctx context.Context, id int64) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointments a SET status='Confirmed', updated_at=NOW()
		WHERE a.id = $1 AND NOT EXISTS (
			SELECT 1 FROM appointments b
			WHERE b.doctor_id = a.doctor_id AND b.appointment_date = a.appointment_date
			  AND b.appointment_time = a.appointment_time
			  AND b.status = 'Confirmed' AND b.id <> a.id)`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *apptRepoPG) Delete(ctx context.Context, id int64) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	return err
}

func (r *apptRepoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Appointment, int, error) {
	query := `SELECT ` + apptCols + `,
		COALESCE(p.first_name || ' ' || p.last_name, 'Unknown'),
		COALESCE(d.name, 'Unknown')
		FROM appointments a
		LEFT JOIN patients p ON p.id = a.patient_id
		LEFT JOIN doctors d ON d.id = a.doctor_id
		WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM appointments a WHERE 1=1`
	var args []interface{}
	idx := 1

	for param, col := range map[string]string{
		"doctor_id":  "a.doctor_id",
		"patient_id": "a.patient_id",
		"date":       "a.appointment_date",
		"status":     "a.status",
	} {
		if v, ok := params[param]; ok {
			clause := fmt.Sprintf(` AND %s = $%d`, col, idx)
			query += clause
			countQuery += clause
			args = append(args, v)
			idx++
		}
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY a.appointment_date DESC, a.appointment_time DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Appointment
	for rows.Next() {
		a, err := scanApptWithNames(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, nil
}

func (r *apptRepoPG) ConfirmedTimes(ctx context.Context, doctorID int64, date string) ([]string, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT appointment_time FROM appointments
		WHERE doctor_id = $1 AND appointment_date = $2 AND status = 'Confirmed'
		ORDER BY appointment_time ASC`, doctorID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var times []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		times = append(times, t)
	}
	return times, rows.Err()
}

func (r *apptRepoPG) ConfirmedExistsAt(ctx context.Context, doctorID int64, date, timeOfDay string, excludeID int64) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE doctor_id = $1 AND appointment_date = $2 AND appointment_time = $3
			  AND status = 'Confirmed' AND id <> $4)`,
		doctorID, date, timeOfDay, excludeID).Scan(&exists)
	return exists, err
}

package admission

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

type admissionRepoPG struct{ pool *pgxpool.Pool }

func NewAdmissionRepoPG(pool *pgxpool.Pool) AdmissionRepository {
	return &admissionRepoPG{pool: pool}
}

func (r *admissionRepoPG) conn(ctx context.Context) queryable {
	if q := db.ConnFromContext(ctx); q != nil {
		return q
	}
	return r.pool
}

const admissionCols = `a.id, a.patient_id, a.doctor_id, a.ward, a.room, a.admit_date,
	a.discharge_date, a.deposit, a.status, a.notes, a.created_at, a.updated_at,
	COALESCE(p.first_name || ' ' || p.last_name, 'Unknown'),
	COALESCE(d.name, '')`

func scanAdmission(row pgx.Row) (*Admission, error) {
	var a Admission
	var admit time.Time
	var discharge *time.Time
	err := row.Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.Ward, &a.Room, &admit,
		&discharge, &a.Deposit, &a.Status, &a.Notes, &a.CreatedAt, &a.UpdatedAt,
		&a.PatientName, &a.DoctorName)
	if err != nil {
		return nil, err
	}
	a.AdmitDate = admit.Format("2006-01-02")
	if discharge != nil {
		s := discharge.Format("2006-01-02")
		a.DischargeDate = &s
	}
	return &a, nil
}

func (r *admissionRepoPG) Create(ctx context.Context, a *Admission) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO admissions (patient_id, doctor_id, ward, room, admit_date, deposit, status, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id, created_at, updated_at`,
		a.PatientID, a.DoctorID, a.Ward, a.Room, a.AdmitDate, a.Deposit, a.Status, a.Notes,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

const admissionBase = `
	FROM admissions a
	LEFT JOIN patients p ON p.id = a.patient_id
	LEFT JOIN doctors d ON d.id = a.doctor_id`

func (r *admissionRepoPG) GetByID(ctx context.Context, id int64) (*Admission, error) {
	return scanAdmission(r.conn(ctx).QueryRow(ctx,
		`SELECT `+admissionCols+admissionBase+` WHERE a.id = $1`, id))
}

func (r *admissionRepoPG) Update(ctx context.Context, a *Admission) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE admissions
		SET doctor_id = $2, ward = $3, room = $4, deposit = $5, notes = $6, updated_at = NOW()
		WHERE id = $1`,
		a.ID, a.DoctorID, a.Ward, a.Room, a.Deposit, a.Notes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *admissionRepoPG) Discharge(ctx context.Context, id int64, dischargeDate string) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE admissions
		SET status = 'Discharged', discharge_date = $2, updated_at = NOW()
		WHERE id = $1`,
		id, dischargeDate)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

var admissionFilters = map[string]string{
	"patient_id": "a.patient_id",
	"doctor_id":  "a.doctor_id",
	"ward":       "a.ward",
	"status":     "a.status",
}

func (r *admissionRepoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Admission, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	idx := 1
	for key, col := range admissionFilters {
		if v, ok := params[key]; ok {
			where += fmt.Sprintf(` AND %s = $%d`, col, idx)
			args = append(args, v)
			idx++
		}
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM admissions a`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + admissionCols + admissionBase + where +
		fmt.Sprintf(` ORDER BY a.admit_date DESC, a.id DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Admission
	for rows.Next() {
		a, err := scanAdmission(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, rows.Err()
}

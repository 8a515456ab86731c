package billing

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

type ledgerRepoPG struct{ pool *pgxpool.Pool }

func NewLedgerRepoPG(pool *pgxpool.Pool) LedgerRepository {
	return &ledgerRepoPG{pool: pool}
}

func (r *ledgerRepoPG) conn(ctx context.Context) queryable {
	if q := db.ConnFromContext(ctx); q != nil {
		return q
	}
	return r.pool
}

// dateRange appends inclusive bounds on dateCol, continuing from the given
// positional index.
func dateRange(dateCol string, from, to string, idx int) (string, []interface{}, int) {
	clause := ``
	args := []interface{}{}
	if from != "" {
		clause += fmt.Sprintf(` AND %s >= $%d`, dateCol, idx)
		args = append(args, from)
		idx++
	}
	if to != "" {
		clause += fmt.Sprintf(` AND %s <= $%d`, dateCol, idx)
		args = append(args, to)
		idx++
	}
	return clause, args, idx
}

func (r *ledgerRepoPG) collect(ctx context.Context, query string, args []interface{}, recordType string) ([]LedgerRecord, error) {
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []LedgerRecord
	for rows.Next() {
		var rec LedgerRecord
		var date time.Time
		if err := rows.Scan(&rec.RefID, &rec.PatientName, &rec.Description, &date, &rec.Status, &rec.Amount); err != nil {
			return nil, err
		}
		rec.Type = recordType
		rec.Date = date.Format("2006-01-02")
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *ledgerRepoPG) AppointmentRecords(ctx context.Context, from, to string) ([]LedgerRecord, error) {
	clause, args, _ := dateRange("a.appointment_date", from, to, 1)
	query := `
		SELECT a.id,
		       COALESCE(p.first_name || ' ' || p.last_name, 'Unknown'),
		       'Consultation — ' || COALESCE(d.name, 'Unknown'),
		       a.appointment_date,
		       a.status,
		       a.amount
		FROM appointments a
		LEFT JOIN patients p ON p.id = a.patient_id
		LEFT JOIN doctors d ON d.id = a.doctor_id
		WHERE 1=1` + clause
	return r.collect(ctx, query, args, TypeAppointment)
}

func (r *ledgerRepoPG) LabRecords(ctx context.Context, from, to string) ([]LedgerRecord, error) {
	clause, args, _ := dateRange("b.booking_date", from, to, 1)
	query := `
		SELECT b.id,
		       b.patient_name,
		       t.name,
		       b.booking_date,
		       b.status,
		       b.amount
		FROM lab_bookings b
		JOIN lab_tests t ON t.id = b.test_id
		WHERE 1=1` + clause
	return r.collect(ctx, query, args, TypeLab)
}

func (r *ledgerRepoPG) RadiologyRecords(ctx context.Context, from, to string) ([]LedgerRecord, error) {
	clause, args, _ := dateRange("b.booking_date", from, to, 1)
	query := `
		SELECT b.id,
		       b.patient_name,
		       s.name,
		       b.booking_date,
		       b.status,
		       b.amount
		FROM radiology_bookings b
		JOIN radiology_services s ON s.id = b.service_id
		WHERE 1=1` + clause
	return r.collect(ctx, query, args, TypeRadiology)
}

func (r *ledgerRepoPG) AdmissionRecords(ctx context.Context, from, to string) ([]LedgerRecord, error) {
	clause, args, _ := dateRange("a.admit_date", from, to, 1)
	query := `
		SELECT a.id,
		       COALESCE(p.first_name || ' ' || p.last_name, 'Unknown'),
		       'Admission — ' || a.ward || COALESCE(' · ' || a.room, ''),
		       a.admit_date,
		       a.status,
		       COALESCE(a.deposit, 0)
		FROM admissions a
		LEFT JOIN patients p ON p.id = a.patient_id
		WHERE 1=1` + clause
	return r.collect(ctx, query, args, TypeAdmission)
}

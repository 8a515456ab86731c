package reporting

import (
	"context"
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

type statsRepoPG struct{ pool *pgxpool.Pool }

func NewStatsRepoPG(pool *pgxpool.Pool) StatsRepository {
	return &statsRepoPG{pool: pool}
}

func (r *statsRepoPG) conn(ctx context.Context) queryable {
	if q := db.ConnFromContext(ctx); q != nil {
		return q
	}
	return r.pool
}

func (r *statsRepoPG) EntityTotals(ctx context.Context) (int, int, int, error) {
	var patients, doctors, departments int
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT (SELECT COUNT(*) FROM patients),
		       (SELECT COUNT(*) FROM doctors),
		       (SELECT COUNT(*) FROM departments)`,
	).Scan(&patients, &doctors, &departments)
	return patients, doctors, departments, err
}

// AppointmentCounts does the per-status breakdown in one pass with filtered
// aggregates. doctorID = 0 disables the doctor filter.
func (r *statsRepoPG) AppointmentCounts(ctx context.Context, doctorID int64, today string) (*DashboardStats, error) {
	var s DashboardStats
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE appointment_date = $2),
		       COUNT(*) FILTER (WHERE status = 'Pending'),
		       COUNT(*) FILTER (WHERE status = 'Confirmed'),
		       COUNT(*) FILTER (WHERE status = 'Completed'),
		       COUNT(*) FILTER (WHERE status = 'Cancelled'),
		       COUNT(*) FILTER (WHERE status = 'No-Show')
		FROM appointments
		WHERE ($1 = 0 OR doctor_id = $1)`,
		doctorID, today,
	).Scan(&s.TotalAppointments, &s.TodayAppointments,
		&s.Pending, &s.Confirmed, &s.Completed, &s.Cancelled, &s.NoShow)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *statsRepoPG) AppointmentsByDay(ctx context.Context, doctorID int64, from, to string) ([]DayCount, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT appointment_date, COUNT(*)
		FROM appointments
		WHERE ($1 = 0 OR doctor_id = $1)
		  AND appointment_date >= $2 AND appointment_date <= $3
		GROUP BY appointment_date
		ORDER BY appointment_date`,
		doctorID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var series []DayCount
	for rows.Next() {
		var d DayCount
		var date time.Time
		if err := rows.Scan(&date, &d.Count); err != nil {
			return nil, err
		}
		d.Date = date.Format("2006-01-02")
		series = append(series, d)
	}
	return series, rows.Err()
}

package ancillary

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

func connFor(ctx context.Context, pool *pgxpool.Pool) queryable {
	if q := db.ConnFromContext(ctx); q != nil {
		return q
	}
	return pool
}

// =========== Lab Test Catalog ===========

type labTestRepoPG struct{ pool *pgxpool.Pool }

func NewLabTestRepoPG(pool *pgxpool.Pool) LabTestRepository { return &labTestRepoPG{pool: pool} }

const labTestCols = `id, name, description, price, active, created_at, updated_at`

func scanLabTest(row pgx.Row) (*LabTest, error) {
	var t LabTest
	err := row.Scan(&t.ID, &t.Name, &t.Description, &t.Price, &t.Active, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *labTestRepoPG) Create(ctx context.Context, t *LabTest) error {
	return connFor(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO lab_tests (name, description, price, active)
		VALUES ($1,$2,$3,TRUE)
		RETURNING id, active, created_at, updated_at`,
		t.Name, t.Description, t.Price,
	).Scan(&t.ID, &t.Active, &t.CreatedAt, &t.UpdatedAt)
}

func (r *labTestRepoPG) GetByID(ctx context.Context, id int64) (*LabTest, error) {
	return scanLabTest(connFor(ctx, r.pool).QueryRow(ctx,
		`SELECT `+labTestCols+` FROM lab_tests WHERE id = $1`, id))
}

func (r *labTestRepoPG) Update(ctx context.Context, t *LabTest) error {
	tag, err := connFor(ctx, r.pool).Exec(ctx, `
		UPDATE lab_tests SET name = $2, description = $3, price = $4, updated_at = NOW()
		WHERE id = $1`,
		t.ID, t.Name, t.Description, t.Price)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *labTestRepoPG) Deactivate(ctx context.Context, id int64) error {
	tag, err := connFor(ctx, r.pool).Exec(ctx,
		`UPDATE lab_tests SET active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *labTestRepoPG) List(ctx context.Context, activeOnly bool, limit, offset int) ([]*LabTest, int, error) {
	where := ``
	if activeOnly {
		where = ` WHERE active`
	}

	var total int
	if err := connFor(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM lab_tests`+where).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := connFor(ctx, r.pool).Query(ctx,
		`SELECT `+labTestCols+` FROM lab_tests`+where+` ORDER BY name LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*LabTest
	for rows.Next() {
		t, err := scanLabTest(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, t)
	}
	return items, total, rows.Err()
}

// =========== Radiology Service Catalog ===========

type radiologyServiceRepoPG struct{ pool *pgxpool.Pool }

func NewRadiologyServiceRepoPG(pool *pgxpool.Pool) RadiologyServiceRepository {
	return &radiologyServiceRepoPG{pool: pool}
}

const radiologyServiceCols = `id, name, description, price, preparation_instructions, active, created_at, updated_at`

func scanRadiologyService(row pgx.Row) (*RadiologyService, error) {
	var s RadiologyService
	err := row.Scan(&s.ID, &s.Name, &s.Description, &s.Price, &s.PreparationInstructions,
		&s.Active, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *radiologyServiceRepoPG) Create(ctx context.Context, s *RadiologyService) error {
	return connFor(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO radiology_services (name, description, price, preparation_instructions, active)
		VALUES ($1,$2,$3,$4,TRUE)
		RETURNING id, active, created_at, updated_at`,
		s.Name, s.Description, s.Price, s.PreparationInstructions,
	).Scan(&s.ID, &s.Active, &s.CreatedAt, &s.UpdatedAt)
}

func (r *radiologyServiceRepoPG) GetByID(ctx context.Context, id int64) (*RadiologyService, error) {
	return scanRadiologyService(connFor(ctx, r.pool).QueryRow(ctx,
		`SELECT `+radiologyServiceCols+` FROM radiology_services WHERE id = $1`, id))
}

func (r *radiologyServiceRepoPG) Update(ctx context.Context, s *RadiologyService) error {
	tag, err := connFor(ctx, r.pool).Exec(ctx, `
		UPDATE radiology_services
		SET name = $2, description = $3, price = $4, preparation_instructions = $5, updated_at = NOW()
		WHERE id = $1`,
		s.ID, s.Name, s.Description, s.Price, s.PreparationInstructions)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *radiologyServiceRepoPG) Deactivate(ctx context.Context, id int64) error {
	tag, err := connFor(ctx, r.pool).Exec(ctx,
		`UPDATE radiology_services SET active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *radiologyServiceRepoPG) List(ctx context.Context, activeOnly bool, limit, offset int) ([]*RadiologyService, int, error) {
	where := ``
	if activeOnly {
		where = ` WHERE active`
	}

	var total int
	if err := connFor(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM radiology_services`+where).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := connFor(ctx, r.pool).Query(ctx,
		`SELECT `+radiologyServiceCols+` FROM radiology_services`+where+` ORDER BY name LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*RadiologyService
	for rows.Next() {
		s, err := scanRadiologyService(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, s)
	}
	return items, total, rows.Err()
}

// =========== Lab Bookings ===========

type labBookingRepoPG struct{ pool *pgxpool.Pool }

func NewLabBookingRepoPG(pool *pgxpool.Pool) LabBookingRepository {
	return &labBookingRepoPG{pool: pool}
}

const labBookingCols = `b.id, b.test_id, b.patient_id, b.patient_name, b.contact, b.email,
	b.booking_date, b.booking_time, b.status, b.notes, b.amount, b.created_at, b.updated_at,
	t.name, t.price`

func scanLabBooking(row pgx.Row) (*LabBooking, error) {
	var b LabBooking
	var date time.Time
	err := row.Scan(&b.ID, &b.TestID, &b.PatientID, &b.PatientName, &b.Contact, &b.Email,
		&date, &b.Time, &b.Status, &b.Notes, &b.Amount, &b.CreatedAt, &b.UpdatedAt,
		&b.TestName, &b.Price)
	if err != nil {
		return nil, err
	}
	b.Date = date.Format("2006-01-02")
	return &b, nil
}

func (r *labBookingRepoPG) Create(ctx context.Context, b *LabBooking) error {
	return connFor(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO lab_bookings (test_id, patient_id, patient_name, contact, email, booking_date, booking_time, status, notes, amount)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING id, created_at, updated_at`,
		b.TestID, b.PatientID, b.PatientName, b.Contact, b.Email, b.Date, b.Time, b.Status, b.Notes, b.Amount,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
}

func (r *labBookingRepoPG) GetByID(ctx context.Context, id int64) (*LabBooking, error) {
	return scanLabBooking(connFor(ctx, r.pool).QueryRow(ctx, `
		SELECT `+labBookingCols+`
		FROM lab_bookings b
		JOIN lab_tests t ON t.id = b.test_id
		WHERE b.id = $1`, id))
}

func (r *labBookingRepoPG) UpdateStatus(ctx context.Context, id int64, status string, amount *float64) error {
	tag, err := connFor(ctx, r.pool).Exec(ctx, `
		UPDATE lab_bookings SET status = $2, amount = COALESCE($3, amount), updated_at = NOW()
		WHERE id = $1`, id, status, amount)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

var labBookingFilters = map[string]string{
	"test_id":    "b.test_id",
	"patient_id": "b.patient_id",
	"date":       "b.booking_date",
	"status":     "b.status",
}

func (r *labBookingRepoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*LabBooking, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	idx := 1
	for key, col := range labBookingFilters {
		if v, ok := params[key]; ok {
			where += fmt.Sprintf(` AND %s = $%d`, col, idx)
			args = append(args, v)
			idx++
		}
	}

	var total int
	if err := connFor(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM lab_bookings b`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + labBookingCols + `
		FROM lab_bookings b
		JOIN lab_tests t ON t.id = b.test_id` + where +
		fmt.Sprintf(` ORDER BY b.booking_date DESC, b.id DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := connFor(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*LabBooking
	for rows.Next() {
		b, err := scanLabBooking(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, b)
	}
	return items, total, rows.Err()
}

// =========== Radiology Bookings ===========

type radiologyBookingRepoPG struct{ pool *pgxpool.Pool }

func NewRadiologyBookingRepoPG(pool *pgxpool.Pool) RadiologyBookingRepository {
	return &radiologyBookingRepoPG{pool: pool}
}

const radiologyBookingCols = `b.id, b.service_id, b.patient_id, b.patient_name, b.contact, b.email,
	b.booking_date, b.booking_time, b.status, b.notes, b.amount, b.created_at, b.updated_at,
	s.name, s.price`

func scanRadiologyBooking(row pgx.Row) (*RadiologyBooking, error) {
	var b RadiologyBooking
	var date time.Time
	err := row.Scan(&b.ID, &b.ServiceID, &b.PatientID, &b.PatientName, &b.Contact, &b.Email,
		&date, &b.Time, &b.Status, &b.Notes, &b.Amount, &b.CreatedAt, &b.UpdatedAt,
		&b.ServiceName, &b.Price)
	if err != nil {
		return nil, err
	}
	b.Date = date.Format("2006-01-02")
	return &b, nil
}

func (r *radiologyBookingRepoPG) Create(ctx context.Context, b *RadiologyBooking) error {
	return connFor(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO radiology_bookings (service_id, patient_id, patient_name, contact, email, booking_date, booking_time, status, notes, amount)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING id, created_at, updated_at`,
		b.ServiceID, b.PatientID, b.PatientName, b.Contact, b.Email, b.Date, b.Time, b.Status, b.Notes, b.Amount,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
}

func (r *radiologyBookingRepoPG) GetByID(ctx context.Context, id int64) (*RadiologyBooking, error) {
	return scanRadiologyBooking(connFor(ctx, r.pool).QueryRow(ctx, `
		SELECT `+radiologyBookingCols+`
		FROM radiology_bookings b
		JOIN radiology_services s ON s.id = b.service_id
		WHERE b.id = $1`, id))
}

func (r *radiologyBookingRepoPG) UpdateStatus(ctx context.Context, id int64, status string, amount *float64) error {
	tag, err := connFor(ctx, r.pool).Exec(ctx, `
		UPDATE radiology_bookings SET status = $2, amount = COALESCE($3, amount), updated_at = NOW()
		WHERE id = $1`, id, status, amount)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

var radiologyBookingFilters = map[string]string{
	"service_id": "b.service_id",
	"patient_id": "b.patient_id",
	"date":       "b.booking_date",
	"status":     "b.status",
}

func (r *radiologyBookingRepoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*RadiologyBooking, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	idx := 1
	for key, col := range radiologyBookingFilters {
		if v, ok := params[key]; ok {
			where += fmt.Sprintf(` AND %s = $%d`, col, idx)
			args = append(args, v)
			idx++
		}
	}

	var total int
	if err := connFor(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM radiology_bookings b`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + radiologyBookingCols + `
		FROM radiology_bookings b
		JOIN radiology_services s ON s.id = b.service_id` + where +
		fmt.Sprintf(` ORDER BY b.booking_date DESC, b.id DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := connFor(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*RadiologyBooking
	for rows.Next() {
		b, err := scanRadiologyBooking(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, b)
	}
	return items, total, rows.Err()
}

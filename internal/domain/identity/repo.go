package identity

import "context"

// PatientRepository provides persistence for patients.
type PatientRepository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id int64) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, id int64) error
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Patient, int, error)
}

// DoctorRepository provides persistence for doctors.
type DoctorRepository interface {
	Create(ctx context.Context, d *Doctor) error
	GetByID(ctx context.Context, id int64) (*Doctor, error)
	Update(ctx context.Context, d *Doctor) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, params map[string]string, limit, offset int) ([]*Doctor, int, error)
	// OpenBookings counts the doctor's non-terminal appointments. A doctor
	// with open bookings cannot be deleted.
	OpenBookings(ctx context.Context, doctorID int64) (int, error)
}

// DepartmentRepository provides persistence for departments.
type DepartmentRepository interface {
	Create(ctx context.Context, d *Department) error
	List(ctx context.Context) ([]*Department, error)
}

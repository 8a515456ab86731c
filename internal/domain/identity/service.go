package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

var (
	ErrPatientNotFound   = errors.New("patient not found")
	ErrDoctorNotFound    = errors.New("doctor not found")
	ErrDoctorHasBookings = errors.New("doctor has open appointments and cannot be deleted")
)

type Service struct {
	patients    PatientRepository
	doctors     DoctorRepository
	departments DepartmentRepository
}

func NewService(patients PatientRepository, doctors DoctorRepository, departments DepartmentRepository) *Service {
	return &Service{patients: patients, doctors: doctors, departments: departments}
}

func validDate(s *string) error {
	if s == nil || *s == "" {
		return nil
	}
	if _, err := time.Parse("2006-01-02", *s); err != nil {
		return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", *s)
	}
	return nil
}

// -- Patient --

func (s *Service) CreatePatient(ctx context.Context, p *Patient) error {
	if p.FirstName == "" {
		return fmt.Errorf("first_name is required")
	}
	if p.LastName == "" {
		return fmt.Errorf("last_name is required")
	}
	if err := validDate(p.DateOfBirth); err != nil {
		return err
	}
	return s.patients.Create(ctx, p)
}

func (s *Service) GetPatient(ctx context.Context, id int64) (*Patient, error) {
	p, err := s.patients.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPatientNotFound
	}
	return p, err
}

func (s *Service) UpdatePatient(ctx context.Context, p *Patient) error {
	if _, err := s.GetPatient(ctx, p.ID); err != nil {
		return err
	}
	if p.FirstName == "" || p.LastName == "" {
		return fmt.Errorf("first_name and last_name are required")
	}
	if err := validDate(p.DateOfBirth); err != nil {
		return err
	}
	return s.patients.Update(ctx, p)
}

func (s *Service) DeletePatient(ctx context.Context, id int64) error {
	if _, err := s.GetPatient(ctx, id); err != nil {
		return err
	}
	return s.patients.Delete(ctx, id)
}

func (s *Service) SearchPatients(ctx context.Context, params map[string]string, limit, offset int) ([]*Patient, int, error) {
	return s.patients.Search(ctx, params, limit, offset)
}

// -- Doctor --

func (s *Service) CreateDoctor(ctx context.Context, d *Doctor) error {
	if d.Name == "" {
		return fmt.Errorf("name is required")
	}
	if d.Specialization == "" {
		return fmt.Errorf("specialization is required")
	}
	if d.ConsultationFee != nil && *d.ConsultationFee < 0 {
		return fmt.Errorf("consultation_fee must not be negative")
	}
	return s.doctors.Create(ctx, d)
}

func (s *Service) GetDoctor(ctx context.Context, id int64) (*Doctor, error) {
	d, err := s.doctors.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrDoctorNotFound
	}
	return d, err
}

func (s *Service) UpdateDoctor(ctx context.Context, d *Doctor) error {
	if _, err := s.GetDoctor(ctx, d.ID); err != nil {
		return err
	}
	if d.Name == "" || d.Specialization == "" {
		return fmt.Errorf("name and specialization are required")
	}
	return s.doctors.Update(ctx, d)
}

// DeleteDoctor removes a doctor unless they still have Pending or Confirmed
// appointments.
func (s *Service) DeleteDoctor(ctx context.Context, id int64) error {
	if _, err := s.GetDoctor(ctx, id); err != nil {
		return err
	}
	open, err := s.doctors.OpenBookings(ctx, id)
	if err != nil {
		return err
	}
	if open > 0 {
		return fmt.Errorf("%w: %d open", ErrDoctorHasBookings, open)
	}
	return s.doctors.Delete(ctx, id)
}

func (s *Service) ListDoctors(ctx context.Context, params map[string]string, limit, offset int) ([]*Doctor, int, error) {
	return s.doctors.List(ctx, params, limit, offset)
}

// -- Department --

func (s *Service) CreateDepartment(ctx context.Context, d *Department) error {
	if d.Name == "" {
		return fmt.Errorf("name is required")
	}
	return s.departments.Create(ctx, d)
}

func (s *Service) ListDepartments(ctx context.Context) ([]*Department, error) {
	return s.departments.List(ctx)
}

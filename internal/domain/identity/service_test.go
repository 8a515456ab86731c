package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
)

type mockPatientRepo struct {
	patients map[int64]*Patient
	nextID   int64
}

func newMockPatientRepo() *mockPatientRepo {
	return &mockPatientRepo{patients: make(map[int64]*Patient), nextID: 1}
}

func (m *mockPatientRepo) Create(_ context.Context, p *Patient) error {
	p.ID = m.nextID
	m.nextID++
	m.patients[p.ID] = p
	return nil
}

func (m *mockPatientRepo) GetByID(_ context.Context, id int64) (*Patient, error) {
	if p, ok := m.patients[id]; ok {
		return p, nil
	}
	return nil, pgx.ErrNoRows
}

func (m *mockPatientRepo) Update(_ context.Context, p *Patient) error {
	m.patients[p.ID] = p
	return nil
}

func (m *mockPatientRepo) Delete(_ context.Context, id int64) error {
	delete(m.patients, id)
	return nil
}

func (m *mockPatientRepo) Search(_ context.Context, _ map[string]string, _, _ int) ([]*Patient, int, error) {
	var out []*Patient
	for _, p := range m.patients {
		out = append(out, p)
	}
	return out, len(out), nil
}

type mockDoctorRepo struct {
	doctors  map[int64]*Doctor
	open     map[int64]int
	nextID   int64
}

func newMockDoctorRepo() *mockDoctorRepo {
	return &mockDoctorRepo{doctors: make(map[int64]*Doctor), open: make(map[int64]int), nextID: 1}
}

func (m *mockDoctorRepo) Create(_ context.Context, d *Doctor) error {
	d.ID = m.nextID
	m.nextID++
	m.doctors[d.ID] = d
	return nil
}

func (m *mockDoctorRepo) GetByID(_ context.Context, id int64) (*Doctor, error) {
	if d, ok := m.doctors[id]; ok {
		return d, nil
	}
	return nil, pgx.ErrNoRows
}

func (m *mockDoctorRepo) Update(_ context.Context, d *Doctor) error {
	m.doctors[d.ID] = d
	return nil
}

func (m *mockDoctorRepo) Delete(_ context.Context, id int64) error {
	delete(m.doctors, id)
	return nil
}

func (m *mockDoctorRepo) List(_ context.Context, _ map[string]string, _, _ int) ([]*Doctor, int, error) {
	var out []*Doctor
	for _, d := range m.doctors {
		out = append(out, d)
	}
	return out, len(out), nil
}

func (m *mockDoctorRepo) OpenBookings(_ context.Context, doctorID int64) (int, error) {
	return m.open[doctorID], nil
}

type mockDepartmentRepo struct {
	departments []*Department
	nextID      int64
}

func (m *mockDepartmentRepo) Create(_ context.Context, d *Department) error {
	m.nextID++
	d.ID = m.nextID
	m.departments = append(m.departments, d)
	return nil
}

func (m *mockDepartmentRepo) List(_ context.Context) ([]*Department, error) {
	return m.departments, nil
}

func newTestService() (*Service, *mockPatientRepo, *mockDoctorRepo) {
	pats := newMockPatientRepo()
	docs := newMockDoctorRepo()
	return NewService(pats, docs, &mockDepartmentRepo{}), pats, docs
}

func strPtr(s string) *string { return &s }

func TestCreatePatient_RequiresNames(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if err := svc.CreatePatient(ctx, &Patient{LastName: "Rao"}); err == nil {
		t.Error("expected error for missing first_name")
	}
	if err := svc.CreatePatient(ctx, &Patient{FirstName: "Asha"}); err == nil {
		t.Error("expected error for missing last_name")
	}
	if err := svc.CreatePatient(ctx, &Patient{FirstName: "Asha", LastName: "Rao"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestCreatePatient_RejectsBadDateOfBirth(t *testing.T) {
	svc, _, _ := newTestService()
	p := &Patient{FirstName: "Asha", LastName: "Rao", DateOfBirth: strPtr("31-12-1990")}
	if err := svc.CreatePatient(context.Background(), p); err == nil {
		t.Error("expected error for non-ISO date of birth")
	}
}

func TestGetPatient_NotFound(t *testing.T) {
	svc, _, _ := newTestService()
	if _, err := svc.GetPatient(context.Background(), 99); !errors.Is(err, ErrPatientNotFound) {
		t.Fatalf("expected ErrPatientNotFound, got %v", err)
	}
}

func TestCreateDoctor_Validation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if err := svc.CreateDoctor(ctx, &Doctor{Specialization: "Cardiology"}); err == nil {
		t.Error("expected error for missing name")
	}
	if err := svc.CreateDoctor(ctx, &Doctor{Name: "Dr. Mehta"}); err == nil {
		t.Error("expected error for missing specialization")
	}
	fee := -10.0
	if err := svc.CreateDoctor(ctx, &Doctor{Name: "Dr. Mehta", Specialization: "Cardiology", ConsultationFee: &fee}); err == nil {
		t.Error("expected error for negative fee")
	}
}

func TestDeleteDoctor_BlockedByOpenBookings(t *testing.T) {
	svc, _, docs := newTestService()
	ctx := context.Background()

	d := &Doctor{Name: "Dr. Mehta", Specialization: "Cardiology"}
	if err := svc.CreateDoctor(ctx, d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	docs.open[d.ID] = 2

	if err := svc.DeleteDoctor(ctx, d.ID); !errors.Is(err, ErrDoctorHasBookings) {
		t.Fatalf("expected ErrDoctorHasBookings, got %v", err)
	}
	if _, err := svc.GetDoctor(ctx, d.ID); err != nil {
		t.Error("doctor must still exist after blocked delete")
	}
}

func TestDeleteDoctor_AllowedWithTerminalBookingsOnly(t *testing.T) {
	svc, _, docs := newTestService()
	ctx := context.Background()

	d := &Doctor{Name: "Dr. Mehta", Specialization: "Cardiology"}
	if err := svc.CreateDoctor(ctx, d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	docs.open[d.ID] = 0

	if err := svc.DeleteDoctor(ctx, d.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.GetDoctor(ctx, d.ID); !errors.Is(err, ErrDoctorNotFound) {
		t.Error("doctor should be gone")
	}
}

func TestDeleteDoctor_NotFound(t *testing.T) {
	svc, _, _ := newTestService()
	if err := svc.DeleteDoctor(context.Background(), 42); !errors.Is(err, ErrDoctorNotFound) {
		t.Fatalf("expected ErrDoctorNotFound, got %v", err)
	}
}

func TestCreateDepartment_RequiresName(t *testing.T) {
	svc, _, _ := newTestService()
	if err := svc.CreateDepartment(context.Background(), &Department{}); err == nil {
		t.Error("expected error for missing name")
	}
}

package admission

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/medicareplus/hms/internal/platform/lifecycle"
	"github.com/medicareplus/hms/internal/platform/notification"
)

type mockAdmissionRepo struct {
	items  map[int64]*Admission
	nextID int64
}

func (m *mockAdmissionRepo) Create(_ context.Context, a *Admission) error {
	a.ID = m.nextID
	m.nextID++
	cp := *a
	m.items[a.ID] = &cp
	return nil
}

func (m *mockAdmissionRepo) GetByID(_ context.Context, id int64) (*Admission, error) {
	a, ok := m.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *a
	return &cp, nil
}

func (m *mockAdmissionRepo) Update(_ context.Context, a *Admission) error {
	if _, ok := m.items[a.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *a
	m.items[a.ID] = &cp
	return nil
}

func (m *mockAdmissionRepo) Discharge(_ context.Context, id int64, dischargeDate string) error {
	a, ok := m.items[id]
	if !ok {
		return pgx.ErrNoRows
	}
	a.Status = lifecycle.StatusDischarged
	a.DischargeDate = &dischargeDate
	return nil
}

func (m *mockAdmissionRepo) Search(_ context.Context, _ map[string]string, _, _ int) ([]*Admission, int, error) {
	var out []*Admission
	for _, a := range m.items {
		cp := *a
		out = append(out, &cp)
	}
	return out, len(out), nil
}

type mockDirectory struct{}

func (mockDirectory) Patient(_ context.Context, id int64) (*Person, error) {
	if id != 1 {
		return nil, errors.New("no such patient")
	}
	return &Person{ID: 1, Name: "Ravi Kumar", Email: "ravi@example.test"}, nil
}

func (mockDirectory) Doctor(_ context.Context, id int64) (*Person, error) {
	if id != 1 {
		return nil, errors.New("no such doctor")
	}
	return &Person{ID: 1, Name: "Dr. Asha Rao"}, nil
}

func newTestService() (*Service, *mockAdmissionRepo, *notification.Recorder) {
	repo := &mockAdmissionRepo{items: map[int64]*Admission{}, nextID: 1}
	rec := &notification.Recorder{}
	svc := NewService(repo, mockDirectory{}, rec)
	svc.now = func() time.Time { return time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC) }
	return svc, repo, rec
}

func admit(t *testing.T, svc *Service) *Admission {
	t.Helper()
	a := &Admission{PatientID: 1, Ward: "General", AdmitDate: "2025-06-02", Deposit: 5000}
	if err := svc.Admit(context.Background(), a); err != nil {
		t.Fatalf("Admit: %v", err)
	}
	return a
}

func TestAdmitStartsAdmitted(t *testing.T) {
	svc, _, rec := newTestService()
	a := admit(t, svc)
	if a.Status != lifecycle.StatusAdmitted {
		t.Errorf("status = %s, want Admitted", a.Status)
	}
	if len(rec.Calls()) != 0 {
		t.Errorf("admission must not notify, got %d calls", len(rec.Calls()))
	}
}

func TestAdmitValidation(t *testing.T) {
	svc, _, _ := newTestService()
	cases := []struct {
		name string
		a    Admission
	}{
		{"missing patient", Admission{Ward: "General", AdmitDate: "2025-06-02"}},
		{"missing ward", Admission{PatientID: 1, AdmitDate: "2025-06-02"}},
		{"bad date", Admission{PatientID: 1, Ward: "General", AdmitDate: "02-06-2025"}},
		{"negative deposit", Admission{PatientID: 1, Ward: "General", AdmitDate: "2025-06-02", Deposit: -1}},
	}
	for _, tc := range cases {
		if err := svc.Admit(context.Background(), &tc.a); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}

func TestAdmitUnknownPatient(t *testing.T) {
	svc, _, _ := newTestService()
	a := &Admission{PatientID: 9, Ward: "General", AdmitDate: "2025-06-02"}
	if err := svc.Admit(context.Background(), a); !errors.Is(err, ErrPatientNotFound) {
		t.Fatalf("expected ErrPatientNotFound, got %v", err)
	}
}

func TestDischargeDefaultsToToday(t *testing.T) {
	svc, _, rec := newTestService()
	a := admit(t, svc)

	got, err := svc.Discharge(context.Background(), a.ID, "")
	if err != nil {
		t.Fatalf("Discharge: %v", err)
	}
	if got.Status != lifecycle.StatusDischarged {
		t.Errorf("status = %s, want Discharged", got.Status)
	}
	if got.DischargeDate == nil || *got.DischargeDate != "2025-06-10" {
		t.Errorf("discharge_date = %v, want 2025-06-10", got.DischargeDate)
	}

	calls := rec.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(calls))
	}
	if calls[0].TemplateID != notification.TplAdmissionDischarged {
		t.Errorf("template = %s, want %s", calls[0].TemplateID, notification.TplAdmissionDischarged)
	}
	if calls[0].Recipient != "ravi@example.test" {
		t.Errorf("recipient = %s", calls[0].Recipient)
	}
}

func TestDischargeTwiceRejected(t *testing.T) {
	svc, _, _ := newTestService()
	a := admit(t, svc)
	if _, err := svc.Discharge(context.Background(), a.ID, "2025-06-05"); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Discharge(context.Background(), a.ID, "2025-06-06"); !errors.Is(err, ErrAlreadyDischarged) {
		t.Fatalf("expected ErrAlreadyDischarged, got %v", err)
	}
}

func TestUpdateFrozenAfterDischarge(t *testing.T) {
	svc, _, _ := newTestService()
	a := admit(t, svc)
	if _, err := svc.Discharge(context.Background(), a.ID, "2025-06-05"); err != nil {
		t.Fatal(err)
	}

	_, err := svc.Update(context.Background(), a.ID, &Admission{Ward: "ICU"})
	if !errors.Is(err, ErrAlreadyDischarged) {
		t.Fatalf("expected ErrAlreadyDischarged, got %v", err)
	}
}

func TestUpdateChangesWardAndDeposit(t *testing.T) {
	svc, repo, _ := newTestService()
	a := admit(t, svc)

	got, err := svc.Update(context.Background(), a.ID, &Admission{Ward: "ICU", Deposit: 8000})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Ward != "ICU" || got.Deposit != 8000 {
		t.Errorf("got ward=%s deposit=%v", got.Ward, got.Deposit)
	}
	stored := repo.items[a.ID]
	if stored.Ward != "ICU" {
		t.Errorf("stored ward = %s", stored.Ward)
	}
}

func TestDischargeMissing(t *testing.T) {
	svc, _, _ := newTestService()
	if _, err := svc.Discharge(context.Background(), 42, ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

package admission

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/medicareplus/hms/internal/platform/lifecycle"
	"github.com/medicareplus/hms/internal/platform/notification"
)

var (
	ErrNotFound          = errors.New("admission not found")
	ErrPatientNotFound   = errors.New("patient not found")
	ErrDoctorNotFound    = errors.New("doctor not found")
	ErrAlreadyDischarged = errors.New("admission is already discharged")
)

var dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Directory resolves patient and doctor references for admissions.
type Directory interface {
	Patient(ctx context.Context, id int64) (*Person, error)
	Doctor(ctx context.Context, id int64) (*Person, error)
}

type Person struct {
	ID    int64
	Name  string
	Email string
}

type Service struct {
	admissions AdmissionRepository
	directory  Directory
	notify     notification.Dispatcher
	machine    *lifecycle.Machine
	now        func() time.Time
}

func NewService(admissions AdmissionRepository, directory Directory, notify notification.Dispatcher) *Service {
	return &Service{
		admissions: admissions,
		directory:  directory,
		notify:     notify,
		machine:    lifecycle.Admissions,
		now:        time.Now,
	}
}

func (s *Service) Admit(ctx context.Context, a *Admission) error {
	if a.PatientID == 0 {
		return fmt.Errorf("patient_id is required")
	}
	if a.Ward == "" {
		return fmt.Errorf("ward is required")
	}
	if !dateRe.MatchString(a.AdmitDate) {
		return fmt.Errorf("invalid admit_date %q, expected YYYY-MM-DD", a.AdmitDate)
	}
	if a.Deposit < 0 {
		return fmt.Errorf("deposit must not be negative")
	}

	patient, err := s.directory.Patient(ctx, a.PatientID)
	if err != nil {
		return ErrPatientNotFound
	}
	if a.DoctorID != nil {
		if _, err := s.directory.Doctor(ctx, *a.DoctorID); err != nil {
			return ErrDoctorNotFound
		}
	}

	a.Status = s.machine.Initial()
	a.DischargeDate = nil
	if err := s.admissions.Create(ctx, a); err != nil {
		return err
	}
	a.PatientName = patient.Name
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Admission, error) {
	a, err := s.admissions.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return a, err
}

func (s *Service) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Admission, int, error) {
	return s.admissions.Search(ctx, params, limit, offset)
}

// Update edits the stay's mutable fields. Discharged stays are frozen.
func (s *Service) Update(ctx context.Context, id int64, upd *Admission) (*Admission, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status == lifecycle.StatusDischarged {
		return nil, ErrAlreadyDischarged
	}

	if upd.Ward != "" {
		a.Ward = upd.Ward
	}
	if upd.Room != nil {
		a.Room = upd.Room
	}
	if upd.DoctorID != nil {
		if _, err := s.directory.Doctor(ctx, *upd.DoctorID); err != nil {
			return nil, ErrDoctorNotFound
		}
		a.DoctorID = upd.DoctorID
	}
	if upd.Deposit > 0 {
		a.Deposit = upd.Deposit
	}
	if upd.Notes != nil {
		a.Notes = upd.Notes
	}
	if err := s.admissions.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Discharge closes the stay. The discharge date defaults to today; a second
// discharge is rejected rather than silently repeated.
func (s *Service) Discharge(ctx context.Context, id int64, dischargeDate string) (*Admission, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.machine.CanTransition(a.Status, lifecycle.StatusDischarged) {
		return nil, ErrAlreadyDischarged
	}

	if dischargeDate == "" {
		dischargeDate = s.now().Format("2006-01-02")
	} else if !dateRe.MatchString(dischargeDate) {
		return nil, fmt.Errorf("invalid discharge_date %q, expected YYYY-MM-DD", dischargeDate)
	}

	if err := s.admissions.Discharge(ctx, id, dischargeDate); err != nil {
		return nil, err
	}
	a.Status = lifecycle.StatusDischarged
	a.DischargeDate = &dischargeDate

	if patient, err := s.directory.Patient(ctx, a.PatientID); err == nil {
		s.notify.Dispatch(notification.TplAdmissionDischarged, patient.Email, map[string]string{
			"patient_name":   patient.Name,
			"ward":           a.Ward,
			"admit_date":     a.AdmitDate,
			"discharge_date": dischargeDate,
		})
	}
	return a, nil
}

package ancillary

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/jackc/pgx/v5"

	"github.com/medicareplus/hms/internal/platform/lifecycle"
	"github.com/medicareplus/hms/internal/platform/notification"
)

var (
	ErrTestNotFound    = errors.New("lab test not found")
	ErrServiceNotFound = errors.New("radiology service not found")
	ErrBookingNotFound = errors.New("booking not found")
	ErrCatalogInactive = errors.New("catalog item is no longer offered")
	ErrBadTransition   = errors.New("status transition not allowed")
	ErrPatientNotFound = errors.New("patient not found")
)

var dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
var timeRe = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// PatientDirectory resolves registered patients so their contact details can
// be denormalized onto bookings.
type PatientDirectory interface {
	Patient(ctx context.Context, id int64) (*PatientInfo, error)
}

type PatientInfo struct {
	ID    int64
	Name  string
	Phone string
	Email string
}

type Service struct {
	tests    LabTestRepository
	services RadiologyServiceRepository
	labs     LabBookingRepository
	rads     RadiologyBookingRepository
	patients PatientDirectory
	notify   notification.Dispatcher
	machine  *lifecycle.Machine
}

func NewService(
	tests LabTestRepository,
	services RadiologyServiceRepository,
	labs LabBookingRepository,
	rads RadiologyBookingRepository,
	patients PatientDirectory,
	notify notification.Dispatcher,
) *Service {
	return &Service{
		tests:    tests,
		services: services,
		labs:     labs,
		rads:     rads,
		patients: patients,
		notify:   notify,
		machine:  lifecycle.Orders,
	}
}

// =========== Catalogs ===========

func validCatalogEntry(name string, price float64) error {
	if name == "" {
		return fmt.Errorf("name is required")
	}
	if price < 0 {
		return fmt.Errorf("price must not be negative")
	}
	return nil
}

func (s *Service) CreateLabTest(ctx context.Context, t *LabTest) error {
	if err := validCatalogEntry(t.Name, t.Price); err != nil {
		return err
	}
	return s.tests.Create(ctx, t)
}

func (s *Service) GetLabTest(ctx context.Context, id int64) (*LabTest, error) {
	t, err := s.tests.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTestNotFound
	}
	return t, err
}

func (s *Service) UpdateLabTest(ctx context.Context, t *LabTest) error {
	if err := validCatalogEntry(t.Name, t.Price); err != nil {
		return err
	}
	err := s.tests.Update(ctx, t)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrTestNotFound
	}
	return err
}

func (s *Service) DeactivateLabTest(ctx context.Context, id int64) error {
	err := s.tests.Deactivate(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrTestNotFound
	}
	return err
}

func (s *Service) ListLabTests(ctx context.Context, activeOnly bool, limit, offset int) ([]*LabTest, int, error) {
	return s.tests.List(ctx, activeOnly, limit, offset)
}

func (s *Service) CreateRadiologyService(ctx context.Context, rs *RadiologyService) error {
	if err := validCatalogEntry(rs.Name, rs.Price); err != nil {
		return err
	}
	return s.services.Create(ctx, rs)
}

func (s *Service) GetRadiologyService(ctx context.Context, id int64) (*RadiologyService, error) {
	rs, err := s.services.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrServiceNotFound
	}
	return rs, err
}

func (s *Service) UpdateRadiologyService(ctx context.Context, rs *RadiologyService) error {
	if err := validCatalogEntry(rs.Name, rs.Price); err != nil {
		return err
	}
	err := s.services.Update(ctx, rs)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrServiceNotFound
	}
	return err
}

func (s *Service) DeactivateRadiologyService(ctx context.Context, id int64) error {
	err := s.services.Deactivate(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrServiceNotFound
	}
	return err
}

func (s *Service) ListRadiologyServices(ctx context.Context, activeOnly bool, limit, offset int) ([]*RadiologyService, int, error) {
	return s.services.List(ctx, activeOnly, limit, offset)
}

// =========== Bookings ===========

type bookingFields struct {
	patientID   *int64
	patientName *string
	contact     **string
	email       **string
	date        *string
	timeOfDay   *string
	status      *lifecycle.Status
}

// normalizeBooking applies the shared walk-in / registered-patient rules:
// registered patients have their contact details copied onto the booking,
// walk-ins must at least carry a name. Date defaults are not applied; time
// defaults to DefaultBookingTime.
func (s *Service) normalizeBooking(ctx context.Context, f bookingFields) error {
	if f.patientID != nil && *f.patientID != 0 {
		p, err := s.patients.Patient(ctx, *f.patientID)
		if err != nil {
			return ErrPatientNotFound
		}
		if *f.patientName == "" {
			*f.patientName = p.Name
		}
		if *f.contact == nil && p.Phone != "" {
			phone := p.Phone
			*f.contact = &phone
		}
		if *f.email == nil && p.Email != "" {
			email := p.Email
			*f.email = &email
		}
	} else if *f.patientName == "" {
		return fmt.Errorf("patient_name is required for walk-in bookings")
	}

	if !dateRe.MatchString(*f.date) {
		return fmt.Errorf("invalid booking_date %q, expected YYYY-MM-DD", *f.date)
	}
	if *f.timeOfDay == "" {
		*f.timeOfDay = DefaultBookingTime
	} else if !timeRe.MatchString(*f.timeOfDay) {
		return fmt.Errorf("invalid booking_time %q, expected HH:MM", *f.timeOfDay)
	}
	*f.status = s.machine.Initial()
	return nil
}

func (s *Service) CreateLabBooking(ctx context.Context, b *LabBooking) error {
	t, err := s.GetLabTest(ctx, b.TestID)
	if err != nil {
		return err
	}
	if !t.Active {
		return fmt.Errorf("%w: %s", ErrCatalogInactive, t.Name)
	}
	pid := int64(0)
	if b.PatientID != nil {
		pid = *b.PatientID
	}
	if err := s.normalizeBooking(ctx, bookingFields{
		patientID: &pid, patientName: &b.PatientName,
		contact: &b.Contact, email: &b.Email,
		date: &b.Date, timeOfDay: &b.Time, status: &b.Status,
	}); err != nil {
		return err
	}
	if b.Amount < 0 {
		return fmt.Errorf("amount cannot be negative")
	}
	if b.Amount == 0 {
		// Snapshot the catalog price so later price changes never rewrite
		// what this booking bills.
		b.Amount = t.Price
	}
	if err := s.labs.Create(ctx, b); err != nil {
		return err
	}
	b.TestName = t.Name
	b.Price = t.Price
	return nil
}

func (s *Service) GetLabBooking(ctx context.Context, id int64) (*LabBooking, error) {
	b, err := s.labs.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	return b, err
}

func (s *Service) SearchLabBookings(ctx context.Context, params map[string]string, limit, offset int) ([]*LabBooking, int, error) {
	return s.labs.Search(ctx, params, limit, offset)
}

// StatusUpdate carries a booking status change. A non-nil Amount is persisted
// with it; sending Amount with the current status corrects the billed amount
// without a transition.
type StatusUpdate struct {
	Status string   `json:"status"`
	Amount *float64 `json:"amount,omitempty"`
}

func (s *Service) resolveStatus(current lifecycle.Status, req StatusUpdate) (lifecycle.Status, error) {
	if req.Amount != nil && *req.Amount < 0 {
		return "", fmt.Errorf("amount cannot be negative")
	}
	to := current
	if req.Status != "" {
		var err error
		if to, err = s.machine.Parse(req.Status); err != nil {
			return "", err
		}
	}
	if to != current && !s.machine.CanTransition(current, to) {
		return "", fmt.Errorf("%w: %s -> %s", ErrBadTransition, current, to)
	}
	return to, nil
}

// UpdateLabBookingStatus moves a lab order along its lifecycle. Same-status
// updates are silent no-ops; actual changes notify the booking's email when
// one is on file.
func (s *Service) UpdateLabBookingStatus(ctx context.Context, id int64, req StatusUpdate) (*LabBooking, error) {
	b, err := s.GetLabBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	to, err := s.resolveStatus(b.Status, req)
	if err != nil {
		return nil, err
	}
	if b.Status == to && req.Amount == nil {
		return b, nil
	}
	if err := s.labs.UpdateStatus(ctx, id, string(to), req.Amount); err != nil {
		return nil, err
	}
	if req.Amount != nil {
		b.Amount = *req.Amount
	}
	if b.Status == to {
		return b, nil
	}
	b.Status = to

	email := ""
	if b.Email != nil {
		email = *b.Email
	}
	s.notify.Dispatch(notification.TplLabStatus, email, map[string]string{
		"patient_name": b.PatientName,
		"test_name":    b.TestName,
		"date":         b.Date,
		"time":         b.Time,
		"status":       string(to),
	})
	return b, nil
}

func (s *Service) CreateRadiologyBooking(ctx context.Context, b *RadiologyBooking) error {
	rs, err := s.GetRadiologyService(ctx, b.ServiceID)
	if err != nil {
		return err
	}
	if !rs.Active {
		return fmt.Errorf("%w: %s", ErrCatalogInactive, rs.Name)
	}
	pid := int64(0)
	if b.PatientID != nil {
		pid = *b.PatientID
	}
	if err := s.normalizeBooking(ctx, bookingFields{
		patientID: &pid, patientName: &b.PatientName,
		contact: &b.Contact, email: &b.Email,
		date: &b.Date, timeOfDay: &b.Time, status: &b.Status,
	}); err != nil {
		return err
	}
	if b.Amount < 0 {
		return fmt.Errorf("amount cannot be negative")
	}
	if b.Amount == 0 {
		b.Amount = rs.Price
	}
	if err := s.rads.Create(ctx, b); err != nil {
		return err
	}
	b.ServiceName = rs.Name
	b.Price = rs.Price
	return nil
}

func (s *Service) GetRadiologyBooking(ctx context.Context, id int64) (*RadiologyBooking, error) {
	b, err := s.rads.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	return b, err
}

func (s *Service) SearchRadiologyBookings(ctx context.Context, params map[string]string, limit, offset int) ([]*RadiologyBooking, int, error) {
	return s.rads.Search(ctx, params, limit, offset)
}

// UpdateRadiologyBookingStatus mirrors the lab flow but the notification also
// carries the service's preparation instructions.
func (s *Service) UpdateRadiologyBookingStatus(ctx context.Context, id int64, req StatusUpdate) (*RadiologyBooking, error) {
	b, err := s.GetRadiologyBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	to, err := s.resolveStatus(b.Status, req)
	if err != nil {
		return nil, err
	}
	if b.Status == to && req.Amount == nil {
		return b, nil
	}
	if err := s.rads.UpdateStatus(ctx, id, string(to), req.Amount); err != nil {
		return nil, err
	}
	if req.Amount != nil {
		b.Amount = *req.Amount
	}
	if b.Status == to {
		return b, nil
	}
	b.Status = to

	prep := ""
	if rs, err := s.GetRadiologyService(ctx, b.ServiceID); err == nil && rs.PreparationInstructions != nil {
		prep = *rs.PreparationInstructions
	}
	email := ""
	if b.Email != nil {
		email = *b.Email
	}
	s.notify.Dispatch(notification.TplRadiologyStatus, email, map[string]string{
		"patient_name": b.PatientName,
		"service_name": b.ServiceName,
		"date":         b.Date,
		"time":         b.Time,
		"status":       string(to),
		"preparation":  prep,
	})
	return b, nil
}

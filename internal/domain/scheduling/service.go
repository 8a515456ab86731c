package scheduling

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/medicareplus/hms/internal/platform/lifecycle"
	"github.com/medicareplus/hms/internal/platform/notification"
)

var (
	ErrNotFound        = errors.New("appointment not found")
	ErrDoctorNotFound  = errors.New("doctor not found")
	ErrPatientNotFound = errors.New("patient not found")
	ErrSlotTaken       = errors.New("slot is already confirmed for another appointment")
	ErrBadTransition   = errors.New("status transition not allowed")
)

// Person is the slice of a patient or doctor record the booking engine needs.
type Person struct {
	ID    int64
	Name  string
	Email string
}

// Directory resolves patient and doctor references.
type Directory interface {
	Doctor(ctx context.Context, id int64) (*Person, error)
	Patient(ctx context.Context, id int64) (*Person, error)
}

type Service struct {
	appts     AppointmentRepository
	directory Directory
	notify    notification.Dispatcher
	machine   *lifecycle.Machine
}

func NewService(appts AppointmentRepository, directory Directory, notify notification.Dispatcher) *Service {
	return &Service{
		appts:     appts,
		directory: directory,
		notify:    notify,
		machine:   lifecycle.Appointments,
	}
}

// AvailableSlots returns the doctor's slot grid for a date. Only Confirmed
// appointments make a slot unavailable; Pending ones do not hold slots.
func (s *Service) AvailableSlots(ctx context.Context, doctorID int64, date string) ([]SlotView, error) {
	if !ValidDate(date) {
		return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", date)
	}
	if _, err := s.directory.Doctor(ctx, doctorID); err != nil {
		return nil, ErrDoctorNotFound
	}

	booked, err := s.appts.ConfirmedTimes(ctx, doctorID, date)
	if err != nil {
		return nil, err
	}
	taken := make(map[string]bool, len(booked))
	for _, t := range booked {
		taken[t] = true
	}

	grid := DaySlots()
	views := make([]SlotView, 0, len(grid))
	for _, t := range grid {
		views = append(views, SlotView{Time: t, Available: !taken[t]})
	}
	return views, nil
}

func (s *Service) validateNew(ctx context.Context, a *Appointment) (*Person, *Person, error) {
	if a.PatientID == 0 {
		return nil, nil, fmt.Errorf("patient_id is required")
	}
	if a.DoctorID == 0 {
		return nil, nil, fmt.Errorf("doctor_id is required")
	}
	if !ValidDate(a.Date) {
		return nil, nil, fmt.Errorf("invalid appointment_date %q, expected YYYY-MM-DD", a.Date)
	}
	if !ValidSlotTime(a.Time) {
		return nil, nil, fmt.Errorf("invalid appointment_time %q, expected a slot between 09:00 and 17:00", a.Time)
	}
	if a.Amount < 0 {
		return nil, nil, fmt.Errorf("amount cannot be negative")
	}

	patient, err := s.directory.Patient(ctx, a.PatientID)
	if err != nil {
		return nil, nil, ErrPatientNotFound
	}
	doctor, err := s.directory.Doctor(ctx, a.DoctorID)
	if err != nil {
		return nil, nil, ErrDoctorNotFound
	}
	return patient, doctor, nil
}

// Create books a new appointment. A zero status defaults to Pending; creating
// straight into Confirmed is subject to the slot conflict check and sends the
// confirmation email.
func (s *Service) Create(ctx context.Context, a *Appointment) error {
	patient, doctor, err := s.validateNew(ctx, a)
	if err != nil {
		return err
	}

	if a.Status == "" {
		a.Status = s.machine.Initial()
	}
	switch a.Status {
	case lifecycle.StatusPending:
		return s.appts.Create(ctx, a)
	case lifecycle.StatusConfirmed:
		ok, err := s.appts.CreateConfirmed(ctx, a)
		if err != nil {
			return err
		}
		if !ok {
			return ErrSlotTaken
		}
		s.notify.Dispatch(notification.TplAppointmentConfirmed, patient.Email, map[string]string{
			"patient_name": patient.Name,
			"doctor_name":  doctor.Name,
			"date":         a.Date,
			"time":         a.Time,
		})
		return nil
	default:
		return fmt.Errorf("new appointments start as Pending or Confirmed, got %s", a.Status)
	}
}

func (s *Service) Get(ctx context.Context, id int64) (*Appointment, error) {
	a, err := s.appts.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return a, err
}

func (s *Service) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Appointment, int, error) {
	return s.appts.Search(ctx, params, limit, offset)
}

// StatusUpdate carries a status-change request. Amount and Reason ride along
// and are persisted with the transition; either may also be sent without a
// status change to correct the billed amount or reason retroactively.
type StatusUpdate struct {
	Status string   `json:"status"`
	Amount *float64 `json:"amount,omitempty"`
	Reason *string  `json:"reason,omitempty"`
}

// UpdateStatus moves an appointment along the lifecycle. The notification is
// owed only when the stored status actually changes: a same-status update is
// silent, a transition into Confirmed sends the confirmation email, and
// terminal transitions send the status-change email.
func (s *Service) UpdateStatus(ctx context.Context, id int64, req StatusUpdate) (*Appointment, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	to := a.Status
	if req.Status != "" {
		if to, err = s.machine.Parse(req.Status); err != nil {
			return nil, err
		}
	}
	if req.Amount != nil {
		if *req.Amount < 0 {
			return nil, fmt.Errorf("amount cannot be negative")
		}
		a.Amount = *req.Amount
	}
	if req.Reason != nil {
		a.Reason = req.Reason
	}

	if to == a.Status {
		if req.Amount != nil || req.Reason != nil {
			if err := s.appts.Update(ctx, a); err != nil {
				return nil, err
			}
		}
		return a, nil
	}
	if !s.machine.CanTransition(a.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrBadTransition, a.Status, to)
	}

	if to == lifecycle.StatusConfirmed {
		ok, err := s.appts.ConfirmIfFree(ctx, id)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrSlotTaken
		}
		a.Status = to
		if req.Amount != nil || req.Reason != nil {
			if err := s.appts.Update(ctx, a); err != nil {
				return nil, err
			}
		}
	} else {
		a.Status = to
		if err := s.appts.Update(ctx, a); err != nil {
			return nil, err
		}
	}

	s.notifyStatus(ctx, a, to)
	return a, nil
}

func (s *Service) notifyStatus(ctx context.Context, a *Appointment, to lifecycle.Status) {
	patient, err := s.directory.Patient(ctx, a.PatientID)
	if err != nil {
		return
	}
	doctorName := ""
	if doctor, err := s.directory.Doctor(ctx, a.DoctorID); err == nil {
		doctorName = doctor.Name
	}

	data := map[string]string{
		"patient_name": patient.Name,
		"doctor_name":  doctorName,
		"date":         a.Date,
		"time":         a.Time,
		"status":       string(to),
	}
	if to == lifecycle.StatusConfirmed {
		s.notify.Dispatch(notification.TplAppointmentConfirmed, patient.Email, data)
		return
	}
	s.notify.Dispatch(notification.TplAppointmentStatus, patient.Email, data)
}

// RescheduleRequest moves an appointment to a new slot, optionally changing
// the doctor.
type RescheduleRequest struct {
	DoctorID *int64 `json:"doctor_id,omitempty"`
	Date     string `json:"appointment_date"`
	Time     string `json:"appointment_time"`
}

// Reschedule moves a Pending or Confirmed appointment to another slot. The
// target slot must have no Confirmed holder. A Confirmed appointment drops
// back to Pending and the patient is told to expect re-confirmation.
func (s *Service) Reschedule(ctx context.Context, id int64, req RescheduleRequest) (*Appointment, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.machine.Terminal(a.Status) {
		return nil, fmt.Errorf("%w: cannot reschedule a %s appointment", ErrBadTransition, a.Status)
	}

	doctorID := a.DoctorID
	if req.DoctorID != nil {
		doctorID = *req.DoctorID
	}
	if !ValidDate(req.Date) {
		return nil, fmt.Errorf("invalid appointment_date %q, expected YYYY-MM-DD", req.Date)
	}
	if !ValidSlotTime(req.Time) {
		return nil, fmt.Errorf("invalid appointment_time %q, expected a slot between 09:00 and 17:00", req.Time)
	}
	doctor, err := s.directory.Doctor(ctx, doctorID)
	if err != nil {
		return nil, ErrDoctorNotFound
	}

	taken, err := s.appts.ConfirmedExistsAt(ctx, doctorID, req.Date, req.Time, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrSlotTaken
	}

	a.DoctorID = doctorID
	a.Date = req.Date
	a.Time = req.Time
	if a.Status == lifecycle.StatusConfirmed {
		// A new slot needs fresh front-desk confirmation.
		a.Status = lifecycle.StatusPending
	}
	if err := s.appts.Update(ctx, a); err != nil {
		return nil, err
	}

	if patient, err := s.directory.Patient(ctx, a.PatientID); err == nil {
		s.notify.Dispatch(notification.TplAppointmentRescheduled, patient.Email, map[string]string{
			"patient_name": patient.Name,
			"doctor_name":  doctor.Name,
			"date":         a.Date,
			"time":         a.Time,
		})
	}
	return a, nil
}

// UpdateDetails edits the free-text fields without touching the schedule or
// status.
func (s *Service) UpdateDetails(ctx context.Context, id int64, reason, notes *string) (*Appointment, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if reason != nil {
		a.Reason = reason
	}
	if notes != nil {
		a.Notes = notes
	}
	if err := s.appts.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Delete removes an appointment outright. Front-desk correction path; no
// notification is sent.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.appts.Delete(ctx, id)
}

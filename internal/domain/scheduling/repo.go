package scheduling

import "context"

// AppointmentRepository provides persistence for appointments.
//
// Confirmation is guarded at the storage layer: CreateConfirmed and
// ConfirmIfFree are single conditional statements, so two racing
// confirmations of the same doctor/date/time slot cannot both succeed.
type AppointmentRepository interface {
	Create(ctx context.Context, a *Appointment) error
	// CreateConfirmed inserts a Confirmed appointment only if the slot has no
	// other Confirmed holder. Returns false when the slot was taken.
	CreateConfirmed(ctx context.Context, a *Appointment) (bool, error)
	GetByID(ctx context.Context, id int64) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	// ConfirmIfFree flips the appointment to Confirmed only if no other
	// Confirmed appointment holds the same slot. Returns false on conflict.
	ConfirmIfFree(ctx context.Context, id int64) (bool, error)
	Delete(ctx context.Context, id int64) error
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Appointment, int, error)
	// ConfirmedTimes lists the slot times already held by Confirmed
	// appointments for a doctor on a date.
	ConfirmedTimes(ctx context.Context, doctorID int64, date string) ([]string, error)
	// ConfirmedExistsAt reports whether a Confirmed appointment other than
	// excludeID holds the given slot.
	ConfirmedExistsAt(ctx context.Context, doctorID int64, date, timeOfDay string, excludeID int64) (bool, error)
}

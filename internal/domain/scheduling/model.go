package scheduling

import (
	"fmt"
	"time"

	"github.com/medicareplus/hms/internal/platform/lifecycle"
)

// Appointment maps to the appointments table. Dates travel as "YYYY-MM-DD"
// and times as "HH:MM" wall-clock strings.
type Appointment struct {
	ID        int64            `db:"id" json:"id"`
	PatientID int64            `db:"patient_id" json:"patient_id"`
	DoctorID  int64            `db:"doctor_id" json:"doctor_id"`
	Date      string           `db:"appointment_date" json:"appointment_date"`
	Time      string           `db:"appointment_time" json:"appointment_time"`
	Status    lifecycle.Status `db:"status" json:"status"`
	Reason    *string          `db:"reason" json:"reason,omitempty"`
	Notes     *string          `db:"notes" json:"notes,omitempty"`
	Amount    float64          `db:"amount" json:"amount"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt time.Time        `db:"updated_at" json:"updated_at"`

	// Joined for list views, not stored on the row.
	PatientName string `db:"-" json:"patient_name,omitempty"`
	DoctorName  string `db:"-" json:"doctor_name,omitempty"`
}

// SlotView is one slot of a doctor's day with its availability.
type SlotView struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
}

// Slots run every 30 minutes from 09:00 through 17:00 inclusive. 17:30 is
// past closing and is not offered.
const (
	dayOpenHour  = 9
	dayCloseHour = 17
)

// DaySlots returns the full slot grid for one working day.
func DaySlots() []string {
	slots := make([]string, 0, 2*(dayCloseHour-dayOpenHour)+1)
	for h := dayOpenHour; h <= dayCloseHour; h++ {
		slots = append(slots, fmt.Sprintf("%02d:00", h))
		if h < dayCloseHour {
			slots = append(slots, fmt.Sprintf("%02d:30", h))
		}
	}
	return slots
}

var slotIndex = func() map[string]bool {
	m := make(map[string]bool)
	for _, s := range DaySlots() {
		m[s] = true
	}
	return m
}()

// ValidSlotTime reports whether t lies on the slot grid.
func ValidSlotTime(t string) bool {
	return slotIndex[t]
}

// ValidDate reports whether d is a well-formed calendar date.
func ValidDate(d string) bool {
	_, err := time.Parse("2006-01-02", d)
	return err == nil
}

package ancillary

import (
	"time"

	"github.com/medicareplus/hms/internal/platform/lifecycle"
)

// LabTest is a catalog entry for an orderable laboratory test. Retired tests
// are deactivated, never deleted, so historical bookings keep a valid
// reference.
type LabTest struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Price       float64   `json:"price"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RadiologyService is a catalog entry for an imaging service. Preparation
// instructions, when present, are included in booking notifications.
type RadiologyService struct {
	ID                      int64     `json:"id"`
	Name                    string    `json:"name"`
	Description             *string   `json:"description,omitempty"`
	Price                   float64   `json:"price"`
	PreparationInstructions *string   `json:"preparation_instructions,omitempty"`
	Active                  bool      `json:"active"`
	CreatedAt               time.Time `json:"created_at"`
	UpdatedAt               time.Time `json:"updated_at"`
}

// DefaultBookingTime is used when a booking arrives without a time of day.
const DefaultBookingTime = "09:00"

// LabBooking is an order for a lab test. Walk-in patients are captured by
// name and contact without a patient record; registered patients link via
// PatientID and their details are denormalized at booking time.
type LabBooking struct {
	ID          int64            `json:"id"`
	TestID      int64            `json:"test_id"`
	PatientID   *int64           `json:"patient_id,omitempty"`
	PatientName string           `json:"patient_name"`
	Contact     *string          `json:"contact,omitempty"`
	Email       *string          `json:"email,omitempty"`
	Date        string           `json:"booking_date"`
	Time        string           `json:"booking_time"`
	Status      lifecycle.Status `json:"status"`
	Notes       *string          `json:"notes,omitempty"`
	Amount      float64          `json:"amount"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`

	TestName string  `json:"test_name,omitempty" db:"-"`
	Price    float64 `json:"price,omitempty" db:"-"`
}

// RadiologyBooking mirrors LabBooking for imaging orders.
type RadiologyBooking struct {
	ID          int64            `json:"id"`
	ServiceID   int64            `json:"service_id"`
	PatientID   *int64           `json:"patient_id,omitempty"`
	PatientName string           `json:"patient_name"`
	Contact     *string          `json:"contact,omitempty"`
	Email       *string          `json:"email,omitempty"`
	Date        string           `json:"booking_date"`
	Time        string           `json:"booking_time"`
	Status      lifecycle.Status `json:"status"`
	Notes       *string          `json:"notes,omitempty"`
	Amount      float64          `json:"amount"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`

	ServiceName string  `json:"service_name,omitempty" db:"-"`
	Price       float64 `json:"price,omitempty" db:"-"`
}

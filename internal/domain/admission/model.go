package admission

import (
	"time"

	"github.com/medicareplus/hms/internal/platform/lifecycle"
)

// Admission records an inpatient stay. The deposit collected at admission
// feeds the ledger; the stay closes when the patient is discharged.
type Admission struct {
	ID            int64            `json:"id"`
	PatientID     int64            `json:"patient_id"`
	DoctorID      *int64           `json:"doctor_id,omitempty"`
	Ward          string           `json:"ward"`
	Room          *string          `json:"room,omitempty"`
	AdmitDate     string           `json:"admit_date"`
	DischargeDate *string          `json:"discharge_date,omitempty"`
	Deposit       float64          `json:"deposit"`
	Status        lifecycle.Status `json:"status"`
	Notes         *string          `json:"notes,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`

	PatientName string `json:"patient_name,omitempty" db:"-"`
	DoctorName  string `json:"doctor_name,omitempty" db:"-"`
}

package identity

import "time"

// Patient maps to the patients table. Dates travel as "YYYY-MM-DD" strings.
type Patient struct {
	ID          int64    `db:"id" json:"id"`
	FirstName   string   `db:"first_name" json:"first_name"`
	LastName    string   `db:"last_name" json:"last_name"`
	DateOfBirth *string  `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Gender      *string  `db:"gender" json:"gender,omitempty"`
	Phone       *string  `db:"phone" json:"phone,omitempty"`
	Email       *string  `db:"email" json:"email,omitempty"`
	Address     *string  `db:"address" json:"address,omitempty"`
	BloodGroup  *string  `db:"blood_group" json:"blood_group,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// FullName returns the display name used in notifications and the ledger.
func (p *Patient) FullName() string {
	return p.FirstName + " " + p.LastName
}

// Doctor maps to the doctors table.
type Doctor struct {
	ID              int64     `db:"id" json:"id"`
	Name            string    `db:"name" json:"name"`
	Specialization  string    `db:"specialization" json:"specialization"`
	Department      *string   `db:"department" json:"department,omitempty"`
	Phone           *string   `db:"phone" json:"phone,omitempty"`
	Email           *string   `db:"email" json:"email,omitempty"`
	ConsultationFee *float64  `db:"consultation_fee" json:"consultation_fee,omitempty"`
	Available       bool      `db:"available" json:"available"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// Department maps to the departments table.
type Department struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

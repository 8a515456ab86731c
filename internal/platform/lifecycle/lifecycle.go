// Package lifecycle defines the status machines shared by the booking
// domains. A machine knows which statuses exist for a domain and which
// transitions between them are allowed; everything else (persistence,
// notifications) stays in the owning service.
package lifecycle

import "fmt"

// Status is a booking status value as stored in the database.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusConfirmed Status = "Confirmed"
	StatusCompleted Status = "Completed"
	StatusCancelled Status = "Cancelled"
	StatusNoShow    Status = "No-Show"

	StatusAdmitted   Status = "Admitted"
	StatusDischarged Status = "Discharged"
)

// Machine is a transition table for one booking domain.
type Machine struct {
	name        string
	initial     Status
	transitions map[Status][]Status
}

// NewMachine builds a machine. Every status reachable from the table, plus
// the initial status, is considered known; statuses with no outgoing
// transitions are terminal.
func NewMachine(name string, initial Status, transitions map[Status][]Status) *Machine {
	return &Machine{name: name, initial: initial, transitions: transitions}
}

// Appointments move Pending -> Confirmed -> Completed/Cancelled/No-Show.
// Pending bookings can be cancelled without ever being confirmed.
var Appointments = NewMachine("appointment", StatusPending, map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled, StatusNoShow},
	StatusCompleted: nil,
	StatusCancelled: nil,
	StatusNoShow:    nil,
})

// Orders covers lab and radiology bookings: a simple two-exit machine.
var Orders = NewMachine("order", StatusPending, map[Status][]Status{
	StatusPending:   {StatusCompleted, StatusCancelled},
	StatusCompleted: nil,
	StatusCancelled: nil,
})

// Admissions move Admitted -> Discharged, nothing else.
var Admissions = NewMachine("admission", StatusAdmitted, map[Status][]Status{
	StatusAdmitted:   {StatusDischarged},
	StatusDischarged: nil,
})

// Initial returns the status a new booking starts in.
func (m *Machine) Initial() Status { return m.initial }

// Known reports whether s is a status of this machine.
func (m *Machine) Known(s Status) bool {
	_, ok := m.transitions[s]
	return ok
}

// Terminal reports whether s has no outgoing transitions.
func (m *Machine) Terminal(s Status) bool {
	next, ok := m.transitions[s]
	return ok && len(next) == 0
}

// CanTransition reports whether from -> to is an allowed transition. A
// transition to the current status is not a transition and returns false.
func (m *Machine) CanTransition(from, to Status) bool {
	for _, s := range m.transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Parse validates a raw status string against the machine.
func (m *Machine) Parse(raw string) (Status, error) {
	s := Status(raw)
	if !m.Known(s) {
		return "", fmt.Errorf("invalid %s status: %q", m.name, raw)
	}
	return s, nil
}

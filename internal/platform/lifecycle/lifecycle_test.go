package lifecycle

import "testing"

func TestAppointments_AllowedTransitions(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusCompleted, false},
		{StatusPending, StatusNoShow, false},
		{StatusConfirmed, StatusCompleted, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusNoShow, true},
		{StatusConfirmed, StatusPending, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusConfirmed, false},
		{StatusNoShow, StatusCompleted, false},
	}
	for _, tc := range cases {
		if got := Appointments.CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestAppointments_SameStatusIsNotATransition(t *testing.T) {
	if Appointments.CanTransition(StatusConfirmed, StatusConfirmed) {
		t.Error("expected same-status transition to be rejected")
	}
}

func TestAppointments_TerminalStatuses(t *testing.T) {
	for _, s := range []Status{StatusCompleted, StatusCancelled, StatusNoShow} {
		if !Appointments.Terminal(s) {
			t.Errorf("expected %s to be terminal", s)
		}
	}
	for _, s := range []Status{StatusPending, StatusConfirmed} {
		if Appointments.Terminal(s) {
			t.Errorf("expected %s not to be terminal", s)
		}
	}
}

func TestOrders_Transitions(t *testing.T) {
	if !Orders.CanTransition(StatusPending, StatusCompleted) {
		t.Error("expected Pending -> Completed to be allowed")
	}
	if !Orders.CanTransition(StatusPending, StatusCancelled) {
		t.Error("expected Pending -> Cancelled to be allowed")
	}
	if Orders.CanTransition(StatusPending, StatusConfirmed) {
		t.Error("orders have no Confirmed status")
	}
	if Orders.CanTransition(StatusCompleted, StatusPending) {
		t.Error("Completed is terminal for orders")
	}
}

func TestAdmissions_Transitions(t *testing.T) {
	if !Admissions.CanTransition(StatusAdmitted, StatusDischarged) {
		t.Error("expected Admitted -> Discharged to be allowed")
	}
	if Admissions.CanTransition(StatusDischarged, StatusAdmitted) {
		t.Error("Discharged is terminal")
	}
	if Admissions.Initial() != StatusAdmitted {
		t.Errorf("expected initial Admitted, got %s", Admissions.Initial())
	}
}

func TestParse(t *testing.T) {
	if _, err := Appointments.Parse("Confirmed"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := Appointments.Parse("confirmed"); err == nil {
		t.Error("expected case-sensitive rejection")
	}
	if _, err := Orders.Parse("No-Show"); err == nil {
		t.Error("No-Show is not an order status")
	}
}

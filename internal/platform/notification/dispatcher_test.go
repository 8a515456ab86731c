package notification

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestDispatcher(t *testing.T, sender EmailSender, queueSize int) (*QueueDispatcher, context.CancelFunc) {
	t.Helper()
	d := NewQueueDispatcher(sender, NewTemplateEngine(), zerolog.Nop(), queueSize, 2)
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)
	t.Cleanup(func() {
		cancel()
		d.Wait()
	})
	return d, cancel
}

func waitForCalls(t *testing.T, mock *MockEmailSender, n int) []EmailCall {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if calls := mock.Calls(); len(calls) >= n {
			return calls
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d calls, got %d", n, len(mock.Calls()))
	return nil
}

func TestDispatch_DeliversRenderedMessage(t *testing.T) {
	mock := &MockEmailSender{}
	d, _ := newTestDispatcher(t, mock, 8)

	d.Dispatch(TplAppointmentConfirmed, "pat@example.com", map[string]string{
		"patient_name": "Asha Rao",
		"doctor_name":  "Dr. Mehta",
		"date":         "2025-03-10",
		"time":         "09:30",
	})

	calls := waitForCalls(t, mock, 1)
	if calls[0].To != "pat@example.com" {
		t.Errorf("unexpected recipient: %q", calls[0].To)
	}
	if calls[0].Subject != "Appointment Confirmed" {
		t.Errorf("unexpected subject: %q", calls[0].Subject)
	}
}

func TestDispatch_BlankRecipientIsNoOp(t *testing.T) {
	mock := &MockEmailSender{}
	d, _ := newTestDispatcher(t, mock, 8)

	d.Dispatch(TplAppointmentConfirmed, "", map[string]string{"patient_name": "X"})

	time.Sleep(50 * time.Millisecond)
	if n := len(mock.Calls()); n != 0 {
		t.Errorf("expected no sends, got %d", n)
	}
}

func TestDispatch_MalformedRecipientIsNoOp(t *testing.T) {
	mock := &MockEmailSender{}
	d, _ := newTestDispatcher(t, mock, 8)

	// Walk-in bookings sometimes carry a phone number in the contact field.
	d.Dispatch(TplLabStatus, "98400-12345", map[string]string{"status": "Completed"})
	d.Dispatch(TplLabStatus, "not-an-address", map[string]string{"status": "Completed"})

	time.Sleep(50 * time.Millisecond)
	if n := len(mock.Calls()); n != 0 {
		t.Errorf("expected no sends, got %d", n)
	}
}

func TestDispatch_SendFailureIsSwallowed(t *testing.T) {
	mock := &MockEmailSender{ShouldFail: true, FailError: "mailbox unavailable"}
	d, _ := newTestDispatcher(t, mock, 8)

	// Must not panic or surface anywhere; the attempt is still made.
	d.Dispatch(TplLabStatus, "pat@example.com", map[string]string{"status": "Completed"})
	waitForCalls(t, mock, 1)
}

func TestDispatch_FullQueueDropsWithoutBlocking(t *testing.T) {
	// No workers started: the queue can only fill up.
	d := NewQueueDispatcher(&MockEmailSender{}, NewTemplateEngine(), zerolog.Nop(), 1, 1)

	done := make(chan struct{})
	go func() {
		defer close(done)
		d.Dispatch(TplLabStatus, "a@example.com", map[string]string{"status": "Completed"})
		d.Dispatch(TplLabStatus, "b@example.com", map[string]string{"status": "Completed"})
		d.Dispatch(TplLabStatus, "c@example.com", map[string]string{"status": "Completed"})
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Dispatch blocked on a full queue")
	}

	if n := len(d.queue); n != 1 {
		t.Errorf("expected queue depth 1, got %d", n)
	}
}

func TestDispatch_UnknownTemplateDoesNotEnqueue(t *testing.T) {
	mock := &MockEmailSender{}
	d, _ := newTestDispatcher(t, mock, 8)

	d.Dispatch("no-such-template", "pat@example.com", nil)

	time.Sleep(50 * time.Millisecond)
	if n := len(mock.Calls()); n != 0 {
		t.Errorf("expected no sends, got %d", n)
	}
}

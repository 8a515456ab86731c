// Package notification delivers outbound email for booking events. Delivery
// is fire-and-forget: enqueueing never fails the calling mutation, a full
// queue drops the message, and each message gets exactly one send attempt.
package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Message is a rendered email waiting for delivery.
type Message struct {
	ID        string
	Recipient string
	Subject   string
	Body      string
	CreatedAt time.Time
}

// EmailSender is the transport used to deliver a message.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// Dispatcher queues a notification for asynchronous delivery. Implementations
// must never block the caller and never return an error: a booking mutation
// does not care whether its email made it out.
type Dispatcher interface {
	Dispatch(templateID, recipient string, data map[string]string)
}

// Template defines a reusable notification template.
type Template struct {
	ID      string
	Subject string
	Body    string
}

// TemplateEngine renders templates with {{key}} replacement.
type TemplateEngine struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

// Template IDs used by the booking domains.
const (
	TplAppointmentConfirmed   = "appointment-confirmed"
	TplAppointmentRescheduled = "appointment-rescheduled"
	TplAppointmentStatus      = "appointment-status"
	TplLabStatus              = "lab-status"
	TplRadiologyStatus        = "radiology-status"
	TplAdmissionDischarged    = "admission-discharged"
)

// NewTemplateEngine creates a TemplateEngine with the built-in templates
// pre-registered.
func NewTemplateEngine() *TemplateEngine {
	e := &TemplateEngine{templates: make(map[string]*Template)}
	e.registerBuiltIn()
	return e
}

func (e *TemplateEngine) registerBuiltIn() {
	builtIn := []Template{
		{
			ID:      TplAppointmentConfirmed,
			Subject: "Appointment Confirmed",
			Body:    "Dear {{patient_name}}, your appointment with {{doctor_name}} on {{date}} at {{time}} has been confirmed. Please arrive 10 minutes early.",
		},
		{
			ID:      TplAppointmentRescheduled,
			Subject: "Appointment Rescheduled",
			Body:    "Dear {{patient_name}}, your appointment has been moved to {{date}} at {{time}} with {{doctor_name}}. It is awaiting confirmation by our front desk.",
		},
		{
			ID:      TplAppointmentStatus,
			Subject: "Appointment {{status}}",
			Body:    "Dear {{patient_name}}, your appointment with {{doctor_name}} on {{date}} at {{time}} has been marked {{status}}.",
		},
		{
			ID:      TplLabStatus,
			Subject: "Lab Booking {{status}}",
			Body:    "Dear {{patient_name}}, your lab booking for {{test_name}} on {{date}} is now {{status}}.",
		},
		{
			ID:      TplRadiologyStatus,
			Subject: "Radiology Booking {{status}}",
			Body:    "Dear {{patient_name}}, your radiology booking for {{service_name}} on {{date}} is now {{status}}. {{preparation}}",
		},
		{
			ID:      TplAdmissionDischarged,
			Subject: "Discharge Summary",
			Body:    "Dear {{patient_name}}, you have been discharged from ward {{ward}} on {{date}}. We wish you a speedy recovery.",
		},
	}
	for i := range builtIn {
		t := builtIn[i]
		e.templates[t.ID] = &t
	}
}

// RegisterTemplate adds or replaces a template in the engine.
func (e *TemplateEngine) RegisterTemplate(t Template) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.templates[t.ID] = &t
}

// Render looks up a template by ID and performs {{key}} replacement using the
// supplied data map. Keys present in the template but absent from data are
// left as-is.
func (e *TemplateEngine) Render(templateID string, data map[string]string) (subject, body string, err error) {
	e.mu.RLock()
	t, ok := e.templates[templateID]
	e.mu.RUnlock()
	if !ok {
		return "", "", fmt.Errorf("template %q not found", templateID)
	}

	subject = t.Subject
	body = t.Body
	for k, v := range data {
		placeholder := "{{" + k + "}}"
		subject = strings.ReplaceAll(subject, placeholder, v)
		body = strings.ReplaceAll(body, placeholder, v)
	}
	return subject, body, nil
}

// ---------------------------------------------------------------------------
// Test doubles
// ---------------------------------------------------------------------------

// EmailCall records a single call to SendEmail.
type EmailCall struct {
	To      string
	Subject string
	Body    string
}

// MockEmailSender is a test double for EmailSender.
type MockEmailSender struct {
	mu         sync.Mutex
	calls      []EmailCall
	ShouldFail bool
	FailError  string
}

// SendEmail records the call and optionally returns an error.
func (m *MockEmailSender) SendEmail(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, EmailCall{To: to, Subject: subject, Body: body})
	if m.ShouldFail {
		return errors.New(m.FailError)
	}
	return nil
}

// Calls returns a copy of recorded email calls.
func (m *MockEmailSender) Calls() []EmailCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]EmailCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// DispatchCall records a single call to Dispatch.
type DispatchCall struct {
	TemplateID string
	Recipient  string
	Data       map[string]string
}

// Recorder is a Dispatcher test double that records every dispatch.
type Recorder struct {
	mu    sync.Mutex
	calls []DispatchCall
}

// Dispatch records the call.
func (r *Recorder) Dispatch(templateID, recipient string, data map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, DispatchCall{TemplateID: templateID, Recipient: recipient, Data: data})
}

// Calls returns a copy of recorded dispatches.
func (r *Recorder) Calls() []DispatchCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]DispatchCall, len(r.calls))
	copy(out, r.calls)
	return out
}

package notification

import (
	"strings"
	"testing"
)

func TestRender_ReplacesPlaceholders(t *testing.T) {
	e := NewTemplateEngine()
	subject, body, err := e.Render(TplAppointmentConfirmed, map[string]string{
		"patient_name": "Asha Rao",
		"doctor_name":  "Dr. Mehta",
		"date":         "2025-03-10",
		"time":         "09:30",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if subject != "Appointment Confirmed" {
		t.Errorf("unexpected subject: %q", subject)
	}
	if !strings.Contains(body, "Asha Rao") || !strings.Contains(body, "Dr. Mehta") {
		t.Errorf("body missing substitutions: %q", body)
	}
	if strings.Contains(body, "{{") {
		t.Errorf("body has unreplaced placeholders: %q", body)
	}
}

func TestRender_UnknownTemplate(t *testing.T) {
	e := NewTemplateEngine()
	if _, _, err := e.Render("no-such-template", nil); err == nil {
		t.Fatal("expected error for unknown template")
	}
}

func TestRender_MissingKeysLeftAsIs(t *testing.T) {
	e := NewTemplateEngine()
	_, body, err := e.Render(TplLabStatus, map[string]string{"patient_name": "X"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(body, "{{test_name}}") {
		t.Errorf("expected missing key to stay in body, got %q", body)
	}
}

func TestRender_StatusInSubject(t *testing.T) {
	e := NewTemplateEngine()
	subject, _, err := e.Render(TplAppointmentStatus, map[string]string{"status": "Cancelled"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if subject != "Appointment Cancelled" {
		t.Errorf("unexpected subject: %q", subject)
	}
}

func TestRegisterTemplate_Overrides(t *testing.T) {
	e := NewTemplateEngine()
	e.RegisterTemplate(Template{ID: TplLabStatus, Subject: "S", Body: "B"})
	subject, body, err := e.Render(TplLabStatus, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if subject != "S" || body != "B" {
		t.Errorf("override not applied: %q %q", subject, body)
	}
}

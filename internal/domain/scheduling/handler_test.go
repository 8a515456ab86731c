package scheduling

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/medicareplus/hms/internal/platform/auth"
)

func listAs(t *testing.T, repo *mockApptRepo, h *Handler, actor *auth.Actor) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/appointments", nil)
	if actor != nil {
		req = req.WithContext(auth.WithActor(req.Context(), actor))
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.List(c); err != nil {
		t.Fatalf("List: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestListScopesDoctorToOwnSchedule(t *testing.T) {
	svc, repo, _ := newTestService()
	h := NewHandler(svc)
	doctorID := int64(1)

	listAs(t, repo, h, &auth.Actor{UserID: 5, Username: "asha", Role: "doctor", DoctorID: &doctorID})
	if got := repo.searchParams["doctor_id"]; got != "1" {
		t.Errorf("doctor_id filter = %q, want forced to the actor's own id", got)
	}
}

func TestListReceptionistIsUnscoped(t *testing.T) {
	svc, repo, _ := newTestService()
	h := NewHandler(svc)

	listAs(t, repo, h, &auth.Actor{UserID: 2, Username: "desk", Role: "receptionist"})
	if _, ok := repo.searchParams["doctor_id"]; ok {
		t.Error("receptionist listing must not be doctor-scoped")
	}
}

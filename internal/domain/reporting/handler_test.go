package reporting

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/medicareplus/hms/internal/platform/auth"
)

func dashboardAs(t *testing.T, h *Handler, actor *auth.Actor) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/reports/dashboard", nil)
	if actor != nil {
		req = req.WithContext(auth.WithActor(req.Context(), actor))
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Dashboard(c); err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestDashboardScopesDoctorActor(t *testing.T) {
	svc, repo := newTestService()
	h := NewHandler(svc)
	doctorID := int64(7)

	dashboardAs(t, h, &auth.Actor{UserID: 9, Username: "asha", Role: "doctor", DoctorID: &doctorID})
	if repo.gotDoctorID != 7 {
		t.Errorf("doctor scope = %d, want 7", repo.gotDoctorID)
	}
}

func TestDashboardAdminSeesWholeHospital(t *testing.T) {
	svc, repo := newTestService()
	h := NewHandler(svc)

	dashboardAs(t, h, &auth.Actor{UserID: 1, Username: "root", Role: "admin"})
	if repo.gotDoctorID != 0 {
		t.Errorf("admin dashboard must be unscoped, got doctor %d", repo.gotDoctorID)
	}
}

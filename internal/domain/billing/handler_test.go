package billing

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestHandlerReconcile(t *testing.T) {
	h := NewHandler(NewService(newTestLedger()))
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/?from=2025-06-01&to=2025-06-30", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Reconcile(c); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var report Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if report.TotalBilled != report.Collected+report.Pending+report.Cancelled {
		t.Errorf("total_billed %v does not partition into buckets", report.TotalBilled)
	}
	if len(report.Records) == 0 {
		t.Error("expected ledger records in the response")
	}
}

func TestHandlerReconcileBadRange(t *testing.T) {
	h := NewHandler(NewService(newTestLedger()))
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/?from=junk", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Reconcile(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

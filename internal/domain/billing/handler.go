package billing

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medicareplus/hms/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	backoffice := g.Group("", auth.RequireRole("admin", "receptionist"))
	backoffice.GET("/reports/financial", h.Reconcile)
}

func (h *Handler) Reconcile(c echo.Context) error {
	report, err := h.svc.Reconcile(c.Request().Context(), c.QueryParam("from"), c.QueryParam("to"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, report)
}

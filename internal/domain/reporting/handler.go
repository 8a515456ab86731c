package reporting

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
	staff := g.Group("", auth.RequireRole("admin", "receptionist", "doctor"))
	staff.GET("/reports/dashboard", h.Dashboard)
	staff.GET("/reports/appointments-by-day", h.AppointmentsByDay)
}

// scope returns the doctor filter implied by the actor: doctors see their
// own numbers, everyone else sees the whole hospital.
func scope(c echo.Context) int64 {
	if actor := auth.ActorFromContext(c.Request().Context()); actor != nil && actor.Role == "doctor" && actor.DoctorID != nil {
		return *actor.DoctorID
	}
	return 0
}

func (h *Handler) Dashboard(c echo.Context) error {
	stats, err := h.svc.Dashboard(c.Request().Context(), scope(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *Handler) AppointmentsByDay(c echo.Context) error {
	series, err := h.svc.AppointmentsByDay(c.Request().Context(), scope(c),
		c.QueryParam("from"), c.QueryParam("to"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]any{"series": series})
}

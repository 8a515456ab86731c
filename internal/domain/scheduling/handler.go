package scheduling

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/medicareplus/hms/internal/platform/auth"
	"github.com/medicareplus/hms/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterPublicRoutes mounts the endpoints that serve the patient-facing
// booking page: the slot grid and the self-service booking form.
func (h *Handler) RegisterPublicRoutes(g *echo.Group) {
	g.GET("/appointments/slots", h.GetSlots)
	g.POST("/appointments/book", h.PublicBook)
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	staff := g.Group("", auth.RequireRole("admin", "receptionist", "doctor"))
	staff.GET("/appointments", h.List)
	staff.GET("/appointments/:id", h.Get)
	staff.GET("/appointments/slots", h.GetSlots)

	frontdesk := g.Group("", auth.RequireRole("admin", "receptionist"))
	frontdesk.POST("/appointments", h.Create)
	frontdesk.PUT("/appointments/:id", h.UpdateDetails)
	frontdesk.PUT("/appointments/:id/schedule", h.Reschedule)
	frontdesk.DELETE("/appointments/:id", h.Delete)

	// Doctors mark their own visits Completed / No-Show, so status updates
	// are open to all three roles.
	staff.PUT("/appointments/:id/status", h.UpdateStatus)
}

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func (h *Handler) GetSlots(c echo.Context) error {
	doctorID, err := strconv.ParseInt(c.QueryParam("doctor_id"), 10, 64)
	if err != nil || doctorID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "doctor_id is required")
	}
	date := c.QueryParam("date")

	slots, err := h.svc.AvailableSlots(c.Request().Context(), doctorID, date)
	if err != nil {
		if errors.Is(err, ErrDoctorNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]any{
		"doctor_id": doctorID,
		"date":      date,
		"slots":     slots,
	})
}

// PublicBook accepts a booking from the patient portal. Whatever the payload
// says, the appointment starts Pending; front desk confirms it later.
func (h *Handler) PublicBook(c echo.Context) error {
	var a Appointment
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	a.ID = 0
	a.Status = ""

	if err := h.svc.Create(c.Request().Context(), &a); err != nil {
		return mutationError(err)
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) Create(c echo.Context) error {
	var a Appointment
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	a.ID = 0

	if err := h.svc.Create(c.Request().Context(), &a); err != nil {
		return mutationError(err)
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	a, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return mutationError(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) List(c echo.Context) error {
	params := map[string]string{}
	for _, key := range []string{"doctor_id", "patient_id", "date", "status"} {
		if v := c.QueryParam(key); v != "" {
			params[key] = v
		}
	}

	// Doctors see their own schedule only.
	if actor := auth.ActorFromContext(c.Request().Context()); actor != nil && actor.Role == "doctor" && actor.DoctorID != nil {
		params["doctor_id"] = strconv.FormatInt(*actor.DoctorID, 10)
	}

	pg := pagination.FromContext(c)
	appts, total, err := h.svc.Search(c.Request().Context(), params, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(appts, total, pg.Limit, pg.Offset))
}

type detailsRequest struct {
	Reason *string `json:"reason"`
	Notes  *string `json:"notes"`
}

func (h *Handler) UpdateDetails(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req detailsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	a, err := h.svc.UpdateDetails(c.Request().Context(), id, req.Reason, req.Notes)
	if err != nil {
		return mutationError(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req StatusUpdate
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	a, err := h.svc.UpdateStatus(c.Request().Context(), id, req)
	if err != nil {
		return mutationError(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) Reschedule(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req RescheduleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	a, err := h.svc.Reschedule(c.Request().Context(), id, req)
	if err != nil {
		return mutationError(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return mutationError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func mutationError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrDoctorNotFound), errors.Is(err, ErrPatientNotFound):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrSlotTaken):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrBadTransition):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	default:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
}

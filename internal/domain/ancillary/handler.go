package ancillary

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

func (h *Handler) RegisterRoutes(g *echo.Group) {
	staff := g.Group("", auth.RequireRole("admin", "receptionist", "doctor"))
	staff.GET("/lab-tests", h.ListLabTests)
	staff.GET("/lab-tests/:id", h.GetLabTest)
	staff.GET("/radiology-services", h.ListRadiologyServices)
	staff.GET("/radiology-services/:id", h.GetRadiologyService)
	staff.GET("/lab-bookings", h.ListLabBookings)
	staff.GET("/lab-bookings/:id", h.GetLabBooking)
	staff.GET("/radiology-bookings", h.ListRadiologyBookings)
	staff.GET("/radiology-bookings/:id", h.GetRadiologyBooking)

	frontdesk := g.Group("", auth.RequireRole("admin", "receptionist"))
	frontdesk.POST("/lab-bookings", h.CreateLabBooking)
	frontdesk.PUT("/lab-bookings/:id/status", h.UpdateLabBookingStatus)
	frontdesk.POST("/radiology-bookings", h.CreateRadiologyBooking)
	frontdesk.PUT("/radiology-bookings/:id/status", h.UpdateRadiologyBookingStatus)

	adminOnly := g.Group("", auth.RequireRole("admin"))
	adminOnly.POST("/lab-tests", h.CreateLabTest)
	adminOnly.PUT("/lab-tests/:id", h.UpdateLabTest)
	adminOnly.DELETE("/lab-tests/:id", h.DeactivateLabTest)
	adminOnly.POST("/radiology-services", h.CreateRadiologyService)
	adminOnly.PUT("/radiology-services/:id", h.UpdateRadiologyService)
	adminOnly.DELETE("/radiology-services/:id", h.DeactivateRadiologyService)
}

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrTestNotFound),
		errors.Is(err, ErrServiceNotFound),
		errors.Is(err, ErrBookingNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrPatientNotFound):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrCatalogInactive):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrBadTransition):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	default:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
}

// =========== Lab Test Catalog ===========

func (h *Handler) CreateLabTest(c echo.Context) error {
	var t LabTest
	if err := c.Bind(&t); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	t.ID = 0
	if err := h.svc.CreateLabTest(c.Request().Context(), &t); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, t)
}

func (h *Handler) GetLabTest(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	t, err := h.svc.GetLabTest(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) UpdateLabTest(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var t LabTest
	if err := c.Bind(&t); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	t.ID = id
	if err := h.svc.UpdateLabTest(c.Request().Context(), &t); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) DeactivateLabTest(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeactivateLabTest(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListLabTests(c echo.Context) error {
	activeOnly := c.QueryParam("include_inactive") != "true"
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListLabTests(c.Request().Context(), activeOnly, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

// =========== Radiology Service Catalog ===========

func (h *Handler) CreateRadiologyService(c echo.Context) error {
	var s RadiologyService
	if err := c.Bind(&s); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	s.ID = 0
	if err := h.svc.CreateRadiologyService(c.Request().Context(), &s); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, s)
}

func (h *Handler) GetRadiologyService(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	s, err := h.svc.GetRadiologyService(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, s)
}

func (h *Handler) UpdateRadiologyService(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var s RadiologyService
	if err := c.Bind(&s); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	s.ID = id
	if err := h.svc.UpdateRadiologyService(c.Request().Context(), &s); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, s)
}

func (h *Handler) DeactivateRadiologyService(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeactivateRadiologyService(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListRadiologyServices(c echo.Context) error {
	activeOnly := c.QueryParam("include_inactive") != "true"
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListRadiologyServices(c.Request().Context(), activeOnly, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

// =========== Lab Bookings ===========

func (h *Handler) CreateLabBooking(c echo.Context) error {
	var b LabBooking
	if err := c.Bind(&b); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	b.ID = 0
	if err := h.svc.CreateLabBooking(c.Request().Context(), &b); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, b)
}

func (h *Handler) GetLabBooking(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	b, err := h.svc.GetLabBooking(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, b)
}

func (h *Handler) ListLabBookings(c echo.Context) error {
	params := queryFilters(c, "test_id", "patient_id", "date", "status")
	pg := pagination.FromContext(c)
	items, total, err := h.svc.SearchLabBookings(c.Request().Context(), params, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateLabBookingStatus(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req StatusUpdate
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	b, err := h.svc.UpdateLabBookingStatus(c.Request().Context(), id, req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, b)
}

// =========== Radiology Bookings ===========

func (h *Handler) CreateRadiologyBooking(c echo.Context) error {
	var b RadiologyBooking
	if err := c.Bind(&b); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	b.ID = 0
	if err := h.svc.CreateRadiologyBooking(c.Request().Context(), &b); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, b)
}

func (h *Handler) GetRadiologyBooking(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	b, err := h.svc.GetRadiologyBooking(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, b)
}

func (h *Handler) ListRadiologyBookings(c echo.Context) error {
	params := queryFilters(c, "service_id", "patient_id", "date", "status")
	pg := pagination.FromContext(c)
	items, total, err := h.svc.SearchRadiologyBookings(c.Request().Context(), params, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateRadiologyBookingStatus(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req StatusUpdate
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	b, err := h.svc.UpdateRadiologyBookingStatus(c.Request().Context(), id, req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, b)
}

func queryFilters(c echo.Context, keys ...string) map[string]string {
	params := map[string]string{}
	for _, key := range keys {
		if v := c.QueryParam(key); v != "" {
			params[key] = v
		}
	}
	return params
}

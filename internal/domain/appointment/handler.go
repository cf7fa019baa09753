package appointment

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/clinic/clinic/internal/platform/apperr"
	"github.com/clinic/clinic/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	anyRole := api.Group("", auth.RequireRole(auth.RolePatient, auth.RoleDoctor, auth.RoleAdmin))
	anyRole.POST("/appointments", h.CreateAppointment)
	anyRole.GET("/appointments/:id", h.GetAppointment)
	anyRole.PUT("/appointments/:id", h.RescheduleAppointment)
	anyRole.DELETE("/appointments/:id", h.CancelAppointment)

	api.GET("/appointments", h.ListOwnAppointments, auth.RequireRole(auth.RolePatient, auth.RoleDoctor))
	api.GET("/users/:id/appointments", h.ListUserAppointments, auth.RequireRole(auth.RoleAdmin))
}

func (h *Handler) CreateAppointment(c echo.Context) error {
	var a Appointment
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a.ID = 0

	p, _ := auth.PrincipalFromContext(c.Request().Context())
	if p.Role == auth.RolePatient {
		if a.PatientID == 0 {
			a.PatientID = p.ID
		}
		if a.PatientID != p.ID {
			return echo.NewHTTPError(http.StatusForbidden, "patients can only book appointments for themselves")
		}
	}

	if _, err := h.svc.CreateAppointment(c.Request().Context(), &a); err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) GetAppointment(c echo.Context) error {
	a, err := h.authorized(c)
	if err != nil {
		return err
	}
	if a == nil {
		return echo.NewHTTPError(http.StatusNotFound, "Appointment not found")
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) RescheduleAppointment(c echo.Context) error {
	a, err := h.authorized(c)
	if err != nil {
		return err
	}
	if a == nil {
		return echo.NewHTTPError(http.StatusNotFound, "Appointment not found")
	}
	var req RescheduleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	updated, err := h.svc.RescheduleAppointment(c.Request().Context(), a.ID, req.DateTime)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *Handler) CancelAppointment(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return err
	}
	if _, err := h.authorized(c); err != nil {
		return err
	}
	if err := h.svc.CancelAppointment(c.Request().Context(), id); err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Appointment cancelled successfully"})
}

func (h *Handler) ListOwnAppointments(c echo.Context) error {
	p, _ := auth.PrincipalFromContext(c.Request().Context())
	return h.listFor(c, p.ID)
}

func (h *Handler) ListUserAppointments(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return err
	}
	return h.listFor(c, id)
}

func (h *Handler) listFor(c echo.Context, userID int64) error {
	items, err := h.svc.GetAppointmentsForUser(c.Request().Context(), userID)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, items)
}

// authorized loads the :id appointment and checks that the caller is one of
// its participants or an admin. A missing appointment yields (nil, nil).
func (h *Handler) authorized(c echo.Context) (*Appointment, error) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return nil, err
	}
	a, err := h.svc.GetAppointment(c.Request().Context(), id)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.ToHTTP(err)
	}
	p, _ := auth.PrincipalFromContext(c.Request().Context())
	if p.Role != auth.RoleAdmin && p.ID != a.PatientID && p.ID != a.DoctorID {
		return nil, echo.NewHTTPError(http.StatusForbidden, "not a participant of this appointment")
	}
	return a, nil
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

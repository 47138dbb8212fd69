package readings

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/healthbot/healthbot/internal/domain/patient"
	"github.com/healthbot/healthbot/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/readings/query", h.Query)

	staff := api.Group("", auth.RequireRole("doctor", "nurse"))
	staff.POST("/readings/scan", h.Scan)
}

// Query answers a single-patient readings query. Any authenticated caller
// may use it; patient-role callers are pinned to their own records inside
// the service.
func (h *Handler) Query(c echo.Context) error {
	var req QueryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	result, err := h.svc.Query(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// Scan answers a cross-patient threshold scan. Staff only.
func (h *Handler) Scan(c echo.Context) error {
	var req ScanRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	report, err := h.svc.Scan(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, report)
}

// respondError maps domain errors onto the {"error": msg} payload. Empty but
// valid queries never reach here; only bad input, unresolvable patients, and
// storage failures do.
func respondError(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	msg := err.Error()
	switch {
	case errors.Is(err, patient.ErrNotFound):
		status, msg = http.StatusNotFound, "Patient not found"
	case errors.Is(err, ErrInvalidReadingType), errors.Is(err, ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, ErrUnsupportedAnalysis):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, ErrUpstream):
		status = http.StatusBadGateway
	}
	return c.JSON(status, map[string]string{"error": msg})
}

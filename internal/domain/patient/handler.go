package patient

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/healthbot/healthbot/internal/platform/auth"
	"github.com/healthbot/healthbot/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/patients/:id", h.GetPatient)

	staff := api.Group("", auth.RequireRole("doctor", "nurse"))
	staff.GET("/patients", h.ListPatients)
}

// GetPatient returns the compact patient view. Patient-role callers may only
// fetch their own record.
func (h *Handler) GetPatient(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if ident, ok := auth.IdentityFromContext(c.Request().Context()); ok && ident.IsPatient() && ident.UserID != id {
		return echo.NewHTTPError(http.StatusForbidden, "patients may only access their own record")
	}

	info, err := h.svc.GetInfo(c.Request().Context(), id)
	if errors.Is(err, ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Patient not found"})
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, info)
}

// ListPatients lists patients, optionally resolving a free-text name first.
func (h *Handler) ListPatients(c echo.Context) error {
	ctx := c.Request().Context()

	if name := c.QueryParam("name"); name != "" {
		id, err := h.svc.Resolve(ctx, 0, name)
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Patient not found"})
		}
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		info, err := h.svc.GetInfo(ctx, id)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, info)
	}

	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(ctx, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

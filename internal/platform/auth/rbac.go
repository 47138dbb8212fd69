package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// RequireRole returns middleware that checks if the caller holds at least one
// of the specified roles. Admins always pass.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := IdentityFromContext(c.Request().Context())
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
			}
			if id.Role == "admin" {
				return next(c)
			}
			for _, required := range roles {
				if id.Role == required {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden,
				fmt.Sprintf("required role: %s", strings.Join(roles, " or ")))
		}
	}
}

// ScopePatient applies the access policy for single-patient queries: callers
// with the patient role are pinned to their own record regardless of what
// they asked for, while staff must name a patient explicitly.
//
// It returns the effective patient id and name to use. The error is non-nil
// when a staff caller supplied neither.
func ScopePatient(ctx context.Context, patientID int, patientName string) (int, string, error) {
	id, ok := IdentityFromContext(ctx)
	if ok && id.IsPatient() {
		return id.UserID, "", nil
	}
	if patientID == 0 && patientName == "" {
		return 0, "", fmt.Errorf("a patient id or patient name is required")
	}
	return patientID, patientName, nil
}

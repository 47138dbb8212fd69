package readings

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/healthbot/healthbot/internal/platform/auth"
)

func newTestServer(svc *Service, ident auth.Identity) *echo.Echo {
	e := echo.New()
	api := e.Group("/api/v1", func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := auth.WithIdentity(c.Request().Context(), ident)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	})
	NewHandler(svc).RegisterRoutes(api)
	return e
}

func doJSON(e *echo.Echo, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHandler_QueryOK(t *testing.T) {
	svc, store := newFixture()
	store.rows[132] = []*Reading{{
		Type: TypeGlucose, PatientID: 132,
		Timestamp: time.Date(2025, 7, 10, 9, 0, 0, 0, time.UTC), Value: fval(232),
	}}
	e := newTestServer(svc, auth.Identity{UserID: 7, Role: "doctor", RoleID: auth.RoleIDDoctor})

	rec := doJSON(e, "/api/v1/readings/query", `{"patient_id":132,"reading_type":"glucose"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"patient_id":132`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestHandler_ErrorStatuses(t *testing.T) {
	svc, _ := newFixture()
	e := newTestServer(svc, auth.Identity{UserID: 7, Role: "doctor", RoleID: auth.RoleIDDoctor})

	cases := []struct {
		path, body string
		status     int
		errText    string
	}{
		{"/api/v1/readings/query", `{"patient_id":1,"reading_type":"cholesterol"}`, http.StatusBadRequest, "invalid reading type"},
		{"/api/v1/readings/query", `{"patient_id":1,"reading_type":"glucose","date_filter":"bad"}`, http.StatusBadRequest, "date filter"},
		{"/api/v1/readings/query", `{"patient_name":"NonexistentName","reading_type":"glucose"}`, http.StatusNotFound, "Patient not found"},
		{"/api/v1/readings/query", `{"reading_type":"glucose"}`, http.StatusNotFound, "Patient not found"},
		{"/api/v1/readings/scan", `{"reading_type":"sleep","find_type":"high"}`, http.StatusUnprocessableEntity, "doesn't support"},
	}
	for _, tc := range cases {
		rec := doJSON(e, tc.path, tc.body)
		if rec.Code != tc.status {
			t.Errorf("%s %s: status = %d, want %d", tc.path, tc.body, rec.Code, tc.status)
		}
		if !strings.Contains(rec.Body.String(), `"error"`) || !strings.Contains(rec.Body.String(), tc.errText) {
			t.Errorf("%s: body = %s, want error containing %q", tc.path, rec.Body.String(), tc.errText)
		}
	}
}

func TestHandler_ScanStaffOnly(t *testing.T) {
	svc, _ := newFixture()
	e := newTestServer(svc, auth.Identity{UserID: 111, Role: "patient", RoleID: auth.RoleIDPatient})

	rec := doJSON(e, "/api/v1/readings/scan", `{"reading_type":"glucose","find_type":"high"}`)
	if rec.Code != http.StatusForbidden {
		t.Errorf("patient scan status = %d, want 403", rec.Code)
	}
}

func TestHandler_UpstreamFailure(t *testing.T) {
	svc, store := newFixture()
	store.failure = fmt.Errorf("%w: dial tcp: connection refused", ErrUpstream)
	e := newTestServer(svc, auth.Identity{UserID: 7, Role: "doctor", RoleID: auth.RoleIDDoctor})

	rec := doJSON(e, "/api/v1/readings/query", `{"patient_id":132,"reading_type":"glucose"}`)
	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
}

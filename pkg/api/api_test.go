package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/teamaptiv/volunteer-hub/pkg/api"
	"github.com/teamaptiv/volunteer-hub/pkg/core/services"
	"github.com/teamaptiv/volunteer-hub/pkg/db"
	"github.com/teamaptiv/volunteer-hub/pkg/metrics"
)

type testServer struct {
	api     *api.API
	adminID uuid.UUID
}

func setupAPI(t *testing.T) *testServer {
	t.Helper()

	store := db.NewMemoryStore()
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)
	svc := services.New(store, zap.NewNop(), m)

	admin, err := svc.RegisterAdmin(context.Background(), services.RegisterInput{Username: "admin"})
	require.NoError(t, err)

	a := api.NewAPI(svc, api.HeaderAuthenticator{Users: store}, zap.NewNop(), m, reg)
	a.RegisterRoutes()
	return &testServer{api: a, adminID: admin.User.ID}
}

func (s *testServer) do(t *testing.T, method, path string, userID uuid.UUID, body any) (*httptest.ResponseRecorder, api.Response) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != uuid.Nil {
		req.Header.Set(api.UserIDHeader, userID.String())
	}
	rec := httptest.NewRecorder()

	s.api.Router().ServeHTTP(rec, req)

	var res api.Response
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.NewDecoder(bytes.NewReader(rec.Body.Bytes())).Decode(&res))
	}
	return rec, res
}

func (s *testServer) register(t *testing.T, username string) uuid.UUID {
	t.Helper()
	rec, res := s.do(t, http.MethodPost, "/api/users", uuid.Nil, map[string]any{"username": username})
	require.Equal(t, http.StatusCreated, rec.Code)
	user := res.Response.(map[string]any)
	return uuid.MustParse(user["id"].(string))
}

func (s *testServer) createEvent(t *testing.T, start, end string, volunteers int) map[string]any {
	t.Helper()
	rec, res := s.do(t, http.MethodPost, "/api/events", s.adminID, map[string]any{
		"name":            "Food bank",
		"date":            "2024-01-05",
		"start":           start,
		"end":             end,
		"volunteers":      volunteers,
		"donation_target": "250",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return res.Response.(map[string]any)
}

func slotsOf(event map[string]any) []string {
	var out []string
	for _, s := range event["slots"].([]any) {
		out = append(out, s.(string))
	}
	return out
}

func TestHealth(t *testing.T) {
	s := setupAPI(t)
	rec, _ := s.do(t, http.MethodGet, "/api/health", uuid.Nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestRegisterUser(t *testing.T) {
	s := setupAPI(t)

	rec, res := s.do(t, http.MethodPost, "/api/users", uuid.Nil, map[string]any{"username": "vera", "first_name": "Vera"})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, res.Notification)
	assert.Equal(t, services.KeySuccessCreated, res.Notification.Key)
	user := res.Response.(map[string]any)
	assert.Equal(t, "Volunteer", user["status"])
	assert.Equal(t, "0:00", user["volunteered_time"])

	rec, res = s.do(t, http.MethodPost, "/api/users", uuid.Nil, map[string]any{"username": "vera"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, services.KeyAlreadyCreated, res.Notification.Key)

	rec, _ = s.do(t, http.MethodPost, "/api/users", uuid.Nil, "not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterUser_IgnoresRequestedStatus(t *testing.T) {
	s := setupAPI(t)

	rec, res := s.do(t, http.MethodPost, "/api/users", uuid.Nil, map[string]any{"username": "mallory", "status": "Admin"})
	require.Equal(t, http.StatusCreated, rec.Code)
	user := res.Response.(map[string]any)
	assert.Equal(t, "Volunteer", user["status"])

	// the new account holds no admin rights
	mallory := uuid.MustParse(user["id"].(string))
	rec, res = s.do(t, http.MethodPost, "/api/events", mallory, map[string]any{
		"name": "Drive", "date": "2024-01-05", "start": "9:00", "end": "12:00", "volunteers": 3,
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, services.KeyPermissionDenied, res.Notification.Key)
}

func TestCreateEvent(t *testing.T) {
	s := setupAPI(t)
	vera := s.register(t, "vera")

	t.Run("unauthenticated", func(t *testing.T) {
		rec, res := s.do(t, http.MethodPost, "/api/events", uuid.Nil, map[string]any{"name": "x"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, services.KeyPermissionDenied, res.Notification.Key)
	})

	t.Run("unknown user", func(t *testing.T) {
		rec, _ := s.do(t, http.MethodPost, "/api/events", uuid.New(), map[string]any{"name": "x"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("not admin", func(t *testing.T) {
		rec, res := s.do(t, http.MethodPost, "/api/events", vera, map[string]any{
			"name": "Drive", "date": "2024-01-05", "start": "9:00", "end": "12:00", "volunteers": 3,
		})
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "You cannot access that page", res.Notification.Message)
	})

	t.Run("bad time", func(t *testing.T) {
		rec, res := s.do(t, http.MethodPost, "/api/events", s.adminID, map[string]any{
			"name": "Drive", "date": "2024-01-05", "start": "9", "end": "12:00", "volunteers": 3,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, services.KeyFailureNotCreated, res.Notification.Key)
	})

	t.Run("created", func(t *testing.T) {
		event := s.createEvent(t, "9:00", "12:00", 3)
		assert.Equal(t, "Jan 5, 2024", event["date"])
		assert.Equal(t, "9:00 A.M. - 12:00 P.M.", event["window"])
		assert.Equal(t, "250", event["donations_needed"])
		slots := slotsOf(event)
		require.Len(t, slots, 3)
		assert.True(t, strings.HasSuffix(slots[0], "9:00 A.M. - 10:00 A.M."))

		rec, res := s.do(t, http.MethodGet, "/api/events/"+event["id"].(string), vera, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Nil(t, res.Notification)
		assert.Equal(t, event["id"], res.Response.(map[string]any)["id"])
	})
}

func TestGetEvent_Errors(t *testing.T) {
	s := setupAPI(t)

	rec, _ := s.do(t, http.MethodGet, "/api/events/not-a-uuid", s.adminID, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, res := s.do(t, http.MethodGet, "/api/events/"+uuid.NewString(), s.adminID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, services.KeyNotFound, res.Notification.Key)
}

func TestReserveAndCancel(t *testing.T) {
	s := setupAPI(t)
	vera := s.register(t, "vera")
	morning := s.createEvent(t, "9:00", "12:00", 3)
	overlapping := s.createEvent(t, "9:30", "10:30", 1)
	morningPath := "/api/events/" + morning["id"].(string)

	rec, res := s.do(t, http.MethodPost, morningPath+"/reservations", vera, map[string]any{
		"date":  "2024-01-05",
		"slots": slotsOf(morning)[:1],
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, services.KeySuccessVolunteeredOrDonated, res.Notification.Key)
	reservation := res.Response.(map[string]any)
	assert.Equal(t, "1:00", reservation["volunteered_time"])
	held := reservation["slots"].([]any)
	require.Len(t, held, 1)
	assert.True(t, strings.HasPrefix(held[0].(string), "Jan 5, 2024 "))

	rec, res = s.do(t, http.MethodPost, "/api/events/"+overlapping["id"].(string)+"/reservations", vera, map[string]any{
		"slots": slotsOf(overlapping),
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Cannot sign up. You have a time conflict with another event.", res.Notification.Message)

	rec, res = s.do(t, http.MethodPost, morningPath+"/reservations", vera, map[string]any{"slots": []string{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, services.KeyAlreadyVolunteered, res.Notification.Key)

	rec, res = s.do(t, http.MethodPost, morningPath+"/reservations/cancel", vera, map[string]any{
		"slots":     []string{held[0].(string)},
		"remaining": 1,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, services.KeySuccessCancelled, res.Notification.Key)
	assert.Equal(t, "0:00", res.Response.(map[string]any)["volunteered_time"])

	rec, res = s.do(t, http.MethodGet, "/api/users/"+vera.String()+"/profile", vera, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	profile := res.Response.(map[string]any)
	assert.Empty(t, profile["events"])

	rec, _ = s.do(t, http.MethodGet, "/api/users/"+s.adminID.String()+"/profile", vera, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestEventStatusAndDonations(t *testing.T) {
	s := setupAPI(t)
	vera := s.register(t, "vera")
	event := s.createEvent(t, "13:00", "15:00", 2)
	path := "/api/events/" + event["id"].(string)

	rec, res := s.do(t, http.MethodPost, path+"/donations", vera, map[string]any{"amount": "20.50"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	donation := res.Response.(map[string]any)
	assert.Equal(t, "Donor", donation["status"])
	assert.Equal(t, "20.5", donation["given_donations"])

	rec, _ = s.do(t, http.MethodPost, path+"/donations", vera, map[string]any{"amount": "-1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = s.do(t, http.MethodPost, path+"/cancel", vera, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, res = s.do(t, http.MethodPost, path+"/cancel", s.adminID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, res.Response.(map[string]any)["active"])

	rec, res = s.do(t, http.MethodPost, path+"/reservations", vera, map[string]any{"slots": slotsOf(event)[:1]})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "This event has been cancelled.", res.Notification.Message)

	rec, res = s.do(t, http.MethodGet, "/api/events?active=true", vera, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, res.Response)

	rec, _ = s.do(t, http.MethodPost, path+"/reschedule", s.adminID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, res = s.do(t, http.MethodPost, "/api/orgs", s.adminID, map[string]any{"name": "Aptiv"})
	require.Equal(t, http.StatusOK, rec.Code)
	orgID := res.Response.(map[string]any)["id"].(string)

	rec, res = s.do(t, http.MethodPost, "/api/orgs/"+orgID+"/donations", vera, map[string]any{"amount": "5"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, services.KeyThanksForDonation, res.Notification.Key)
}

func TestAccountActivation(t *testing.T) {
	s := setupAPI(t)
	vera := s.register(t, "vera")
	event := s.createEvent(t, "9:00", "10:00", 1)

	rec, res := s.do(t, http.MethodPost, "/api/users/"+vera.String()+"/deactivate", s.adminID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, res.Response.(map[string]any)["active"])

	rec, res = s.do(t, http.MethodPost, "/api/events/"+event["id"].(string)+"/reservations", vera, map[string]any{
		"slots": slotsOf(event),
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, services.KeyAlreadyCreated, res.Notification.Key)

	rec, _ = s.do(t, http.MethodPost, "/api/users/"+vera.String()+"/activate", s.adminID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestPreviewSlots(t *testing.T) {
	s := setupAPI(t)

	rec, res := s.do(t, http.MethodGet, "/api/slots/preview?start=9:00&end=10:40&volunteers=3", uuid.Nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{"9:00 A.M. - 9:33 A.M.", "9:33 A.M. - 10:06 A.M."}, res.Response)

	rec, _ = s.do(t, http.MethodGet, "/api/slots/preview?start=10:00&end=9:00&volunteers=3", uuid.Nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := setupAPI(t)
	s.do(t, http.MethodGet, "/api/health", uuid.Nil, nil)

	rec, _ := s.do(t, http.MethodGet, "/metrics", uuid.Nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `volunteer_hub_http_requests_total{method="GET",route="/api/health",status="200"} 1`)
	assert.Contains(t, body, `volunteer_hub_ledger_operations_total{operation="register_admin",outcome="ok"} 1`)
}

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetline/internal/config"
	"fleetline/internal/domain"
	"fleetline/internal/fleet"
	"fleetline/internal/guard"
	"fleetline/internal/kv"
	"fleetline/internal/session"
)

const testSecret = "test-secret"

type testServer struct {
	URL    string
	Store  *fleet.Store
	client *http.Client
	close  func()
}

func (s *testServer) Client() *http.Client { return s.client }
func (s *testServer) Close()               { s.close() }

func newTestServer(t *testing.T) (*testServer, func()) {
	t.Helper()
	cfg := config.Default()
	store, err := fleet.Open(context.Background(), kv.NewMemory(), fleet.Options{})
	require.NoError(t, err)
	handler, err := New(Config{
		Store:    store,
		Roster:   session.RosterFromConfig(cfg.Roster),
		Routes:   guard.FromConfig(cfg.Routes),
		BasePath: "/v0",
		Auth:     AuthConfig{JWTSecret: testSecret, TTL: time.Hour},
	})
	require.NoError(t, err)
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	require.NoError(t, err)
	srv := &http.Server{Handler: handler}
	go srv.Serve(ln)
	testSrv := &testServer{
		URL:    "http://" + ln.Addr().String(),
		Store:  store,
		client: &http.Client{},
		close: func() {
			srv.Shutdown(context.Background())
			ln.Close()
		},
	}
	return testSrv, func() { testSrv.Close() }
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any, headers map[string]string) (*http.Response, []byte) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	res, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return res, data
}

func login(t *testing.T, srv *testServer, email, password string) map[string]string {
	t.Helper()
	res, data := doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, nil)
	require.Equal(t, http.StatusOK, res.StatusCode, string(data))
	var out LoginResponse
	require.NoError(t, json.Unmarshal(data, &out))
	require.NotEmpty(t, out.Token)
	return map[string]string{"Authorization": "Bearer " + out.Token}
}

type errorEnvelope struct {
	Error apiErrorBody `json:"error"`
}

func decodeError(t *testing.T, data []byte) apiErrorBody {
	t.Helper()
	var env errorEnvelope
	require.NoError(t, json.Unmarshal(data, &env), string(data))
	return env.Error
}

func TestHealthIsPublic(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	res, data := doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/health", nil, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(data))
}

func TestLoginRejectsBadPassword(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	res, data := doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/auth/login", map[string]string{
		"email":    "admin@example-domain",
		"password": "wrong",
	}, nil)
	require.Equal(t, http.StatusUnauthorized, res.StatusCode)
	assert.Equal(t, "invalid_credentials", decodeError(t, data).Code)
}

func TestAnonymousRequestGetsLoginRedirect(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	res, data := doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/ships", nil, nil)
	require.Equal(t, http.StatusUnauthorized, res.StatusCode)
	body := decodeError(t, data)
	assert.Equal(t, "unauthorized", body.Code)
	assert.Equal(t, guard.LoginPath, body.Details["redirect"])
	assert.Equal(t, "/ships", body.Details["from"])
}

func TestInvalidTokenRejected(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	res, _ := doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/ships", nil, map[string]string{
		"Authorization": "Bearer not-a-jwt",
	})
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestInspectorRouteAccess(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	auth := login(t, srv, "inspector@example-domain", "inspect123")
	client := srv.Client()

	res, data := doJSON(t, client, http.MethodGet, srv.URL+"/v0/ships", nil, auth)
	require.Equal(t, http.StatusOK, res.StatusCode, string(data))
	var ships ShipListResponse
	require.NoError(t, json.Unmarshal(data, &ships))
	assert.Len(t, ships.Items, 3)

	res, data = doJSON(t, client, http.MethodGet, srv.URL+"/v0/jobs", nil, auth)
	require.Equal(t, http.StatusForbidden, res.StatusCode)
	body := decodeError(t, data)
	assert.Equal(t, "forbidden", body.Code)
	assert.Equal(t, guard.HomePath, body.Details["redirect"])

	res, _ = doJSON(t, client, http.MethodPost, srv.URL+"/v0/ships", map[string]any{"name": "X", "status": "Active"}, auth)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	res, _ = doJSON(t, client, http.MethodGet, srv.URL+"/v0/calendar", nil, auth)
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestMeListsVisibleRoutes(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	auth := login(t, srv, "engineer@example-domain", "engine123")
	res, data := doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/me", nil, auth)
	require.Equal(t, http.StatusOK, res.StatusCode, string(data))
	var me MeResponse
	require.NoError(t, json.Unmarshal(data, &me))
	assert.Equal(t, domain.RoleEngineer, me.User.Role)
	assert.Equal(t, "3", me.User.ID)
	assert.Len(t, me.Routes, 5)
}

func TestJobLifecycleNotifications(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	auth := login(t, srv, "engineer@example-domain", "engine123")
	client := srv.Client()

	res, data := doJSON(t, client, http.MethodPost, srv.URL+"/v0/jobs", map[string]any{
		"componentId":   "c1",
		"shipId":        "s1",
		"type":          "Repair",
		"priority":      "High",
		"title":         "Replace fuel injector",
		"scheduledDate": "2024-09-01",
	}, auth)
	require.Equal(t, http.StatusCreated, res.StatusCode, string(data))
	var job domain.Job
	require.NoError(t, json.Unmarshal(data, &job))
	assert.Equal(t, domain.JobOpen, job.Status)

	res, data = doJSON(t, client, http.MethodGet, srv.URL+"/v0/notifications", nil, auth)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var ns NotificationListResponse
	require.NoError(t, json.Unmarshal(data, &ns))
	require.Len(t, ns.Items, 2)
	assert.Equal(t, domain.NotificationJobCreated, ns.Items[0].Type)
	assert.Contains(t, ns.Items[0].Message, "Replace fuel injector")
	assert.Equal(t, 2, ns.Unread)

	res, data = doJSON(t, client, http.MethodPatch, srv.URL+"/v0/jobs/"+job.ID, map[string]any{
		"status":        "Completed",
		"completedDate": "2024-09-02",
	}, auth)
	require.Equal(t, http.StatusOK, res.StatusCode, string(data))
	var upd JobUpdateResponse
	require.NoError(t, json.Unmarshal(data, &upd))
	assert.True(t, upd.Found)
	require.NotNil(t, upd.Job)
	assert.Equal(t, domain.JobCompleted, upd.Job.Status)
	assert.Equal(t, domain.NotificationJobCompleted, srv.Store.Notifications()[0].Type)

	res, data = doJSON(t, client, http.MethodPatch, srv.URL+"/v0/jobs/missing", map[string]any{"status": "Cancelled"}, auth)
	require.Equal(t, http.StatusOK, res.StatusCode, string(data))
	require.NoError(t, json.Unmarshal(data, &upd))
	assert.False(t, upd.Found)
	assert.Len(t, srv.Store.Notifications(), 3)

	res, _ = doJSON(t, client, http.MethodPost, srv.URL+"/v0/notifications/read-all", nil, auth)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Zero(t, fleet.UnreadCount(srv.Store.Notifications()))
}

func TestAdminShipCRUD(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	auth := login(t, srv, "admin@example-domain", "admin123")
	client := srv.Client()

	res, data := doJSON(t, client, http.MethodPost, srv.URL+"/v0/ships", map[string]any{
		"name": "Bad", "imo": "12x", "status": "Active",
	}, auth)
	require.Equal(t, http.StatusBadRequest, res.StatusCode, string(data))

	res, data = doJSON(t, client, http.MethodPost, srv.URL+"/v0/ships", map[string]any{
		"name": "Nordic Star", "imo": "9300001", "flag": "Norway", "status": "Docked", "yearBuilt": 2005,
	}, auth)
	require.Equal(t, http.StatusCreated, res.StatusCode, string(data))
	var ship domain.Ship
	require.NoError(t, json.Unmarshal(data, &ship))
	require.NotEmpty(t, ship.ID)

	res, data = doJSON(t, client, http.MethodGet, srv.URL+"/v0/ships/s1", nil, auth)
	require.Equal(t, http.StatusOK, res.StatusCode, string(data))
	var detail ShipDetailResponse
	require.NoError(t, json.Unmarshal(data, &detail))
	assert.Equal(t, "Ever Given", detail.Ship.Name)
	assert.Equal(t, 2, detail.Summary.Components)
	assert.Len(t, detail.Jobs, 1)

	res, data = doJSON(t, client, http.MethodGet, srv.URL+"/v0/ships/nope", nil, auth)
	require.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Equal(t, "not_found", decodeError(t, data).Code)

	res, _ = doJSON(t, client, http.MethodDelete, srv.URL+"/v0/ships/"+ship.ID, nil, auth)
	require.Equal(t, http.StatusNoContent, res.StatusCode)
	res, _ = doJSON(t, client, http.MethodDelete, srv.URL+"/v0/ships/"+ship.ID, nil, auth)
	assert.Equal(t, http.StatusNoContent, res.StatusCode, "delete is idempotent")
	assert.Len(t, srv.Store.Ships(), 3)
}

func TestDashboardAndCalendar(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	auth := login(t, srv, "admin@example-domain", "admin123")
	client := srv.Client()

	res, data := doJSON(t, client, http.MethodGet, srv.URL+"/v0/dashboard", nil, auth)
	require.Equal(t, http.StatusOK, res.StatusCode, string(data))
	var dash DashboardResponse
	require.NoError(t, json.Unmarshal(data, &dash))
	assert.Equal(t, 3, dash.Stats.TotalShips)
	assert.Equal(t, 2, dash.Stats.TotalJobs)
	assert.Len(t, dash.RecentActivity, 3)

	res, data = doJSON(t, client, http.MethodGet, srv.URL+"/v0/calendar?from=2024-07-01&to=2024-07-31", nil, auth)
	require.Equal(t, http.StatusOK, res.StatusCode, string(data))
	var cal CalendarResponse
	require.NoError(t, json.Unmarshal(data, &cal))
	assert.Len(t, cal.Events, 3)

	res, _ = doJSON(t, client, http.MethodGet, srv.URL+"/v0/calendar?from=July", nil, auth)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestOpenAPIServedConcurrently(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()

	const n = 8
	bodies := make([][]byte, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := srv.Client().Get(srv.URL + "/v0/openapi.json")
			if err != nil {
				errs[i] = err
				return
			}
			defer res.Body.Close()
			bodies[i], errs[i] = io.ReadAll(res.Body)
		}()
	}
	wg.Wait()
	for i := range n {
		require.NoError(t, errs[i])
		assert.Equal(t, bodies[0], bodies[i])
	}
	var doc map[string]any
	require.NoError(t, json.Unmarshal(bodies[0], &doc))
	assert.Contains(t, doc, "paths")
}

func TestMetricsEndpoint(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	login(t, srv, "admin@example-domain", "admin123")
	res, data := doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/metrics", nil, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, string(data), "fleet_login_attempts_total")
}

func TestTokenRoundTrip(t *testing.T) {
	u := domain.User{ID: "2", Role: domain.RoleInspector, Email: "inspector@example-domain", Name: "Inspector Smith"}
	token, exp, err := signToken(testSecret, u, time.Minute, time.Now())
	require.NoError(t, err)
	assert.True(t, exp.After(time.Now()))

	p, err := authenticateJWT(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, u, p.User)

	_, err = authenticateJWT(token, "other-secret")
	assert.Error(t, err)

	expired, _, err := signToken(testSecret, u, time.Minute, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	_, err = authenticateJWT(expired, testSecret)
	assert.Error(t, err)
}

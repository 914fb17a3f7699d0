package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/domain/crm"
	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/domain/kpi"
	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/pkg/oauth"
	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/pkg/sse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	handlerTestSecret = "test-secret-key-for-jwt"
	andiID            = "0192d3a4-0000-7000-8000-000000000001"
)

var (
	adminActor = auth.AuthContext{UserID: "g-admin", Email: "boss@example.com", IsAdmin: true}
	andiActor  = auth.AuthContext{UserID: "g-andi", Email: "andi@example.com", EmployeeID: andiID}
)

// ===== FAKES =====

type fakeKPIService struct {
	kpi.KPIService
	lastActor     auth.AuthContext
	lastDashboard kpi.DashboardRequest
	lastUpsert    kpi.UpsertRecordRequest
	err           error
}

func (f *fakeKPIService) Dashboard(ctx context.Context, actor auth.AuthContext, req kpi.DashboardRequest) (*kpi.DashboardResponse, error) {
	f.lastActor, f.lastDashboard = actor, req
	if f.err != nil {
		return nil, f.err
	}
	return &kpi.DashboardResponse{ViewType: kpi.ViewType(req.ViewType), Year: req.Year, Month: req.Month}, nil
}

func (f *fakeKPIService) UpsertRecord(ctx context.Context, actor auth.AuthContext, req kpi.UpsertRecordRequest) (kpi.RecordResponse, error) {
	f.lastActor, f.lastUpsert = actor, req
	return kpi.RecordResponse{ID: "rec-1", EmployeeID: req.EmployeeID, Date: req.Date, Calls: req.Calls}, nil
}

func (f *fakeKPIService) Ranking(ctx context.Context, actor auth.AuthContext, req kpi.RankingRequest) (*kpi.RankingResponse, error) {
	f.lastActor = actor
	return &kpi.RankingResponse{SortBy: req.SortBy, Rows: []kpi.ScoreRow{}}, nil
}

func (f *fakeKPIService) Targets() kpi.TargetConfig {
	return kpi.DefaultTargetConfig()
}

// Subscribe replays one change and then ends the stream.
func (f *fakeKPIService) Subscribe(ctx context.Context, actor auth.AuthContext) (<-chan sse.Event, func(), error) {
	f.lastActor = actor
	events := make(chan sse.Event, 1)
	events <- sse.Event{Name: kpi.EventRecordChanged, Data: kpi.RecordChange{EmployeeID: andiID, Date: "2025-02-07", Year: 2025, Month: 2}}
	close(events)
	return events, func() {}, nil
}

func (f *fakeKPIService) WeekOptions(ctx context.Context, actor auth.AuthContext, req kpi.WeekOptionsRequest) ([]int, error) {
	return []int{6, 7}, nil
}

type fakeEmployeeService struct {
	employee.EmployeeService
	createErr error
}

func (f *fakeEmployeeService) ListEmployees(ctx context.Context, actor auth.AuthContext, filter employee.EmployeeFilter) ([]employee.Employee, error) {
	return []employee.Employee{{ID: andiID, Name: "Andi", Email: "andi@example.com"}}, nil
}

func (f *fakeEmployeeService) CreateEmployee(ctx context.Context, actor auth.AuthContext, req employee.CreateEmployeeRequest) (employee.Employee, error) {
	if f.createErr != nil {
		return employee.Employee{}, f.createErr
	}
	return employee.Employee{ID: andiID, Name: req.Name, Email: req.Email}, nil
}

type fakeAuthService struct {
	jwtService jwt.Service
}

func (f *fakeAuthService) LoginWithGoogle(ctx context.Context, login auth.GoogleLogin) (auth.TokenResponse, error) {
	return auth.TokenResponse{}, nil
}

func (f *fakeAuthService) Logout(ctx context.Context, accessToken string) error {
	f.jwtService.RevokeToken(accessToken)
	return nil
}

func (f *fakeAuthService) ListAdminEmails(ctx context.Context) ([]auth.AdminEmail, error) {
	return []auth.AdminEmail{{Email: "boss@example.com"}}, nil
}

func (f *fakeAuthService) AddAdminEmail(ctx context.Context, req auth.AddAdminEmailRequest) (auth.AdminEmail, error) {
	return auth.AdminEmail{Email: req.Email}, nil
}

type fakeCRMService struct {
	crm.CRMService
	lastUpdate crm.UpdateContactRequest
}

func (f *fakeCRMService) UpdateContact(ctx context.Context, actor auth.AuthContext, req crm.UpdateContactRequest) (crm.Contact, error) {
	f.lastUpdate = req
	return crm.Contact{}, crm.ErrContactNotFound
}

// ===== HARNESS =====

type testServer struct {
	router     http.Handler
	jwtService *jwt.JWTService
	kpiService *fakeKPIService
	empService *fakeEmployeeService
	crmService *fakeCRMService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	jwtService := jwt.NewJWTService(handlerTestSecret, time.Hour)
	ts := &testServer{
		jwtService: jwtService,
		kpiService: &fakeKPIService{},
		empService: &fakeEmployeeService{},
		crmService: &fakeCRMService{},
	}
	google := oauth.NewGoogleService("client-id", "client-secret", "http://localhost:8080/api/v1/auth/oauth/callback/google", false)
	ts.router = NewRouter(jwtService, Handlers{
		Auth:     NewAuthHandler(&fakeAuthService{jwtService: jwtService}, google, "http://localhost:3000"),
		Employee: NewEmployeeHandler(ts.empService),
		KPI:      NewKPIHandler(ts.kpiService),
		CRM:      NewCRMHandler(ts.crmService),
	}, RouterOptions{
		AllowedOrigins: []string{"http://localhost:3000"},
		Logger:         slog.New(slog.NewJSONHandler(io.Discard, nil)),
	})
	return ts
}

func (ts *testServer) token(t *testing.T, actor auth.AuthContext) string {
	t.Helper()
	token, _, err := ts.jwtService.GenerateAccessToken(actor)
	require.NoError(t, err)
	return token
}

func (ts *testServer) do(t *testing.T, method, path, token, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)

	var payload map[string]interface{}
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	}
	return rec, payload
}

func errorCode(payload map[string]interface{}) string {
	errObj, _ := payload["error"].(map[string]interface{})
	code, _ := errObj["code"].(string)
	return code
}

// ===== TESTS =====

func TestRouter_Healthz(t *testing.T) {
	ts := newTestServer(t)
	rec, _ := ts.do(t, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_RequiresToken(t *testing.T) {
	ts := newTestServer(t)

	rec, payload := ts.do(t, http.MethodGet, "/api/v1/kpi/dashboard?view_type=Monthly&year=2025&month=2", "", "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, false, payload["success"])
	assert.Equal(t, "UNAUTHORIZED", errorCode(payload))
}

func TestRouter_RejectsForeignToken(t *testing.T) {
	ts := newTestServer(t)
	other := jwt.NewJWTService("another-secret", time.Hour)
	token, _, err := other.GenerateAccessToken(adminActor)
	require.NoError(t, err)

	rec, _ := ts.do(t, http.MethodGet, "/api/v1/auth/me", token, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestKPIHandler_Dashboard(t *testing.T) {
	// Arrange
	ts := newTestServer(t)
	token := ts.token(t, andiActor)

	// Act
	rec, payload := ts.do(t, http.MethodGet, "/api/v1/kpi/dashboard?view_type=Weekly&year=2025&month=3&week=10", token, "")

	// Assert
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, payload["success"])
	assert.Equal(t, andiActor, ts.kpiService.lastActor)
	assert.Equal(t, kpi.DashboardRequest{ViewType: "Weekly", Year: 2025, Month: 3, Week: 10}, ts.kpiService.lastDashboard)

	data := payload["data"].(map[string]interface{})
	assert.Equal(t, "Weekly", data["view_type"])
}

func TestKPIHandler_Dashboard_BadQuery(t *testing.T) {
	ts := newTestServer(t)

	rec, payload := ts.do(t, http.MethodGet, "/api/v1/kpi/dashboard?view_type=Monthly&year=twenty&month=2", ts.token(t, andiActor), "")

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	details := payload["error"].(map[string]interface{})["details"].(map[string]interface{})
	assert.Contains(t, details, "year")
}

func TestKPIHandler_Dashboard_Forbidden(t *testing.T) {
	ts := newTestServer(t)
	ts.kpiService.err = kpi.ErrForbiddenEmployee

	rec, payload := ts.do(t, http.MethodGet, "/api/v1/kpi/dashboard?view_type=Monthly&year=2025&month=2", ts.token(t, andiActor), "")

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", errorCode(payload))
}

func TestKPIHandler_UpsertRecord_AdminOnly(t *testing.T) {
	ts := newTestServer(t)
	body := `{"employee_id":"` + andiID + `","date":"2025-02-03","calls":40,"product_knowledge":80}`

	rec, _ := ts.do(t, http.MethodPut, "/api/v1/kpi/records", ts.token(t, andiActor), body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, payload := ts.do(t, http.MethodPut, "/api/v1/kpi/records", ts.token(t, adminActor), body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 40.0, ts.kpiService.lastUpsert.Calls)
	assert.Equal(t, "KPI record saved", payload["message"])
}

func TestKPIHandler_UpsertRecord_Invalid(t *testing.T) {
	ts := newTestServer(t)

	rec, _ := ts.do(t, http.MethodPut, "/api/v1/kpi/records", ts.token(t, adminActor), `{"employee_id":"x","date":"03-02-2025"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec, payload := ts.do(t, http.MethodPut, "/api/v1/kpi/records", ts.token(t, adminActor), `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "BAD_REQUEST", errorCode(payload))
}

func TestRouter_BodyContentType(t *testing.T) {
	ts := newTestServer(t)
	body := `{"employee_id":"` + andiID + `","date":"2025-02-03","calls":40,"product_knowledge":80}`

	req := httptest.NewRequest(http.MethodPut, "/api/v1/kpi/records", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+ts.token(t, adminActor))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	// Content-Encoding is not what gets checked
	req = httptest.NewRequest(http.MethodPut, "/api/v1/kpi/records", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+ts.token(t, adminActor))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Content-Encoding", "gzip")
	rec = httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	assert.NotEqual(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestKPIHandler_Ranking_AdminOnly(t *testing.T) {
	ts := newTestServer(t)
	path := "/api/v1/kpi/ranking?view_type=Monthly&year=2025&month=2&sort_by=calls"

	rec, _ := ts.do(t, http.MethodGet, path, ts.token(t, andiActor), "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, payload := ts.do(t, http.MethodGet, path, ts.token(t, adminActor), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "calls", payload["data"].(map[string]interface{})["sort_by"])
}

func TestKPIHandler_TargetsAndWeeks(t *testing.T) {
	ts := newTestServer(t)
	token := ts.token(t, andiActor)

	rec, payload := ts.do(t, http.MethodGet, "/api/v1/kpi/targets", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, kpi.DefaultTargetVersion, payload["data"].(map[string]interface{})["version"])

	rec, payload = ts.do(t, http.MethodGet, "/api/v1/kpi/weeks?year=2025&month=2", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []interface{}{6.0, 7.0}, payload["data"])
	assert.Equal(t, 2.0, payload["meta"].(map[string]interface{})["count"])
}

func TestAuthHandler_MeAndLogout(t *testing.T) {
	ts := newTestServer(t)
	token := ts.token(t, andiActor)

	rec, payload := ts.do(t, http.MethodGet, "/api/v1/auth/me", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, andiID, payload["data"].(map[string]interface{})["employee_id"])

	rec, _ = ts.do(t, http.MethodPost, "/api/v1/auth/logout", token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = ts.do(t, http.MethodGet, "/api/v1/auth/me", token, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthHandler_GoogleLoginRedirect(t *testing.T) {
	ts := newTestServer(t)

	rec, _ := ts.do(t, http.MethodGet, "/api/v1/auth/login/oauth/google", "", "")

	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "accounts.google.com")
	assert.Contains(t, rec.Header().Get("Set-Cookie"), oauth.StateCookieName+"=")
}

func TestAuthHandler_CallbackStateMismatch(t *testing.T) {
	ts := newTestServer(t)

	rec, _ := ts.do(t, http.MethodGet, "/api/v1/auth/oauth/callback/google?state=abc&code=xyz", "", "")

	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "http://localhost:3000/auth/callback/google?error=state_mismatch", rec.Header().Get("Location"))
}

func TestAdminEmails_AdminOnly(t *testing.T) {
	ts := newTestServer(t)

	rec, _ := ts.do(t, http.MethodGet, "/api/v1/admin-emails", ts.token(t, andiActor), "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, payload := ts.do(t, http.MethodPost, "/api/v1/admin-emails", ts.token(t, adminActor), `{"email":"Lead@Example.com"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "lead@example.com", payload["data"].(map[string]interface{})["email"])
}

func TestEmployeeHandler(t *testing.T) {
	ts := newTestServer(t)

	rec, payload := ts.do(t, http.MethodGet, "/api/v1/employees", ts.token(t, andiActor), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, payload["data"], 1)

	rec, _ = ts.do(t, http.MethodPost, "/api/v1/employees", ts.token(t, andiActor), `{"name":"Citra","email":"citra@example.com"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	ts.empService.createErr = employee.ErrEmailExists
	rec, payload = ts.do(t, http.MethodPost, "/api/v1/employees", ts.token(t, adminActor), `{"name":"Citra","email":"citra@example.com"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "CONFLICT", errorCode(payload))
}

func TestCRMHandler_UpdateContactNotFound(t *testing.T) {
	ts := newTestServer(t)
	id := "0192d3a4-0000-7000-8000-0000000000c1"

	rec, payload := ts.do(t, http.MethodPatch, "/api/v1/crm/contacts/"+id, ts.token(t, andiActor), `{"category":"interested"}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(payload))
	assert.Equal(t, id, ts.crmService.lastUpdate.ID)
	require.NotNil(t, ts.crmService.lastUpdate.Category)
	assert.Equal(t, "interested", *ts.crmService.lastUpdate.Category)
}

func TestRouter_UnknownRoute(t *testing.T) {
	ts := newTestServer(t)
	rec, payload := ts.do(t, http.MethodGet, "/api/v1/nope", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(payload))
}

func TestRouter_KPIStreamAcceptsQueryToken(t *testing.T) {
	ts := newTestServer(t)

	rec, _ := ts.do(t, http.MethodGet, "/api/v1/kpi/stream?jwt="+ts.token(t, andiActor), "", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, "event: connected")
	assert.Contains(t, body, "event: kpi_record_changed\ndata: {\"record_id\":\"\",\"employee_id\":\""+andiID+"\"")
	assert.Equal(t, andiActor.EmployeeID, ts.kpiService.lastActor.EmployeeID)
}

func TestRouter_KPIStreamRejectsRevokedQueryToken(t *testing.T) {
	ts := newTestServer(t)
	token := ts.token(t, andiActor)
	ts.jwtService.RevokeToken(token)

	rec, _ := ts.do(t, http.MethodGet, "/api/v1/kpi/stream?jwt="+token, "", "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

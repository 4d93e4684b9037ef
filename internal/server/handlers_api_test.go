package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PADALAPRATHYUSHA/screen-mirroring/internal/audit"
	"github.com/PADALAPRATHYUSHA/screen-mirroring/internal/domain"
	"github.com/PADALAPRATHYUSHA/screen-mirroring/internal/platform/config"
)

// --- Mocks ---

type mockApp struct {
	registerDeviceFn   func(ctx context.Context, userID, name string) (*domain.Device, error)
	listDevicesFn      func(ctx context.Context, userID string) ([]domain.Device, error)
	startSessionFn     func(ctx context.Context, userID string, deviceID uuid.UUID) (*domain.Session, error)
	stopSessionFn      func(ctx context.Context, userID string) error
	getActiveSessionFn func(ctx context.Context, userID string) (*domain.Session, error)
}

func (m *mockApp) RegisterDevice(ctx context.Context, userID, name string) (*domain.Device, error) {
	if m.registerDeviceFn != nil {
		return m.registerDeviceFn(ctx, userID, name)
	}
	return nil, errors.New("not implemented")
}

func (m *mockApp) ListDevices(ctx context.Context, userID string) ([]domain.Device, error) {
	if m.listDevicesFn != nil {
		return m.listDevicesFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockApp) StartSession(ctx context.Context, userID string, deviceID uuid.UUID) (*domain.Session, error) {
	if m.startSessionFn != nil {
		return m.startSessionFn(ctx, userID, deviceID)
	}
	return nil, errors.New("not implemented")
}

func (m *mockApp) StopSession(ctx context.Context, userID string) error {
	if m.stopSessionFn != nil {
		return m.stopSessionFn(ctx, userID)
	}
	return nil
}

func (m *mockApp) GetActiveSession(ctx context.Context, userID string) (*domain.Session, error) {
	if m.getActiveSessionFn != nil {
		return m.getActiveSessionFn(ctx, userID)
	}
	return nil, nil
}

type mockEvents struct {
	mu   sync.Mutex
	subs []chan domain.SessionEvent
}

func (m *mockEvents) Publish(_ context.Context, event domain.SessionEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ch := range m.subs {
		ch <- event
	}
	return nil
}

func (m *mockEvents) Subscribe(_ context.Context, _ string) domain.Subscription {
	ch := make(chan domain.SessionEvent, 16)
	m.mu.Lock()
	m.subs = append(m.subs, ch)
	m.mu.Unlock()
	return &mockSubscription{ch: ch}
}

type mockSubscription struct {
	ch   chan domain.SessionEvent
	once sync.Once
}

func (s *mockSubscription) Events() <-chan domain.SessionEvent { return s.ch }
func (s *mockSubscription) Close()                             { s.once.Do(func() { close(s.ch) }) }

type mockPostgres struct{ err error }

func (m mockPostgres) Ping(context.Context) error { return m.err }

type mockRedis struct{ err error }

func (m mockRedis) Ping(ctx context.Context) *goredis.StatusCmd {
	cmd := goredis.NewStatusCmd(ctx)
	cmd.SetErr(m.err)
	return cmd
}

type mockAnalyzer struct {
	analyzeFn func(ctx context.Context, prompt string) (string, error)
}

func (m *mockAnalyzer) Analyze(ctx context.Context, prompt string) (string, error) {
	if m.analyzeFn != nil {
		return m.analyzeFn(ctx, prompt)
	}
	return "ok", nil
}

// --- Harness ---

type serverFixture struct {
	srv      *Server
	app      *mockApp
	events   *mockEvents
	auditLog *audit.Recorder
	analyzer *mockAnalyzer
}

func newTestServer(t *testing.T) *serverFixture {
	t.Helper()
	clock := clockwork.NewFakeClock()
	app := &mockApp{}
	events := &mockEvents{}
	analyzer := &mockAnalyzer{}
	auditLog := audit.NewRecorder(64, clock)
	cfg := &config.Config{AppEnv: "test", Port: "0"}
	srv := New(cfg, app, events, auditLog, analyzer, mockPostgres{}, mockRedis{}, clock)
	return &serverFixture{srv: srv, app: app, events: events, auditLog: auditLog, analyzer: analyzer}
}

func (f *serverFixture) request(method, path, body, userID string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if userID != "" {
		req.Header.Set(userHeader, userID)
	}
	rec := httptest.NewRecorder()
	f.srv.echo.ServeHTTP(rec, req)
	return rec
}

// --- Identity ---

func TestAPI_MissingUserHeader(t *testing.T) {
	f := newTestServer(t)

	rec := f.request(http.MethodGet, "/api/devices", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// --- Devices ---

func TestRegisterDevice_Created(t *testing.T) {
	f := newTestServer(t)
	deviceID := uuid.New()
	f.app.registerDeviceFn = func(_ context.Context, userID, name string) (*domain.Device, error) {
		assert.Equal(t, "u1", userID)
		assert.Equal(t, "Living Room", name)
		return &domain.Device{ID: deviceID, Name: name, ShortCode: "aabbccdd"}, nil
	}

	rec := f.request(http.MethodPost, "/api/devices", `{"name":"Living Room"}`, "u1")
	require.Equal(t, http.StatusCreated, rec.Code)

	var got domain.Device
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, deviceID, got.ID)
	assert.Equal(t, "Living Room", got.Name)
}

func TestRegisterDevice_EmptyName(t *testing.T) {
	f := newTestServer(t)
	f.app.registerDeviceFn = func(context.Context, string, string) (*domain.Device, error) {
		return nil, domain.ErrDeviceNameEmpty
	}

	rec := f.request(http.MethodPost, "/api/devices", `{"name":"  "}`, "u1")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListDevices_EmptyIsArray(t *testing.T) {
	f := newTestServer(t)

	rec := f.request(http.MethodGet, "/api/devices", "", "u1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

// --- Sessions ---

func TestStartSession_Created(t *testing.T) {
	f := newTestServer(t)
	deviceID := uuid.New()
	f.app.startSessionFn = func(_ context.Context, userID string, id uuid.UUID) (*domain.Session, error) {
		assert.Equal(t, deviceID, id)
		return &domain.Session{
			OwnerUserID:      userID,
			TargetDeviceID:   id,
			TargetDeviceName: "TV-A",
			Status:           domain.StatusConnected,
			StartedAt:        time.Now().UTC(),
		}, nil
	}

	rec := f.request(http.MethodPost, "/api/session/start", `{"device_id":"`+deviceID.String()+`"}`, "u1")
	require.Equal(t, http.StatusCreated, rec.Code)

	var got domain.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, domain.StatusConnected, got.Status)
	assert.Equal(t, "TV-A", got.TargetDeviceName)
}

func TestStartSession_InvalidDeviceID(t *testing.T) {
	f := newTestServer(t)

	rec := f.request(http.MethodPost, "/api/session/start", `{"device_id":"not-a-uuid"}`, "u1")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStartSession_UnauthorizedDevice(t *testing.T) {
	f := newTestServer(t)
	f.app.startSessionFn = func(context.Context, string, uuid.UUID) (*domain.Session, error) {
		return nil, domain.ErrDeviceNotAuthorized
	}

	rec := f.request(http.MethodPost, "/api/session/start", `{"device_id":"`+uuid.NewString()+`"}`, "u1")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "not registered")
}

func TestStartSession_AlreadyActive(t *testing.T) {
	f := newTestServer(t)
	f.app.startSessionFn = func(context.Context, string, uuid.UUID) (*domain.Session, error) {
		return nil, domain.ErrSessionActive
	}

	rec := f.request(http.MethodPost, "/api/session/start", `{"device_id":"`+uuid.NewString()+`"}`, "u1")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestStartSession_StoreError(t *testing.T) {
	f := newTestServer(t)
	f.app.startSessionFn = func(context.Context, string, uuid.UUID) (*domain.Session, error) {
		return nil, errors.New("connection reset")
	}

	rec := f.request(http.MethodPost, "/api/session/start", `{"device_id":"`+uuid.NewString()+`"}`, "u1")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestStopSession_NoContent(t *testing.T) {
	f := newTestServer(t)

	rec := f.request(http.MethodPost, "/api/session/stop", "", "u1")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestGetSession_IdleIsNoContent(t *testing.T) {
	f := newTestServer(t)

	rec := f.request(http.MethodGet, "/api/session", "", "u1")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestGetSession_Active(t *testing.T) {
	f := newTestServer(t)
	f.app.getActiveSessionFn = func(_ context.Context, userID string) (*domain.Session, error) {
		return &domain.Session{OwnerUserID: userID, Status: domain.StatusConnected}, nil
	}

	rec := f.request(http.MethodGet, "/api/session", "", "u1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "connected")
}

// --- Audit ---

func TestAuditLog_ReturnsLines(t *testing.T) {
	f := newTestServer(t)
	f.auditLog.Denied("u1", "device=xyz", "unauthorized_device")

	rec := f.request(http.MethodGet, "/api/audit", "", "u1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "DENIED")
}

// --- Assist ---

func TestAssist_ReturnsText(t *testing.T) {
	f := newTestServer(t)
	f.auditLog.Denied("u1", "device=xyz", "unauthorized_device")
	f.analyzer.analyzeFn = func(_ context.Context, prompt string) (string, error) {
		assert.Contains(t, prompt, "DENIED")
		return "one denial today", nil
	}

	rec := f.request(http.MethodPost, "/api/assist", `{"question":"what do the logs say?"}`, "u1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "one denial today")
}

func TestAssist_EmptyQuestion(t *testing.T) {
	f := newTestServer(t)

	rec := f.request(http.MethodPost, "/api/assist", `{"question":"  "}`, "u1")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// --- Health ---

func TestLiveness(t *testing.T) {
	f := newTestServer(t)

	rec := f.request(http.MethodGet, "/health/live", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadiness_AllHealthy(t *testing.T) {
	f := newTestServer(t)

	rec := f.request(http.MethodGet, "/health/ready", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadiness_PostgresDown(t *testing.T) {
	clock := clockwork.NewFakeClock()
	cfg := &config.Config{AppEnv: "test", Port: "0"}
	srv := New(cfg, &mockApp{}, &mockEvents{}, audit.NewRecorder(8, clock), nil, mockPostgres{err: errors.New("down")}, mockRedis{}, clock)

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "postgres")
}

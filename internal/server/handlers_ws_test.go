package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PADALAPRATHYUSHA/screen-mirroring/internal/domain"
	"github.com/PADALAPRATHYUSHA/screen-mirroring/internal/metrics"
)

func dialSessionFeed(t *testing.T, ts *httptest.Server, userID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/session"

	header := http.Header{}
	header.Set(userHeader, userID)
	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestSessionFeed_SnapshotThenEvents(t *testing.T) {
	f := newTestServer(t)
	deviceID := uuid.New()
	f.app.getActiveSessionFn = func(_ context.Context, userID string) (*domain.Session, error) {
		return &domain.Session{
			OwnerUserID:      userID,
			TargetDeviceID:   deviceID,
			TargetDeviceName: "TV-A",
			Status:           domain.StatusConnected,
		}, nil
	}

	ts := httptest.NewServer(f.srv.echo)
	t.Cleanup(ts.Close)
	conn := dialSessionFeed(t, ts, "u1")

	// First frame is the current state, sent without waiting for a change.
	var snapshot domain.SessionEvent
	require.NoError(t, conn.ReadJSON(&snapshot))
	assert.Equal(t, "u1", snapshot.UserID)
	require.NotNil(t, snapshot.Session)
	assert.Equal(t, deviceID, snapshot.Session.TargetDeviceID)
	assert.Equal(t, "TV-A", snapshot.Session.TargetDeviceName)

	// A published change is forwarded as the next frame.
	require.NoError(t, f.events.Publish(context.Background(), domain.SessionEvent{UserID: "u1", Session: nil}))

	var change domain.SessionEvent
	require.NoError(t, conn.ReadJSON(&change))
	assert.Equal(t, "u1", change.UserID)
	assert.Nil(t, change.Session)
}

func TestSessionFeed_IdleSnapshotIsEmpty(t *testing.T) {
	f := newTestServer(t)

	ts := httptest.NewServer(f.srv.echo)
	t.Cleanup(ts.Close)
	conn := dialSessionFeed(t, ts, "u1")

	var snapshot domain.SessionEvent
	require.NoError(t, conn.ReadJSON(&snapshot))
	assert.Equal(t, "u1", snapshot.UserID)
	assert.Nil(t, snapshot.Session)
}

func TestSessionFeed_MissingIdentityRejected(t *testing.T) {
	f := newTestServer(t)

	ts := httptest.NewServer(f.srv.echo)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/session"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	if conn != nil {
		_ = conn.Close()
	}
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSessionFeed_ClientDisconnectEndsStream(t *testing.T) {
	f := newTestServer(t)

	ts := httptest.NewServer(f.srv.echo)
	t.Cleanup(ts.Close)
	conn := dialSessionFeed(t, ts, "u1")

	// Wait for the snapshot so the subscription is fully established.
	var snapshot domain.SessionEvent
	require.NoError(t, conn.ReadJSON(&snapshot))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.SessionEventSubscribers))

	require.NoError(t, conn.Close())

	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(metrics.SessionEventSubscribers) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

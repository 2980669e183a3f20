package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/alarmbot/internal/profile"
	"github.com/hrygo/alarmbot/plugin/ai/agent"
	"github.com/hrygo/alarmbot/plugin/ai/reminder"
	"github.com/hrygo/alarmbot/server/internal/observability"
	apiv1 "github.com/hrygo/alarmbot/server/router/api/v1"
)

func newTestServer(t *testing.T) (*Server, *apiv1.APIV1Service) {
	t.Helper()

	alarms := reminder.NewService(reminder.NewBlobAlarmStore(reminder.NewMemoryStore()))
	conversation := agent.NewConversation("server-test", 0)
	ag := agent.New(agent.Config{Alarms: alarms, UI: conversation})
	scheduler := reminder.NewScheduler(alarms, reminder.DefaultSchedulerConfig(), ag.OnFired)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = ag.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	p := &profile.Profile{Mode: "dev", Addr: "127.0.0.1", Port: 0, ChatRateLimit: 100, ChatRateBurst: 100}
	apiV1 := apiv1.NewAPIV1Service(p, ag, conversation, scheduler)
	return NewServer(p, apiV1), apiV1
}

func TestServer_RequestID(t *testing.T) {
	s, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(observability.HeaderRequestID))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(observability.HeaderRequestID, "req-123")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "req-123", rec.Header().Get(observability.HeaderRequestID))
}

func TestServer_ErrorsAndMetrics(t *testing.T) {
	s, apiV1 := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/alarms/42", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "NOT_FOUND", body.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader(`{"text":"list alarms"}`))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	snapshot := apiV1.Metrics.Snapshot()
	assert.Equal(t, int64(2), snapshot.RequestTotal)
	assert.Equal(t, int64(0), snapshot.RequestFailed)
}

func TestServer_CORS(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/alarms", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_StartStops(t *testing.T) {
	s, _ := newTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Start(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

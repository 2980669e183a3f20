package observability

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_RequestID(t *testing.T) {
	metrics := NewMetrics()
	e := echo.New()
	e.Use(Middleware(slog.Default(), metrics))

	var seen string
	e.GET("/ok", func(c echo.Context) error {
		reqCtx, ok := FromContext(c.Request().Context())
		require.True(t, ok)
		seen = reqCtx.RequestID
		return c.NoContent(http.StatusNoContent)
	})
	e.GET("/fail", func(echo.Context) error {
		return echo.ErrInternalServerError
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(HeaderRequestID))

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(HeaderRequestID, "client-id")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "client-id", seen)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fail", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	snap := metrics.Snapshot()
	assert.Equal(t, int64(3), snap.RequestTotal)
	assert.Equal(t, int64(1), snap.RequestFailed)
	require.Len(t, snap.Routes, 2)
	assert.Equal(t, "/fail", snap.Routes[0].Route)
	assert.Equal(t, int64(2), snap.Routes[1].Count)
}

func TestMetrics(t *testing.T) {
	m := NewMetrics()
	assert.Equal(t, 100.0, m.Snapshot().SuccessRate())

	m.RecordRequest("/a", 10*time.Millisecond, false)
	m.RecordRequest("/a", 30*time.Millisecond, true)
	m.RecordIntent("create")
	m.RecordIntent("create")

	snap := m.Snapshot()
	assert.Equal(t, 50.0, snap.SuccessRate())
	assert.Equal(t, int64(20), snap.Routes[0].AverageDuration)
	assert.Equal(t, int64(2), snap.Intents["create"])

	m.Reset()
	assert.Zero(t, m.Snapshot().RequestTotal)
}

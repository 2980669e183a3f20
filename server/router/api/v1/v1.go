package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/hrygo/alarmbot/internal/profile"
	"github.com/hrygo/alarmbot/plugin/ai/agent"
	"github.com/hrygo/alarmbot/plugin/ai/reminder"
	"github.com/hrygo/alarmbot/plugin/ai/timeout"
	apierrors "github.com/hrygo/alarmbot/server/internal/errors"
	"github.com/hrygo/alarmbot/server/internal/observability"
	"github.com/hrygo/alarmbot/server/middleware"
)

// APIV1Service serves the chat and alarm endpoints for one conversation.
type APIV1Service struct {
	Profile      *profile.Profile
	Agent        *agent.Agent
	Conversation *agent.Conversation
	Scheduler    *reminder.Scheduler
	Metrics      *observability.Metrics

	chatLimiter *middleware.RateLimiter
	now         func() time.Time
}

func NewAPIV1Service(profile *profile.Profile, ag *agent.Agent, conversation *agent.Conversation, scheduler *reminder.Scheduler) *APIV1Service {
	return &APIV1Service{
		Profile:      profile,
		Agent:        ag,
		Conversation: conversation,
		Scheduler:    scheduler,
		Metrics:      observability.NewMetrics(),
		chatLimiter:  middleware.NewRateLimiter(profile.ChatRateLimit, profile.ChatRateBurst),
		now:          time.Now,
	}
}

// SetClock replaces the clock used for feeds and calendar exports.
func (s *APIV1Service) SetClock(now func() time.Time) {
	s.now = now
}

// RegisterRoutes registers the API routes with the given Echo instance.
func (s *APIV1Service) RegisterRoutes(echoServer *echo.Echo) {
	echoServer.GET("/healthz", s.GetHealth)

	g := echoServer.Group("/api/v1")
	limited := s.chatLimiter.Middleware()

	g.POST("/chat", s.Chat, limited)
	g.GET("/messages", s.ListMessages)
	g.POST("/voice", s.StartVoice, limited)
	g.DELETE("/voice", s.CancelVoice)

	g.GET("/alarms", s.ListAlarms)
	g.GET("/alarms.ics", s.ExportAlarms)
	g.GET("/alarms/feed", s.GetAlarmFeed)
	g.DELETE("/alarms/:id", s.DeleteAlarm)
	g.POST("/alarms/:id/stop", s.StopAlarm)
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status    string                         `json:"status"`
	Version   string                         `json:"version"`
	SessionID string                         `json:"session_id"`
	Alarms    int                            `json:"alarms"`
	Scheduler *reminder.HealthStatus         `json:"scheduler,omitempty"`
	Metrics   *observability.MetricsSnapshot `json:"metrics"`
}

// GetHealth reports scheduler health and request metrics.
// GET /healthz
func (s *APIV1Service) GetHealth(c echo.Context) error {
	resp := HealthResponse{
		Status:    "ok",
		Version:   s.Profile.Version,
		SessionID: s.Conversation.SessionID,
		Alarms:    len(s.Agent.Alarms().List()),
		Metrics:   s.Metrics.Snapshot(),
	}
	if s.Scheduler != nil {
		status := s.Scheduler.Health().Check()
		resp.Scheduler = &status
		if !status.Healthy {
			resp.Status = "degraded"
		}
	}
	return c.JSON(http.StatusOK, resp)
}

// submitContext bounds how long a handler waits for the agent.
func submitContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), timeout.SubmitTimeout)
}

// submitError maps an agent submission failure to an API error.
func submitError(err error) error {
	switch {
	case errors.Is(err, agent.ErrStopped):
		return apierrors.ServiceUnavailable("alarm agent is not running", err)
	case errors.Is(err, context.DeadlineExceeded):
		return apierrors.ServiceUnavailable("alarm agent did not answer in time", err)
	case errors.Is(err, context.Canceled):
		return apierrors.ContextCanceled(err)
	default:
		return apierrors.Wrap(err, apierrors.ErrCodeInternal, "failed to handle request")
	}
}

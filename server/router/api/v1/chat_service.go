package v1

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/hrygo/alarmbot/plugin/ai/agent"
	"github.com/hrygo/alarmbot/plugin/ai/reminder"
	"github.com/hrygo/alarmbot/plugin/ai/voice"
	apierrors "github.com/hrygo/alarmbot/server/internal/errors"
)

// ChatRequest is the body of POST /api/v1/chat.
type ChatRequest struct {
	Text string `json:"text"`
}

// ChatResponse is what one chat turn produced.
type ChatResponse struct {
	SessionID string            `json:"session_id"`
	Intent    string            `json:"intent,omitempty"`
	Messages  []agent.Message   `json:"messages"`
	Alarms    []*reminder.Alarm `json:"alarms"`
}

// MessagesResponse is the body of GET /api/v1/messages.
type MessagesResponse struct {
	SessionID string        `json:"session_id"`
	Messages  []agent.Entry `json:"messages"`
}

// Chat handles one typed command.
// POST /api/v1/chat
func (s *APIV1Service) Chat(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.InvalidArgument("invalid request body", err)
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return apierrors.InvalidArgument("text is required", nil)
	}

	ctx, cancel := submitContext(c)
	defer cancel()

	res, err := s.Agent.Handle(ctx, text)
	if err != nil {
		return submitError(err)
	}
	return c.JSON(http.StatusOK, s.chatResponse(res))
}

// StartVoice captures one spoken command and handles it like typed input.
// POST /api/v1/voice
func (s *APIV1Service) StartVoice(c echo.Context) error {
	res, err := s.Agent.Listen(c.Request().Context())
	switch {
	case errors.Is(err, voice.ErrBusy):
		return apierrors.Conflict("voice capture already in progress", err)
	case errors.Is(err, voice.ErrCanceled):
		return apierrors.Conflict("voice capture canceled", err)
	case err != nil:
		return submitError(err)
	}
	return c.JSON(http.StatusOK, s.chatResponse(res))
}

// CancelVoice aborts a voice capture in progress.
// DELETE /api/v1/voice
func (s *APIV1Service) CancelVoice(c echo.Context) error {
	s.Agent.CancelListening()
	return c.NoContent(http.StatusNoContent)
}

// ListMessages returns the conversation entries after the given sequence
// number, so clients can poll for ring messages.
// GET /api/v1/messages?since=N
func (s *APIV1Service) ListMessages(c echo.Context) error {
	var since int64
	if raw := c.QueryParam("since"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v < 0 {
			return apierrors.InvalidArgument("since must be a non-negative integer", err)
		}
		since = v
	}
	return c.JSON(http.StatusOK, MessagesResponse{
		SessionID: s.Conversation.SessionID,
		Messages:  s.Conversation.Since(since),
	})
}

func (s *APIV1Service) chatResponse(res *agent.Result) ChatResponse {
	resp := ChatResponse{
		SessionID: s.Conversation.SessionID,
		Messages:  res.Messages,
		Alarms:    res.Alarms,
	}
	if res.Intent != nil {
		resp.Intent = string(res.Intent.Kind)
		s.Metrics.RecordIntent(resp.Intent)
	}
	return resp
}

package v1

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/feeds"
	"github.com/labstack/echo/v4"

	"github.com/hrygo/alarmbot/plugin/ai/agent"
	"github.com/hrygo/alarmbot/plugin/ai/reminder"
	"github.com/hrygo/alarmbot/plugin/filter"
	"github.com/hrygo/alarmbot/plugin/ical"
	apierrors "github.com/hrygo/alarmbot/server/internal/errors"
)

// AlarmView is an alarm with its display label and next ring time.
type AlarmView struct {
	*reminder.Alarm
	Label    string `json:"label"`
	NextFire string `json:"next_fire,omitempty"`
}

// ListAlarmsResponse is the body of GET /api/v1/alarms.
type ListAlarmsResponse struct {
	Alarms []AlarmView `json:"alarms"`
	Filter string      `json:"filter,omitempty"`
}

// ListAlarms returns the alarms, optionally narrowed by a CEL filter.
// GET /api/v1/alarms?filter=hour>=12
func (s *APIV1Service) ListAlarms(c echo.Context) error {
	f, err := filter.Compile(c.QueryParam("filter"))
	if err != nil {
		return apierrors.InvalidArgument(err.Error(), err)
	}
	alarms, err := f.Apply(s.Agent.Alarms().List())
	if err != nil {
		return apierrors.InvalidArgument(err.Error(), err)
	}

	now := s.now()
	views := make([]AlarmView, 0, len(alarms))
	for _, a := range alarms {
		view := AlarmView{Alarm: a, Label: label(a)}
		if next, ok := ical.NextFire(a, now); ok {
			view.NextFire = next.Format(time.RFC3339)
		}
		views = append(views, view)
	}
	return c.JSON(http.StatusOK, ListAlarmsResponse{Alarms: views, Filter: f.String()})
}

// DeleteAlarm removes an alarm from the alarm panel.
// DELETE /api/v1/alarms/:id
func (s *APIV1Service) DeleteAlarm(c echo.Context) error {
	alarm, err := s.findAlarm(c)
	if err != nil {
		return err
	}
	ctx, cancel := submitContext(c)
	defer cancel()

	if _, err := s.Agent.Submit(ctx, agent.Event{Type: agent.EventDelete, AlarmID: alarm.ID}); err != nil {
		return submitError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// StopAlarm presses the stop control of a ringing alarm.
// POST /api/v1/alarms/:id/stop
func (s *APIV1Service) StopAlarm(c echo.Context) error {
	alarm, err := s.findAlarm(c)
	if err != nil {
		return err
	}
	if !alarm.IsRinging {
		return apierrors.Conflict(fmt.Sprintf("alarm %d is not ringing", alarm.ID), reminder.ErrNotRinging)
	}

	ctx, cancel := submitContext(c)
	defer cancel()

	res, err := s.Agent.Submit(ctx, agent.Event{Type: agent.EventStop, AlarmID: alarm.ID})
	if err != nil {
		return submitError(err)
	}
	return c.JSON(http.StatusOK, s.chatResponse(res))
}

// ExportAlarms returns the alarms as an iCalendar file.
// GET /api/v1/alarms.ics
func (s *APIV1Service) ExportAlarms(c echo.Context) error {
	data, err := ical.Bytes(s.Agent.Alarms().List(), s.now())
	if err != nil {
		return apierrors.Wrap(err, apierrors.ErrCodeInternal, "failed to export alarms")
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="alarms.ics"`)
	return c.Blob(http.StatusOK, ical.ContentType, data)
}

// GetAlarmFeed returns the alarms as an Atom, RSS or JSON feed, one item
// per alarm dated at its next ring.
// GET /api/v1/alarms/feed?format=atom|rss|json
func (s *APIV1Service) GetAlarmFeed(c echo.Context) error {
	now := s.now()
	base := fmt.Sprintf("%s://%s/api/v1/alarms", c.Scheme(), c.Request().Host)

	feed := &feeds.Feed{
		Title:       "alarmbot alarms",
		Link:        &feeds.Link{Href: base},
		Description: "Alarms set in the alarmbot conversation " + s.Conversation.SessionID,
		Id:          base,
		Created:     now,
		Updated:     now,
	}
	for _, a := range s.Agent.Alarms().List() {
		created := now
		if next, ok := ical.NextFire(a, now); ok {
			created = next
		}
		feed.Items = append(feed.Items, &feeds.Item{
			Id:          ical.UID(a),
			Title:       fmt.Sprintf("%s %s", a.Time, a.Description),
			Link:        &feeds.Link{Href: fmt.Sprintf("%s?filter=id==%d", base, a.ID)},
			Description: label(a),
			Created:     created,
		})
	}

	var (
		body        string
		contentType string
		err         error
	)
	switch c.QueryParam("format") {
	case "", "atom":
		body, err = feed.ToAtom()
		contentType = "application/atom+xml; charset=utf-8"
	case "rss":
		body, err = feed.ToRss()
		contentType = "application/rss+xml; charset=utf-8"
	case "json":
		body, err = feed.ToJSON()
		contentType = echo.MIMEApplicationJSONCharsetUTF8
	default:
		return apierrors.InvalidArgument("format must be atom, rss or json", nil)
	}
	if err != nil {
		return apierrors.Wrap(err, apierrors.ErrCodeInternal, "failed to render feed")
	}
	return c.Blob(http.StatusOK, contentType, []byte(body))
}

func (s *APIV1Service) findAlarm(c echo.Context) (*reminder.Alarm, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return nil, apierrors.InvalidArgument("invalid alarm id", err)
	}
	for _, a := range s.Agent.Alarms().List() {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, apierrors.NotFound(fmt.Sprintf("alarm %d not found", id))
}

// label renders an alarm the way the alarm panel shows it.
func label(a *reminder.Alarm) string {
	text := a.Time + " " + a.Description
	if d := a.DateLabel(); d != "" {
		text += " " + d
	}
	if a.IsRinging {
		text += " (ringing)"
	}
	return text
}

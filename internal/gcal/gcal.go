// Package gcal wraps the Google Calendar API for listing a user's
// upcoming events and committing staged syllabus events.
package gcal

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"gitea.jw6.us/james/syllacal/internal/colors"
	"gitea.jw6.us/james/syllacal/internal/reminders"
	"gitea.jw6.us/james/syllacal/internal/staging"
)

const (
	primaryCalendar  = "primary"
	upcomingMaxItems = 50
)

// Client talks to a single user's primary calendar.
type Client struct {
	service *calendar.Service
}

func NewClient(ctx context.Context, ts oauth2.TokenSource) (*Client, error) {
	service, err := calendar.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}
	return &Client{service: service}, nil
}

// UpcomingEvent is the subset of calendar event data the frontend shows
// and the color picker inspects.
type UpcomingEvent struct {
	ID      string            `json:"id"`
	Summary string            `json:"summary"`
	Start   *staging.DateTime `json:"start,omitempty"`
	End     *staging.DateTime `json:"end,omitempty"`
	ColorID string            `json:"colorId,omitempty"`
}

// ListUpcoming returns the next events on the primary calendar, ordered
// by start time, recurring events expanded.
func (c *Client) ListUpcoming(ctx context.Context, timeMin string) ([]UpcomingEvent, error) {
	call := c.service.Events.List(primaryCalendar).
		Context(ctx).
		ShowDeleted(false).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(upcomingMaxItems)
	if timeMin != "" {
		call = call.TimeMin(timeMin)
	}

	res, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	out := make([]UpcomingEvent, 0, len(res.Items))
	for _, item := range res.Items {
		out = append(out, UpcomingEvent{
			ID:      item.Id,
			Summary: item.Summary,
			Start:   toDateTime(item.Start),
			End:     toDateTime(item.End),
			ColorID: item.ColorId,
		})
	}
	return out, nil
}

// ColorSummaries converts upcoming events into the shape the color
// picker uses to avoid colliding with colors already on the calendar.
func ColorSummaries(events []UpcomingEvent) []colors.EventSummary {
	out := make([]colors.EventSummary, 0, len(events))
	for _, e := range events {
		out = append(out, colors.EventSummary{ID: e.ID, ColorID: e.ColorID})
	}
	return out
}

// InsertResult reports how a commit batch fared. Inserts continue past
// individual failures so one malformed event does not sink the batch.
type InsertResult struct {
	Inserted int
	Failed   int
	Err      error
}

// Insert writes each staged event to the primary calendar.
func (c *Client) Insert(ctx context.Context, events []staging.Event) InsertResult {
	var res InsertResult
	var errs []error
	for i, e := range events {
		body := toCalendarEvent(e)
		if _, err := c.service.Events.Insert(primaryCalendar, body).Context(ctx).Do(); err != nil {
			res.Failed++
			errs = append(errs, fmt.Errorf("insert event %d (%q): %w", i, e.Summary, err))
			continue
		}
		res.Inserted++
	}
	res.Err = errors.Join(errs...)
	return res
}

// Update replaces a single calendar event in place.
func (c *Client) Update(ctx context.Context, id string, e staging.Event) error {
	if _, err := c.service.Events.Update(primaryCalendar, id, toCalendarEvent(e)).Context(ctx).Do(); err != nil {
		return fmt.Errorf("update event %s: %w", id, err)
	}
	return nil
}

// Delete removes events by ID, best effort. It returns how many were
// actually deleted alongside any errors.
func (c *Client) Delete(ctx context.Context, ids []string) (int, error) {
	deleted := 0
	var errs []error
	for _, id := range ids {
		if id == "" {
			continue
		}
		if err := c.service.Events.Delete(primaryCalendar, id).Context(ctx).Do(); err != nil {
			errs = append(errs, fmt.Errorf("delete event %s: %w", id, err))
			continue
		}
		deleted++
	}
	return deleted, errors.Join(errs...)
}

func toDateTime(edt *calendar.EventDateTime) *staging.DateTime {
	if edt == nil {
		return nil
	}
	return &staging.DateTime{
		Date:     edt.Date,
		DateTime: edt.DateTime,
		TimeZone: edt.TimeZone,
	}
}

func toCalendarEvent(e staging.Event) *calendar.Event {
	out := &calendar.Event{
		Summary:     e.Summary,
		Description: e.Description,
		Location:    e.Location,
		Start:       fromDateTime(e.Start),
		End:         fromDateTime(e.End),
		Recurrence:  e.Recurrence,
		ColorId:     e.ColorID,
		Reminders:   toEventReminders(e.Reminders),
	}
	return out
}

func fromDateTime(dt *staging.DateTime) *calendar.EventDateTime {
	if dt == nil {
		return nil
	}
	return &calendar.EventDateTime{
		Date:     dt.Date,
		DateTime: dt.DateTime,
		TimeZone: dt.TimeZone,
	}
}

func toEventReminders(o *reminders.Overrides) *calendar.EventReminders {
	if o == nil {
		// Omitting the block entirely leaves the user's calendar-level
		// default reminders in charge.
		return nil
	}
	out := &calendar.EventReminders{
		UseDefault: o.UseDefault,
		// useDefault:false must survive JSON encoding or the API treats
		// the overrides as absent.
		ForceSendFields: []string{"UseDefault"},
	}
	for _, item := range o.Items {
		out.Overrides = append(out.Overrides, &calendar.EventReminder{
			Method:  item.Method,
			Minutes: int64(item.Minutes),
		})
	}
	return out
}

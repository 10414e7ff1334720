// Package staging holds candidate events between extraction and commit: the
// reviewable staged list plus the composition of classification, reminder
// resolution, and color assignment into the final commit batch.
package staging

import "gitea.jw6.us/james/syllacal/internal/reminders"

// DateTime is a temporal anchor: either an all-day date or a point in time.
// The value is never interpreted here, only forwarded to the calendar.
type DateTime struct {
	Date     string `json:"date,omitempty"`
	DateTime string `json:"dateTime,omitempty"`
	TimeZone string `json:"timeZone,omitempty"`
}

// Event is one candidate calendar event. Extraction produces it, the user
// reviews it, and commit forwards it. Every field beyond Summary and Start
// is opaque pass-through; ColorID and Reminders are filled in at commit time.
type Event struct {
	Summary     string               `json:"summary"`
	Description string               `json:"description,omitempty"`
	Location    string               `json:"location,omitempty"`
	Start       *DateTime            `json:"start,omitempty"`
	End         *DateTime            `json:"end,omitempty"`
	Recurrence  []string             `json:"recurrence,omitempty"`
	ColorID     string               `json:"colorId,omitempty"`
	Reminders   *reminders.Overrides `json:"reminders,omitempty"`
}

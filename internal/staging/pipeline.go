package staging

import (
	"errors"
	"fmt"
	"math/rand"

	"gitea.jw6.us/james/syllacal/internal/classify"
	"gitea.jw6.us/james/syllacal/internal/colors"
	"gitea.jw6.us/james/syllacal/internal/reminders"
)

// ErrIndexOutOfRange indicates a removal index that no longer exists,
// typically a double-click against a stale list.
var ErrIndexOutOfRange = errors.New("staged event index out of range")

// Pipeline owns one user's staged list. Events have no stable identity; they
// are addressed by position, and removal shifts subsequent indices. A
// Pipeline is not safe for concurrent use on its own; Registry serializes
// access per session.
type Pipeline struct {
	events []Event
}

// SetStaged replaces the entire staged list, discarding prior edits. It is
// called when a new extraction batch arrives, regardless of anything else in
// flight.
func (p *Pipeline) SetStaged(events []Event) {
	p.events = make([]Event, len(events))
	copy(p.events, events)
}

// Events returns a copy of the staged list in order.
func (p *Pipeline) Events() []Event {
	out := make([]Event, len(p.events))
	copy(out, p.events)
	return out
}

// Len returns the number of staged events.
func (p *Pipeline) Len() int {
	return len(p.events)
}

// RemoveAt splices one event out of the staged list.
func (p *Pipeline) RemoveAt(index int) error {
	if index < 0 || index >= len(p.events) {
		return fmt.Errorf("remove staged event %d of %d: %w", index, len(p.events), ErrIndexOutOfRange)
	}
	p.events = append(p.events[:index], p.events[index+1:]...)
	return nil
}

// Clear empties the staged list. Called by the commit handler only after the
// calendar collaborator confirms success, so a failed commit leaves the list
// intact for retry.
func (p *Pipeline) Clear() {
	p.events = nil
}

// BuildCommitBatch produces the commit payload: each staged event in order,
// with reminder overrides resolved from its classified category and a color
// id drawn from one availability snapshot shared by the whole batch. The
// staged list itself is not mutated. A reminders stub carried over from
// extraction is replaced outright, so an event with no matching rules ships
// without a reminders block and inherits the calendar's defaults.
func (p *Pipeline) BuildCommitBatch(settings *reminders.Settings, colorChoice string, existing []colors.EventSummary, rng *rand.Rand) []Event {
	picker := colors.NewPicker(existing, rng)

	batch := make([]Event, len(p.events))
	for i, e := range p.events {
		category, _ := classify.Classify(e.Summary)
		e.Reminders = reminders.Resolve(settings, category)
		e.ColorID = picker.Pick(colorChoice)
		batch[i] = e
	}
	return batch
}

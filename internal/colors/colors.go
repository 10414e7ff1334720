// Package colors picks Google Calendar color ids for newly committed events,
// preferring colors not already in use on the calendar.
package colors

import "math/rand"

// Random is the sentinel color choice meaning "pick one for me".
const Random = "random"

// palette is the calendar's fixed set of event color ids.
var palette = []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11"}

// Palette returns a copy of the fixed color id set.
func Palette() []string {
	out := make([]string, len(palette))
	copy(out, palette)
	return out
}

// EventSummary is the slice of a remote calendar event this package reads:
// just enough to know which colors are taken.
type EventSummary struct {
	ID      string
	ColorID string
}

// Picker draws color ids against an availability snapshot taken once per
// commit batch. Draws are independent; the snapshot is not updated as colors
// are handed out, so duplicates within a batch are possible and acceptable.
type Picker struct {
	available []string
	rng       *rand.Rand
}

// NewPicker snapshots which palette colors are unused by existing events.
// Events with no color are ignored. The random source is injected so the
// prefer-unused-else-uniform policy is deterministically testable.
func NewPicker(existing []EventSummary, rng *rand.Rand) *Picker {
	used := make(map[string]bool, len(existing))
	for _, e := range existing {
		if e.ColorID != "" {
			used[e.ColorID] = true
		}
	}

	var available []string
	for _, c := range palette {
		if !used[c] {
			available = append(available, c)
		}
	}
	return &Picker{available: available, rng: rng}
}

// Pick returns the requested color id unchanged when it is a specific
// choice; explicit user choice always wins. For Random it draws uniformly
// from the unused colors, falling back to the full palette once every color
// is already on the calendar.
func (p *Picker) Pick(requested string) string {
	if requested != Random {
		return requested
	}
	if len(p.available) > 0 {
		return p.available[p.rng.Intn(len(p.available))]
	}
	return palette[p.rng.Intn(len(palette))]
}

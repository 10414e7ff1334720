package reminders

// Override is a single calendar-native reminder: a popup Minutes before the
// event start. It mirrors the Google Calendar event reminder override shape.
type Override struct {
	Method  string `json:"method"`
	Minutes int    `json:"minutes"`
}

// Overrides is the reminders block attached to a committed event when at
// least one rule matched. UseDefault is always false here; an event with no
// matching rules omits the block entirely so the calendar's own default
// reminder policy applies.
type Overrides struct {
	UseDefault bool       `json:"useDefault"`
	Items      []Override `json:"overrides"`
}

var minutesPerUnit = map[string]int{
	UnitMinutes: 1,
	UnitHours:   60,
	UnitDays:    60 * 24,
	UnitWeeks:   60 * 24 * 7,
}

// Resolve converts the rules stored for category into calendar-ready
// overrides, one per rule in stored order, duplicates preserved. An empty
// category (the none case from classification) or an empty rule sequence
// yields nil. An unrecognized unit passes the amount through as minutes.
func Resolve(s *Settings, category Category) *Overrides {
	if s == nil || category == "" {
		return nil
	}
	rules := s.Categories[category]
	if len(rules) == 0 {
		return nil
	}

	out := &Overrides{UseDefault: false, Items: make([]Override, 0, len(rules))}
	for _, r := range rules {
		factor, ok := minutesPerUnit[r.Unit]
		if !ok {
			factor = 1
		}
		out.Items = append(out.Items, Override{Method: "popup", Minutes: r.Amount * factor})
	}
	return out
}

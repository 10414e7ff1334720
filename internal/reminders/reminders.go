// Package reminders holds the per-category reminder configuration: a
// versioned settings blob, the mutation operations the settings UI performs
// on it, and the conversion of stored rules into calendar-ready overrides.
package reminders

import "encoding/json"

// SchemaVersion is the current version of the persisted settings blob.
// A stored blob with any other version is discarded wholesale on load.
const SchemaVersion = 1

// Category identifies one of the six fixed reminder buckets.
type Category string

const (
	CategoryExam       Category = "exam"
	CategoryLecture    Category = "lecture"
	CategoryAssignment Category = "assignment"
	CategoryQuiz       Category = "quiz"
	CategoryProject    Category = "project"
	CategoryBreak      Category = "break"
)

// Categories returns the fixed category set in display order.
func Categories() []Category {
	return []Category{
		CategoryExam,
		CategoryLecture,
		CategoryAssignment,
		CategoryQuiz,
		CategoryProject,
		CategoryBreak,
	}
}

// Valid reports whether c is one of the fixed categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryExam, CategoryLecture, CategoryAssignment,
		CategoryQuiz, CategoryProject, CategoryBreak:
		return true
	}
	return false
}

// Units accepted by the settings editor. The unit field is stored as given;
// a value outside this set simply fails to match any conversion factor and
// the rule's amount passes through as minutes.
const (
	UnitMinutes = "minutes"
	UnitHours   = "hours"
	UnitDays    = "days"
	UnitWeeks   = "weeks"
)

// Rule is a single "remind me Amount Units before the event" instruction.
type Rule struct {
	Amount int    `json:"amount"`
	Unit   string `json:"unit"`
}

// Settings is the versioned, category-keyed reminder configuration for one
// user. Every fixed category has an entry after initialization, possibly
// empty. Only the fields declared here survive an encode/decode round trip;
// anything else in a stored blob (including stale credential material) is
// dropped on load.
type Settings struct {
	SchemaVersion int                 `json:"schemaVersion"`
	Categories    map[Category][]Rule `json:"categories"`
}

// Defaults returns a fresh settings value at the current schema version with
// all six categories present and empty.
func Defaults() *Settings {
	s := &Settings{
		SchemaVersion: SchemaVersion,
		Categories:    make(map[Category][]Rule, 6),
	}
	for _, c := range Categories() {
		s.Categories[c] = []Rule{}
	}
	return s
}

// Load decodes a persisted settings blob. A nil or empty blob, a blob that
// does not decode, or a blob whose schemaVersion differs from currentVersion
// all yield Defaults(); no field of a stale blob is ever retained. On a
// version match only the six fixed categories are copied over, so unknown
// category keys from older writes disappear.
func Load(raw []byte, currentVersion int) *Settings {
	s := Defaults()
	if len(raw) == 0 {
		return s
	}

	var stored Settings
	if err := json.Unmarshal(raw, &stored); err != nil {
		return s
	}
	if stored.SchemaVersion != currentVersion {
		return s
	}

	for _, c := range Categories() {
		if rules, ok := stored.Categories[c]; ok && rules != nil {
			s.Categories[c] = rules
		}
	}
	return s
}

// Encode serializes the settings for persistence.
func (s *Settings) Encode() ([]byte, error) {
	return json.Marshal(s)
}

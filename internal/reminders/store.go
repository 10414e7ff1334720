package reminders

import (
	"context"
	"fmt"
	"strconv"
)

// Saver persists the encoded settings blob. Persistence is synchronous and
// total: the whole blob is rewritten after every mutation.
type Saver interface {
	SaveSettings(ctx context.Context, blob []byte) error
}

// Store binds a settings value to its persistence. It is not safe for
// concurrent use; callers serialize access (the API layer holds one store
// per request, loaded from and written back to the settings repository).
type Store struct {
	settings *Settings
	saver    Saver
}

// NewStore wraps settings with a saver. A nil settings starts from defaults.
func NewStore(settings *Settings, saver Saver) *Store {
	if settings == nil {
		settings = Defaults()
	}
	return &Store{settings: settings, saver: saver}
}

// Settings exposes the current value for resolution and display.
func (st *Store) Settings() *Settings {
	return st.settings
}

// AddRule appends a rule to the category's sequence and persists.
func (st *Store) AddRule(ctx context.Context, category Category, rule Rule) error {
	if !category.Valid() {
		return fmt.Errorf("add rule to %q: %w", category, ErrInvalidCategory)
	}
	st.settings.Categories[category] = append(st.settings.Categories[category], rule)
	return st.persist(ctx)
}

// UpdateRule sets one field of an existing rule and persists. The amount
// field follows the permissive editing contract: non-numeric or negative
// input is coerced to 0 rather than rejected, and the returned flag reports
// that a coercion happened so callers can surface a warning. The unit field
// is stored as given with no validation; an unrecognized unit just fails to
// match a conversion factor at resolve time.
func (st *Store) UpdateRule(ctx context.Context, category Category, index int, field, value string) (coerced bool, err error) {
	if !category.Valid() {
		return false, fmt.Errorf("update rule in %q: %w", category, ErrInvalidCategory)
	}
	rules := st.settings.Categories[category]
	if index < 0 || index >= len(rules) {
		return false, fmt.Errorf("update rule %d in %q: %w", index, category, ErrIndexOutOfRange)
	}

	switch field {
	case "amount":
		amount, ok := parseAmount(value)
		rules[index].Amount = amount
		coerced = !ok
	case "unit":
		rules[index].Unit = value
	default:
		return false, fmt.Errorf("update rule in %q: unknown field %q", category, field)
	}

	return coerced, st.persist(ctx)
}

// RemoveRule deletes a rule by index and persists. Invalid category or index
// returns the matching sentinel error; callers decide whether to swallow it
// (the editing UI treats it as a no-op and counts it).
func (st *Store) RemoveRule(ctx context.Context, category Category, index int) error {
	if !category.Valid() {
		return fmt.Errorf("remove rule from %q: %w", category, ErrInvalidCategory)
	}
	rules := st.settings.Categories[category]
	if index < 0 || index >= len(rules) {
		return fmt.Errorf("remove rule %d from %q: %w", index, category, ErrIndexOutOfRange)
	}
	st.settings.Categories[category] = append(rules[:index], rules[index+1:]...)
	return st.persist(ctx)
}

func (st *Store) persist(ctx context.Context) error {
	if st.saver == nil {
		return nil
	}
	blob, err := st.settings.Encode()
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := st.saver.SaveSettings(ctx, blob); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// parseAmount applies the coerce-don't-reject policy for user-typed numeric
// fields. The second return is false when the input had to be corrected.
func parseAmount(value string) (int, bool) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, false
	}
	if n < 0 {
		return 0, false
	}
	return n, true
}

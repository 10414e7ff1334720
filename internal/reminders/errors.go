package reminders

import "errors"

// ErrInvalidCategory indicates a category outside the fixed set. This is a
// programming error on the caller's side, not user input.
var ErrInvalidCategory = errors.New("invalid reminder category")

// ErrIndexOutOfRange indicates a rule index that does not exist, typically a
// stale edit from a UI race. Callers are expected to treat it as a no-op.
var ErrIndexOutOfRange = errors.New("rule index out of range")

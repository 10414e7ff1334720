package staging

import (
	"math/rand"
	"sync"

	"gitea.jw6.us/james/syllacal/internal/colors"
	"gitea.jw6.us/james/syllacal/internal/reminders"
)

// Registry maps session ids to their staging pipelines. The staged list is
// mutable shared state with read-modify-write updates, so all access goes
// through the registry mutex (single-writer discipline).
type Registry struct {
	mu        sync.Mutex
	pipelines map[string]*Pipeline
}

func NewRegistry() *Registry {
	return &Registry{pipelines: make(map[string]*Pipeline)}
}

func (r *Registry) pipeline(sessionID string) *Pipeline {
	p, ok := r.pipelines[sessionID]
	if !ok {
		p = &Pipeline{}
		r.pipelines[sessionID] = p
	}
	return p
}

// SetStaged replaces the session's staged list.
func (r *Registry) SetStaged(sessionID string, events []Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pipeline(sessionID).SetStaged(events)
}

// Events returns a copy of the session's staged list.
func (r *Registry) Events(sessionID string) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipeline(sessionID).Events()
}

// RemoveAt removes one staged event by position.
func (r *Registry) RemoveAt(sessionID string, index int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipeline(sessionID).RemoveAt(index)
}

// Clear drops the session's staged list after a confirmed commit.
func (r *Registry) Clear(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pipeline(sessionID).Clear()
}

// BuildCommitBatch builds the session's commit payload without mutating the
// staged list.
func (r *Registry) BuildCommitBatch(sessionID string, settings *reminders.Settings, colorChoice string, existing []colors.EventSummary, rng *rand.Rand) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipeline(sessionID).BuildCommitBatch(settings, colorChoice, existing, rng)
}

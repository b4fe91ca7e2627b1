package memory

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/execution-hub/supervisor/internal/domain/intent"
	"github.com/execution-hub/supervisor/internal/domain/worker"
)

type entry struct {
	mu    sync.RWMutex
	desc  worker.Descriptor
	terms [][]string
}

// Registry is an in-process worker registry. Entries are never removed;
// health is guarded per entry so checks on different workers do not contend.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
	order   []string
}

func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*entry),
	}
}

// Register adds a worker. Registration order breaks keyword score ties.
func (r *Registry) Register(d worker.Descriptor) error {
	if err := d.Validate(); err != nil {
		return err
	}
	d = d.Clone()
	if d.Health == "" {
		d.Health = worker.HealthUnknown
	}
	e := &entry{desc: d}
	for _, term := range d.Terms() {
		if words := intent.TermWords(term); len(words) > 0 {
			e.terms = append(e.terms, words)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[d.ID]; ok {
		return fmt.Errorf("%w: %s", worker.ErrDuplicate, d.ID)
	}
	r.entries[d.ID] = e
	r.order = append(r.order, d.ID)
	return nil
}

func (r *Registry) Lookup(id string) (worker.Descriptor, error) {
	e := r.get(id)
	if e == nil {
		return worker.Descriptor{}, fmt.Errorf("%w: %s", worker.ErrNotFound, id)
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.desc.Clone(), nil
}

// All returns every worker in registration order.
func (r *Registry) All() []worker.Descriptor {
	r.mu.RLock()
	entries := make([]*entry, 0, len(r.order))
	for _, id := range r.order {
		entries = append(entries, r.entries[id])
	}
	r.mu.RUnlock()

	out := make([]worker.Descriptor, 0, len(entries))
	for _, e := range entries {
		e.mu.RLock()
		out = append(out, e.desc.Clone())
		e.mu.RUnlock()
	}
	return out
}

// UpdateHealth overwrites the stored health and check time of one worker.
func (r *Registry) UpdateHealth(id string, health worker.Health, checkedAt time.Time) error {
	e := r.get(id)
	if e == nil {
		return fmt.Errorf("%w: %s", worker.ErrNotFound, id)
	}
	t := checkedAt.UTC()
	e.mu.Lock()
	e.desc.Health = health
	e.desc.LastChecked = &t
	e.mu.Unlock()
	return nil
}

// MatchByKeyword scores every worker by the number of keyword or capability
// terms fully present in tokens. Workers with a zero score are omitted.
func (r *Registry) MatchByKeyword(tokens map[string]struct{}) []worker.Match {
	r.mu.RLock()
	entries := make([]*entry, 0, len(r.order))
	for _, id := range r.order {
		entries = append(entries, r.entries[id])
	}
	r.mu.RUnlock()

	var matches []worker.Match
	for _, e := range entries {
		score := 0
		for _, words := range e.terms {
			if containsAll(tokens, words) {
				score++
			}
		}
		if score == 0 {
			continue
		}
		e.mu.RLock()
		matches = append(matches, worker.Match{Worker: e.desc.Clone(), Score: score})
		e.mu.RUnlock()
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches
}

func (r *Registry) get(id string) *entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.entries[id]
}

func containsAll(tokens map[string]struct{}, words []string) bool {
	for _, w := range words {
		if _, ok := tokens[w]; !ok {
			return false
		}
	}
	return true
}

// Package collision detects metric identifier collisions across a scan
// batch. Payload descriptors identify metrics by their xxHash64 digest;
// when two distinct metric names in a batch produce the same digest, the
// IDs stop being usable as names and downstream consumers need to know.
package collision

// Tracker records every (identifier, name) pair observed during a batch
// and remembers the identifiers claimed by more than one distinct name.
// Seeing the same name repeatedly is the normal case across documents and
// is not a collision.
//
// Note: Tracker is NOT thread-safe. Callers serialize Track invocations.
type Tracker struct {
	names map[uint64]string
	extra map[uint64][]string
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		names: make(map[uint64]string),
	}
}

// Track records one observed metric. It reports false when the identifier
// is already claimed by a different name.
func (t *Tracker) Track(id uint64, name string) bool {
	existing, ok := t.names[id]
	if !ok {
		t.names[id] = name
		return true
	}
	if existing == name {
		return true
	}

	for _, n := range t.extra[id] {
		if n == name {
			return false
		}
	}
	if t.extra == nil {
		t.extra = make(map[uint64][]string)
	}
	t.extra[id] = append(t.extra[id], name)

	return false
}

// HasCollision reports whether any identifier was claimed by more than one
// distinct name.
func (t *Tracker) HasCollision() bool {
	return len(t.extra) > 0
}

// Count returns the number of distinct identifiers observed.
func (t *Tracker) Count() int {
	return len(t.names)
}

// Collisions returns the distinct names of every colliding identifier, the
// first-seen name leading. The result is nil when no collision occurred.
func (t *Tracker) Collisions() map[uint64][]string {
	if len(t.extra) == 0 {
		return nil
	}

	out := make(map[uint64][]string, len(t.extra))
	for id, names := range t.extra {
		all := make([]string, 0, len(names)+1)
		all = append(all, t.names[id])
		all = append(all, names...)
		out[id] = all
	}

	return out
}

// Reset clears all tracked state, keeping the allocated maps.
func (t *Tracker) Reset() {
	clear(t.names)
	clear(t.extra)
}

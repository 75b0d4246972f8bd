// Package overlay implements a copy-on-write map that lets callers hold a
// stable, point-in-time snapshot of a map's contents while writes keep
// flowing in. Writes taken while at least one snapshot is outstanding land
// in an overlay instead of the base map; the overlay reconciles into the
// base map once the last snapshot is released.
//
// This exists so a board's saver can serialize a board's entries without
// blocking concurrent updates, and without the saver seeing a half-written
// map mid-walk.
package overlay

import "sync"

// tombstone distinguishes "key removed" (present=false) from "key set to
// the zero value" (present=true, value=zero) in the overlay diff — Go maps
// can't make that distinction on their own the way a nested Option can.
type tombstone[V any] struct {
	present bool
	value   V
}

// Map is a snapshot-capable key/value map. The zero value is not usable;
// construct with New.
type Map[K comparable, V any] struct {
	mu        sync.Mutex
	base      map[K]V
	diff      map[K]tombstone[V]
	cleared   bool
	snapshots int
}

// New returns an empty Map.
func New[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{base: make(map[K]V)}
}

// FromMap returns a Map seeded with the given contents. m is taken by
// reference; the caller must not touch it afterward.
func FromMap[K comparable, V any](m map[K]V) *Map[K, V] {
	if m == nil {
		m = make(map[K]V)
	}
	return &Map[K, V]{base: m}
}

// Get returns the value for key and whether it is present.
func (m *Map[K, V]) Get(key K) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if d, ok := m.diff[key]; ok {
		return d.value, d.present
	}
	if m.cleared {
		var zero V
		return zero, false
	}
	v, ok := m.base[key]
	return v, ok
}

// Contains reports whether key is present.
func (m *Map[K, V]) Contains(key K) bool {
	_, ok := m.Get(key)
	return ok
}

// Insert sets key to val, returning the previous value (if any).
func (m *Map[K, V]) Insert(key K, val V) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.snapshots == 0 {
		old, ok := m.base[key]
		m.base[key] = val
		return old, ok
	}

	var old V
	var hadOld bool
	if d, ok := m.diff[key]; ok {
		old, hadOld = d.value, d.present
	} else if !m.cleared {
		old, hadOld = m.base[key]
	}
	m.diff[key] = tombstone[V]{present: true, value: val}
	return old, hadOld
}

// Remove deletes key, returning the removed value (if any).
func (m *Map[K, V]) Remove(key K) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.snapshots == 0 {
		old, ok := m.base[key]
		delete(m.base, key)
		return old, ok
	}

	if d, ok := m.diff[key]; ok {
		m.diff[key] = tombstone[V]{}
		return d.value, d.present
	}
	if m.cleared {
		return *new(V), false
	}
	old, ok := m.base[key]
	if ok {
		m.diff[key] = tombstone[V]{}
	}
	return old, ok
}

// Clear empties the map.
func (m *Map[K, V]) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.snapshots == 0 {
		m.base = make(map[K]V)
		return
	}
	m.cleared = true
	m.diff = make(map[K]tombstone[V])
}

// Len reports the current number of entries. Takes the reconciliation-free
// slow path (walking the diff) when a snapshot is outstanding, since the
// count can't be read off base alone in that state.
func (m *Map[K, V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.snapshots == 0 {
		return len(m.base)
	}

	n := 0
	if !m.cleared {
		n = len(m.base)
	}
	for k, d := range m.diff {
		_, inBase := m.base[k]
		switch {
		case d.present && m.cleared:
			n++
		case d.present && inBase:
			// already counted in base
		case d.present:
			n++
		case !d.present && inBase && !m.cleared:
			n--
		}
	}
	return n
}

// reconcileChunk is how many diff keys are folded into base per lock hold
// during reconciliation, so a huge diff doesn't monopolize the mutex in one
// go and starve concurrent readers/writers.
const reconcileChunk = 256

// Snapshot freezes the current contents for reading. The map keeps
// accepting writes (diverted to an overlay) until every outstanding
// Snapshot is closed.
func (m *Map[K, V]) Snapshot() *Snapshot[K, V] {
	m.mu.Lock()
	m.snapshots++
	if m.diff == nil {
		m.diff = make(map[K]tombstone[V])
	}
	m.mu.Unlock()
	return &Snapshot[K, V]{m: m}
}

// Snapshot is a point-in-time read view obtained from Map.Snapshot. It must
// be closed or the map will keep diverting writes to the overlay forever.
type Snapshot[K comparable, V any] struct {
	m      *Map[K, V]
	closed bool
}

// Each calls fn once per entry in the base map, which is frozen the moment
// the first snapshot of an overlapping group is taken and stays frozen
// until every snapshot in that group is closed. Writes made while any
// snapshot is outstanding land in the overlay and are deliberately
// invisible to Each, regardless of whether they happened before or after
// this particular snapshot was obtained relative to others in the group —
// every snapshot in a group reads the same frozen base. fn must not call
// back into the Map or Snapshot.
func (s *Snapshot[K, V]) Each(fn func(K, V)) {
	s.m.mu.Lock()
	base := s.m.base
	s.m.mu.Unlock()

	for k, v := range base {
		fn(k, v)
	}
}

// Close releases the snapshot. Once the last outstanding snapshot on a Map
// is closed, the overlay reconciles into the base map in chunks.
func (s *Snapshot[K, V]) Close() {
	if s.closed {
		return
	}
	s.closed = true

	m := s.m
	m.mu.Lock()
	m.snapshots--
	if m.snapshots > 0 {
		m.mu.Unlock()
		return
	}

	if m.cleared {
		m.base = make(map[K]V)
		m.cleared = false
	}

	for len(m.diff) > 0 {
		n := 0
		for k, d := range m.diff {
			if d.present {
				m.base[k] = d.value
			} else {
				delete(m.base, k)
			}
			delete(m.diff, k)
			n++
			if n >= reconcileChunk {
				break
			}
		}
		// Yield the lock between chunks so concurrent Get/Insert/Snapshot
		// calls aren't blocked for the whole reconciliation of a large
		// diff. If a new snapshot arrived while unlocked, stop folding and
		// let that snapshot's own eventual Close finish the job.
		m.mu.Unlock()
		m.mu.Lock()
		if m.snapshots > 0 {
			m.mu.Unlock()
			return
		}
	}
	m.mu.Unlock()
}

// Package layered implements an immutable map built from stacked write layers.
//
// Every call to With returns a new Map that shares all older layers with its
// parent, so publishing a new version costs the size of the writes rather than
// the size of the map. Once the stack grows past MaxDepth the layers are
// flattened into a single base layer.
package layered

// MaxDepth is the number of layers after which With flattens the map.
const MaxDepth = 32

// Map is an immutable map. The zero value is not usable; call New.
type Map[K comparable, V any] struct {
	entries map[K]V
	parent  *Map[K, V]
	depth   int
	size    int
}

// New returns an empty map.
func New[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{entries: map[K]V{}}
}

// FromMap returns a single layer map holding a copy of items.
func FromMap[K comparable, V any](items map[K]V) *Map[K, V] {
	entries := make(map[K]V, len(items))
	for k, v := range items {
		entries[k] = v
	}
	return &Map[K, V]{entries: entries, size: len(entries)}
}

// Get returns the newest value for k.
func (m *Map[K, V]) Get(k K) (V, bool) {
	for l := m; l != nil; l = l.parent {
		if v, ok := l.entries[k]; ok {
			return v, true
		}
	}
	var zero V
	return zero, false
}

// Has reports whether k is present.
func (m *Map[K, V]) Has(k K) bool {
	_, ok := m.Get(k)
	return ok
}

// Len returns the number of distinct keys.
func (m *Map[K, V]) Len() int {
	return m.size
}

// Depth returns the number of layers below the top one.
func (m *Map[K, V]) Depth() int {
	return m.depth
}

// With returns a new map with writes applied on top of m. m is left unchanged and
// writes is copied, so the caller may reuse it.
func (m *Map[K, V]) With(writes map[K]V) *Map[K, V] {
	if len(writes) == 0 {
		return m
	}
	size := m.size
	entries := make(map[K]V, len(writes))
	for k, v := range writes {
		if !m.Has(k) {
			size++
		}
		entries[k] = v
	}
	next := &Map[K, V]{entries: entries, parent: m, depth: m.depth + 1, size: size}
	if next.depth > MaxDepth {
		return next.flatten()
	}
	return next
}

// Range calls f for each key with its newest value until f returns false.
// Iteration order is unspecified.
func (m *Map[K, V]) Range(f func(k K, v V) bool) {
	if m.parent == nil {
		for k, v := range m.entries {
			if !f(k, v) {
				return
			}
		}
		return
	}
	seen := make(map[K]struct{}, m.size)
	for l := m; l != nil; l = l.parent {
		for k, v := range l.entries {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			if !f(k, v) {
				return
			}
		}
	}
}

// Keys returns every key in the map.
func (m *Map[K, V]) Keys() []K {
	keys := make([]K, 0, m.size)
	m.Range(func(k K, _ V) bool {
		keys = append(keys, k)
		return true
	})
	return keys
}

func (m *Map[K, V]) flatten() *Map[K, V] {
	entries := make(map[K]V, m.size)
	m.Range(func(k K, v V) bool {
		entries[k] = v
		return true
	})
	return &Map[K, V]{entries: entries, size: len(entries)}
}

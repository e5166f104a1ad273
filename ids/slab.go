// Package ids provides a dense slab allocator used wherever the protocol
// needs small, reusable integer ids with O(1) allocate/free: memory file
// table slots and peer-activation slots. It follows the same free-list
// pattern as the Rust original's `slab::Slab` usage
// (original_source/crates/client/src/memory.rs, client_node.rs), translated
// to a generic Go type.
package ids

// Slab is a generic dense arena: Insert returns a small integer key that
// stays valid (and stable) until Remove is called for it, after which the
// slot is recycled by a later Insert. Zero value is an empty, usable Slab.
type Slab[T any] struct {
	entries []slabEntry[T]
	free    []uint32
	len     int
}

type slabEntry[T any] struct {
	value    T
	occupied bool
}

// Insert stores v and returns the key it was stored under.
func (s *Slab[T]) Insert(v T) uint32 {
	s.len++
	if n := len(s.free); n > 0 {
		key := s.free[n-1]
		s.free = s.free[:n-1]
		s.entries[key] = slabEntry[T]{value: v, occupied: true}
		return key
	}
	key := uint32(len(s.entries))
	s.entries = append(s.entries, slabEntry[T]{value: v, occupied: true})
	return key
}

// Get returns the value stored at key and whether it is currently occupied.
func (s *Slab[T]) Get(key uint32) (T, bool) {
	if int(key) >= len(s.entries) || !s.entries[key].occupied {
		var zero T
		return zero, false
	}
	return s.entries[key].value, true
}

// GetMut returns a pointer to the value stored at key for in-place mutation,
// or nil if key is not occupied.
func (s *Slab[T]) GetMut(key uint32) *T {
	if int(key) >= len(s.entries) || !s.entries[key].occupied {
		return nil
	}
	return &s.entries[key].value
}

// Remove frees key, returning the value that was stored there and whether
// it was actually occupied.
func (s *Slab[T]) Remove(key uint32) (T, bool) {
	if int(key) >= len(s.entries) || !s.entries[key].occupied {
		var zero T
		return zero, false
	}
	v := s.entries[key].value
	var zero T
	s.entries[key] = slabEntry[T]{value: zero, occupied: false}
	s.free = append(s.free, key)
	s.len--
	return v, true
}

// Len returns the number of currently occupied slots.
func (s *Slab[T]) Len() int { return s.len }

// Each calls fn for every occupied slot, in key order. fn must not mutate
// the Slab.
func (s *Slab[T]) Each(fn func(key uint32, value T)) {
	for i := range s.entries {
		if s.entries[i].occupied {
			fn(uint32(i), s.entries[i].value)
		}
	}
}

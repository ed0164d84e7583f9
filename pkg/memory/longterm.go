package memory

// LongTermStore holds promoted items up to a fixed capacity. Overflow evicts
// exactly one item: the one with the lowest importance*access_count score,
// earliest-inserted first among ties.
type LongTermStore struct {
	capacity int
	items    []*Item
}

// NewLongTermStore creates an empty store. Capacity below 1 is raised to 1.
func NewLongTermStore(capacity int) *LongTermStore {
	if capacity < 1 {
		capacity = 1
	}
	return &LongTermStore{capacity: capacity}
}

// Insert appends item. If the store now exceeds its capacity, the single
// lowest-scoring resident (the new item included) is removed and returned;
// otherwise nil. The returned item is no longer owned by any store.
func (s *LongTermStore) Insert(item *Item) *Item {
	s.items = append(s.items, item)
	if len(s.items) <= s.capacity {
		return nil
	}

	// Strict less-than keeps the earliest-inserted of any tie.
	lowest := 0
	for i := 1; i < len(s.items); i++ {
		if s.items[i].score() < s.items[lowest].score() {
			lowest = i
		}
	}
	evicted := s.items[lowest]
	s.items = append(s.items[:lowest:lowest], s.items[lowest+1:]...)
	return evicted
}

// Snapshot returns a copy of the items in insertion order.
func (s *LongTermStore) Snapshot() []*Item {
	out := make([]*Item, len(s.items))
	copy(out, s.items)
	return out
}

// Contents returns the stored values in insertion order.
func (s *LongTermStore) Contents() []any {
	out := make([]any, 0, len(s.items))
	for _, it := range s.items {
		out = append(out, it.Content)
	}
	return out
}

// Len returns the number of stored items.
func (s *LongTermStore) Len() int { return len(s.items) }

// Capacity returns the configured bound.
func (s *LongTermStore) Capacity() int { return s.capacity }

// Clear empties the store. Calling it on an empty store is a no-op.
func (s *LongTermStore) Clear() { s.items = nil }

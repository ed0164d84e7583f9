package memory

// ShortTermStore is a bounded, insertion-ordered recency buffer. When full,
// storing a new item pops the oldest one and hands it back to the caller so
// a consolidation decision can be made.
type ShortTermStore struct {
	capacity int
	items    []*Item
}

// NewShortTermStore creates an empty store. Capacity below 1 is raised to 1.
func NewShortTermStore(capacity int) *ShortTermStore {
	if capacity < 1 {
		capacity = 1
	}
	return &ShortTermStore{capacity: capacity}
}

// Put appends item at the tail. If the store overflows its capacity the
// head (oldest) item is removed and returned; otherwise nil.
func (s *ShortTermStore) Put(item *Item) *Item {
	s.items = append(s.items, item)
	if len(s.items) <= s.capacity {
		return nil
	}
	oldest := s.items[0]
	s.items = s.items[1:]
	return oldest
}

// Snapshot returns a copy of the items in insertion order.
func (s *ShortTermStore) Snapshot() []*Item {
	out := make([]*Item, len(s.items))
	copy(out, s.items)
	return out
}

// Contents returns the stored values in insertion order.
func (s *ShortTermStore) Contents() []any {
	out := make([]any, 0, len(s.items))
	for _, it := range s.items {
		out = append(out, it.Content)
	}
	return out
}

// Tail returns up to n of the most recent items, oldest first.
func (s *ShortTermStore) Tail(n int) []*Item {
	if n <= 0 {
		return nil
	}
	if n > len(s.items) {
		n = len(s.items)
	}
	return s.items[len(s.items)-n:]
}

// Len returns the number of stored items.
func (s *ShortTermStore) Len() int { return len(s.items) }

// Capacity returns the configured bound.
func (s *ShortTermStore) Capacity() int { return s.capacity }

// Clear empties the store. Calling it on an empty store is a no-op.
func (s *ShortTermStore) Clear() { s.items = nil }

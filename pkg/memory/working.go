package memory

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultWorkingCapacity bounds the working memory scratch space.
const DefaultWorkingCapacity = 32

// WorkingMemory is a small keyed scratch space for active processing,
// backed by a bounded LRU so stale entries fall out on their own.
type WorkingMemory struct {
	cache *lru.Cache[string, any]
}

// NewWorkingMemory creates a working memory holding up to capacity entries.
func NewWorkingMemory(capacity int) (*WorkingMemory, error) {
	if capacity < 1 {
		capacity = 1
	}
	cache, err := lru.New[string, any](capacity)
	if err != nil {
		return nil, err
	}
	return &WorkingMemory{cache: cache}, nil
}

// Set stores value under key, displacing the least recently used entry when
// the capacity is reached.
func (w *WorkingMemory) Set(key string, value any) {
	w.cache.Add(key, value)
}

// Get returns the value for key and whether it was present.
func (w *WorkingMemory) Get(key string) (any, bool) {
	return w.cache.Get(key)
}

// Len returns the number of live entries.
func (w *WorkingMemory) Len() int { return w.cache.Len() }

// Clear drops every entry.
func (w *WorkingMemory) Clear() { w.cache.Purge() }

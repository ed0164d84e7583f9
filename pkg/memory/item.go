// Package memory implements the tiered memory system of the substrate:
// a bounded FIFO short-term store, a score-ranked long-term store,
// consolidation between them, and access-tracked retrieval.
package memory

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DefaultImportance is assigned to items stored without an explicit value.
const DefaultImportance = 0.5

// Item is a single stored memory record. An Item is owned by exactly one
// store at a time: it moves to the long-term store on consolidation and is
// destroyed when evicted from there.
type Item struct {
	Content     any
	CreatedAt   time.Time
	AccessCount int
	Importance  float64
	Tags        []string

	// key is the lowercase search projection of Content, computed once at
	// creation. The stored value itself is never used for matching.
	key string
}

// NewItem creates an Item with zero accesses. Importance is clamped to [0, 1].
func NewItem(content any, importance float64, tags ...string) *Item {
	if importance < 0 {
		importance = 0
	}
	if importance > 1 {
		importance = 1
	}
	return &Item{
		Content:    content,
		CreatedAt:  time.Now().UTC(),
		Importance: importance,
		Tags:       tags,
		key:        SearchKey(content),
	}
}

// Key returns the item's search projection.
func (it *Item) Key() string { return it.key }

// access records one retrieval hit.
func (it *Item) access() { it.AccessCount++ }

// score ranks long-term eviction candidates, lowest first. A fresh item with
// no accesses scores 0 regardless of importance.
func (it *Item) score() float64 {
	return it.Importance * float64(it.AccessCount)
}

// SearchKey produces the stable lowercase string projection of a value used
// for substring matching. Strings project to themselves; other values fall
// back to their JSON encoding, then to fmt formatting.
func SearchKey(v any) string {
	switch s := v.(type) {
	case string:
		return strings.ToLower(s)
	case fmt.Stringer:
		return strings.ToLower(s.String())
	}
	if b, err := json.Marshal(v); err == nil {
		return strings.ToLower(string(b))
	}
	return strings.ToLower(fmt.Sprintf("%v", v))
}

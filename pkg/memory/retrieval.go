package memory

import "strings"

// Scope selects which memory tiers a retrieval searches.
type Scope string

const (
	ScopeSTM Scope = "short_term"
	ScopeLTM Scope = "long_term"
	ScopeAll Scope = "all"
)

// ParseScope maps common aliases onto a Scope. Unrecognized values are
// returned as-is; they match no tier and retrieve nothing.
func ParseScope(s string) Scope {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return ScopeAll
	case "stm", "short", "short_term", "short-term":
		return ScopeSTM
	case "ltm", "long", "long_term", "long-term":
		return ScopeLTM
	}
	return Scope(s)
}

// RetrievalEngine searches both memory tiers by case-insensitive substring
// containment in either direction: the query may be contained in the item's
// projection or the projection in the query. Matching is deliberately
// permissive; it is not a ranked similarity measure.
//
// Every match increments the item's access count, so retrieval is a mutating
// operation even though it returns only content values.
type RetrievalEngine struct {
	stm *ShortTermStore
	ltm *LongTermStore
}

// NewRetrievalEngine creates an engine over the given tiers.
func NewRetrievalEngine(stm *ShortTermStore, ltm *LongTermStore) *RetrievalEngine {
	return &RetrievalEngine{stm: stm, ltm: ltm}
}

// Retrieve scans the selected tiers exhaustively and returns matched content
// in store order, short-term items before long-term ones. An empty query
// returns no results. Each matched item's access count goes up by exactly one
// per call.
func (e *RetrievalEngine) Retrieve(query any, scope Scope) []any {
	q := SearchKey(query)
	if q == "" {
		return nil
	}

	var results []any
	if scope == ScopeAll || scope == ScopeSTM {
		results = appendMatches(results, e.stm.items, q, -1)
	}
	if scope == ScopeAll || scope == ScopeLTM {
		results = appendMatches(results, e.ltm.items, q, -1)
	}
	return results
}

// FindSimilar applies the same predicate and access tracking as Retrieve but
// stops scanning as soon as limit matches are found; items past that point
// are never visited and keep their access counts. A limit of zero or less
// means no cap.
func (e *RetrievalEngine) FindSimilar(query any, limit int) []any {
	q := SearchKey(query)
	if q == "" {
		return nil
	}

	bound := limit
	if bound <= 0 {
		bound = -1
	}
	results := appendMatches(nil, e.stm.items, q, bound)
	if bound >= 0 && len(results) >= bound {
		return results
	}
	return appendMatches(results, e.ltm.items, q, bound)
}

// appendMatches scans items in order, recording an access on every match and
// appending its content to results. A non-negative bound caps the total
// result length; scanning stops the moment it is reached.
func appendMatches(results []any, items []*Item, q string, bound int) []any {
	for _, it := range items {
		if bound >= 0 && len(results) >= bound {
			break
		}
		if matches(q, it.key) {
			it.access()
			results = append(results, it.Content)
		}
	}
	return results
}

func matches(query, key string) bool {
	return strings.Contains(key, query) || strings.Contains(query, key)
}

package memory

// DefaultPromotionThreshold is the importance an item must exceed to be
// consolidated into long-term memory.
const DefaultPromotionThreshold = 0.5

// ConsolidationPolicy decides whether an item evicted from the short-term
// store is promoted to long-term memory or discarded. The decision is
// all-or-nothing and never mutates the item.
type ConsolidationPolicy struct {
	Threshold float64
}

// NewConsolidationPolicy creates a policy with the given promotion threshold.
func NewConsolidationPolicy(threshold float64) ConsolidationPolicy {
	return ConsolidationPolicy{Threshold: threshold}
}

// ShouldPromote reports whether the item's importance strictly exceeds the
// threshold. An importance equal to the threshold is not promoted.
func (p ConsolidationPolicy) ShouldPromote(item *Item) bool {
	return item.Importance > p.Threshold
}

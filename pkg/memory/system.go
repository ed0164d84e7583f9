package memory

import (
	"context"
	"log/slog"
	"sync"

	"github.com/jllopis/substrate/pkg/core"
	"github.com/jllopis/substrate/pkg/errors"
	"github.com/jllopis/substrate/pkg/telemetry"
)

// DefaultSTMCapacity bounds the short-term store.
const DefaultSTMCapacity = 7

// DefaultLTMCapacity bounds the long-term store.
const DefaultLTMCapacity = 1000

// DefaultSimilarLimit caps the similar-memory search done by Process.
const DefaultSimilarLimit = 5

// System is the memory module of the substrate. It owns a short-term and a
// long-term store, consolidates between them, and implements core.Module.
//
// Every operation on a System runs under one mutex: retrieval mutates access
// counts, so even read-shaped calls are serialized. Independent System
// instances share no state.
type System struct {
	name         string
	policy       ConsolidationPolicy
	similarLimit int

	stateMu sync.RWMutex
	state   core.CognitiveState

	mu        sync.Mutex
	stm       *ShortTermStore
	ltm       *LongTermStore
	retrieval *RetrievalEngine
	working   *WorkingMemory

	logger  *slog.Logger
	metrics *telemetry.MemoryMetrics
}

var _ core.Module = (*System)(nil)

// Option configures a System instance.
type Option func(*settings) error

type settings struct {
	name            string
	stmCapacity     int
	ltmCapacity     int
	threshold       float64
	workingCapacity int
	similarLimit    int
	logger          *slog.Logger
	metrics         *telemetry.MemoryMetrics
}

// WithName sets the module name used for registration and thoughts.
func WithName(name string) Option {
	return func(s *settings) error {
		if name == "" {
			return errors.New(errors.CodeInvalidConfiguration, "module name must not be empty", nil)
		}
		s.name = name
		return nil
	}
}

// WithSTMCapacity bounds the short-term store.
func WithSTMCapacity(n int) Option {
	return func(s *settings) error {
		if n < 1 {
			return errors.Newf(errors.CodeInvalidConfiguration, "stm capacity must be >= 1, got %d", n)
		}
		s.stmCapacity = n
		return nil
	}
}

// WithLTMCapacity bounds the long-term store.
func WithLTMCapacity(n int) Option {
	return func(s *settings) error {
		if n < 1 {
			return errors.Newf(errors.CodeInvalidConfiguration, "ltm capacity must be >= 1, got %d", n)
		}
		s.ltmCapacity = n
		return nil
	}
}

// WithPromotionThreshold sets the importance an evicted item must exceed to
// be consolidated into long-term memory.
func WithPromotionThreshold(t float64) Option {
	return func(s *settings) error {
		if t < 0 || t > 1 {
			return errors.Newf(errors.CodeInvalidConfiguration, "promotion threshold must be in [0,1], got %g", t)
		}
		s.threshold = t
		return nil
	}
}

// WithWorkingCapacity bounds the working memory scratch space.
func WithWorkingCapacity(n int) Option {
	return func(s *settings) error {
		if n < 1 {
			return errors.Newf(errors.CodeInvalidConfiguration, "working capacity must be >= 1, got %d", n)
		}
		s.workingCapacity = n
		return nil
	}
}

// WithSimilarLimit caps the similar-memory search performed by Process.
func WithSimilarLimit(n int) Option {
	return func(s *settings) error {
		if n < 1 {
			return errors.Newf(errors.CodeInvalidConfiguration, "similar limit must be >= 1, got %d", n)
		}
		s.similarLimit = n
		return nil
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) error {
		s.logger = logger
		return nil
	}
}

// WithMetrics attaches a metrics tracker. Without one, metric calls are no-ops.
func WithMetrics(m *telemetry.MemoryMetrics) Option {
	return func(s *settings) error {
		s.metrics = m
		return nil
	}
}

// NewSystem creates a memory module. Invalid option values produce a single
// invalid-configuration error and no instance.
func NewSystem(opts ...Option) (*System, error) {
	cfg := settings{
		name:            "MemorySystem",
		stmCapacity:     DefaultSTMCapacity,
		ltmCapacity:     DefaultLTMCapacity,
		threshold:       DefaultPromotionThreshold,
		workingCapacity: DefaultWorkingCapacity,
		similarLimit:    DefaultSimilarLimit,
	}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	working, err := NewWorkingMemory(cfg.workingCapacity)
	if err != nil {
		return nil, errors.New(errors.CodeMemoryError, "working memory init failed", err)
	}

	stm := NewShortTermStore(cfg.stmCapacity)
	ltm := NewLongTermStore(cfg.ltmCapacity)
	return &System{
		name:         cfg.name,
		policy:       NewConsolidationPolicy(cfg.threshold),
		similarLimit: cfg.similarLimit,
		state:        core.StateIdle,
		stm:          stm,
		ltm:          ltm,
		retrieval:    NewRetrievalEngine(stm, ltm),
		working:      working,
		logger:       cfg.logger.With("module", cfg.name),
		metrics:      cfg.metrics,
	}, nil
}

// Name implements core.Module.
func (s *System) Name() string { return s.name }

// State implements core.Module.
func (s *System) State() core.CognitiveState {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state
}

func (s *System) setState(state core.CognitiveState) {
	s.stateMu.Lock()
	s.state = state
	s.stateMu.Unlock()
}

// Process stores input into short-term memory at the default importance and
// returns the similar memories found for it. It is total: every input
// produces a thought with confidence 0.9 and a nil error, and the module is
// back in the idle state on every exit path.
//
// Note that the implicit store happens on every call, at DefaultImportance,
// whether or not the caller meant the input to be remembered; use Store for
// explicit control over importance and tags.
func (s *System) Process(ctx context.Context, input any) (core.Thought, error) {
	s.setState(core.StateProcessing)
	defer s.setState(core.StateIdle)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.storeLocked(ctx, NewItem(input, DefaultImportance))
	similar := s.retrieval.FindSimilar(input, s.similarLimit)
	s.metrics.RecordMatches(ctx, string(ScopeAll), len(similar))

	s.logger.DebugContext(ctx, "processed input",
		"similar", len(similar), "stm", s.stm.Len(), "ltm", s.ltm.Len())

	content := map[string]any{
		"stored":           input,
		"similar_memories": similar,
	}
	meta := map[string]any{"memory_type": "short_term"}
	return core.NewThought(content, 0.9, s.name, meta), nil
}

// Update applies feedback. A "reinforce" key multiplies the importance of the
// three most recent short-term items by 1.2, capped at 1.0. Any other or
// missing key is a no-op, never an error.
func (s *System) Update(ctx context.Context, feedback map[string]any) error {
	if _, ok := feedback["reinforce"]; !ok {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, it := range s.stm.Tail(3) {
		it.Importance *= 1.2
		if it.Importance > 1.0 {
			it.Importance = 1.0
		}
	}
	s.logger.DebugContext(ctx, "reinforced recent memories")
	return nil
}

// Store explicitly stores content with the given importance and tags.
func (s *System) Store(content any, importance float64, tags ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.storeLocked(context.Background(), NewItem(content, importance, tags...))
}

// storeLocked puts the item into STM and runs the consolidation path for any
// overflow. Caller holds s.mu.
func (s *System) storeLocked(ctx context.Context, item *Item) {
	s.metrics.RecordStored(ctx)
	evicted := s.stm.Put(item)
	if evicted != nil {
		s.consolidateLocked(ctx, evicted)
	}
	s.metrics.RecordSizes(ctx, s.stm.Len(), s.ltm.Len())
}

// consolidateLocked promotes or discards an item evicted from STM. If the
// promotion overflows LTM, exactly one lowest-scoring resident is destroyed.
func (s *System) consolidateLocked(ctx context.Context, evicted *Item) {
	if !s.policy.ShouldPromote(evicted) {
		s.logger.DebugContext(ctx, "discarded stm overflow", "importance", evicted.Importance)
		return
	}
	s.metrics.RecordPromoted(ctx)
	if dropped := s.ltm.Insert(evicted); dropped != nil {
		s.metrics.RecordEvicted(ctx)
		s.logger.DebugContext(ctx, "evicted from ltm",
			"importance", dropped.Importance, "access_count", dropped.AccessCount)
	}
}

// Retrieve returns the content of every item matching query in the selected
// scope, in store order with short-term results first. Empty or unmatched
// queries return an empty result, not an error.
func (s *System) Retrieve(query any, scope Scope) []any {
	s.mu.Lock()
	defer s.mu.Unlock()

	results := s.retrieval.Retrieve(query, scope)
	s.metrics.RecordMatches(context.Background(), string(scope), len(results))
	return results
}

// FindSimilar returns up to limit matches for query across both tiers,
// visiting only as many items as needed.
func (s *System) FindSimilar(query any, limit int) []any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.retrieval.FindSimilar(query, limit)
}

// STMContents returns a copy of the short-term contents in insertion order.
func (s *System) STMContents() []any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stm.Contents()
}

// LTMContents returns a copy of the long-term contents in insertion order.
func (s *System) LTMContents() []any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ltm.Contents()
}

// ClearSTM empties short-term memory. Idempotent.
func (s *System) ClearSTM() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stm.Clear()
}

// ClearLTM empties long-term memory. Idempotent.
func (s *System) ClearLTM() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ltm.Clear()
}

// SetWorking stores a value in the working memory scratch space.
func (s *System) SetWorking(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.working.Set(key, value)
}

// GetWorking reads a value from the working memory scratch space.
func (s *System) GetWorking(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.working.Get(key)
}

// WorkingLen returns the number of live working memory entries.
func (s *System) WorkingLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.working.Len()
}

// Package reasoning provides the logical-inference module of the substrate.
package reasoning

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/jllopis/substrate/pkg/core"
	"github.com/jllopis/substrate/pkg/errors"
	"github.com/jllopis/substrate/pkg/memory"
)

// Strategy selects how the engine reasons over input.
type Strategy string

const (
	StrategyDeductive Strategy = "deductive"
	StrategyInductive Strategy = "inductive"
	StrategyAbductive Strategy = "abductive"
)

// Engine performs heuristic inference over a knowledge base. It implements
// core.Module.
type Engine struct {
	name string

	mu        sync.Mutex
	state     core.CognitiveState
	strategy  Strategy
	knowledge []any
	metrics   map[string]float64

	logger *slog.Logger
}

var _ core.Module = (*Engine)(nil)

// NewEngine creates a reasoning engine with the deductive strategy.
func NewEngine() *Engine {
	return &Engine{
		name:     "ReasoningEngine",
		state:    core.StateIdle,
		strategy: StrategyDeductive,
		metrics:  make(map[string]float64),
		logger:   slog.Default().With("module", "ReasoningEngine"),
	}
}

// Name implements core.Module.
func (e *Engine) Name() string { return e.name }

// State implements core.Module.
func (e *Engine) State() core.CognitiveState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// AddKnowledge appends a statement to the knowledge base.
func (e *Engine) AddKnowledge(knowledge any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.knowledge = append(e.knowledge, knowledge)
}

// SetStrategy switches the reasoning strategy. Unknown strategies are
// rejected with an invalid-configuration error and nothing changes.
func (e *Engine) SetStrategy(strategy Strategy) error {
	switch strategy {
	case StrategyDeductive, StrategyInductive, StrategyAbductive:
	default:
		return errors.Newf(errors.CodeInvalidConfiguration, "unknown strategy: %s", strategy)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.strategy = strategy
	return nil
}

// Strategy returns the active reasoning strategy.
func (e *Engine) Strategy() Strategy {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.strategy
}

// Process runs input through the active strategy and returns a Thought with
// the conclusions drawn. It is total for well-typed input.
func (e *Engine) Process(ctx context.Context, input any) (core.Thought, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.state = core.StateReasoning
	defer func() { e.state = core.StateIdle }()

	var result map[string]any
	switch e.strategy {
	case StrategyDeductive:
		result = e.deduce(input)
	case StrategyInductive:
		result = map[string]any{
			"type":           string(StrategyInductive),
			"input":          input,
			"generalization": fmt.Sprintf("Pattern inferred from %v", input),
		}
	case StrategyAbductive:
		result = map[string]any{
			"type":             string(StrategyAbductive),
			"input":            input,
			"best_explanation": fmt.Sprintf("Most likely explanation for %v", input),
		}
	}

	confidence := 0.5
	if conclusions, ok := result["conclusions"].([]any); ok && len(conclusions) > 0 {
		confidence = 0.8
	}

	meta := map[string]any{"strategy": string(e.strategy)}
	return core.NewThought(result, confidence, e.name, meta), nil
}

// deduce matches input against the knowledge base by substring containment
// of the projected input in each statement.
func (e *Engine) deduce(input any) map[string]any {
	key := memory.SearchKey(input)
	var conclusions []any
	for _, k := range e.knowledge {
		if strings.Contains(memory.SearchKey(k), key) {
			conclusions = append(conclusions, k)
		}
	}
	return map[string]any{
		"type":        string(StrategyDeductive),
		"input":       input,
		"conclusions": conclusions,
	}
}

// Update adjusts the accuracy metric on "correct" feedback. Unknown keys are
// ignored.
func (e *Engine) Update(ctx context.Context, feedback map[string]any) error {
	correct, ok := feedback["correct"].(bool)
	if !ok {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	accuracy, exists := e.metrics["accuracy"]
	if !exists {
		accuracy = 0.5
	}
	if correct {
		accuracy *= 1.1
	} else {
		accuracy *= 0.9
	}
	e.metrics["accuracy"] = accuracy
	return nil
}

// Metrics returns a copy of the engine's performance metrics.
func (e *Engine) Metrics() map[string]float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[string]float64, len(e.metrics))
	for k, v := range e.metrics {
		out[k] = v
	}
	return out
}

// Package learning provides the adaptation module of the substrate.
package learning

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/jllopis/substrate/pkg/core"
	"github.com/jllopis/substrate/pkg/errors"
	"github.com/jllopis/substrate/pkg/memory"
)

// Mode selects the learning paradigm.
type Mode string

const (
	ModeSupervised    Mode = "supervised"
	ModeUnsupervised  Mode = "unsupervised"
	ModeReinforcement Mode = "reinforcement"
)

// Example is a single labeled training example.
type Example struct {
	Input     any
	Output    any
	Feedback  *float64
	CreatedAt time.Time
}

// qEntry tracks a reinforcement state-action value.
type qEntry struct {
	qValue     float64
	visitCount int
}

// Engine learns from examples and feedback. It implements core.Module.
type Engine struct {
	name string

	mu           sync.Mutex
	state        core.CognitiveState
	mode         Mode
	learningRate float64
	examples     []Example
	clusters     map[string][]any
	qTable       map[string]*qEntry
	metrics      map[string]float64

	logger *slog.Logger
}

var _ core.Module = (*Engine)(nil)

// NewEngine creates a learning engine in supervised mode.
func NewEngine() *Engine {
	return &Engine{
		name:         "LearningEngine",
		state:        core.StateIdle,
		mode:         ModeSupervised,
		learningRate: 0.1,
		clusters:     make(map[string][]any),
		qTable:       make(map[string]*qEntry),
		metrics:      make(map[string]float64),
		logger:       slog.Default().With("module", "LearningEngine"),
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

// AddExample records a training example.
func (e *Engine) AddExample(input, output any, feedback *float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.examples = append(e.examples, Example{
		Input:     input,
		Output:    output,
		Feedback:  feedback,
		CreatedAt: time.Now().UTC(),
	})
}

// SetMode switches the learning mode. Unknown modes are rejected with an
// invalid-configuration error and nothing changes.
func (e *Engine) SetMode(mode Mode) error {
	switch mode {
	case ModeSupervised, ModeUnsupervised, ModeReinforcement:
	default:
		return errors.Newf(errors.CodeInvalidConfiguration, "unknown learning mode: %s", mode)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mode = mode
	return nil
}

// Mode returns the active learning mode.
func (e *Engine) Mode() Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

// SetLearningRate sets the reinforcement learning rate. Values outside [0,1]
// are rejected with an invalid-configuration error.
func (e *Engine) SetLearningRate(rate float64) error {
	if rate < 0 || rate > 1 {
		return errors.Newf(errors.CodeInvalidConfiguration, "learning rate must be in [0,1], got %g", rate)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.learningRate = rate
	return nil
}

// Process applies the active learning mode to input and returns a Thought
// describing what was learned or predicted.
func (e *Engine) Process(ctx context.Context, input any) (core.Thought, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.state = core.StateLearning
	defer func() { e.state = core.StateIdle }()

	var result map[string]any
	switch e.mode {
	case ModeSupervised:
		result = e.supervised(input)
	case ModeUnsupervised:
		result = e.unsupervised(input)
	case ModeReinforcement:
		result = e.reinforcement(input)
	}

	meta := map[string]any{"learning_mode": string(e.mode)}
	return core.NewThought(result, e.confidence(), e.name, meta), nil
}

// supervised predicts outputs of examples whose input overlaps the query.
func (e *Engine) supervised(input any) map[string]any {
	var predictions []any
	for _, ex := range e.examples {
		if similarity(input, ex.Input) > 0.7 {
			predictions = append(predictions, ex.Output)
		}
	}
	return map[string]any{
		"type":                   string(ModeSupervised),
		"input":                  input,
		"predictions":            predictions,
		"training_examples_used": len(predictions),
	}
}

// unsupervised clusters input by its first words.
func (e *Engine) unsupervised(input any) map[string]any {
	key := patternKey(input)
	e.clusters[key] = append(e.clusters[key], input)
	return map[string]any{
		"type":            string(ModeUnsupervised),
		"input":           input,
		"pattern_cluster": key,
		"cluster_size":    len(e.clusters[key]),
	}
}

// reinforcement visits the state-action entry for input.
func (e *Engine) reinforcement(input any) map[string]any {
	key := memory.SearchKey(input)
	entry, ok := e.qTable[key]
	if !ok {
		entry = &qEntry{}
		e.qTable[key] = entry
	}
	entry.visitCount++
	return map[string]any{
		"type":        string(ModeReinforcement),
		"input":       input,
		"q_value":     entry.qValue,
		"visit_count": entry.visitCount,
	}
}

// confidence rises with the number of training examples seen.
func (e *Engine) confidence() float64 {
	switch {
	case len(e.examples) > 10:
		return 0.8
	case len(e.examples) > 5:
		return 0.6
	default:
		return 0.4
	}
}

// Update applies reward feedback to the Q-table in reinforcement mode and
// records reported accuracy. Unknown keys are ignored.
func (e *Engine) Update(ctx context.Context, feedback map[string]any) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if reward, ok := toFloat(feedback["reward"]); ok && e.mode == ModeReinforcement {
		if stateAction, ok := feedback["state_action"].(string); ok {
			if entry, ok := e.qTable[memory.SearchKey(stateAction)]; ok {
				entry.qValue += e.learningRate * (reward - entry.qValue)
			}
		}
	}
	if accuracy, ok := toFloat(feedback["accuracy"]); ok {
		e.metrics["accuracy"] = accuracy
	}
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

// QValue returns the learned value for a state-action, if visited.
func (e *Engine) QValue(stateAction string) (float64, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	entry, ok := e.qTable[memory.SearchKey(stateAction)]
	if !ok {
		return 0, false
	}
	return entry.qValue, true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}

// similarity is the word-overlap ratio of the two projected values
// (intersection over union of their word sets), 1.0 for identical
// projections.
func similarity(a, b any) float64 {
	sa := memory.SearchKey(a)
	sb := memory.SearchKey(b)
	if sa == sb {
		return 1.0
	}

	wordsA := toSet(strings.Fields(sa))
	wordsB := toSet(strings.Fields(sb))
	if len(wordsA) == 0 || len(wordsB) == 0 {
		return 0.0
	}

	overlap := 0
	for w := range wordsA {
		if _, ok := wordsB[w]; ok {
			overlap++
		}
	}
	total := len(wordsA) + len(wordsB) - overlap
	if total == 0 {
		return 0.0
	}
	return float64(overlap) / float64(total)
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// patternKey derives a cluster key from the first three words of the input.
func patternKey(input any) string {
	words := strings.Fields(memory.SearchKey(input))
	if len(words) == 0 {
		return "default"
	}
	if len(words) > 3 {
		words = words[:3]
	}
	return strings.Join(words, "_")
}

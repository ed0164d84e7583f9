// Package substrate provides the orchestrator that fans input out across
// registered cognitive modules and collects their thoughts.
package substrate

import (
	"context"
	stderrors "errors"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	semtrace "go.opentelemetry.io/otel/trace"

	"github.com/jllopis/substrate/pkg/core"
	"github.com/jllopis/substrate/pkg/errors"
	"github.com/jllopis/substrate/pkg/telemetry"
)

// DefaultThoughtStreamCapacity bounds the retained thought history. Older
// thoughts are dropped first.
const DefaultThoughtStreamCapacity = 1000

// Substrate coordinates a set of cognitive modules behind a single entry
// point. Modules are invoked in registration order; each produced thought is
// appended to a bounded stream.
type Substrate struct {
	name string

	mu       sync.Mutex
	state    core.CognitiveState
	modules  map[string]core.Module
	order    []string
	thoughts []core.Thought
	context  map[string]any

	streamCapacity int
	logger         *slog.Logger
	tracer         semtrace.Tracer
}

var _ core.SharedContext = (*Substrate)(nil)

// Option configures a Substrate.
type Option func(*Substrate)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Substrate) { s.logger = logger }
}

// WithThoughtStreamCapacity bounds the retained thought history.
func WithThoughtStreamCapacity(n int) Option {
	return func(s *Substrate) {
		if n > 0 {
			s.streamCapacity = n
		}
	}
}

// New creates an empty substrate with the given name.
func New(name string, opts ...Option) *Substrate {
	if name == "" {
		name = "substrate"
	}
	s := &Substrate{
		name:           name,
		state:          core.StateIdle,
		modules:        make(map[string]core.Module),
		context:        make(map[string]any),
		streamCapacity: DefaultThoughtStreamCapacity,
		tracer:         otel.Tracer("substrate"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With("substrate", name)
	return s
}

// Name returns the substrate name.
func (s *Substrate) Name() string { return s.name }

// Register adds a module. Registering a name twice is rejected with an
// invalid-configuration error and the existing module stays in place.
func (s *Substrate) Register(module core.Module) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := module.Name()
	if _, exists := s.modules[name]; exists {
		return errors.Newf(errors.CodeInvalidConfiguration, "module %s already registered", name)
	}
	s.modules[name] = module
	s.order = append(s.order, name)
	s.logger.Info("module registered", "module", name)
	return nil
}

// Unregister removes a module by name. Unknown names are a no-op.
func (s *Substrate) Unregister(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.modules[name]; !exists {
		return
	}
	delete(s.modules, name)
	for i, existing := range s.order {
		if existing == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.logger.Info("module unregistered", "module", name)
}

// Module returns the registered module with the given name.
func (s *Substrate) Module(name string) (core.Module, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.modules[name]
	return m, ok
}

// ProcessInput runs input through every registered module in registration
// order and returns the thoughts produced in this call. A failing module is
// logged and skipped; the fan-out continues, and all failures come back
// joined in the returned error alongside the successful thoughts.
func (s *Substrate) ProcessInput(ctx context.Context, input any) ([]core.Thought, error) {
	ctx, runID := core.EnsureRunID(ctx)
	ctx = core.WithShared(ctx, s)

	s.mu.Lock()
	modules := make([]core.Module, 0, len(s.modules))
	for _, name := range s.order {
		modules = append(modules, s.modules[name])
	}
	s.state = core.StateProcessing
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.state = core.StateIdle
		s.mu.Unlock()
	}()

	var thoughts []core.Thought
	var failures []error
	for _, module := range modules {
		th, err := s.processModule(ctx, module, input, runID)
		if err != nil {
			failures = append(failures, err)
			continue
		}
		thoughts = append(thoughts, th)
	}

	s.mu.Lock()
	s.thoughts = append(s.thoughts, thoughts...)
	if overflow := len(s.thoughts) - s.streamCapacity; overflow > 0 {
		s.thoughts = s.thoughts[overflow:]
	}
	s.mu.Unlock()

	return thoughts, joinFailures(failures)
}

func (s *Substrate) processModule(ctx context.Context, module core.Module, input any, runID string) (core.Thought, error) {
	ctx, span := s.tracer.Start(ctx, "module.process",
		semtrace.WithAttributes(telemetry.ModuleAttributes(module.Name(), string(module.State()), runID)...))
	defer span.End()

	start := time.Now()
	th, err := module.Process(ctx, input)
	if err != nil {
		span.RecordError(err)
		s.logger.ErrorContext(ctx, "module process failed",
			"module", module.Name(), "error", err)
		return core.Thought{}, errors.New(errors.CodeModuleFailure, module.Name(), err)
	}

	span.SetAttributes(telemetry.ThoughtAttributes(th.ID, th.Confidence)...)
	s.logger.DebugContext(ctx, "module processed input",
		"module", module.Name(), "confidence", th.Confidence,
		"duration", time.Since(start))
	return th, nil
}

// Broadcast sends feedback to every registered module.
func (s *Substrate) Broadcast(ctx context.Context, feedback map[string]any) error {
	s.mu.Lock()
	modules := make([]core.Module, 0, len(s.modules))
	for _, name := range s.order {
		modules = append(modules, s.modules[name])
	}
	s.mu.Unlock()

	var failures []error
	for _, module := range modules {
		if err := module.Update(ctx, feedback); err != nil {
			failures = append(failures, errors.New(errors.CodeModuleFailure, module.Name(), err))
		}
	}
	return joinFailures(failures)
}

// SetContext stores a value in the shared context.
func (s *Substrate) SetContext(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.context[key] = value
}

// GetContext reads a value from the shared context.
func (s *Substrate) GetContext(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.context[key]
	return v, ok
}

// ThoughtStream returns a copy of the retained thoughts, oldest first.
func (s *Substrate) ThoughtStream() []core.Thought {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Thought, len(s.thoughts))
	copy(out, s.thoughts)
	return out
}

func joinFailures(failures []error) error {
	if len(failures) == 0 {
		return nil
	}
	return stderrors.Join(failures...)
}

// Status returns a point-in-time view of the substrate and its modules.
func (s *Substrate) Status() core.SystemStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	modules := make([]core.ModuleStatus, 0, len(s.order))
	for _, name := range s.order {
		modules = append(modules, core.ModuleStatus{
			Name:  name,
			State: s.modules[name].State(),
		})
	}
	return core.SystemStatus{
		Name:         s.name,
		State:        s.state,
		Modules:      modules,
		ThoughtCount: len(s.thoughts),
		ContextKeys:  len(s.context),
		CollectedAt:  time.Now().UTC(),
	}
}

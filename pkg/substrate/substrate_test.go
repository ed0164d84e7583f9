// Copyright 2026 © The Substrate Authors
// SPDX-License-Identifier: Apache-2.0

package substrate

import (
	"context"
	"errors"
	"testing"

	"github.com/jllopis/substrate/pkg/core"
	substrateerrors "github.com/jllopis/substrate/pkg/errors"
	substratetest "github.com/jllopis/substrate/pkg/testing"
)

// probeModule records the context it was invoked with.
type probeModule struct {
	name   string
	runID  string
	shared core.SharedContext
}

func (p *probeModule) Name() string               { return p.name }
func (p *probeModule) State() core.CognitiveState { return core.StateIdle }

func (p *probeModule) Process(ctx context.Context, input any) (core.Thought, error) {
	p.runID, _ = core.RunID(ctx)
	p.shared, _ = core.SharedFrom(ctx)
	return core.NewThought(input, 1.0, p.name, nil), nil
}

func (p *probeModule) Update(ctx context.Context, feedback map[string]any) error {
	return nil
}

func TestRegisterRejectsDuplicateName(t *testing.T) {
	s := New("test")

	first := substratetest.NewScriptedModule("memory_system", "a")
	second := substratetest.NewScriptedModule("memory_system", "b")

	if err := s.Register(first); err != nil {
		t.Fatalf("Register: %v", err)
	}
	err := s.Register(second)
	if err == nil {
		t.Fatal("expected error for duplicate module name")
	}
	if !substrateerrors.IsCode(err, substrateerrors.CodeInvalidConfiguration) {
		t.Errorf("expected INVALID_CONFIGURATION, got %v", err)
	}

	got, ok := s.Module("memory_system")
	if !ok {
		t.Fatal("module should still be registered")
	}
	if got != core.Module(first) {
		t.Error("duplicate registration must not replace the existing module")
	}
}

func TestProcessInputFansOutInRegistrationOrder(t *testing.T) {
	s := New("test")

	for _, name := range []string{"alpha", "beta", "gamma"} {
		m := substratetest.NewScriptedModule(name, name+" thought")
		if err := s.Register(m); err != nil {
			t.Fatalf("Register %s: %v", name, err)
		}
	}

	thoughts, err := s.ProcessInput(context.Background(), "hello")
	if err != nil {
		t.Fatalf("ProcessInput: %v", err)
	}
	if len(thoughts) != 3 {
		t.Fatalf("expected 3 thoughts, got %d", len(thoughts))
	}
	wantSources := []string{"alpha", "beta", "gamma"}
	for i, th := range thoughts {
		if th.SourceModule != wantSources[i] {
			t.Errorf("thought %d: source = %q, want %q", i, th.SourceModule, wantSources[i])
		}
	}
}

func TestProcessInputContinuesPastFailingModule(t *testing.T) {
	s := New("test")

	broken := substratetest.NewScriptedModule("broken")
	broken.Err = errors.New("boom")
	healthy := substratetest.NewScriptedModule("healthy", "still here")

	if err := s.Register(broken); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := s.Register(healthy); err != nil {
		t.Fatalf("Register: %v", err)
	}

	thoughts, err := s.ProcessInput(context.Background(), "input")
	if err == nil {
		t.Fatal("expected joined failure error")
	}
	var se *substrateerrors.SubstrateError
	if !errors.As(err, &se) || se.Code != substrateerrors.CodeModuleFailure {
		t.Errorf("expected MODULE_FAILURE in chain, got %v", err)
	}
	if len(thoughts) != 1 {
		t.Fatalf("expected 1 thought from healthy module, got %d", len(thoughts))
	}
	if thoughts[0].SourceModule != "healthy" {
		t.Errorf("thought source = %q, want healthy", thoughts[0].SourceModule)
	}
}

func TestProcessInputSharesRunIDAndContext(t *testing.T) {
	s := New("test")
	probe := &probeModule{name: "probe"}
	if err := s.Register(probe); err != nil {
		t.Fatalf("Register: %v", err)
	}

	s.SetContext("goal", "remember the sky")
	if _, err := s.ProcessInput(context.Background(), "input"); err != nil {
		t.Fatalf("ProcessInput: %v", err)
	}

	if probe.runID == "" {
		t.Error("module should observe a run id")
	}
	if probe.shared == nil {
		t.Fatal("module should observe the shared context")
	}
	goal, ok := probe.shared.GetContext("goal")
	if !ok || goal != "remember the sky" {
		t.Errorf("shared context goal = %v, %v", goal, ok)
	}
}

func TestThoughtStreamIsBounded(t *testing.T) {
	s := New("test", WithThoughtStreamCapacity(2))
	m := substratetest.NewScriptedModule("mod", "one", "two", "three")
	if err := s.Register(m); err != nil {
		t.Fatalf("Register: %v", err)
	}

	for _, input := range []string{"a", "b", "c"} {
		if _, err := s.ProcessInput(context.Background(), input); err != nil {
			t.Fatalf("ProcessInput(%s): %v", input, err)
		}
	}

	stream := s.ThoughtStream()
	if len(stream) != 2 {
		t.Fatalf("expected stream bounded at 2, got %d", len(stream))
	}
	if stream[0].Content != "two" || stream[1].Content != "three" {
		t.Errorf("oldest thoughts should be dropped first, got %v, %v",
			stream[0].Content, stream[1].Content)
	}
}

func TestUnregisterRemovesModule(t *testing.T) {
	s := New("test")
	m := substratetest.NewScriptedModule("mod", "one")
	if err := s.Register(m); err != nil {
		t.Fatalf("Register: %v", err)
	}

	s.Unregister("mod")
	s.Unregister("mod") // unknown name is a no-op

	if _, ok := s.Module("mod"); ok {
		t.Error("module should be gone after Unregister")
	}
	thoughts, err := s.ProcessInput(context.Background(), "input")
	if err != nil {
		t.Fatalf("ProcessInput: %v", err)
	}
	if len(thoughts) != 0 {
		t.Errorf("expected no thoughts with no modules, got %d", len(thoughts))
	}
}

func TestBroadcastDeliversFeedback(t *testing.T) {
	s := New("test")
	a := substratetest.NewScriptedModule("a")
	b := substratetest.NewScriptedModule("b")
	if err := s.Register(a); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := s.Register(b); err != nil {
		t.Fatalf("Register: %v", err)
	}

	fb := map[string]any{"reinforce": true}
	if err := s.Broadcast(context.Background(), fb); err != nil {
		t.Fatalf("Broadcast: %v", err)
	}
	if len(a.Feedback) != 1 || len(b.Feedback) != 1 {
		t.Errorf("feedback counts = %d, %d, want 1, 1", len(a.Feedback), len(b.Feedback))
	}
}

func TestStatusSnapshot(t *testing.T) {
	s := New("cortex")
	m := substratetest.NewScriptedModule("mod", "one")
	if err := s.Register(m); err != nil {
		t.Fatalf("Register: %v", err)
	}
	s.SetContext("k", "v")
	if _, err := s.ProcessInput(context.Background(), "input"); err != nil {
		t.Fatalf("ProcessInput: %v", err)
	}

	status := s.Status()
	if status.Name != "cortex" {
		t.Errorf("Name = %q, want cortex", status.Name)
	}
	if status.State != core.StateIdle {
		t.Errorf("State = %q, want idle after processing", status.State)
	}
	if len(status.Modules) != 1 || status.Modules[0].Name != "mod" {
		t.Errorf("unexpected module statuses: %+v", status.Modules)
	}
	if status.ThoughtCount != 1 {
		t.Errorf("ThoughtCount = %d, want 1", status.ThoughtCount)
	}
	if status.ContextKeys != 1 {
		t.Errorf("ContextKeys = %d, want 1", status.ContextKeys)
	}
	if status.CollectedAt.IsZero() {
		t.Error("CollectedAt should be set")
	}
}

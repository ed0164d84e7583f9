// Copyright 2026 © The Substrate Authors
// SPDX-License-Identifier: Apache-2.0

package testing

import (
	"context"
	"errors"
	"sync"

	"github.com/jllopis/substrate/pkg/core"
)

// ScriptedModule is a cognitive module test double that returns a pre-defined
// sequence of thoughts. Useful for exercising orchestration paths without
// real module behavior.
type ScriptedModule struct {
	mu        sync.Mutex
	name      string
	state     core.CognitiveState
	Responses []core.Thought
	Err       error
	// CallCount tracks how many times Process has been called.
	CallCount int
	// Feedback records every payload passed to Update.
	Feedback []map[string]any
}

var _ core.Module = (*ScriptedModule)(nil)

// NewScriptedModule creates a scripted module that answers with the given
// thought contents in order.
func NewScriptedModule(name string, contents ...string) *ScriptedModule {
	m := &ScriptedModule{
		name:  name,
		state: core.StateIdle,
	}
	for _, content := range contents {
		m.Responses = append(m.Responses, core.NewThought(content, 1.0, name, nil))
	}
	return m
}

// Name returns the module name.
func (m *ScriptedModule) Name() string { return m.name }

// State returns the module state.
func (m *ScriptedModule) State() core.CognitiveState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Process pops the next scripted thought or returns the configured error.
func (m *ScriptedModule) Process(ctx context.Context, input any) (core.Thought, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CallCount++

	if m.Err != nil {
		return core.Thought{}, m.Err
	}
	if len(m.Responses) == 0 {
		return core.Thought{}, errors.New("scripted module: no more responses available")
	}

	th := m.Responses[0]
	m.Responses = m.Responses[1:]
	return th, nil
}

// Update records the feedback payload.
func (m *ScriptedModule) Update(ctx context.Context, feedback map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Feedback = append(m.Feedback, feedback)
	return nil
}

// AddResponse appends a thought to the queue.
func (m *ScriptedModule) AddResponse(th core.Thought) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Responses = append(m.Responses, th)
}

// PeekNext returns the content of the next response, or empty string.
func (m *ScriptedModule) PeekNext() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Responses) == 0 {
		return ""
	}
	if s, ok := m.Responses[0].Content.(string); ok {
		return s
	}
	return ""
}

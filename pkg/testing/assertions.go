// Copyright 2026 © The Substrate Authors
// SPDX-License-Identifier: Apache-2.0

package testing

import (
	"strings"
	"testing"

	"github.com/jllopis/substrate/pkg/core"
)

// Assertions provides assertion helpers for testing.
type Assertions struct {
	t      *testing.T
	failed bool
}

// NewAssertions creates a new assertions helper.
func NewAssertions(t *testing.T) *Assertions {
	return &Assertions{t: t}
}

// Failed returns true if any assertion has failed.
func (a *Assertions) Failed() bool {
	return a.failed
}

// AssertEqual asserts that two values are equal.
func (a *Assertions) AssertEqual(expected, actual any, msg string) {
	a.t.Helper()
	if expected != actual {
		a.t.Errorf("%s: expected %v, got %v", msg, expected, actual)
		a.failed = true
	}
}

// AssertNotEqual asserts that two values are not equal.
func (a *Assertions) AssertNotEqual(expected, actual any, msg string) {
	a.t.Helper()
	if expected == actual {
		a.t.Errorf("%s: expected not %v, got %v", msg, expected, actual)
		a.failed = true
	}
}

// AssertTrue asserts that the value is true.
func (a *Assertions) AssertTrue(value bool, msg string) {
	a.t.Helper()
	if !value {
		a.t.Errorf("%s: expected true", msg)
		a.failed = true
	}
}

// AssertFalse asserts that the value is false.
func (a *Assertions) AssertFalse(value bool, msg string) {
	a.t.Helper()
	if value {
		a.t.Errorf("%s: expected false", msg)
		a.failed = true
	}
}

// AssertContains asserts that the string contains the substring.
func (a *Assertions) AssertContains(s, substr, msg string) {
	a.t.Helper()
	if !strings.Contains(s, substr) {
		a.t.Errorf("%s: %q does not contain %q", msg, s, substr)
		a.failed = true
	}
}

// AssertError asserts that the error is not nil.
func (a *Assertions) AssertError(err error, msg string) {
	a.t.Helper()
	if err == nil {
		a.t.Errorf("%s: expected error, got nil", msg)
		a.failed = true
	}
}

// AssertNoError asserts that the error is nil.
func (a *Assertions) AssertNoError(err error, msg string) {
	a.t.Helper()
	if err != nil {
		a.t.Errorf("%s: unexpected error: %v", msg, err)
		a.failed = true
	}
}

// AssertErrorContains asserts that the error message contains the substring.
func (a *Assertions) AssertErrorContains(err error, substr, msg string) {
	a.t.Helper()
	if err == nil {
		a.t.Errorf("%s: expected error containing %q, got nil", msg, substr)
		a.failed = true
		return
	}
	if !strings.Contains(err.Error(), substr) {
		a.t.Errorf("%s: error %q does not contain %q", msg, err.Error(), substr)
		a.failed = true
	}
}

// AssertLen asserts the length of a slice or map.
func (a *Assertions) AssertLen(value any, expected int, msg string) {
	a.t.Helper()
	var length int
	switch v := value.(type) {
	case string:
		length = len(v)
	case []any:
		length = len(v)
	case []string:
		length = len(v)
	case []core.Thought:
		length = len(v)
	case map[string]any:
		length = len(v)
	default:
		a.t.Errorf("%s: cannot get length of %T", msg, value)
		a.failed = true
		return
	}
	if length != expected {
		a.t.Errorf("%s: expected length %d, got %d", msg, expected, length)
		a.failed = true
	}
}

// ThoughtAssertions provides assertion helpers for module thoughts.
type ThoughtAssertions struct {
	*Assertions
	thought core.Thought
}

// AssertThought creates thought assertions for the given thought.
func (a *Assertions) AssertThought(th core.Thought) *ThoughtAssertions {
	a.t.Helper()
	return &ThoughtAssertions{Assertions: a, thought: th}
}

// HasSource asserts the thought was produced by the given module.
func (th *ThoughtAssertions) HasSource(source string) *ThoughtAssertions {
	th.t.Helper()
	if th.thought.SourceModule != source {
		th.t.Errorf("expected source module %q, got %q", source, th.thought.SourceModule)
		th.failed = true
	}
	return th
}

// HasConfidence asserts the thought carries the given confidence.
func (th *ThoughtAssertions) HasConfidence(confidence float64) *ThoughtAssertions {
	th.t.Helper()
	if th.thought.Confidence != confidence {
		th.t.Errorf("expected confidence %v, got %v", confidence, th.thought.Confidence)
		th.failed = true
	}
	return th
}

// HasConfidenceAtLeast asserts the thought confidence is at least the given value.
func (th *ThoughtAssertions) HasConfidenceAtLeast(confidence float64) *ThoughtAssertions {
	th.t.Helper()
	if th.thought.Confidence < confidence {
		th.t.Errorf("expected confidence >= %v, got %v", confidence, th.thought.Confidence)
		th.failed = true
	}
	return th
}

// HasMetadata asserts a metadata key holds the given value.
func (th *ThoughtAssertions) HasMetadata(key string, value any) *ThoughtAssertions {
	th.t.Helper()
	got, ok := th.thought.Metadata[key]
	if !ok {
		th.t.Errorf("metadata key %q not found", key)
		th.failed = true
		return th
	}
	if got != value {
		th.t.Errorf("metadata %q: expected %v, got %v", key, value, got)
		th.failed = true
	}
	return th
}

// ScenarioResultAssertions provides assertions for scenario results.
type ScenarioResultAssertions struct {
	*Assertions
	result *ScenarioResult
}

// AssertScenarioResult creates assertions for a scenario result.
func (a *Assertions) AssertScenarioResult(result *ScenarioResult) *ScenarioResultAssertions {
	a.t.Helper()
	if result == nil {
		a.t.Error("scenario result is nil")
		a.failed = true
		return &ScenarioResultAssertions{Assertions: a, result: &ScenarioResult{}}
	}
	return &ScenarioResultAssertions{Assertions: a, result: result}
}

// Succeeded asserts the scenario completed without error.
func (s *ScenarioResultAssertions) Succeeded() *ScenarioResultAssertions {
	s.t.Helper()
	if s.result.Error != nil {
		s.t.Errorf("expected success, got error: %v", s.result.Error)
		s.failed = true
	}
	return s
}

// Failed asserts the scenario failed with an error.
func (s *ScenarioResultAssertions) Failed() *ScenarioResultAssertions {
	s.t.Helper()
	if s.result.Error == nil {
		s.t.Error("expected failure, got success")
		s.failed = true
	}
	return s
}

// ThoughtCount asserts how many thoughts the scenario produced.
func (s *ScenarioResultAssertions) ThoughtCount(count int) *ScenarioResultAssertions {
	s.t.Helper()
	if len(s.result.Thoughts) != count {
		s.t.Errorf("expected %d thoughts, got %d", count, len(s.result.Thoughts))
		s.failed = true
	}
	return s
}

// Quick assertion functions for common patterns

// RequireNoError fails the test immediately if err is not nil.
func RequireNoError(t *testing.T, err error, msg string) {
	t.Helper()
	if err != nil {
		t.Fatalf("%s: %v", msg, err)
	}
}

// RequireEqual fails the test immediately if values are not equal.
func RequireEqual(t *testing.T, expected, actual any, msg string) {
	t.Helper()
	if expected != actual {
		t.Fatalf("%s: expected %v, got %v", msg, expected, actual)
	}
}

// RequireNotNil fails the test immediately if value is nil.
func RequireNotNil(t *testing.T, value any, msg string) {
	t.Helper()
	if value == nil {
		t.Fatalf("%s: expected non-nil value", msg)
	}
}

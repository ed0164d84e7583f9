// Copyright 2026 © The Substrate Authors
// SPDX-License-Identifier: Apache-2.0

// Package testing provides utilities for testing cognitive modules.
//
// This package includes:
//   - Scenario definitions for declarative module testing
//   - Scripted module doubles with canned thoughts
//   - Assertion helpers for common validations
//
// Example usage:
//
//	scenario := testing.NewScenario("recall test").
//	    WithInput("the sky is blue").
//	    WithInput("sky").
//	    ExpectThought(testing.Contains("sky")).
//	    ExpectNoError()
//
//	result := scenario.Run(t, module)
//	result.Assert(t, scenario)
package testing

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/jllopis/substrate/pkg/core"
)

// Scenario defines a test scenario for a cognitive module interaction.
type Scenario struct {
	name          string
	description   string
	inputs        []any
	feedback      []map[string]any
	context       context.Context
	timeout       time.Duration
	expectations  []Expectation
	setupFuncs    []func() error
	teardownFuncs []func() error
}

// Expectation defines a condition to verify after running a scenario.
type Expectation interface {
	// Check verifies the expectation against the result.
	Check(result *ScenarioResult) error
	// Description returns a human-readable description of the expectation.
	Description() string
}

// ScenarioResult contains the outcome of running a scenario.
type ScenarioResult struct {
	Thoughts []core.Thought
	Error    error
	Duration time.Duration
}

// NewScenario creates a new test scenario with the given name.
func NewScenario(name string) *Scenario {
	return &Scenario{
		name:         name,
		timeout:      30 * time.Second,
		context:      context.Background(),
		expectations: make([]Expectation, 0),
	}
}

// WithDescription adds a description to the scenario.
func (s *Scenario) WithDescription(desc string) *Scenario {
	s.description = desc
	return s
}

// WithInput appends an input to feed to the module. Inputs run in order.
func (s *Scenario) WithInput(input any) *Scenario {
	s.inputs = append(s.inputs, input)
	return s
}

// WithFeedback appends a feedback payload delivered after all inputs.
func (s *Scenario) WithFeedback(feedback map[string]any) *Scenario {
	s.feedback = append(s.feedback, feedback)
	return s
}

// WithContext sets the context for the scenario.
func (s *Scenario) WithContext(ctx context.Context) *Scenario {
	s.context = ctx
	return s
}

// WithTimeout sets the timeout for the scenario.
func (s *Scenario) WithTimeout(d time.Duration) *Scenario {
	s.timeout = d
	return s
}

// WithSetup adds a setup function to run before the scenario.
func (s *Scenario) WithSetup(fn func() error) *Scenario {
	s.setupFuncs = append(s.setupFuncs, fn)
	return s
}

// WithTeardown adds a teardown function to run after the scenario.
func (s *Scenario) WithTeardown(fn func() error) *Scenario {
	s.teardownFuncs = append(s.teardownFuncs, fn)
	return s
}

// Expect adds an expectation to the scenario.
func (s *Scenario) Expect(exp Expectation) *Scenario {
	s.expectations = append(s.expectations, exp)
	return s
}

// ExpectThought expects some produced thought whose content matches.
func (s *Scenario) ExpectThought(matcher StringMatcher) *Scenario {
	return s.Expect(&thoughtExpectation{matcher: matcher})
}

// ExpectThoughtCount expects exactly n thoughts.
func (s *Scenario) ExpectThoughtCount(n int) *Scenario {
	return s.Expect(&thoughtCountExpectation{count: n})
}

// ExpectConfidenceAtLeast expects the last thought to carry at least the
// given confidence.
func (s *Scenario) ExpectConfidenceAtLeast(confidence float64) *Scenario {
	return s.Expect(&confidenceExpectation{min: confidence})
}

// ExpectNoError expects no error from the module.
func (s *Scenario) ExpectNoError() *Scenario {
	return s.Expect(&noErrorExpectation{})
}

// ExpectError expects an error matching the given pattern.
func (s *Scenario) ExpectError(matcher StringMatcher) *Scenario {
	return s.Expect(&errorExpectation{matcher: matcher})
}

// ExpectMaxDuration expects the scenario to complete within the given duration.
func (s *Scenario) ExpectMaxDuration(d time.Duration) *Scenario {
	return s.Expect(&maxDurationExpectation{max: d})
}

// Run executes the scenario against the given module. Processing stops at the
// first failing input.
func (s *Scenario) Run(t *testing.T, module core.Module) *ScenarioResult {
	t.Helper()

	for _, setup := range s.setupFuncs {
		if err := setup(); err != nil {
			t.Fatalf("scenario %q setup failed: %v", s.name, err)
		}
	}
	defer func() {
		for _, teardown := range s.teardownFuncs {
			if err := teardown(); err != nil {
				t.Errorf("scenario %q teardown failed: %v", s.name, err)
			}
		}
	}()

	ctx, cancel := context.WithTimeout(s.context, s.timeout)
	defer cancel()

	result := &ScenarioResult{}
	start := time.Now()
	for _, input := range s.inputs {
		th, err := module.Process(ctx, input)
		if err != nil {
			result.Error = err
			break
		}
		result.Thoughts = append(result.Thoughts, th)
	}
	if result.Error == nil {
		for _, fb := range s.feedback {
			if err := module.Update(ctx, fb); err != nil {
				result.Error = err
				break
			}
		}
	}
	result.Duration = time.Since(start)
	return result
}

// Assert checks all expectations and reports failures to the test.
func (r *ScenarioResult) Assert(t *testing.T, scenario *Scenario) {
	t.Helper()

	for _, exp := range scenario.expectations {
		if err := exp.Check(r); err != nil {
			t.Errorf("expectation %q failed: %v", exp.Description(), err)
		}
	}
}

// StringMatcher defines how to match strings in expectations.
type StringMatcher interface {
	Match(s string) bool
	Description() string
}

// Contains returns a matcher that checks if the string contains the substring.
func Contains(substr string) StringMatcher {
	return &containsMatcher{substr: substr}
}

// Equals returns a matcher that checks exact string equality.
func Equals(expected string) StringMatcher {
	return &equalsMatcher{expected: expected}
}

// Regex returns a matcher that checks against a regular expression.
func Regex(pattern string) StringMatcher {
	return &regexMatcher{pattern: pattern}
}

// HasPrefix returns a matcher that checks if the string has the given prefix.
func HasPrefix(prefix string) StringMatcher {
	return &prefixMatcher{prefix: prefix}
}

// containsMatcher checks if a string contains a substring.
type containsMatcher struct {
	substr string
}

func (m *containsMatcher) Match(s string) bool {
	return strings.Contains(s, m.substr)
}

func (m *containsMatcher) Description() string {
	return fmt.Sprintf("contains %q", m.substr)
}

// equalsMatcher checks exact string equality.
type equalsMatcher struct {
	expected string
}

func (m *equalsMatcher) Match(s string) bool {
	return s == m.expected
}

func (m *equalsMatcher) Description() string {
	return fmt.Sprintf("equals %q", m.expected)
}

// regexMatcher checks against a regular expression.
type regexMatcher struct {
	pattern string
}

func (m *regexMatcher) Match(s string) bool {
	re, err := regexp.Compile(m.pattern)
	if err != nil {
		return false
	}
	return re.MatchString(s)
}

func (m *regexMatcher) Description() string {
	return fmt.Sprintf("matches regex %q", m.pattern)
}

// prefixMatcher checks if a string has the given prefix.
type prefixMatcher struct {
	prefix string
}

func (m *prefixMatcher) Match(s string) bool {
	return strings.HasPrefix(s, m.prefix)
}

func (m *prefixMatcher) Description() string {
	return fmt.Sprintf("has prefix %q", m.prefix)
}

// Expectation implementations

type thoughtExpectation struct {
	matcher StringMatcher
}

func (e *thoughtExpectation) Check(r *ScenarioResult) error {
	for _, th := range r.Thoughts {
		if e.matcher.Match(fmt.Sprintf("%v", th.Content)) {
			return nil
		}
	}
	return fmt.Errorf("no thought matches: %s", e.matcher.Description())
}

func (e *thoughtExpectation) Description() string {
	return fmt.Sprintf("thought %s", e.matcher.Description())
}

type thoughtCountExpectation struct {
	count int
}

func (e *thoughtCountExpectation) Check(r *ScenarioResult) error {
	if len(r.Thoughts) != e.count {
		return fmt.Errorf("expected %d thoughts, got %d", e.count, len(r.Thoughts))
	}
	return nil
}

func (e *thoughtCountExpectation) Description() string {
	return fmt.Sprintf("%d thoughts", e.count)
}

type confidenceExpectation struct {
	min float64
}

func (e *confidenceExpectation) Check(r *ScenarioResult) error {
	if len(r.Thoughts) == 0 {
		return fmt.Errorf("no thoughts produced")
	}
	last := r.Thoughts[len(r.Thoughts)-1]
	if last.Confidence < e.min {
		return fmt.Errorf("last thought confidence %v below %v", last.Confidence, e.min)
	}
	return nil
}

func (e *confidenceExpectation) Description() string {
	return fmt.Sprintf("confidence >= %v", e.min)
}

type noErrorExpectation struct{}

func (e *noErrorExpectation) Check(r *ScenarioResult) error {
	if r.Error != nil {
		return fmt.Errorf("expected no error, got: %v", r.Error)
	}
	return nil
}

func (e *noErrorExpectation) Description() string {
	return "no error"
}

type errorExpectation struct {
	matcher StringMatcher
}

func (e *errorExpectation) Check(r *ScenarioResult) error {
	if r.Error == nil {
		return fmt.Errorf("expected error %s, got nil", e.matcher.Description())
	}
	if !e.matcher.Match(r.Error.Error()) {
		return fmt.Errorf("error %q does not match: %s", r.Error.Error(), e.matcher.Description())
	}
	return nil
}

func (e *errorExpectation) Description() string {
	return fmt.Sprintf("error %s", e.matcher.Description())
}

type maxDurationExpectation struct {
	max time.Duration
}

func (e *maxDurationExpectation) Check(r *ScenarioResult) error {
	if r.Duration > e.max {
		return fmt.Errorf("scenario took %v, limit %v", r.Duration, e.max)
	}
	return nil
}

func (e *maxDurationExpectation) Description() string {
	return fmt.Sprintf("completes within %v", e.max)
}

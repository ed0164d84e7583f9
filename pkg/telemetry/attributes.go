// Copyright 2026 © The Substrate Authors
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Semantic conventions for substrate telemetry.
const (
	// Module attributes
	AttrModuleName  = "substrate.module.name"
	AttrModuleState = "substrate.module.state"
	AttrRunID       = "substrate.run_id"

	// Memory attributes
	AttrMemoryScope      = "substrate.memory.scope"
	AttrMemorySTMSize    = "substrate.memory.stm_size"
	AttrMemoryLTMSize    = "substrate.memory.ltm_size"
	AttrMemoryMatches    = "substrate.memory.matches"
	AttrMemoryImportance = "substrate.memory.importance"
	AttrMemoryPromoted   = "substrate.memory.promoted"
	AttrMemoryEvicted    = "substrate.memory.evicted"

	// Thought attributes
	AttrThoughtID         = "substrate.thought.id"
	AttrThoughtConfidence = "substrate.thought.confidence"
)

// ModuleAttributes returns common attributes for module process spans.
func ModuleAttributes(name, state, runID string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(AttrModuleName, name),
	}
	if state != "" {
		attrs = append(attrs, attribute.String(AttrModuleState, state))
	}
	if runID != "" {
		attrs = append(attrs, attribute.String(AttrRunID, runID))
	}
	return attrs
}

// MemoryAttributes returns attributes for memory operations.
func MemoryAttributes(scope string, stmSize, ltmSize, matches int) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.Int(AttrMemorySTMSize, stmSize),
		attribute.Int(AttrMemoryLTMSize, ltmSize),
	}
	if scope != "" {
		attrs = append(attrs, attribute.String(AttrMemoryScope, scope))
	}
	if matches > 0 {
		attrs = append(attrs, attribute.Int(AttrMemoryMatches, matches))
	}
	return attrs
}

// ThoughtAttributes returns attributes describing a produced thought.
func ThoughtAttributes(id string, confidence float64) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrThoughtID, id),
		attribute.Float64(AttrThoughtConfidence, confidence),
	}
}

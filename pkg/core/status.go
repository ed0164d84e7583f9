// SPDX-License-Identifier: Apache-2.0
package core

import "time"

// ModuleStatus is a point-in-time view of a single registered module.
type ModuleStatus struct {
	Name  string         `json:"name"`
	State CognitiveState `json:"state"`
}

// SystemStatus is a point-in-time view of the whole substrate.
type SystemStatus struct {
	Name         string         `json:"name"`
	State        CognitiveState `json:"state"`
	Modules      []ModuleStatus `json:"modules"`
	ThoughtCount int            `json:"thought_count"`
	ContextKeys  int            `json:"context_keys"`
	CollectedAt  time.Time      `json:"collected_at"`
}

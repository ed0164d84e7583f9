package core

import "context"

// Module is the capability contract every cognitive module exposes to the
// orchestrator and to peer modules.
//
// Process must be total for well-typed input where the module defines no
// failure modes; modules that validate configuration do so in their setters,
// not here. Update must tolerate unrecognized feedback keys as a no-op.
type Module interface {
	// Name returns the unique module name used for registration.
	Name() string

	// State returns the module's current cognitive state.
	State() CognitiveState

	// Process runs input through the module and returns a Thought.
	Process(ctx context.Context, input any) (Thought, error)

	// Update adjusts module state from feedback. Unknown keys are ignored.
	Update(ctx context.Context, feedback map[string]any) error
}

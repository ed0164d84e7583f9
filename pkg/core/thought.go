// Package core provides the shared types and interfaces of the substrate.
package core

import (
	"time"

	"github.com/google/uuid"
)

// CognitiveState describes what a module is currently doing.
type CognitiveState string

const (
	StateIdle         CognitiveState = "idle"
	StateProcessing   CognitiveState = "processing"
	StateReasoning    CognitiveState = "reasoning"
	StateLearning     CognitiveState = "learning"
	StateCoordinating CognitiveState = "coordinating"
)

// Thought is the result every cognitive module returns from Process.
type Thought struct {
	ID           string         `json:"id"`
	Content      any            `json:"content"`
	Confidence   float64        `json:"confidence"`
	SourceModule string         `json:"source_module"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// NewThought builds a Thought with a fresh id and timestamp.
// Confidence is clamped to [0, 1].
func NewThought(content any, confidence float64, source string, metadata map[string]any) Thought {
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	return Thought{
		ID:           uuid.New().String(),
		Content:      content,
		Confidence:   confidence,
		SourceModule: source,
		Metadata:     metadata,
		CreatedAt:    time.Now().UTC(),
	}
}

package core

import (
	"context"
	"testing"
)

func TestNewThoughtClampsConfidence(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"below range", -0.5, 0},
		{"zero", 0, 0},
		{"in range", 0.9, 0.9},
		{"above range", 1.7, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th := NewThought("content", tt.in, "test", nil)
			if th.Confidence != tt.want {
				t.Errorf("Confidence = %v, want %v", th.Confidence, tt.want)
			}
		})
	}
}

func TestNewThoughtIdentity(t *testing.T) {
	a := NewThought("x", 0.5, "mod", map[string]any{"k": "v"})
	b := NewThought("x", 0.5, "mod", nil)

	if a.ID == "" || b.ID == "" {
		t.Fatal("thoughts must carry ids")
	}
	if a.ID == b.ID {
		t.Error("each thought must get a fresh id")
	}
	if a.SourceModule != "mod" {
		t.Errorf("SourceModule = %q, want mod", a.SourceModule)
	}
	if a.CreatedAt.IsZero() {
		t.Error("CreatedAt must be set")
	}
	if a.Metadata["k"] != "v" {
		t.Errorf("Metadata not carried: %v", a.Metadata)
	}
}

func TestEnsureRunID(t *testing.T) {
	ctx, id := EnsureRunID(context.Background())
	if id == "" {
		t.Fatal("expected a generated run id")
	}
	got, ok := RunID(ctx)
	if !ok || got != id {
		t.Errorf("RunID = %q, %v, want %q", got, ok, id)
	}

	// An existing run id is preserved.
	ctx2, id2 := EnsureRunID(ctx)
	if id2 != id {
		t.Errorf("EnsureRunID replaced id: %q != %q", id2, id)
	}
	if ctx2 != ctx {
		t.Error("context should be unchanged when a run id exists")
	}
}

type mapShared map[string]any

func (m mapShared) SetContext(key string, value any) { m[key] = value }
func (m mapShared) GetContext(key string) (any, bool) {
	v, ok := m[key]
	return v, ok
}

func TestSharedContextRoundTrip(t *testing.T) {
	if _, ok := SharedFrom(context.Background()); ok {
		t.Fatal("empty context should carry no shared context")
	}

	shared := mapShared{}
	ctx := WithShared(context.Background(), shared)
	got, ok := SharedFrom(ctx)
	if !ok {
		t.Fatal("shared context not found")
	}
	got.SetContext("goal", "test")
	if v, ok := shared.GetContext("goal"); !ok || v != "test" {
		t.Errorf("shared value = %v, %v", v, ok)
	}
}

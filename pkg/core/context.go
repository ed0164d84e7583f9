package core

import (
	"context"
	"crypto/rand"
	"encoding/hex"
)

type runIDKey struct{}
type sharedKey struct{}

// SharedContext is the key-value context the orchestrator shares with the
// modules it fans out to.
type SharedContext interface {
	SetContext(key string, value any)
	GetContext(key string) (any, bool)
}

// WithRunID attaches a run id to the context.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

// RunID returns the run id if present.
func RunID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(runIDKey{}).(string)
	return id, ok
}

// EnsureRunID ensures a run id exists in the context.
func EnsureRunID(ctx context.Context) (context.Context, string) {
	if id, ok := RunID(ctx); ok {
		return ctx, id
	}
	id := newRunID()
	return WithRunID(ctx, id), id
}

// WithShared attaches the orchestrator's shared context.
func WithShared(ctx context.Context, shared SharedContext) context.Context {
	return context.WithValue(ctx, sharedKey{}, shared)
}

// SharedFrom returns the shared context if present.
func SharedFrom(ctx context.Context) (SharedContext, bool) {
	shared, ok := ctx.Value(sharedKey{}).(SharedContext)
	return shared, ok
}

func newRunID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "run-unknown"
	}
	return "run-" + hex.EncodeToString(buf)
}

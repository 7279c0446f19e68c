// Package logging tags log events with the review session they belong to.
package logging

import (
	"context"

	"github.com/google/uuid"
)

// Scope identifies a review session in log output.
type Scope struct {
	SessionID string
	Input     string
}

type scopeKey struct{}

// ScopeFrom returns the scope stored in ctx, or the zero Scope.
func ScopeFrom(ctx context.Context) Scope {
	if sc, ok := ctx.Value(scopeKey{}).(Scope); ok {
		return sc
	}
	return Scope{}
}

func withScope(ctx context.Context, sc Scope) context.Context {
	return context.WithValue(ctx, scopeKey{}, sc)
}

// NewSession starts a session scope with a fresh id. The input label set
// by an outer WithInput is kept.
func NewSession(ctx context.Context) context.Context {
	return WithSessionID(ctx, uuid.NewString())
}

// WithSessionID sets the session id of the scope in ctx.
func WithSessionID(ctx context.Context, id string) context.Context {
	sc := ScopeFrom(ctx)
	sc.SessionID = id
	return withScope(ctx, sc)
}

// WithInput records where the reviewed diff came from: a path pair, a patch
// file, or "stdin".
func WithInput(ctx context.Context, input string) context.Context {
	sc := ScopeFrom(ctx)
	sc.Input = input
	return withScope(ctx, sc)
}

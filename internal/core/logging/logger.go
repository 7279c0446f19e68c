package logging

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Component returns the global logger tagged with cmp=name.
func Component(name string) zerolog.Logger {
	return log.With().Str("cmp", name).Logger()
}

// Scoped is Component bound to ctx: every event it emits carries ctx, so
// ContextHook adds the session fields without each call passing ctx.
func Scoped(ctx context.Context, name string) zerolog.Logger {
	return log.With().Str("cmp", name).Ctx(ctx).Logger()
}

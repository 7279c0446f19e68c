package logging

import "github.com/rs/zerolog"

// ContextHook copies the session scope of an event's context into the event.
type ContextHook struct{}

func (ContextHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	sc := ScopeFrom(e.GetCtx())
	if sc.SessionID != "" {
		e.Str("session_id", sc.SessionID)
	}
	if sc.Input != "" {
		e.Str("input", sc.Input)
	}
}

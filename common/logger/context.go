package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields contains structured fields automatically added to all logs within a context.
// Handlers set the session once and every analyzer, dispatch and broadcast log line below
// them carries it without repeating the attribute.
type LogFields struct {
	SessionID    *string // Live presentation session
	Agent        *string // Analyzer name (chart, reference, context, summary, orchestrator)
	Route        *string // Dispatch route, e.g. "/agents/chart"
	IntentType   *string // Classified intent type
	ConnectionID *string // Websocket connection id
	RequestID    *string // Inbound HTTP request id
	Component    string  // Component name, e.g. "echolens.orchestrator.dispatcher"
}

// WithLogFields enriches context with structured log fields.
// Multiple calls merge fields, with newer non-nil/non-empty values taking precedence.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	existing := GetLogFields(ctx)
	merged := mergeFields(existing, fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields retrieves log fields from context.
// Returns empty LogFields if none are set.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, new LogFields) LogFields {
	result := existing

	if new.SessionID != nil {
		result.SessionID = new.SessionID
	}
	if new.Agent != nil {
		result.Agent = new.Agent
	}
	if new.Route != nil {
		result.Route = new.Route
	}
	if new.IntentType != nil {
		result.IntentType = new.IntentType
	}
	if new.ConnectionID != nil {
		result.ConnectionID = new.ConnectionID
	}
	if new.RequestID != nil {
		result.RequestID = new.RequestID
	}
	if new.Component != "" {
		result.Component = new.Component
	}

	return result
}

// Ptr is a helper to create a pointer from a value.
// Useful for setting LogFields inline: logger.WithLogFields(ctx, logger.LogFields{SessionID: logger.Ptr(id)})
func Ptr[T any](v T) *T {
	return &v
}

// Truncate truncates a string to maxLen bytes, appending "..." if truncated.
// Used for prompts and model output, which can be long.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

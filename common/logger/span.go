package logger

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "echolens"

// Span attribute keys mirrored from LogFields so traces and logs join on the same names.
const (
	attrSessionID  = attribute.Key("echolens.session_id")
	attrAgent      = attribute.Key("echolens.agent")
	attrRoute      = attribute.Key("echolens.route")
	attrIntentType = attribute.Key("echolens.intent_type")
	attrDegraded   = attribute.Key("echolens.degraded")
)

// SpanContext wraps an OTel span for managed lifecycle.
type SpanContext struct {
	ctx  context.Context
	span trace.Span
}

// StartSpan creates a child span and copies the session, agent, route and
// intent fields already on ctx onto it.
//
//	sc := logger.StartSpan(ctx, "agent.chart.generate")
//	defer sc.End()
//	ctx = sc.Context()
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) *SpanContext {
	if attrs := spanAttributes(GetLogFields(ctx)); len(attrs) > 0 {
		opts = append(opts, trace.WithAttributes(attrs...))
	}
	ctx, span := otel.Tracer(tracerName).Start(ctx, name, opts...)
	return &SpanContext{ctx: ctx, span: span}
}

func spanAttributes(f LogFields) []attribute.KeyValue {
	var attrs []attribute.KeyValue
	if f.SessionID != nil {
		attrs = append(attrs, attrSessionID.String(*f.SessionID))
	}
	if f.Agent != nil {
		attrs = append(attrs, attrAgent.String(*f.Agent))
	}
	if f.Route != nil {
		attrs = append(attrs, attrRoute.String(*f.Route))
	}
	if f.IntentType != nil {
		attrs = append(attrs, attrIntentType.String(*f.IntentType))
	}
	return attrs
}

func (sc *SpanContext) Context() context.Context {
	return sc.ctx
}

// End completes the span. Safe to call multiple times.
func (sc *SpanContext) End() {
	if sc.span != nil {
		sc.span.End()
	}
}

// RecordError records an error on the span and marks it failed.
func (sc *SpanContext) RecordError(err error) {
	if sc.span != nil && err != nil {
		sc.span.RecordError(err)
		sc.span.SetStatus(codes.Error, err.Error())
	}
}

// Degrade flags an analyzer that answered with its fallback. The span keeps
// an OK status because the caller still receives a usable result.
func (sc *SpanContext) Degrade(reason error) {
	if sc.span == nil {
		return
	}
	sc.span.SetAttributes(attrDegraded.Bool(true))
	if reason != nil {
		sc.span.AddEvent("degraded", trace.WithAttributes(attribute.String("reason", reason.Error())))
	}
}

func (sc *SpanContext) SetAttributes(kv ...attribute.KeyValue) {
	if sc.span != nil {
		sc.span.SetAttributes(kv...)
	}
}

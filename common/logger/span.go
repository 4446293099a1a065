package logger

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "voyager-generator"

// Span attribute keys shared by the pipeline stages.
const (
	AttrProvider  = attribute.Key("llm.provider")
	AttrModel     = attribute.Key("llm.model")
	AttrTask      = attribute.Key("llm.task")
	AttrJobType   = attribute.Key("codegen.job_type")
	AttrJobID     = attribute.Key("codegen.job_id")
	AttrFramework = attribute.Key("codegen.framework")
	AttrPollRound = attribute.Key("poll.round")
	AttrSessionID = attribute.Key("session.id")
)

// Span is a started span together with the context carrying it.
type Span struct {
	ctx  context.Context
	span trace.Span
}

// StartSpan opens a child span of ctx. The session id from the context log
// fields, if any, is attached automatically.
//
//	sp := logger.StartSpan(ctx, "llm.generate", logger.AttrProvider.String(name))
//	defer sp.End()
//	ctx = sp.Context()
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) *Span {
	if fields := GetLogFields(ctx); fields.SessionID != nil {
		attrs = append(attrs, AttrSessionID.Int64(*fields.SessionID))
	}
	ctx, span := otel.Tracer(tracerName).Start(ctx, name, trace.WithAttributes(attrs...))
	return &Span{ctx: ctx, span: span}
}

func (s *Span) Context() context.Context {
	return s.ctx
}

func (s *Span) End() {
	if s.span != nil {
		s.span.End()
	}
}

// Fail records err and marks the span as errored. A nil err is ignored.
func (s *Span) Fail(err error) {
	if s.span == nil || err == nil {
		return
	}
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

func (s *Span) Annotate(attrs ...attribute.KeyValue) {
	if s.span != nil {
		s.span.SetAttributes(attrs...)
	}
}

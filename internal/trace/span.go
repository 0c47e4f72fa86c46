package trace

import (
	"context"
	"sync/atomic"
	"time"
)

var (
	seqCounter  atomic.Uint64
	spanCounter atomic.Uint64
)

func nextSeq() uint64    { return seqCounter.Add(1) }
func nextSpanID() uint64 { return spanCounter.Add(1) }

// Span is an open interval of work. A disabled span is safe to use and
// records nothing.
type Span struct {
	tracer    Tracer
	id        uint64
	parentID  uint64
	scope     Scope
	name      string
	function  string
	statement int
	started   time.Time
	extra     map[string]string
}

var disabled = &Span{tracer: Nop, statement: NoStatement}

// Option locates a span in the program being compiled.
type Option func(*Span)

// InFunction ties a span, and the spans started under it, to a function.
func InFunction(name string) Option {
	return func(s *Span) { s.function = name }
}

// AtStatement ties a span to one statement.
func AtStatement(id int) Option {
	return func(s *Span) { s.statement = id }
}

// Begin opens a span under parent (0 for a root span). Spans whose scope
// the tracer's level filters out are disabled and have ID 0.
func Begin(t Tracer, scope Scope, name string, parent uint64, opts ...Option) *Span {
	return begin(t, scope, name, SpanContext{SpanID: parent, Statement: NoStatement}, opts)
}

// Start opens a span under the one carried by ctx and returns a context
// carrying the new span.
func Start(ctx context.Context, scope Scope, name string, opts ...Option) (context.Context, *Span) {
	s := begin(FromContext(ctx), scope, name, CurrentSpan(ctx), opts)
	if s.id == 0 {
		return ctx, s
	}
	return WithSpanContext(ctx, SpanContext{SpanID: s.id, Function: s.function, Statement: s.statement}), s
}

func begin(t Tracer, scope Scope, name string, parent SpanContext, opts []Option) *Span {
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return disabled
	}
	s := &Span{
		tracer:    t,
		id:        nextSpanID(),
		parentID:  parent.SpanID,
		scope:     scope,
		name:      name,
		function:  parent.Function,
		statement: parent.Statement,
		started:   time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	t.Emit(s.event(KindSpanBegin, ""))
	return s
}

func (s *Span) event(kind Kind, detail string) *Event {
	ev := &Event{
		Time:      time.Now(),
		Kind:      kind,
		Scope:     s.scope,
		SpanID:    s.id,
		ParentID:  s.parentID,
		Function:  s.function,
		Statement: s.statement,
		Name:      s.name,
		Detail:    detail,
	}
	if kind == KindSpanEnd {
		ev.Extra = s.extra
	}
	return ev
}

// WithExtra attaches a key-value pair to the end event.
func (s *Span) WithExtra(key, value string) *Span {
	if s == nil || s.id == 0 {
		return s
	}
	if s.extra == nil {
		s.extra = make(map[string]string)
	}
	s.extra[key] = value
	return s
}

// ID is 0 for a disabled span.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

// End closes the span and returns its duration.
func (s *Span) End(detail string) time.Duration {
	if s == nil || s.id == 0 {
		return 0
	}
	s.tracer.Emit(s.event(KindSpanEnd, detail))
	return time.Since(s.started)
}

// Point emits an instant event under the span carried by ctx.
func Point(ctx context.Context, scope Scope, name, detail string, opts ...Option) {
	t := FromContext(ctx)
	if !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return
	}
	parent := CurrentSpan(ctx)
	p := &Span{
		id:        nextSpanID(),
		parentID:  parent.SpanID,
		scope:     scope,
		name:      name,
		function:  parent.Function,
		statement: parent.Statement,
	}
	for _, opt := range opts {
		opt(p)
	}
	t.Emit(p.event(KindPoint, detail))
}

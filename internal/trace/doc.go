// Package trace records what the compiler does and how long it takes.
//
// A compile opens one driver span, a pass span per pipeline phase
// (ownership, lower, gas, link), a function span per Sierra function and
// a statement span per compiled statement. Spans know which function and
// statement they belong to, and children inherit that location. The Level
// decides which scopes are kept:
//
//   - LevelOff: nothing
//   - LevelError: functions and coarser, in a ring dumped only on failure
//   - LevelPhase: driver and pass spans
//   - LevelDetail: plus function spans
//   - LevelDebug: plus statement spans
//
// The tracer and the current span travel in the context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx, span := trace.Start(ctx, trace.ScopeFunction, "function:"+name, trace.InFunction(name))
//	defer span.End("")
package trace

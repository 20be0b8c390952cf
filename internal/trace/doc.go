// Package trace is the logging and tracing subsystem of the vela compiler.
//
// Every phase reports what it is doing through a Tracer carried in the
// context; there is no package-level logger.
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopePass, "lower/secondary-ctor", parentID)
//	defer span.End("")
//
//	trace.Point(t, trace.ScopeUnit, "unit aborted", "ICE9001")
//
// # Levels
//
//   - LevelOff: nothing
//   - LevelError: only the crash dump of a ring tracer
//   - LevelPhase: driver and pass boundaries
//   - LevelDetail: per-unit events
//   - LevelDebug: everything, including per-node events
//
// # Implementations
//
//   - Nop: zero overhead when disabled
//   - StreamTracer: writes each event immediately (text or NDJSON)
//   - RingTracer: keeps the last N events for crash dumps
//   - MultiTracer: fan-out
package trace

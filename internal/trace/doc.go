// Package trace records compile activity as spans and points.
//
// Scopes nest from coarse to fine: a batch holds templates, a template holds
// its stages, and stages may emit single diagnostic points. The level picks
// the finest scope written; failed spans are written at every level but off.
//
//	tmplc compile --trace=- --trace-level=stage templates/
//
// The CLI stores the tracer in the command context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopeBatch, "compile", 0)
//	defer span.End("")
package trace

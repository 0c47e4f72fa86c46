// Package diag turns compiler failures into stable, user-facing diagnostics.
//
// A Diagnostic has a Severity, a Code with a fixed string id (SIG1001,
// INV2003, CMP3004, ...), a message and a Location naming the input file,
// the function and the statement index. FromError maps the typed errors of
// the sierra, layout, invocations and compiler packages onto codes; joined
// errors become one diagnostic each.
//
// Bag collects diagnostics with a limit and offers Sort and Dedup so output
// is deterministic. Pretty and FormatShortDiagnostics render them.
package diag

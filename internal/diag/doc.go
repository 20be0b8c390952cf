// Package diag defines the diagnostic model shared by every phase of the
// pipeline: input decoding, name resolution, checkers and lowering.
//
// # Data model
//
// Diagnostic is an immutable record:
//
//   - Severity – Info, Warning, Error, or Fatal. Fatal is reserved for
//     compiler-internal consistency errors; a unit that reports one is aborted.
//   - Code – compact numeric identifier with a stable string form (SEM3012,
//     ICE9001, ...). Codes in the ICE range form the "compiler-internal" class.
//   - Message – human oriented text, already rendered.
//   - Args – the message parameters, for machine-readable output.
//   - Primary – the source.Span the finding points to.
//   - Notes – optional secondary spans.
//
// # Emitting diagnostics
//
// Producers depend on the Reporter interface only. ReportBuilder chains
// WithArgs / WithNote before Emit; Reportf is the one-line form. BagReporter
// collects into a Bag, which preserves report order. Report order equals
// traversal order, which makes output reproducible across runs; Bag.Sort is
// only used for golden files.
//
// Rendering lives in internal/diagfmt.
package diag

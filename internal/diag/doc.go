// Package diag defines the diagnostic model shared by all compile stages.
//
// # Purpose
//
//   - Give parse / optimize / generate stages and the AST detector a single
//     capability (Reporter) for recoverable findings.
//   - Keep findings in call order, split into errors and tips, without
//     coupling producers to storage or formatting.
//
// # Scope
//
// Package diag does not format or print anything beyond the one-line short
// form. Code frames and colours live in internal/diagfmt; the collector is
// created per compile call by internal/compiler.
//
// # Collector modes
//
// A Collector runs in one of two modes chosen once per compile call:
//
//   - ModePlain records only the message; ranges are dropped.
//   - ModeRange records the range as well, shifted by the number of leading
//     whitespace bytes trimmed off the template before parsing, so offsets
//     point into the text the caller passed in.
package diag

// Package logger provides structured logging for genback.
//
// It wraps log/slog with a small Logger interface, a process-wide default
// and context helpers that carry the run ID of a rotation. Attribute
// values that look like credentials are redacted before they are written:
//
//   - logger.go: handler construction and the global level
//   - context.go: logger and run ID propagation
//   - redact.go: credential masking
package logger

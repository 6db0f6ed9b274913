// Package logger provides structured logging for the QuMail backend.
//
// It wraps log/slog with JSON output, runtime level adjustment, and
// automatic redaction of key material. Anything resembling raw key
// bytes must never reach a log sink; redaction is enforced centrally in
// the handler rather than trusted to call sites.
package logger

// Package log configures structured logging for tornet.
//
// Diagnostics go through log/slog; user-facing results (the rotated IP
// lines) are printed by the commands themselves so they stay on stdout
// and scriptable, while log lines go to stderr.
package log

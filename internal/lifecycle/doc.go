// Package lifecycle owns process-wide shutdown: interrupt-driven
// cancellation and the idempotent cleanup that stops the Tor service
// and terminates stray tool processes.
//
// Cleanup is best effort by design. It can run at any point in the
// program's life, including before any rotation has started, and it
// must never fail the exit path: a service that is already stopped or
// a process table with nothing to kill are both success.
package lifecycle

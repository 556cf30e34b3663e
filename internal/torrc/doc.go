// Package torrc locates and edits the Tor configuration file to express
// an exit-relay country policy.
//
// The editor only touches the two directives it owns (ExitNodes and
// StrictNodes); every other line in the file is preserved verbatim.
// Writes are idempotent: applying the same policy twice produces a
// byte-identical file.
package torrc

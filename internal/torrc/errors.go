package torrc

import "errors"

// Editor errors.
//
// Design decision: read and write failures are distinct sentinels rather
// than one generic I/O error because the CLI maps each to its own stable
// exit code. Callers classify with errors.Is; the wrapped error keeps the
// underlying cause for the log line.
var (
	// ErrConfigNotFound is returned when no torrc could be located,
	// neither at the explicit path nor at any well-known default path.
	ErrConfigNotFound = errors.New("torrc not found: use --torrc /path/to/torrc")

	// ErrConfigRead is returned when the torrc exists but could not be
	// read (typically a permission problem).
	ErrConfigRead = errors.New("failed to read torrc")

	// ErrConfigWrite is returned when the rewritten torrc could not be
	// written back (typically a permission problem or read-only mount).
	ErrConfigWrite = errors.New("failed to write torrc")
)

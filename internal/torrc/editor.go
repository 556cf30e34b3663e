package torrc

import (
	"fmt"
	"os"
	"strings"
)

// Marker is the comment line written immediately before the managed
// directives so a human reading the torrc can tell where they came from.
const Marker = "# --- tornet exit policy ---"

// defaultPaths are the well-known torrc locations, tried in order.
// /etc/tor/torrc covers Debian/Ubuntu and most distros.
var defaultPaths = []string{
	"/etc/tor/torrc",
	"/etc/tor/torrc.default",
	"/usr/local/etc/tor/torrc",
	"/etc/torrc",
}

// Locate returns the path of the torrc to edit.
//
// If explicit is non-empty and names an existing regular file, it is
// returned verbatim and the default candidate list is not consulted.
// An explicit path that does not exist falls through to the defaults,
// the first existing one of which wins. ErrConfigNotFound is returned
// when nothing matches.
func Locate(explicit string) (string, error) {
	return locate(explicit, defaultPaths)
}

// locate implements Locate against an arbitrary candidate list so tests
// can run without a system torrc.
func locate(explicit string, candidates []string) (string, error) {
	if explicit != "" && isRegularFile(explicit) {
		return explicit, nil
	}
	for _, p := range candidates {
		if isRegularFile(p) {
			return p, nil
		}
	}
	return "", ErrConfigNotFound
}

// isRegularFile reports whether path names an existing regular file.
func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// WritePolicy rewrites the torrc at path to express the given policy.
//
// The rewrite is a read-modify-write over the whole file: every prior
// ExitNodes or StrictNodes directive (matched on the trimmed line
// prefix) and every prior Marker comment are stripped, then the Marker,
// an ExitNodes directive when the policy is constrained, and exactly one
// StrictNodes directive are appended. Stripping the old Marker as well
// as the directives is what makes repeated writes byte-identical instead
// of accumulating stale comment lines.
//
// Read failures wrap ErrConfigRead and write failures wrap
// ErrConfigWrite so the caller can map them to distinct exit codes.
func WritePolicy(path string, policy ExitPolicy) error {
	data, err := os.ReadFile(path) //nolint:gosec // path is the user's torrc
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConfigRead, err)
	}

	lines := strings.Split(string(data), "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if isManagedLine(line) {
			continue
		}
		kept = append(kept, line)
	}

	var b strings.Builder
	b.WriteString(strings.Join(kept, "\n"))
	if b.Len() > 0 && !strings.HasSuffix(b.String(), "\n") {
		b.WriteString("\n")
	}
	b.WriteString(Marker + "\n")
	if nodes := policy.ExitNodes(); nodes != "" {
		b.WriteString("ExitNodes " + nodes + "\n")
	}
	b.WriteString("StrictNodes " + policy.StrictNodes() + "\n")

	// Keep the file's original permissions; 0600 only applies when the
	// file vanished between read and write.
	mode := os.FileMode(0o600)
	if info, statErr := os.Stat(path); statErr == nil {
		mode = info.Mode().Perm()
	}
	if err := os.WriteFile(path, []byte(b.String()), mode); err != nil {
		return fmt.Errorf("%w: %v", ErrConfigWrite, err)
	}
	return nil
}

// isManagedLine reports whether the editor owns this line and must strip
// it before appending the fresh policy block.
func isManagedLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	return strings.HasPrefix(trimmed, "ExitNodes") ||
		strings.HasPrefix(trimmed, "StrictNodes") ||
		trimmed == Marker
}

package probe

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/safe-acid/tornet/internal/service"
)

// pgrepRunner is the slice of the command-runner capability that
// process detection needs. It is satisfied by service.Runner.
type pgrepRunner interface {
	Run(ctx context.Context, name string, args ...string) (service.Outcome, error)
}

// ProcessRunning reports whether the managed process is present in the
// process table.
//
// It asks pgrep first because that is cheap and exact (-x matches the
// command name, not the whole command line). Hosts without pgrep fall
// back to scanning /proc/<pid>/comm directly, which is what pgrep does
// under the hood anyway.
func (p *Prober) ProcessRunning(ctx context.Context) bool {
	if p.pgrep != nil {
		out, err := p.pgrep.Run(ctx, "pgrep", "-x", p.processName)
		if err == nil {
			// pgrep exits 0 when at least one process matched.
			return out.ExitCode == 0
		}
		// pgrep itself could not run; fall through to the proc scan.
	}
	return p.scanProc()
}

// scanProc walks the proc pseudo-filesystem looking for a process whose
// comm equals the managed process name.
func (p *Prober) scanProc() bool {
	entries, err := os.ReadDir(p.procRoot)
	if err != nil {
		return false
	}
	for _, entry := range entries {
		if !entry.IsDir() || !isNumeric(entry.Name()) {
			continue
		}
		comm, err := os.ReadFile(filepath.Join(p.procRoot, entry.Name(), "comm")) //nolint:gosec // proc paths are kernel-controlled
		if err != nil {
			// Process exited between the dir listing and the read.
			continue
		}
		if strings.TrimSpace(string(comm)) == p.processName {
			return true
		}
	}
	return false
}

// isNumeric reports whether s is a non-empty decimal string (a PID).
func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

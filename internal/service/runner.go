package service

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

// Outcome captures the observable result of one external command:
// its exit code and captured output. It is a plain value so callers
// can decide fatal-versus-warning from context instead of the runner
// deciding for them.
type Outcome struct {
	// ExitCode is the command's exit status. Zero means success.
	ExitCode int

	// Stdout is the captured standard output.
	Stdout string

	// Stderr is the captured standard error, useful for warning logs
	// when a service action fails.
	Stderr string
}

// Runner executes an external command and captures its outcome.
//
// A non-zero exit status is reported through Outcome.ExitCode with a
// nil error; the error return is reserved for commands that could not
// be started at all (missing binary, fork failure). This split keeps
// "the tool ran and complained" distinguishable from "there is no tool".
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Outcome, error)
}

// ExecRunner is the production Runner backed by os/exec.
// The zero value is ready to use.
type ExecRunner struct{}

// Run executes name with args and captures stdout, stderr, and the
// exit code. The context bounds the command's lifetime.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) (Outcome, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := Outcome{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// The command ran; the caller interprets the exit code.
			out.ExitCode = exitErr.ExitCode()
			return out, nil
		}
		return out, err
	}
	return out, nil
}

package contract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// outputTailSize is how much trailing tool output is kept for error causes.
const outputTailSize = 4096

// CommandError is returned when an external tool exits unsuccessfully.
type CommandError struct {
	Command  string
	ExitCode int
	Output   string // trailing output of the tool
	Err      error
}

// Error returns a single-line description suitable for a CSV cell.
func (e *CommandError) Error() string {
	msg := fmt.Sprintf("command '%s' returned non-zero exit status %d", e.Command, e.ExitCode)
	if e.ExitCode < 0 && e.Err != nil {
		msg = fmt.Sprintf("command '%s' failed: %v", e.Command, e.Err)
	}
	if line := lastLine(e.Output); line != "" {
		msg += ": " + line
	}
	return msg
}

// Unwrap returns the underlying exec error.
func (e *CommandError) Unwrap() error {
	return e.Err
}

func newCommandError(command string, err error, output []byte) error {
	ce := &CommandError{Command: command, ExitCode: -1, Output: strings.TrimSpace(string(output)), Err: err}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		ce.ExitCode = exitErr.ExitCode()
	}
	return ce
}

// lastLine returns the last non-empty line of s.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return ""
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	buf bytes.Buffer
	max int
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	n := len(p)
	if len(p) >= t.max {
		t.buf.Reset()
		t.buf.Write(p[len(p)-t.max:])
		return n, nil
	}
	t.buf.Write(p)
	if over := t.buf.Len() - t.max; over > 0 {
		t.buf.Next(over)
	}
	return n, nil
}

func (t *tailBuffer) String() string {
	return t.buf.String()
}

// LocalRunner implements CommandRunner with os/exec.
type LocalRunner struct {
	// Echo receives a copy of the tool's stderr (and stdout when the caller
	// does not capture it). Nil discards it.
	Echo io.Writer
}

var _ CommandRunner = &LocalRunner{} // Compile-time check

// NewLocalRunner creates a runner that echoes tool output to echo.
func NewLocalRunner(echo io.Writer) *LocalRunner {
	return &LocalRunner{Echo: echo}
}

// Run implements the CommandRunner interface.
func (r *LocalRunner) Run(ctx context.Context, dir string, stdout io.Writer, name string, args ...string) error {
	tail := &tailBuffer{max: outputTailSize}
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	errSinks := []io.Writer{tail}
	if r.Echo != nil {
		errSinks = append(errSinks, r.Echo)
	}
	cmd.Stderr = io.MultiWriter(errSinks...)
	if stdout != nil {
		cmd.Stdout = stdout
	} else {
		cmd.Stdout = cmd.Stderr
	}

	if err := cmd.Run(); err != nil {
		return newCommandError(strings.Join(append([]string{name}, args...), " "), err, []byte(tail.String()))
	}
	return nil
}

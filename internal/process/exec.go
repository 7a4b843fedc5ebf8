package process

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
)

// Logger receives the command echo in verbose mode and background failures.
type Logger interface {
	Debugf(format string, a ...interface{})
	Errorf(format string, a ...interface{})
}

// Executor runs external tools from a fixed working directory.
type Executor struct {
	Dir     string
	Verbose bool
	Log     Logger
	Env     []string // extra KEY=value pairs appended to the inherited environment
}

func NewExecutor(dir string, verbose bool, log Logger) *Executor {
	return &Executor{Dir: dir, Verbose: verbose, Log: log}
}

// Run executes a command, blocks until it exits, and returns its stdout.
func (e *Executor) Run(ctx context.Context, name string, args ...string) (string, error) {
	cmd := e.command(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return stdout.String(), commandError(name, args, stderr.String(), err)
	}
	return stdout.String(), nil
}

// RunCombined is Run with stdout and stderr interleaved into one result, for
// tools that print their summary on either stream.
func (e *Executor) RunCombined(ctx context.Context, name string, args ...string) (string, error) {
	cmd := e.command(ctx, name, args...)

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		return out.String(), commandError(name, args, out.String(), err)
	}
	return out.String(), nil
}

func (e *Executor) command(ctx context.Context, name string, args ...string) *exec.Cmd {
	e.debugf("$ %s %s", name, strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = e.Dir
	if len(e.Env) > 0 {
		cmd.Env = append(os.Environ(), e.Env...)
	}
	return cmd
}

func (e *Executor) debugf(format string, a ...interface{}) {
	if e.Verbose && e.Log != nil {
		e.Log.Debugf(format, a...)
	}
}

func commandError(name string, args []string, stderr string, err error) error {
	code := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.ExitCode()
	}
	return &ExternalCommandError{
		Args:     append([]string{name}, args...),
		Stderr:   stderr,
		ExitCode: code,
		Err:      err,
	}
}

package process

import (
	"errors"
	"fmt"
	"strings"
)

// ExternalCommandError wraps a failed run with the command line and whatever
// the command wrote to stderr.
type ExternalCommandError struct {
	Args     []string // program followed by its arguments
	Stderr   string   // captured error output
	ExitCode int      // -1 when the process never ran to completion
	Err      error    // underlying exec error
}

func (e *ExternalCommandError) Error() string {
	msg := fmt.Sprintf("command failed: %s", strings.Join(e.Args, " "))
	if e.ExitCode >= 0 {
		msg += fmt.Sprintf(" (exit code %d)", e.ExitCode)
	}
	if s := strings.TrimSpace(e.Stderr); s != "" {
		return msg + ": " + s
	}
	return msg + ": " + e.Err.Error()
}

func (e *ExternalCommandError) Unwrap() error {
	return e.Err
}

// IsExternalCommandError reports whether err came from a command exiting
// unsuccessfully.
func IsExternalCommandError(err error) bool {
	var cmdErr *ExternalCommandError
	return errors.As(err, &cmdErr)
}

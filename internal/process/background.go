package process

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"
)

// Background is a long-running child, such as the application server, that
// runs alongside the audit until Stop is called.
type Background struct {
	cmd    *exec.Cmd
	args   []string
	stderr bytes.Buffer
	log    Logger

	stopOnce sync.Once
	stopped  atomic.Bool
	done     chan struct{}
	stopErr  error
}

// Start launches a command without waiting for it. An exit that was not
// requested through Stop is reported to the executor's logger only; the
// caller finds out through whatever step depends on the process next.
func (e *Executor) Start(ctx context.Context, name string, args ...string) (*Background, error) {
	e.debugf("$ %s %s &", name, strings.Join(args, " "))

	cmd := exec.Command(name, args...)
	cmd.Dir = e.Dir
	if len(e.Env) > 0 {
		cmd.Env = append(os.Environ(), e.Env...)
	}

	b := &Background{
		cmd:  cmd,
		args: append([]string{name}, args...),
		log:  e.Log,
		done: make(chan struct{}),
	}
	cmd.Stderr = &b.stderr

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, commandError(name, args, "", err)
	}

	go b.wait()
	return b, nil
}

func (b *Background) wait() {
	err := b.cmd.Wait()
	if err != nil && !b.stopped.Load() && b.log != nil {
		b.log.Errorf("background process exited: %v", commandError(b.args[0], b.args[1:], b.stderr.String(), err))
	}
	close(b.done)
}

// Pid of the process that was started.
func (b *Background) Pid() int {
	return b.cmd.Process.Pid
}

// Done is closed once the process has exited and been reaped.
func (b *Background) Done() <-chan struct{} {
	return b.done
}

// Stop sends a termination signal to the process and every descendant it
// forked, without waiting for them to exit. Safe to call more than once.
func (b *Background) Stop() error {
	b.stopOnce.Do(func() {
		b.stopped.Store(true)
		select {
		case <-b.done:
			return
		default:
		}
		b.stopErr = terminateTree(int32(b.cmd.Process.Pid))
	})
	return b.stopErr
}

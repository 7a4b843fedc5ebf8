package audit

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"
)

// ErrNotReady is returned by WaitForAddr when the deadline passes before the
// address accepts a connection.
var ErrNotReady = errors.New("server not ready")

const probeInterval = 250 * time.Millisecond

// WaitForAddr dials addr every interval until a TCP connection succeeds,
// timeout elapses, or ctx is cancelled.
func WaitForAddr(ctx context.Context, addr string, timeout, interval time.Duration) error {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	dialer := net.Dialer{Timeout: interval}
	for {
		conn, err := dialer.DialContext(ctx, "tcp", addr)
		if err == nil {
			conn.Close()
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return fmt.Errorf("%w: %s not accepting connections after %s", ErrNotReady, addr, timeout)
		case <-ticker.C:
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

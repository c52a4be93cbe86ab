package fishaudio

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"
	"time"
)

// idleTimeoutBody cancels the request when no data arrives for timeout.
// Every successful read restarts the clock.
type idleTimeoutBody struct {
	io.ReadCloser
	timeout time.Duration
	timer   *time.Timer
	cancel  context.CancelFunc
	expired atomic.Bool
}

func newIdleTimeoutBody(body io.ReadCloser, timeout time.Duration, cancel context.CancelFunc) io.ReadCloser {
	b := &idleTimeoutBody{ReadCloser: body, timeout: timeout, cancel: cancel}
	if timeout > 0 {
		b.timer = time.AfterFunc(timeout, func() {
			b.expired.Store(true)
			cancel()
		})
	}
	return b
}

func (b *idleTimeoutBody) Read(p []byte) (int, error) {
	n, err := b.ReadCloser.Read(p)
	if n > 0 && b.timer != nil {
		b.timer.Reset(b.timeout)
	}
	if err != nil && err != io.EOF && b.expired.Load() {
		return n, fmt.Errorf("upstream stream idle for %s: %w", b.timeout, err)
	}
	return n, err
}

func (b *idleTimeoutBody) Close() error {
	if b.timer != nil {
		b.timer.Stop()
	}
	b.cancel()
	return b.ReadCloser.Close()
}

// Package video drives an external ffmpeg-like encoder as a child process.
package video

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-shellwords"

	"github.com/1F47E/go-iconreel/pkg/errs"
	"github.com/1F47E/go-iconreel/pkg/logger"
)

const (
	DefaultBinary       = "ffmpeg"
	DefaultPollInterval = 25 * time.Millisecond

	stderrTail = 2048
)

type Encoder struct {
	Binary       string
	PollInterval time.Duration
	// Timeout kills the process when it runs longer. 0 waits forever.
	Timeout time.Duration
	// ExtraArgs is a shell-quoted string put in front of every command line.
	ExtraArgs string
}

func NewEncoder(binary string) *Encoder {
	if binary == "" {
		binary = DefaultBinary
	}
	return &Encoder{
		Binary:       binary,
		PollInterval: DefaultPollInterval,
	}
}

// Command returns the full argv after the binary.
func (e *Encoder) Command(args *Args) ([]string, error) {
	extra, err := shellwords.Parse(e.ExtraArgs)
	if err != nil {
		return nil, errs.Invalid("video", "bad extra args %q: %v", e.ExtraArgs, err)
	}
	return append(extra, args.Strings()...), nil
}

// Start launches the encoder and returns at once. The process is not tied
// to ctx, cancellation goes through Handle.Wait.
func (e *Encoder) Start(ctx context.Context, args *Args) (*Handle, error) {
	log := logger.Log.WithField("scope", "video")
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := exec.LookPath(e.Binary)
	if err != nil {
		return nil, errs.Unavailable("video", fmt.Errorf("encoder binary %q: %w", e.Binary, err))
	}
	argv, err := e.Command(args)
	if err != nil {
		return nil, err
	}

	log.Debugf("Running encoder command: %s %s", path, strings.Join(argv, " "))
	cmd := exec.Command(path, argv...)
	stderr := &tailBuffer{max: stderrTail}
	cmd.Stderr = stderr
	if err := cmd.Start(); err != nil {
		return nil, errs.IO("video: start", err)
	}

	poll := e.PollInterval
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	h := &Handle{
		cmd:     cmd,
		stderr:  stderr,
		poll:    poll,
		timeout: e.Timeout,
		started: time.Now(),
		done:    make(chan struct{}),
	}
	go func() {
		h.err = cmd.Wait()
		close(h.done)
	}()
	return h, nil
}

// Run starts the encoder and waits for it.
func (e *Encoder) Run(ctx context.Context, args *Args) error {
	h, err := e.Start(ctx, args)
	if err != nil {
		return err
	}
	return h.Wait(ctx)
}

// Handle is a running encoder process.
type Handle struct {
	cmd     *exec.Cmd
	stderr  *tailBuffer
	poll    time.Duration
	timeout time.Duration
	started time.Time

	done chan struct{}
	err  error // valid after done is closed
}

// Done is closed when the process has exited.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

func (h *Handle) Pid() int {
	return h.cmd.Process.Pid
}

// Wait polls the process until it exits, ctx is cancelled or the timeout
// passes. The last two kill the process. A non-zero exit is an IOFailure.
func (h *Handle) Wait(ctx context.Context) error {
	log := logger.Log.WithField("scope", "video")

	ticker := time.NewTicker(h.poll)
	defer ticker.Stop()

	var timeout <-chan time.Time
	if h.timeout > 0 {
		timer := time.NewTimer(h.timeout - time.Since(h.started))
		defer timer.Stop()
		timeout = timer.C
	}

	for {
		select {
		case <-h.done:
			return h.result()
		case <-ctx.Done():
			h.kill()
			return ctx.Err()
		case <-timeout:
			h.kill()
			return errs.IO("video", fmt.Errorf("encoder timed out after %s", h.timeout))
		case <-ticker.C:
			log.Trace("encoder is busy")
		}
	}
}

func (h *Handle) kill() {
	_ = h.cmd.Process.Kill()
	<-h.done
}

func (h *Handle) result() error {
	if h.err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(h.err, &exitErr) {
		msg := fmt.Sprintf("encoder exited with code %d", exitErr.ExitCode())
		if tail := strings.TrimSpace(h.stderr.String()); tail != "" {
			msg += ": " + tail
		}
		return errs.IO("video", errors.New(msg))
	}
	return errs.IO("video", h.err)
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	mu  sync.Mutex
	buf []byte
	max int
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf = append(t.buf, p...)
	if len(t.buf) > t.max {
		t.buf = t.buf[len(t.buf)-t.max:]
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return string(t.buf)
}

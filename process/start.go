package process

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"sync"
	"syscall"
	"time"
)

// Proc is a handle to a started subprocess that runs until stopped.
type Proc struct {
	cmd    *exec.Cmd
	grace  time.Duration
	stderr bytes.Buffer

	waitOnce sync.Once
	waitErr  error
	done     chan struct{}
}

// Start launches a long-running subprocess without waiting for it.
// The caller owns the returned Proc and must call Stop or Wait.
func Start(ctx context.Context, cmd Command) (*Proc, error) {
	if cmd.Binary == "" {
		return nil, fmt.Errorf("process: binary is required")
	}

	gracePeriod := cmd.GracePeriod
	if gracePeriod == 0 {
		gracePeriod = 5 * time.Second
	}

	c := exec.CommandContext(ctx, cmd.Binary, cmd.Args...) //nolint:gosec // dynamic args are the purpose of this package
	c.Dir = cmd.Dir
	c.Env = mergeEnv(cmd.Env)

	p := &Proc{cmd: c, grace: gracePeriod, done: make(chan struct{})}
	c.Stderr = &p.stderr

	if cmd.Stdin != nil {
		c.Stdin = cmd.Stdin
	}

	c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	c.Cancel = func() error {
		if c.Process == nil {
			return nil
		}
		return syscall.Kill(-c.Process.Pid, syscall.SIGTERM)
	}
	c.WaitDelay = gracePeriod

	if err := c.Start(); err != nil {
		return nil, fmt.Errorf("process: start %s: %w", cmd.Binary, err)
	}

	go func() {
		p.waitErr = c.Wait()
		close(p.done)
	}()

	return p, nil
}

// Stop terminates the process group with SIGTERM, escalating to SIGKILL
// after the grace period. It returns once the process has exited.
func (p *Proc) Stop() error {
	if p.cmd.Process != nil {
		_ = syscall.Kill(-p.cmd.Process.Pid, syscall.SIGTERM)
	}

	select {
	case <-p.done:
	case <-time.After(p.grace):
		if p.cmd.Process != nil {
			_ = syscall.Kill(-p.cmd.Process.Pid, syscall.SIGKILL)
		}
		<-p.done
	}

	// SIGTERM-initiated exit is the normal shutdown path, not a failure.
	if p.waitErr != nil {
		if exitErr, ok := p.waitErr.(*exec.ExitError); ok {
			if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
				return nil
			}
		}
		return fmt.Errorf("process: %w: %s", p.waitErr, p.stderr.String())
	}
	return nil
}

// Wait blocks until the process exits on its own.
func (p *Proc) Wait() error {
	<-p.done
	return p.waitErr
}

// Running reports whether the process has not yet exited.
func (p *Proc) Running() bool {
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

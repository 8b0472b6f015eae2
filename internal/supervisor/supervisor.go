// Package supervisor runs the companion backend process for the lifetime
// of the shell.
package supervisor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/tgienger/kairo/internal/logger"
)

// ErrExited is returned by Ready when the process ends before it answers
var ErrExited = errors.New("backend exited before becoming ready")

// Config describes the process to run
type Config struct {
	Command      string
	Args         []string
	Dir          string
	Env          []string // appended to the current environment
	ReadyURL     string
	ReadyTimeout time.Duration
	StopTimeout  time.Duration
	PollInterval time.Duration
}

// Supervisor owns one backend process. It can be started again once the
// previous process has exited.
type Supervisor struct {
	cfg   Config
	log   *logger.Logger
	probe *http.Client

	mu      sync.Mutex
	cmd     *exec.Cmd
	done    chan struct{}
	exitErr error
}

// New creates a supervisor; nothing runs until Start
func New(cfg Config, log *logger.Logger) *Supervisor {
	if cfg.ReadyTimeout <= 0 {
		cfg.ReadyTimeout = 15 * time.Second
	}
	if cfg.StopTimeout <= 0 {
		cfg.StopTimeout = 5 * time.Second
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 200 * time.Millisecond
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Supervisor{
		cfg: cfg,
		log: log.WithComponent("backend"),
		probe: &http.Client{
			Timeout:   time.Second,
			Transport: &http.Transport{DisableKeepAlives: true},
		},
	}
}

// Start launches the process and streams its output into the log
func (s *Supervisor) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cmd != nil {
		select {
		case <-s.done:
		default:
			return fmt.Errorf("backend already started")
		}
	}

	cmd := exec.Command(s.cfg.Command, s.cfg.Args...)
	cmd.Dir = s.cfg.Dir
	cmd.Env = append(os.Environ(), s.cfg.Env...)
	// descendants holding the output open must not keep Wait from returning
	cmd.WaitDelay = s.cfg.StopTimeout
	ownProcessGroup(cmd)

	stdoutR, stdoutW := io.Pipe()
	stderrR, stderrW := io.Pipe()
	cmd.Stdout = stdoutW
	cmd.Stderr = stderrW

	if err := cmd.Start(); err != nil {
		stdoutW.Close()
		stderrW.Close()
		return fmt.Errorf("failed to start backend %q: %w", s.cfg.Command, err)
	}
	s.log.Infow("Backend started", "command", s.cfg.Command, "args", s.cfg.Args, "pid", cmd.Process.Pid)

	s.cmd = cmd
	s.done = make(chan struct{})
	s.exitErr = nil
	done := s.done

	var wg sync.WaitGroup
	wg.Add(2)
	go s.stream(&wg, stdoutR, false)
	go s.stream(&wg, stderrR, true)

	go func() {
		err := cmd.Wait()
		stdoutW.Close()
		stderrW.Close()
		wg.Wait()
		s.mu.Lock()
		s.exitErr = err
		s.mu.Unlock()
		if err != nil {
			s.log.WithError(err).Warnw("Backend exited")
		} else {
			s.log.Infow("Backend exited")
		}
		close(done)
	}()
	return nil
}

func (s *Supervisor) stream(wg *sync.WaitGroup, r io.Reader, isErr bool) {
	defer wg.Done()
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if isErr {
			s.log.Warnw("backend", "line", scanner.Text())
		} else {
			s.log.Infow("backend", "line", scanner.Text())
		}
	}
	// keep the writer unblocked after an overlong line
	_, _ = io.Copy(io.Discard, r)
}

// Ready polls ReadyURL until it answers with any HTTP status, the process
// exits, or the ready timeout passes
func (s *Supervisor) Ready(ctx context.Context) error {
	done := s.Done()
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ReadyTimeout)
	defer cancel()

	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.ReadyURL, nil)
		if err != nil {
			return fmt.Errorf("invalid ready url: %w", err)
		}
		if resp, err := s.probe.Do(req); err == nil {
			resp.Body.Close()
			s.log.Infow("Backend ready", "url", s.cfg.ReadyURL, "status", resp.StatusCode)
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("backend not ready after %s: %w", s.cfg.ReadyTimeout, ctx.Err())
		case <-done:
			return ErrExited
		case <-ticker.C:
		}
	}
}

// Stop interrupts the process, then kills it after the grace period.
// It waits for the process to exit.
func (s *Supervisor) Stop() error {
	s.mu.Lock()
	cmd, done := s.cmd, s.done
	s.mu.Unlock()
	if cmd == nil {
		return nil
	}

	select {
	case <-done:
		return nil
	default:
	}

	if err := interrupt(cmd); err != nil {
		_ = kill(cmd)
	}

	select {
	case <-done:
	case <-time.After(s.cfg.StopTimeout):
		s.log.Warnw("Backend ignored interrupt, killing", "grace", s.cfg.StopTimeout)
		_ = kill(cmd)
		<-done
	}
	return nil
}

// Done is closed when the process exits. Before Start it is never closed.
func (s *Supervisor) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done == nil {
		return nil
	}
	return s.done
}

// Running reports whether the process has started and not yet exited
func (s *Supervisor) Running() bool {
	done := s.Done()
	if done == nil {
		return false
	}
	select {
	case <-done:
		return false
	default:
		return true
	}
}

// Err returns the process exit error once Done is closed
func (s *Supervisor) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exitErr
}

package system

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/angelfreak/wnet/pkg/telemetry"
	"github.com/angelfreak/wnet/pkg/types"
	"golang.org/x/sys/unix"
)

// Executor runs external commands as argument vectors. It is the only place in
// the module that spawns processes, so every command can be logged, timed and
// replaced by a mock in tests.
type Executor struct {
	logger   types.Logger
	debug    bool
	lookPath func(file string) (string, error)
}

// NewExecutor creates a new system executor
func NewExecutor(logger types.Logger, debug bool) *Executor {
	telemetry.InitMetrics()
	return &Executor{
		logger:   logger,
		debug:    debug,
		lookPath: exec.LookPath,
	}
}

// Execute runs a command and returns its standard output
func (e *Executor) Execute(cmd string, args ...string) (string, error) {
	return e.ExecuteContext(context.Background(), cmd, args...)
}

// ExecuteContext runs a command that is killed when ctx is done
func (e *Executor) ExecuteContext(ctx context.Context, cmd string, args ...string) (string, error) {
	stdout, _, err := e.run(ctx, cmd, "", args)
	return stdout, err
}

// ExecuteWithTimeout runs a command that is killed after timeout
func (e *Executor) ExecuteWithTimeout(timeout time.Duration, cmd string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return e.ExecuteContext(ctx, cmd, args...)
}

// ExecuteWithInput runs a command with input written to its standard input
func (e *Executor) ExecuteWithInput(cmd string, input string, args ...string) (string, error) {
	return e.ExecuteWithInputContext(context.Background(), cmd, input, args...)
}

// ExecuteWithInputContext runs a command with input on stdin that is killed when ctx is done
func (e *Executor) ExecuteWithInputContext(ctx context.Context, cmd string, input string, args ...string) (string, error) {
	stdout, _, err := e.run(ctx, cmd, input, args)
	return stdout, err
}

// ExecuteQuiet runs a probe command and returns stdout followed by stderr.
// The exit status is only logged.
func (e *Executor) ExecuteQuiet(cmd string, args ...string) string {
	stdout, stderr, err := e.run(context.Background(), cmd, "", args)
	if err != nil {
		e.logger.Debug("Quiet command failed", "command", cmd, "error", err)
	}
	return stdout + stderr
}

// HasCommand reports whether cmd can be found in PATH
func (e *Executor) HasCommand(cmd string) bool {
	_, err := e.lookPath(cmd)
	return err == nil
}

func (e *Executor) run(ctx context.Context, name, input string, args []string) (string, string, error) {
	if err := validateArgv(name, args); err != nil {
		return "", "", err
	}

	if e.debug {
		e.logger.Debug("Executing command", "command", name, "args", strings.Join(args, " "))
	}

	c := exec.CommandContext(ctx, name, args...)
	// Run in its own process group so a deadline also kills any children
	c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	c.Cancel = func() error {
		return unix.Kill(-c.Process.Pid, unix.SIGKILL)
	}
	c.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr
	if input != "" {
		c.Stdin = strings.NewReader(input)
	}

	label := filepath.Base(name)
	start := time.Now()
	err := c.Run()
	telemetry.CommandDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())

	if err == nil {
		telemetry.CommandsTotal.WithLabelValues(label, telemetry.ResultOK).Inc()
		if e.debug {
			e.logger.Debug("Command output", "command", name, "output", stdout.String())
		}
		return stdout.String(), stderr.String(), nil
	}

	execErr := &types.ExecutionError{
		Command:  name,
		Args:     args,
		ExitCode: -1,
		Stderr:   stderr.String(),
		Err:      err,
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		execErr.ExitCode = exitErr.ExitCode()
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		execErr.Timeout = errors.Is(ctxErr, context.DeadlineExceeded)
		execErr.Err = ctxErr
	}

	result := telemetry.ResultError
	if execErr.Timeout {
		result = telemetry.ResultTimeout
	}
	telemetry.CommandsTotal.WithLabelValues(label, result).Inc()

	if e.debug {
		e.logger.Debug("Command failed", "command", name, "exitCode", execErr.ExitCode, "stderr", execErr.Stderr)
	}
	return stdout.String(), stderr.String(), execErr
}

// validateArgv rejects argument vectors that cannot be passed to execve intact
func validateArgv(name string, args []string) error {
	if name == "" {
		return &types.ValidationError{Field: "command", Reason: "cannot be empty"}
	}
	if strings.ContainsRune(name, 0) {
		return &types.ValidationError{Field: "command", Reason: "cannot contain null bytes"}
	}
	for _, arg := range args {
		if strings.ContainsRune(arg, 0) {
			return &types.ValidationError{Field: "argument", Reason: "cannot contain null bytes"}
		}
	}
	return nil
}

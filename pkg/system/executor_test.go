package system

import (
	"context"
	"errors"
	"os/exec"
	"testing"
	"time"

	"github.com/angelfreak/wnet/pkg/telemetry"
	"github.com/angelfreak/wnet/pkg/types"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	debugMessages []string
}

func (l *recordingLogger) Debug(msg string, fields ...interface{}) {
	l.debugMessages = append(l.debugMessages, msg)
}
func (l *recordingLogger) Info(msg string, fields ...interface{})  {}
func (l *recordingLogger) Warn(msg string, fields ...interface{})  {}
func (l *recordingLogger) Error(msg string, fields ...interface{}) {}

func skipIfMissing(t *testing.T, cmds ...string) {
	t.Helper()
	for _, cmd := range cmds {
		if _, err := exec.LookPath(cmd); err != nil {
			t.Skipf("skipping: required command %q not found in PATH", cmd)
		}
	}
}

func TestExecute(t *testing.T) {
	skipIfMissing(t, "sh")
	executor := NewExecutor(&recordingLogger{}, false)

	t.Run("returns stdout", func(t *testing.T) {
		out, err := executor.Execute("sh", "-c", "echo hello")
		require.NoError(t, err)
		assert.Equal(t, "hello\n", out)
	})

	t.Run("arguments are not interpreted by a shell", func(t *testing.T) {
		out, err := executor.Execute("sh", "-c", `printf '%s' "$0"`, "wlan0; reboot")
		require.NoError(t, err)
		assert.Equal(t, "wlan0; reboot", out)
	})

	t.Run("non-zero exit returns ExecutionError", func(t *testing.T) {
		out, err := executor.Execute("sh", "-c", "echo partial; echo broken >&2; exit 3")
		require.Error(t, err)
		assert.Equal(t, "partial\n", out)

		var execErr *types.ExecutionError
		require.True(t, errors.As(err, &execErr))
		assert.Equal(t, 3, execErr.ExitCode)
		assert.Equal(t, "broken\n", execErr.Stderr)
		assert.False(t, execErr.Timeout)
		assert.Equal(t, []string{"-c", "echo partial; echo broken >&2; exit 3"}, execErr.Args)
	})

	t.Run("missing binary", func(t *testing.T) {
		_, err := executor.Execute("wnet-definitely-not-installed")
		var execErr *types.ExecutionError
		require.True(t, errors.As(err, &execErr))
		assert.Equal(t, -1, execErr.ExitCode)
	})

	t.Run("rejects empty command", func(t *testing.T) {
		_, err := executor.Execute("")
		var vErr *types.ValidationError
		assert.True(t, errors.As(err, &vErr))
	})

	t.Run("rejects null bytes", func(t *testing.T) {
		_, err := executor.Execute("sh", "-c", "echo\x00oops")
		var vErr *types.ValidationError
		assert.True(t, errors.As(err, &vErr))
	})
}

func TestExecuteWithTimeout(t *testing.T) {
	skipIfMissing(t, "sh", "sleep")
	executor := NewExecutor(&recordingLogger{}, false)

	before := testutil.ToFloat64(telemetry.CommandsTotal.WithLabelValues("sh", telemetry.ResultTimeout))

	start := time.Now()
	_, err := executor.ExecuteWithTimeout(100*time.Millisecond, "sh", "-c", "sleep 10")
	elapsed := time.Since(start)

	var execErr *types.ExecutionError
	require.True(t, errors.As(err, &execErr))
	assert.True(t, execErr.Timeout)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, elapsed, 5*time.Second)
	assert.Equal(t, before+1, testutil.ToFloat64(telemetry.CommandsTotal.WithLabelValues("sh", telemetry.ResultTimeout)))
}

func TestExecuteContextCanceled(t *testing.T) {
	skipIfMissing(t, "sleep")
	executor := NewExecutor(&recordingLogger{}, false)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := executor.ExecuteContext(ctx, "sleep", "10")
	var execErr *types.ExecutionError
	require.True(t, errors.As(err, &execErr))
	assert.False(t, execErr.Timeout)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExecuteWithInput(t *testing.T) {
	skipIfMissing(t, "cat")
	executor := NewExecutor(&recordingLogger{}, false)

	out, err := executor.ExecuteWithInput("cat", "network={\n}\n")
	require.NoError(t, err)
	assert.Equal(t, "network={\n}\n", out)
}

func TestExecuteQuiet(t *testing.T) {
	skipIfMissing(t, "sh")
	logger := &recordingLogger{}
	executor := NewExecutor(logger, false)

	out := executor.ExecuteQuiet("sh", "-c", "echo out; echo \"Unsupported driver 'foo'.\" >&2; exit 255")
	assert.Contains(t, out, "out")
	assert.Contains(t, out, "Unsupported driver 'foo'.")
	assert.Contains(t, logger.debugMessages, "Quiet command failed")
}

func TestExecuteCountsCommands(t *testing.T) {
	skipIfMissing(t, "true")
	executor := NewExecutor(&recordingLogger{}, false)

	before := testutil.ToFloat64(telemetry.CommandsTotal.WithLabelValues("true", telemetry.ResultOK))
	_, err := executor.Execute("true")
	require.NoError(t, err)
	assert.Equal(t, before+1, testutil.ToFloat64(telemetry.CommandsTotal.WithLabelValues("true", telemetry.ResultOK)))
}

func TestDebugLogging(t *testing.T) {
	skipIfMissing(t, "true")
	logger := &recordingLogger{}
	executor := NewExecutor(logger, true)

	_, err := executor.Execute("true")
	require.NoError(t, err)
	assert.Contains(t, logger.debugMessages, "Executing command")
	assert.Contains(t, logger.debugMessages, "Command output")
}

func TestHasCommand(t *testing.T) {
	executor := NewExecutor(&recordingLogger{}, false)
	executor.lookPath = func(file string) (string, error) {
		if file == "iw" {
			return "/usr/sbin/iw", nil
		}
		return "", exec.ErrNotFound
	}

	assert.True(t, executor.HasCommand("iw"))
	assert.False(t, executor.HasCommand("iwconfig"))
}

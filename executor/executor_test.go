package executor

import (
	"bytes"
	"context"
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteCapturesOutput(t *testing.T) {
	skipOnWindows(t)

	result, err := New("echo", "hello").Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "hello\n", result.Stdout)
	assert.Empty(t, result.Stderr)
	assert.Equal(t, 0, result.ExitCode)
}

func TestExecuteReportsExitCode(t *testing.T) {
	skipOnWindows(t)

	result, err := New("sh", "-c", "exit 3").Execute(context.Background())
	require.Error(t, err)
	assert.Equal(t, 3, result.ExitCode)
}

func TestExecuteMissingProgram(t *testing.T) {
	result, err := New("definitely-not-a-real-program").Execute(context.Background())
	require.Error(t, err)
	assert.Equal(t, -1, result.ExitCode)
}

func TestExecuteWorkingDir(t *testing.T) {
	skipOnWindows(t)

	dir := t.TempDir()
	result, err := New("pwd").Execute(context.Background(), WithWorkingDir(dir))
	require.NoError(t, err)
	assert.Contains(t, result.Stdout, dir)
}

func TestExecuteEnvVar(t *testing.T) {
	skipOnWindows(t)

	result, err := New("sh", "-c", "echo $RELEASE_TOKEN").Execute(
		context.Background(),
		WithEnvVar("RELEASE_TOKEN", "sekrit"),
	)
	require.NoError(t, err)
	assert.Equal(t, "sekrit\n", result.Stdout)
}

func TestExecuteRetries(t *testing.T) {
	skipOnWindows(t)

	dir := t.TempDir()

	// Fails until the marker file exists, which the command itself creates
	// on the first attempt.
	script := "if [ -f marker ]; then exit 0; else touch marker; exit 1; fi"
	result, err := New("sh", "-c", script).Execute(
		context.Background(),
		WithWorkingDir(dir),
		WithRetry(2, 10*time.Millisecond),
	)
	require.NoError(t, err)
	assert.Equal(t, 0, result.ExitCode)
}

func TestExecuteRetryCondition(t *testing.T) {
	skipOnWindows(t)

	start := time.Now()
	_, err := New("sh", "-c", "exit 1").Execute(
		context.Background(),
		WithRetry(5, time.Second),
		WithRetryCondition(func(error) bool { return false }),
	)
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second, "must not sleep when retry is declined")
}

func TestExecuteContextCancellation(t *testing.T) {
	skipOnWindows(t)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := New("sleep", "10").Execute(ctx)
	require.Error(t, err)
}

func TestExecuteCustomWriters(t *testing.T) {
	skipOnWindows(t)

	var out bytes.Buffer
	result, err := New("echo", "streamed").Execute(
		context.Background(),
		WithStdoutWriter(&out),
	)
	require.NoError(t, err)
	assert.Equal(t, "streamed\n", result.Stdout)
	assert.Equal(t, "streamed\n", out.String())
}

func TestCreateResultExitCodes(t *testing.T) {
	c := New("true")

	var empty bytes.Buffer
	result := c.createResult(&empty, &empty, errors.New("not an exit error"))
	assert.Equal(t, -1, result.ExitCode)

	result = c.createResult(&empty, &empty, nil)
	assert.Equal(t, 0, result.ExitCode)
}

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
}

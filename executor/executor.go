// Package executor runs external commands with output capture, retry logic,
// and context support. The release pipeline uses it to drive the cargo CLI.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"
)

// Result holds the output and error from a command execution.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Err      error
}

// Executor defines the interface for command execution.
type Executor interface {
	Execute(ctx context.Context, opts ...Option) (*Result, error)
}

// CommandExecutor implements the Executor interface for a fixed program and
// argument list.
type CommandExecutor struct {
	program string
	args    []string
	options *Options
}

// Options configures command execution behavior.
type Options struct {
	// Output handling
	CaptureStdout     bool
	CaptureStderr     bool
	RedirectToConsole bool

	// Retry configuration
	MaxRetries int
	RetryDelay time.Duration
	RetryOn    func(error) bool

	// Working directory
	WorkingDir string

	// Environment variables (appended to current env)
	Env map[string]string

	// Custom stdout/stderr writers
	StdoutWriter io.Writer
	StderrWriter io.Writer
}

// Option is a function that modifies Options.
type Option func(*Options)

// DefaultOptions returns default execution options.
func DefaultOptions() *Options {
	return &Options{
		CaptureStdout: true,
		CaptureStderr: true,
		MaxRetries:    0,
		RetryDelay:    time.Second,
		Env:           make(map[string]string),
	}
}

// New creates a new CommandExecutor.
func New(program string, args ...string) *CommandExecutor {
	return &CommandExecutor{
		program: program,
		args:    args,
		options: DefaultOptions(),
	}
}

// Execute implements the Executor interface.
func (c *CommandExecutor) Execute(ctx context.Context, opts ...Option) (*Result, error) {
	options := c.mergeOptions(opts...)

	maxAttempts := options.MaxRetries + 1
	var lastResult *Result

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result, err := c.executeOnce(ctx, options)
		lastResult = result

		if err == nil || attempt == maxAttempts {
			return result, err
		}

		if options.RetryOn != nil && !options.RetryOn(err) {
			return result, err
		}

		select {
		case <-ctx.Done():
			return result, fmt.Errorf("context cancelled during retry: %w", ctx.Err())
		case <-time.After(options.RetryDelay):
		}
	}

	return lastResult, lastResult.Err
}

func (c *CommandExecutor) executeOnce(ctx context.Context, options *Options) (*Result, error) {
	cmd := exec.CommandContext(ctx, c.program, c.args...)

	if options.WorkingDir != "" {
		cmd.Dir = options.WorkingDir
	}
	if len(options.Env) > 0 {
		cmd.Env = os.Environ()
		for k, v := range options.Env {
			cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
		}
	}

	stdoutBuf, stderrBuf := c.setupOutputCapture(cmd, options)

	err := cmd.Run()
	result := c.createResult(stdoutBuf, stderrBuf, err)

	if err != nil {
		return result, fmt.Errorf("command execution failed: %w", err)
	}
	return result, nil
}

func (c *CommandExecutor) setupOutputCapture(
	cmd *exec.Cmd,
	options *Options,
) (*bytes.Buffer, *bytes.Buffer) {
	var stdoutBuf, stderrBuf bytes.Buffer

	stdoutWriters := []io.Writer{}
	if options.CaptureStdout {
		stdoutWriters = append(stdoutWriters, &stdoutBuf)
	}
	if options.RedirectToConsole {
		stdoutWriters = append(stdoutWriters, os.Stdout)
	}
	if options.StdoutWriter != nil {
		stdoutWriters = append(stdoutWriters, options.StdoutWriter)
	}
	if len(stdoutWriters) > 0 {
		cmd.Stdout = io.MultiWriter(stdoutWriters...)
	}

	stderrWriters := []io.Writer{}
	if options.CaptureStderr {
		stderrWriters = append(stderrWriters, &stderrBuf)
	}
	if options.RedirectToConsole {
		stderrWriters = append(stderrWriters, os.Stderr)
	}
	if options.StderrWriter != nil {
		stderrWriters = append(stderrWriters, options.StderrWriter)
	}
	if len(stderrWriters) > 0 {
		cmd.Stderr = io.MultiWriter(stderrWriters...)
	}

	return &stdoutBuf, &stderrBuf
}

func (c *CommandExecutor) createResult(
	stdoutBuf, stderrBuf *bytes.Buffer,
	err error,
) *Result {
	result := &Result{
		Stdout: stdoutBuf.String(),
		Stderr: stderrBuf.String(),
		Err:    err,
	}

	var exitErr *exec.ExitError
	switch {
	case err != nil && errors.As(err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
	case err == nil:
		result.ExitCode = 0
	default:
		result.ExitCode = -1
	}

	return result
}

func (c *CommandExecutor) mergeOptions(opts ...Option) *Options {
	merged := *c.options
	for _, opt := range opts {
		opt(&merged)
	}
	return &merged
}

// WithRetry configures retry behavior.
func WithRetry(maxRetries int, delay time.Duration) Option {
	return func(o *Options) {
		o.MaxRetries = maxRetries
		o.RetryDelay = delay
	}
}

// WithRetryCondition sets a custom retry condition.
func WithRetryCondition(fn func(error) bool) Option {
	return func(o *Options) {
		o.RetryOn = fn
	}
}

// WithWorkingDir sets the working directory.
func WithWorkingDir(dir string) Option {
	return func(o *Options) {
		o.WorkingDir = dir
	}
}

// WithEnvVar adds a single environment variable.
func WithEnvVar(key, value string) Option {
	return func(o *Options) {
		if o.Env == nil {
			o.Env = make(map[string]string)
		}
		o.Env[key] = value
	}
}

// WithConsoleRedirect enables console output alongside capture.
func WithConsoleRedirect(redirect bool) Option {
	return func(o *Options) {
		o.RedirectToConsole = redirect
	}
}

// WithStdoutWriter sets a custom stdout writer.
func WithStdoutWriter(w io.Writer) Option {
	return func(o *Options) {
		o.StdoutWriter = w
	}
}

// WithStderrWriter sets a custom stderr writer.
func WithStderrWriter(w io.Writer) Option {
	return func(o *Options) {
		o.StderrWriter = w
	}
}

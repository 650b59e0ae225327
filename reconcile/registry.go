package reconcile

import (
	"context"
	"time"

	"github.com/bmatcuk/libuv-sys/executor"
	"github.com/bmatcuk/libuv-sys/git"
)

// RegistryPublisher ships the crate by running the configured registry
// command (cargo publish) in the repository working directory.
type RegistryPublisher struct {
	cmd      *executor.CommandExecutor
	dir      string
	tokenEnv string
	token    string

	// Retries and Delay bound the retry loop around the command.
	Retries int
	Delay   time.Duration
}

// NewRegistryPublisher builds a publisher for the given command. tokenEnv
// names the environment variable the registry token is passed through; an
// empty token relies on the ambient environment.
func NewRegistryPublisher(program string, args []string, dir, tokenEnv, token string) *RegistryPublisher {
	return &RegistryPublisher{
		cmd:      executor.New(program, args...),
		dir:      dir,
		tokenEnv: tokenEnv,
		token:    token,
		Retries:  2,
		Delay:    10 * time.Second,
	}
}

// Publish runs the registry command with bounded retries.
func (p *RegistryPublisher) Publish(ctx context.Context) error {
	opts := []executor.Option{
		executor.WithWorkingDir(p.dir),
		executor.WithRetry(p.Retries, p.Delay),
	}
	if p.tokenEnv != "" && p.token != "" {
		opts = append(opts, executor.WithEnvVar(p.tokenEnv, p.token))
	}

	result, err := p.cmd.Execute(ctx, opts...)
	if err != nil {
		if result != nil && result.Stderr != "" {
			return git.WrapErrorf(err, "registry command failed: %s", result.Stderr)
		}
		return git.WrapError(err, "registry command failed")
	}
	return nil
}

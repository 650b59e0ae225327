package reconcile

import (
	"context"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistryPublisher(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		p := NewRegistryPublisher("true", nil, t.TempDir(), "", "")
		require.NoError(t, p.Publish(ctx))
	})

	t.Run("failure surfaces stderr", func(t *testing.T) {
		p := NewRegistryPublisher("sh", []string{"-c", "echo broken >&2; exit 1"}, t.TempDir(), "", "")
		p.Retries = 0
		err := p.Publish(ctx)
		require.Error(t, err)
		require.Contains(t, err.Error(), "broken")
	})

	t.Run("token reaches the command env", func(t *testing.T) {
		p := NewRegistryPublisher(
			"sh", []string{"-c", "test \"$CARGO_REGISTRY_TOKEN\" = sekrit"},
			t.TempDir(), "CARGO_REGISTRY_TOKEN", "sekrit",
		)
		require.NoError(t, p.Publish(ctx))
	})
}

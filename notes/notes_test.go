package notes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuild(t *testing.T) {
	t.Run("groups conventional subjects", func(t *testing.T) {
		body := Build("Tracks libuv v1.44.2.", []string{
			"feat: expose uv_metrics_info",
			"fix(build): link pthread on musl",
			"chore: bump vendored checkout",
		})

		assert.Contains(t, body, "Tracks libuv v1.44.2.")
		assert.Contains(t, body, "## Features\n\n- expose uv_metrics_info")
		assert.Contains(t, body, "## Fixes\n\n- build: link pthread on musl")
		assert.Contains(t, body, "## Other changes\n\n- chore: bump vendored checkout")
	})

	t.Run("non-conforming subjects land verbatim", func(t *testing.T) {
		body := Build("preamble", []string{
			"Update README",
			"libuv v1.44.2",
		})

		assert.Contains(t, body, "- Update README")
		assert.Contains(t, body, "- libuv v1.44.2")
		assert.NotContains(t, body, "## Features")
		assert.NotContains(t, body, "## Fixes")
	})

	t.Run("empty subjects give just the preamble", func(t *testing.T) {
		body := Build("Tracks libuv v1.44.2.", nil)
		assert.Equal(t, "Tracks libuv v1.44.2.\n", body)
	})

	t.Run("blank subjects are skipped", func(t *testing.T) {
		body := Build("p", []string{"", "   "})
		assert.Equal(t, "p\n", body)
	})
}

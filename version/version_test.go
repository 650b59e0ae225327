package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expectError bool
		want        string
	}{
		{name: "v-prefixed", input: "v1.30.2", want: "1.30.2"},
		{name: "bare", input: "1.30.2", want: "1.30.2"},
		{name: "zero patch", input: "v1.31.0", want: "1.31.0"},
		{name: "missing patch", input: "v1.30", expectError: true},
		{name: "extra segment", input: "1.2.3.4", expectError: true},
		{name: "pre-release rejected", input: "v1.30.0-rc1", expectError: true},
		{name: "build metadata rejected", input: "1.30.0+build5", expectError: true},
		{name: "not a version", input: "node-v10", expectError: true},
		{name: "empty", input: "", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tag, err := Parse(tt.input)
			if tt.expectError {
				require.Error(t, err)
				assert.True(t, tag.IsZero())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, tag.String())
			assert.Equal(t, "v"+tt.want, tag.VString())
		})
	}
}

func TestTagOrdering(t *testing.T) {
	assert.True(t, MustParse("1.29.9").Less(MustParse("1.30.0")))
	assert.True(t, MustParse("1.30.0").Less(MustParse("1.30.1")))
	assert.True(t, MustParse("1.30.9").Less(MustParse("2.0.0")))
	assert.False(t, MustParse("1.31.0").Less(MustParse("1.30.3")))
	assert.True(t, MustParse("1.30.2").Equal(MustParse("v1.30.2")))
}

func TestParseSet(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{
			name:  "malformed entries dropped without aborting the batch",
			input: []string{"v1.30.1", "not-a-version", "v1.29.0", "list", "v1.30.0-rc1", "v1.30.0"},
			want:  []string{"1.29.0", "1.30.0", "1.30.1"},
		},
		{
			name:  "duplicates collapse",
			input: []string{"v1.30.0", "1.30.0"},
			want:  []string{"1.30.0"},
		},
		{
			name:  "all malformed yields empty set",
			input: []string{"latest", "stable"},
			want:  []string{},
		},
		{
			name:  "sorted numerically not lexically",
			input: []string{"v1.9.0", "v1.10.0"},
			want:  []string{"1.9.0", "1.10.0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseSet(tt.input)
			strs := make([]string, len(got))
			for i, tag := range got {
				strs[i] = tag.String()
			}
			assert.Equal(t, tt.want, strs)
		})
	}
}

func TestNextUpstream(t *testing.T) {
	candidates := ParseSet([]string{"v1.30.3", "v1.31.0", "v1.29.9"})

	next, ok := NextUpstream(MustParse("1.30.2"), candidates)
	require.True(t, ok)
	assert.Equal(t, "1.30.3", next.String())

	next, ok = NextUpstream(MustParse("1.30.3"), candidates)
	require.True(t, ok)
	assert.Equal(t, "1.31.0", next.String())

	_, ok = NextUpstream(MustParse("1.31.0"), candidates)
	assert.False(t, ok, "no candidate strictly greater than current")

	_, ok = NextUpstream(MustParse("1.0.0"), nil)
	assert.False(t, ok)
}

func TestPredecessor(t *testing.T) {
	candidates := ParseSet([]string{"v1.33.1", "v1.34.0", "v1.34.1", "v1.35.0"})

	pred, ok := Predecessor(MustParse("1.34.1"), candidates)
	require.True(t, ok)
	assert.Equal(t, "1.34.0", pred.String())

	pred, ok = Predecessor(MustParse("1.34.0"), candidates)
	require.True(t, ok)
	assert.Equal(t, "1.33.1", pred.String())

	_, ok = Predecessor(MustParse("1.33.1"), ParseSet([]string{"v1.33.1"}))
	assert.False(t, ok, "no candidate strictly smaller than target")
}

func TestNextDownstream(t *testing.T) {
	existing := ParseSet([]string{"1.30.0", "1.30.1", "1.30.3", "1.29.5"})

	next := NextDownstream(Line{Major: 1, Minor: 30}, existing)
	assert.Equal(t, "1.30.4", next.String(), "max patch plus one, gaps ignored")

	next = NextDownstream(Line{Major: 1, Minor: 31}, existing)
	assert.Equal(t, "1.31.0", next.String(), "line with no tags starts at patch zero")
}

func TestLine(t *testing.T) {
	line := MustParse("v1.34.1").Line()
	assert.Equal(t, "1.34", line.String())
	assert.Equal(t, "1.34.x", line.BranchName())
}

func TestLineageTag(t *testing.T) {
	assert.Equal(t, "upstream-v1.34.0", LineageTag(MustParse("1.34.0")))
	assert.Equal(t, "upstream-v1.44.2-patched", LineageTagFor("v1.44.2-patched"))

	tag, ok := ParseLineageTag("upstream-v1.34.0")
	require.True(t, ok)
	assert.Equal(t, "1.34.0", tag.String())

	_, ok = ParseLineageTag("v1.34.0")
	assert.False(t, ok)

	_, ok = ParseLineageTag("upstream-main")
	assert.False(t, ok)
}

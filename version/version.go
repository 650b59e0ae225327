// Package version implements the typed version model used by the release
// automation: strict MAJOR.MINOR.PATCH tags, major.minor release lines, and
// the derivation rules that map upstream releases onto downstream ones.
package version

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Tag is a strict MAJOR.MINOR.PATCH version. Pre-release and build metadata
// are rejected up front: neither tag feed carries them, and ordering over
// plain triples is all the derivation rules need.
type Tag struct {
	v *semver.Version
}

// Parse parses "vMAJOR.MINOR.PATCH" or "MAJOR.MINOR.PATCH" into a Tag.
func Parse(s string) (Tag, error) {
	v, err := semver.StrictNewVersion(strings.TrimPrefix(s, "v"))
	if err != nil {
		return Tag{}, fmt.Errorf("invalid version %q: %w", s, err)
	}
	if v.Prerelease() != "" || v.Metadata() != "" {
		return Tag{}, fmt.Errorf("invalid version %q: pre-release and build metadata are not supported", s)
	}
	return Tag{v: v}, nil
}

// MustParse is Parse for statically known inputs; it panics on failure.
func MustParse(s string) Tag {
	t, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}

// IsZero reports whether t is the zero Tag (no version parsed into it).
func (t Tag) IsZero() bool { return t.v == nil }

// Compare returns -1, 0, or 1 if t is less than, equal to, or greater than o.
func (t Tag) Compare(o Tag) int { return t.v.Compare(o.v) }

// Less reports whether t orders strictly before o.
func (t Tag) Less(o Tag) bool { return t.Compare(o) < 0 }

// Equal reports whether t and o are the same version.
func (t Tag) Equal(o Tag) bool { return t.Compare(o) == 0 }

// Major returns the major component.
func (t Tag) Major() uint64 { return t.v.Major() }

// Minor returns the minor component.
func (t Tag) Minor() uint64 { return t.v.Minor() }

// Patch returns the patch component.
func (t Tag) Patch() uint64 { return t.v.Patch() }

// String returns the bare "MAJOR.MINOR.PATCH" form used by the manifest.
func (t Tag) String() string {
	if t.v == nil {
		return ""
	}
	return fmt.Sprintf("%d.%d.%d", t.v.Major(), t.v.Minor(), t.v.Patch())
}

// VString returns the "vMAJOR.MINOR.PATCH" form used by git tags.
func (t Tag) VString() string {
	if t.v == nil {
		return ""
	}
	return "v" + t.String()
}

// Line returns the major.minor release line the tag belongs to.
func (t Tag) Line() Line {
	return Line{Major: t.v.Major(), Minor: t.v.Minor()}
}

// Line is a major.minor release line. Each line has its own long-lived
// release branch receiving patch releases.
type Line struct {
	Major uint64
	Minor uint64
}

// String returns the "MAJOR.MINOR" form.
func (l Line) String() string { return fmt.Sprintf("%d.%d", l.Major, l.Minor) }

// BranchName returns the release branch name for the line, "MAJOR.MINOR.x".
func (l Line) BranchName() string { return l.String() + ".x" }

// ParseSet parses a batch of tag names, silently dropping entries that are
// not plain MAJOR.MINOR.PATCH versions. The tag feeds come from third
// parties and routinely contain non-version tags, so malformed entries are a
// normal condition here, not an error. The result is sorted ascending and
// deduplicated.
func ParseSet(names []string) []Tag {
	tags := make([]Tag, 0, len(names))
	for _, name := range names {
		t, err := Parse(name)
		if err != nil {
			continue
		}
		tags = append(tags, t)
	}
	Sort(tags)

	out := tags[:0]
	for i, t := range tags {
		if i > 0 && t.Equal(tags[i-1]) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Sort orders tags ascending in place.
func Sort(tags []Tag) {
	sort.Slice(tags, func(i, j int) bool { return tags[i].Less(tags[j]) })
}

// NextUpstream returns the smallest candidate strictly greater than current,
// or false if no such candidate exists. A false result means the downstream
// project is up to date, a terminal no-op outcome.
func NextUpstream(current Tag, candidates []Tag) (Tag, bool) {
	var best Tag
	for _, c := range candidates {
		if !current.Less(c) {
			continue
		}
		if best.IsZero() || c.Less(best) {
			best = c
		}
	}
	return best, !best.IsZero()
}

// Predecessor returns the largest candidate strictly smaller than target, or
// false if no such candidate exists.
func Predecessor(target Tag, candidates []Tag) (Tag, bool) {
	var best Tag
	for _, c := range candidates {
		if !c.Less(target) {
			continue
		}
		if best.IsZero() || best.Less(c) {
			best = c
		}
	}
	return best, !best.IsZero()
}

// NextDownstream returns the next downstream version on a release line: the
// highest existing patch for that line incremented by one, or patch zero if
// the line has no tags yet. Gaps in the patch sequence are ignored.
func NextDownstream(line Line, existing []Tag) Tag {
	next := uint64(0)
	for _, t := range existing {
		if t.Major() != line.Major || t.Minor() != line.Minor {
			continue
		}
		if t.Patch()+1 > next {
			next = t.Patch() + 1
		}
	}
	return Tag{v: semver.New(line.Major, line.Minor, next, "", "")}
}

// lineageTagPrefix marks downstream tags that record which upstream release
// a downstream commit tracks.
const lineageTagPrefix = "upstream-"

// LineageTag returns the lineage tag name for an upstream release.
func LineageTag(upstream Tag) string {
	return lineageTagPrefix + upstream.VString()
}

// LineageTagFor returns the lineage tag name for an arbitrary upstream label,
// for labels produced by the upstream project's own tagging scheme that are
// not plain versions.
func LineageTagFor(label string) string {
	return lineageTagPrefix + label
}

// ParseLineageTag extracts the upstream version from a lineage tag name.
// It returns false for names that are not lineage tags or whose suffix is
// not a plain version.
func ParseLineageTag(name string) (Tag, bool) {
	rest, ok := strings.CutPrefix(name, lineageTagPrefix)
	if !ok {
		return Tag{}, false
	}
	t, err := Parse(rest)
	if err != nil {
		return Tag{}, false
	}
	return t, true
}

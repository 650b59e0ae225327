package manifest

import (
	"bytes"
	"fmt"

	"github.com/go-git/go-billy/v5"
)

// Marker is the build-source marker recording the upstream version the
// generated bindings currently target (the LIBUV_VERSION assignment in the
// build script). The file is treated as opaque text apart from the single
// marked assignment; exactly one assignment must exist for the file to be
// editable at all.
type Marker struct {
	raw   []byte
	key   string
	value string
}

// LoadMarker reads the marker file at path and locates the single
// assignment of key to a double-quoted string.
func LoadMarker(fsys billy.Filesystem, path, key string) (*Marker, error) {
	if key == "" {
		return nil, fmt.Errorf("marker key cannot be empty")
	}
	raw, err := readFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("read marker %s: %w", path, err)
	}

	value, err := markerValue(raw, key)
	if err != nil {
		return nil, fmt.Errorf("marker %s: %w", path, err)
	}
	return &Marker{raw: raw, key: key, value: value}, nil
}

// markerValue extracts the quoted value of the unique line assigning key.
func markerValue(raw []byte, key string) (string, error) {
	found := ""
	count := 0
	for _, line := range splitKeepEnds(raw) {
		if !markerLine(line, key) {
			continue
		}
		count++
		open := bytes.IndexByte(line, '"')
		end := -1
		if open >= 0 {
			end = bytes.IndexByte(line[open+1:], '"')
		}
		if open < 0 || end < 0 {
			return "", fmt.Errorf("%w: %s has no quoted value", ErrFieldMissing, key)
		}
		found = string(line[open+1 : open+1+end])
	}
	switch count {
	case 0:
		return "", fmt.Errorf("%w: no %s assignment", ErrFieldMissing, key)
	case 1:
		return found, nil
	default:
		return "", fmt.Errorf("%w: %d %s assignments, expected exactly one", ErrEditRejected, count, key)
	}
}

// markerLine reports whether a line assigns the marker key a quoted value.
func markerLine(line []byte, key string) bool {
	idx := bytes.Index(line, []byte(key))
	if idx < 0 {
		return false
	}
	rest := line[idx+len(key):]
	eq := bytes.IndexByte(rest, '=')
	return eq >= 0 && bytes.IndexByte(rest[eq:], '"') >= 0
}

// Upstream returns the upstream version string the marker currently records.
func (k *Marker) Upstream() string { return k.value }

// Bytes returns the current raw document.
func (k *Marker) Bytes() []byte { return k.raw }

// SetUpstream rewrites the marker assignment to the given upstream version
// string, leaving the rest of the file untouched.
func (k *Marker) SetUpstream(v string) error {
	lines := splitKeepEnds(k.raw)
	for i, line := range lines {
		if !markerLine(line, k.key) {
			continue
		}
		replaced, err := replaceQuoted(line, v)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrEditRejected, k.key, err)
		}
		out := make([]byte, 0, len(k.raw)+len(v))
		for j, l := range lines {
			if j == i {
				out = append(out, replaced...)
			} else {
				out = append(out, l...)
			}
		}

		// The rewritten file must still carry exactly one assignment,
		// now holding the new value.
		got, err := markerValue(out, k.key)
		if err != nil || got != v {
			return fmt.Errorf("%w: rewritten marker does not record %q", ErrEditRejected, v)
		}
		k.raw = out
		k.value = v
		return nil
	}
	return fmt.Errorf("%w: no %s assignment", ErrFieldMissing, k.key)
}

// Save writes the marker file back to path.
func (k *Marker) Save(fsys billy.Filesystem, path string) error {
	return writeFile(fsys, path, k.raw)
}

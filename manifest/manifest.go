// Package manifest reads and rewrites the release-bearing files of the
// binding crate: the Cargo-style manifest, the build-source marker that
// records the targeted upstream version, and the pin file tracking the
// vendored upstream checkout. Every rewrite updates exactly one value and
// preserves all other bytes; documents are validated before and after the
// edit so a malformed file aborts instead of being patched blindly.
package manifest

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-git/go-billy/v5"
	"github.com/pelletier/go-toml/v2"

	"github.com/bmatcuk/libuv-sys/version"
)

// ErrFieldMissing is returned when a document lacks the field an operation
// needs to read or rewrite.
var ErrFieldMissing = errors.New("required field missing")

// ErrEditRejected is returned when a targeted rewrite would not survive
// re-validation of the document.
var ErrEditRejected = errors.New("edit rejected")

// manifestDoc is the subset of the manifest the automation cares about.
type manifestDoc struct {
	Package struct {
		Name    string `toml:"name"`
		Version string `toml:"version"`
	} `toml:"package"`
}

// Manifest is a loaded crate manifest. The raw bytes are kept verbatim so
// that saving after an edit changes nothing but the targeted value.
type Manifest struct {
	raw     []byte
	version version.Tag
}

// Load reads and validates the manifest at path.
func Load(fsys billy.Filesystem, path string) (*Manifest, error) {
	raw, err := readFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}

	tag, err := parseManifestVersion(raw)
	if err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	return &Manifest{raw: raw, version: tag}, nil
}

func parseManifestVersion(raw []byte) (version.Tag, error) {
	var doc manifestDoc
	if err := toml.Unmarshal(raw, &doc); err != nil {
		return version.Tag{}, fmt.Errorf("invalid TOML: %w", err)
	}
	if doc.Package.Version == "" {
		return version.Tag{}, fmt.Errorf("%w: package.version", ErrFieldMissing)
	}
	tag, err := version.Parse(doc.Package.Version)
	if err != nil {
		return version.Tag{}, err
	}
	return tag, nil
}

// Version returns the declared package version.
func (m *Manifest) Version() version.Tag { return m.version }

// Bytes returns the current raw document.
func (m *Manifest) Bytes() []byte { return m.raw }

// SetVersion rewrites the version field of the [package] table to v,
// leaving every other byte of the document untouched. The updated document
// is re-validated and must declare exactly the requested version.
func (m *Manifest) SetVersion(v version.Tag) error {
	updated, err := rewriteTableValue(m.raw, "package", "version", v.String())
	if err != nil {
		return err
	}

	tag, err := parseManifestVersion(updated)
	if err != nil || !tag.Equal(v) {
		return fmt.Errorf("%w: rewritten manifest does not declare version %s", ErrEditRejected, v)
	}

	m.raw = updated
	m.version = v
	return nil
}

// Save writes the document back to path.
func (m *Manifest) Save(fsys billy.Filesystem, path string) error {
	return writeFile(fsys, path, m.raw)
}

func readFile(fsys billy.Filesystem, path string) ([]byte, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func writeFile(fsys billy.Filesystem, path string, data []byte) error {
	f, err := fsys.Create(path)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

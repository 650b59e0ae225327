package manifest

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-git/go-billy/v5"
	"github.com/pelletier/go-toml/v2"
)

// Pin records which upstream release the vendored checkout is pinned to:
// the upstream's own tag label and the exact commit it resolves to. It is
// the durable record the lineage tag annotation cites at publish time.
type Pin struct {
	// Upstream is the upstream tag label, e.g. "v1.44.2".
	Upstream string `toml:"upstream"`

	// Commit is the full hash of the pinned upstream commit.
	Commit string `toml:"commit"`
}

// LoadPin reads the pin file at path. A missing file yields a zero Pin and
// no error: the first prepare run on a fresh line creates it.
func LoadPin(fsys billy.Filesystem, path string) (*Pin, error) {
	raw, err := readFile(fsys, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Pin{}, nil
		}
		return nil, fmt.Errorf("read pin %s: %w", path, err)
	}

	var p Pin
	if err := toml.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("pin %s: invalid TOML: %w", path, err)
	}
	return &p, nil
}

// Save writes the pin file to path.
func (p *Pin) Save(fsys billy.Filesystem, path string) error {
	raw, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal pin: %w", err)
	}
	return writeFile(fsys, path, raw)
}

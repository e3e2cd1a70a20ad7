package dub

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
)

// Options aggregates the knobs the resolver and aggregator contracts already
// name: a forced root configuration, allow_non_library, and shallow. It is a
// plain value, not itself persisted; ToolchainOverrides is the one piece of
// ambient configuration this module reads from disk.
type Options struct {
	RootConfig      string
	AllowNonLibrary bool
	Shallow         bool
}

// ToolchainOverrides pins compiler/frontend versions ahead of whatever a
// package's own manifest requests, read from a local TOML file that layers
// a user-level override on top of root-package defaults.
type ToolchainOverrides struct {
	Dub      string `toml:"dub"`
	Frontend string `toml:"frontend"`
	DMD      string `toml:"dmd"`
	LDC      string `toml:"ldc"`
	GDC      string `toml:"gdc"`
}

// DefaultToolchainOverridesPath returns $DUB_HOME/settings.toml if DUB_HOME
// is set, else ~/.dub/settings.toml.
func DefaultToolchainOverridesPath() (string, error) {
	if home := os.Getenv("DUB_HOME"); home != "" {
		return filepath.Join(home, "settings.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "dub: could not determine home directory for toolchain overrides")
	}
	return filepath.Join(home, ".dub", "settings.toml"), nil
}

// LoadToolchainOverrides reads path as a TOML document describing toolchain
// requirements. A missing file is not an error: it returns a zero-valued
// ToolchainOverrides, since the override file is optional by design (every
// field defaults to "use whatever the package manifest requests").
func LoadToolchainOverrides(path string) (ToolchainOverrides, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return ToolchainOverrides{}, nil
	}
	if err != nil {
		return ToolchainOverrides{}, errors.Wrapf(err, "dub: reading toolchain override file %q", path)
	}

	var out ToolchainOverrides
	if err := toml.Unmarshal(data, &out); err != nil {
		return ToolchainOverrides{}, errors.Wrapf(err, "dub: parsing toolchain override file %q", path)
	}
	return out, nil
}

// Package config reads the optional ~/.shredtrees.yaml defaults file
// consulted as the lowest-precedence layer (below flags and env vars,
// following the layered-default pattern the original CLI applies ad hoc
// inside its Args validation functions) for hash method, shred size, and
// normalization.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Defaults holds the scalar settings a config file may override.
type Defaults struct {
	HashMethod    string `yaml:"hash_method"`
	ShredSize     int    `yaml:"shred_size"`
	Normalization string `yaml:"normalization"`
}

// builtin returns the hardcoded defaults used when no config file exists.
func builtin() Defaults {
	return Defaults{
		HashMethod:    "md5",
		ShredSize:     5,
		Normalization: "none",
	}
}

// Load reads path as a YAML Defaults document. A missing file is not an
// error: it yields the builtin defaults unchanged.
func Load(path string) (Defaults, error) {
	d := builtin()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return d, nil
		}
		return d, err
	}

	if err := yaml.Unmarshal(data, &d); err != nil {
		return Defaults{}, err
	}
	return d, nil
}

// DefaultPath returns the conventional location of the defaults file,
// ~/.shredtrees.yaml, or "" if the home directory cannot be determined.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".shredtrees.yaml")
}

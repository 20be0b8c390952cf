package library

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
)

// Manifest is the library metadata stored in <lib>/manifest.
type Manifest struct {
	UniqueName      string   `toml:"unique_name"`
	ABIVersion      string   `toml:"abi_version"`
	CompilerVersion string   `toml:"compiler_version"`
	NativeTargets   []string `toml:"native_targets,omitempty"`
	Depends         []string `toml:"depends,omitempty"`
}

var (
	// ErrNameMissing indicates that unique_name is missing in a manifest.
	ErrNameMissing = errors.New("missing unique_name")
	// ErrABIMissing indicates that abi_version is missing in a manifest.
	ErrABIMissing = errors.New("missing abi_version")
)

// DecodeManifest parses a manifest and checks its required keys.
func DecodeManifest(r io.Reader) (Manifest, error) {
	var m Manifest
	meta, err := toml.NewDecoder(r).Decode(&m)
	if err != nil {
		return Manifest{}, fmt.Errorf("failed to parse manifest: %w", err)
	}
	m.UniqueName = strings.TrimSpace(m.UniqueName)
	if !meta.IsDefined("unique_name") || m.UniqueName == "" {
		return Manifest{}, ErrNameMissing
	}
	if !meta.IsDefined("abi_version") || strings.TrimSpace(m.ABIVersion) == "" {
		return Manifest{}, ErrABIMissing
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Manifest{}, fmt.Errorf("unknown manifest key %q", undecoded[0].String())
	}
	return m, nil
}

// EncodeManifest writes m as TOML.
func EncodeManifest(w io.Writer, m Manifest) error {
	return toml.NewEncoder(w).Encode(m)
}

package library

import (
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// ErrIncompatibleABI reports a library written for an ABI this compiler
// cannot read.
var ErrIncompatibleABI = errors.New("incompatible library ABI")

// CheckABI reports whether a library with ABI version have can be read by
// a compiler supporting current: the major versions must match and have
// must not be newer than current.
func CheckABI(have, current string) error {
	cur, err := semver.NewVersion(current)
	if err != nil {
		return fmt.Errorf("compiler abi version %q: %w", current, err)
	}
	lib, err := semver.NewVersion(have)
	if err != nil {
		return fmt.Errorf("abi_version %q: %w", have, err)
	}
	c, err := semver.NewConstraint(fmt.Sprintf(">= %d.0.0, <= %s", cur.Major(), cur.String()))
	if err != nil {
		return err
	}
	if !c.Check(lib) {
		return fmt.Errorf("%w: library has %s, compiler reads %d.x up to %s", ErrIncompatibleABI, lib, cur.Major(), cur)
	}
	return nil
}

package session

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Feature is a language feature that can be toggled per session.
type Feature uint8

const (
	FeatureInvalid Feature = iota
	// ForbidUsingSupertypesWithInaccessibleContentInTypeArguments turns
	// missing supertypes seen through type arguments into errors.
	ForbidUsingSupertypesWithInaccessibleContentInTypeArguments
	// AllowEagerSupertypeAccessibilityChecks turns eager missing-supertype
	// findings on class declarations into errors.
	AllowEagerSupertypeAccessibilityChecks
	// ValueClassSecondaryConstructorsWithBodies permits bodies on secondary
	// constructors of value classes.
	ValueClassSecondaryConstructorsWithBodies
	featureCount
)

var featureNames = [...]string{
	FeatureInvalid: "Invalid",
	ForbidUsingSupertypesWithInaccessibleContentInTypeArguments: "ForbidUsingSupertypesWithInaccessibleContentInTypeArguments",
	AllowEagerSupertypeAccessibilityChecks:                      "AllowEagerSupertypeAccessibilityChecks",
	ValueClassSecondaryConstructorsWithBodies:                   "ValueClassSecondaryConstructorsWithBodies",
}

func (f Feature) String() string {
	if int(f) < len(featureNames) {
		return featureNames[f]
	}
	return fmt.Sprintf("Feature(%d)", f)
}

// ParseFeature looks a feature up by name, ignoring case.
func ParseFeature(name string) (Feature, error) {
	for f := Feature(1); f < featureCount; f++ {
		if strings.EqualFold(featureNames[f], name) {
			return f, nil
		}
	}
	return FeatureInvalid, fmt.Errorf("unknown language feature %q", name)
}

// AllFeatures lists every known feature in declaration order.
func AllFeatures() []Feature {
	out := make([]Feature, 0, featureCount-1)
	for f := Feature(1); f < featureCount; f++ {
		out = append(out, f)
	}
	return out
}

// FeatureSet records explicit feature states. Features never set are
// disabled.
type FeatureSet struct {
	state map[Feature]bool
}

// NewFeatureSet enables the given features.
func NewFeatureSet(enabled ...Feature) FeatureSet {
	fs := FeatureSet{state: make(map[Feature]bool, len(enabled))}
	for _, f := range enabled {
		fs.state[f] = true
	}
	return fs
}

// Enabled reports whether f is on.
func (fs FeatureSet) Enabled(f Feature) bool { return fs.state[f] }

// With returns a copy of fs with f set to on.
func (fs FeatureSet) With(f Feature, on bool) FeatureSet {
	out := fs.Clone()
	out.state[f] = on
	return out
}

// Clone returns an independent copy.
func (fs FeatureSet) Clone() FeatureSet {
	out := FeatureSet{state: make(map[Feature]bool, len(fs.state))}
	maps.Copy(out.state, fs.state)
	return out
}

// String lists enabled features sorted by name.
func (fs FeatureSet) String() string {
	var names []string
	for f, on := range fs.state {
		if on {
			names = append(names, f.String())
		}
	}
	slices.Sort(names)
	return "[" + strings.Join(names, " ") + "]"
}

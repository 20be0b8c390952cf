package version

import (
	"strings"

	"github.com/fatih/color"
)

// Version information for the vela CLI.
// These variables can be overridden at build time via -ldflags.

var (
	// Version is the plain semantic version of the compiler. Libraries
	// record it as their compiler_version.
	Version = "0.3.0-dev"

	// ABIVersion is the library format this compiler writes. Readers accept
	// the same major version up to this minor version.
	ABIVersion = "1.2.0"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

var (
	versionMajorColor = color.New(color.FgYellow, color.Bold)
	versionMinorColor = color.New(color.FgGreen, color.Bold)
	versionPatchColor = color.New(color.FgBlue, color.Bold)
)

// Colored returns Version with each numeric part highlighted. Anything
// that is not a dotted triple is returned unchanged.
func Colored() string {
	core, suffix := Version, ""
	if i := strings.IndexAny(core, "-+"); i >= 0 {
		core, suffix = core[:i], core[i:]
	}
	parts := strings.Split(core, ".")
	if len(parts) != 3 {
		return Version
	}
	return versionMajorColor.Sprint(parts[0]) + "." +
		versionMinorColor.Sprint(parts[1]) + "." +
		versionPatchColor.Sprint(parts[2]) + suffix
}

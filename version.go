package edugen

import "runtime/debug"

var (
	// Version is the current edugen version.
	Version = buildVersion()
)

// buildVersion reads the main module version from build info.
func buildVersion() string {
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return "devel"
	}
	if v := buildInfo.Main.Version; v != "" && v != "(devel)" {
		return v
	}
	return "devel"
}

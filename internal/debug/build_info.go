package debug

import (
	"runtime/debug"
	"strings"
)

/*
ReadBuildInfo returns version of the main module followed by the VCS settings
recorded at build time, ie "v1.2.0 vcs.revision=abc vcs.modified=false".
Returns "(devel)" for binaries built without module information.
*/
func ReadBuildInfo() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "(devel)"
	}
	return formatBuildInfo(info)
}

func formatBuildInfo(info *debug.BuildInfo) string {
	version := info.Main.Version
	if version == "" {
		version = "(devel)"
	}
	data := []string{version}
	for _, s := range info.Settings {
		if strings.HasPrefix(s.Key, "vcs.") {
			data = append(data, s.Key+"="+s.Value)
		}
	}
	return strings.Join(data, " ")
}

// Package version reports the build version of the NE101 binaries.
package version

import (
	"fmt"
	"runtime/debug"
	"time"
)

// Version and Commit may be stamped with -ldflags "-X ...". Whatever is left
// empty is filled from the module build info.
var (
	Version   = ""
	Commit    = ""
	GoVersion = ""
)

func init() {
	info, _ := debug.ReadBuildInfo()
	Version, Commit, GoVersion = resolve(Version, Commit, info, time.Now())
}

// resolve fills empty version fields from build info. VCS data gives a short
// commit (marked -dirty for modified trees) and a dated dev version.
func resolve(version, commit string, info *debug.BuildInfo, now time.Time) (string, string, string) {
	var goVersion string
	if info != nil {
		goVersion = info.GoVersion
		settings := make(map[string]string, len(info.Settings))
		for _, s := range info.Settings {
			settings[s.Key] = s.Value
		}
		if rev := settings["vcs.revision"]; commit == "" && rev != "" {
			if len(rev) > 7 {
				rev = rev[:7]
			}
			if settings["vcs.modified"] == "true" {
				rev += "-dirty"
			}
			commit = rev
		}
		if version == "" {
			if t, err := time.Parse(time.RFC3339, settings["vcs.time"]); err == nil {
				version = "dev-" + t.Format("20060102")
			}
		}
	}
	if version == "" {
		version = "dev-" + now.Format("20060102-150405")
	}
	if commit == "" {
		commit = "unknown"
	}
	return version, commit, goVersion
}

// Full returns the version with its commit.
func Full() string {
	return fmt.Sprintf("%s (commit: %s)", Version, Commit)
}

// Banner returns the line printed by the version commands.
func Banner(binary string) string {
	if GoVersion == "" {
		return fmt.Sprintf("%s %s", binary, Full())
	}
	return fmt.Sprintf("%s %s, built with %s", binary, Full(), GoVersion)
}

// UserAgent identifies the client on requests to the camera.
func UserAgent() string {
	return "ne101-cfg/" + Version
}

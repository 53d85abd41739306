package version

import (
	"runtime/debug"
	"strings"
	"testing"
	"time"
)

func TestResolve(t *testing.T) {
	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	vcs := func(kv ...string) *debug.BuildInfo {
		info := &debug.BuildInfo{GoVersion: "go1.24.10"}
		for i := 0; i+1 < len(kv); i += 2 {
			info.Settings = append(info.Settings, debug.BuildSetting{Key: kv[i], Value: kv[i+1]})
		}
		return info
	}

	tests := []struct {
		name        string
		version     string
		commit      string
		info        *debug.BuildInfo
		wantVersion string
		wantCommit  string
	}{
		{"no build info", "", "", nil, "dev-20260304-050607", "unknown"},
		{"stamped", "v1.2.3", "abc1234", vcs("vcs.revision", "ffffffffffff"), "v1.2.3", "abc1234"},
		{"vcs clean", "", "", vcs("vcs.revision", "0123456789ab", "vcs.time", "2026-01-02T03:04:05Z"), "dev-20260102", "0123456"},
		{"vcs dirty", "", "", vcs("vcs.revision", "0123456789ab", "vcs.modified", "true"), "dev-20260304-050607", "0123456-dirty"},
		{"short revision", "", "", vcs("vcs.revision", "abc"), "dev-20260304-050607", "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, c, _ := resolve(tt.version, tt.commit, tt.info, now)
			if v != tt.wantVersion || c != tt.wantCommit {
				t.Errorf("resolve() = %q, %q; want %q, %q", v, c, tt.wantVersion, tt.wantCommit)
			}
		})
	}
}

func TestFull(t *testing.T) {
	full := Full()
	if !strings.Contains(full, Version) || !strings.Contains(full, Commit) {
		t.Errorf("Full() = %q, want version and commit", full)
	}
}

func TestBanner(t *testing.T) {
	if got := Banner("ne101-cfg"); !strings.HasPrefix(got, "ne101-cfg "+Version) {
		t.Errorf("Banner() = %q", got)
	}
}

func TestUserAgent(t *testing.T) {
	if got := UserAgent(); got != "ne101-cfg/"+Version {
		t.Errorf("UserAgent() = %q", got)
	}
}

package version

import (
	"runtime"
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

// stamp sets the ldflags variables and build info for one test.
func stamp(t *testing.T, version, commit, date string, info *debug.BuildInfo) {
	t.Helper()
	v, c, d, r := Version, Commit, Date, readBuildInfo
	t.Cleanup(func() { Version, Commit, Date, readBuildInfo = v, c, d, r })

	Version, Commit, Date = version, commit, date
	readBuildInfo = func() (*debug.BuildInfo, bool) { return info, info != nil }
}

func TestCurrent(t *testing.T) {
	stamped := &debug.BuildInfo{
		Main: debug.Module{Version: "v0.3.1"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "feedface00"},
			{Key: "vcs.time", Value: "2026-10-01T10:00:00Z"},
		},
	}

	tests := []struct {
		name                  string
		version, commit, date string
		info                  *debug.BuildInfo
		want                  Build
	}{
		{"defaults without build info", "dev", "unknown", "unknown", nil, Build{"dev", "unknown", "unknown"}},
		{"devel module", "dev", "unknown", "unknown", &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}, Build{"dev", "unknown", "unknown"}},
		{"from build info", "dev", "unknown", "unknown", stamped, Build{"v0.3.1", "feedface00", "2026-10-01T10:00:00Z"}},
		{"ldflags win", "1.2.3", "abc1234567890", "2026-01-15", stamped, Build{"1.2.3", "abc1234567890", "2026-01-15"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stamp(t, tt.version, tt.commit, tt.date, tt.info)
			assert.Equal(t, tt.want, Current())
		})
	}
}

func TestInfo(t *testing.T) {
	stamp(t, "1.2.3", "abc1234567890", "2026-01-15", nil)

	info := Info()
	assert.Equal(t, "swarmbot 1.2.3 (commit: abc1234, built: 2026-01-15, "+runtime.GOOS+"/"+runtime.GOARCH+")", info)
}

func TestUserAgent(t *testing.T) {
	stamp(t, "0.4.0", "unknown", "unknown", nil)
	assert.Equal(t, "swarmbot/0.4.0", UserAgent())
}

func TestShort(t *testing.T) {
	tests := map[string]string{
		"abcdefghij": "abcdefg",
		"1234567":    "1234567",
		"12345678":   "1234567",
		"abc":        "abc",
		"":           "",
	}
	for in, want := range tests {
		assert.Equal(t, want, short(in), in)
	}
}

func TestDefaultValues(t *testing.T) {
	assert.Equal(t, "dev", Version)
	assert.Equal(t, "unknown", Commit)
	assert.Equal(t, "unknown", Date)
}

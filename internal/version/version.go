// Package version reports build metadata.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Name is the program name used in banners and protocol handshakes.
const Name = "swarmbot"

// Set via ldflags at build time:
//
//	go build -ldflags "-X github.com/KLM-Solutions/swarm-bot/internal/version.Version=1.0.0
//	  -X github.com/KLM-Solutions/swarm-bot/internal/version.Commit=abc123
//	  -X github.com/KLM-Solutions/swarm-bot/internal/version.Date=2026-01-01"
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// readBuildInfo is swapped in tests.
var readBuildInfo = debug.ReadBuildInfo

// Build is the resolved build metadata.
type Build struct {
	Version string
	Commit  string
	Date    string
}

// Current returns the ldflags values. Values left at their defaults are
// filled from the Go build info when the binary was built with module or
// VCS stamping (go install, go build in a checkout).
func Current() Build {
	b := Build{Version: Version, Commit: Commit, Date: Date}
	info, ok := readBuildInfo()
	if !ok {
		return b
	}
	if b.Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		b.Version = info.Main.Version
	}
	for _, s := range info.Settings {
		switch {
		case s.Key == "vcs.revision" && b.Commit == "unknown":
			b.Commit = s.Value
		case s.Key == "vcs.time" && b.Date == "unknown":
			b.Date = s.Value
		}
	}
	return b
}

// Info returns a one-line version banner.
func Info() string {
	b := Current()
	return fmt.Sprintf("%s %s (commit: %s, built: %s, %s/%s)",
		Name, b.Version, short(b.Commit), b.Date, runtime.GOOS, runtime.GOARCH)
}

// UserAgent returns "swarmbot/<version>".
func UserAgent() string {
	return Name + "/" + Current().Version
}

func short(s string) string {
	if len(s) > 7 {
		return s[:7]
	}
	return s
}

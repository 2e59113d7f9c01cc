// Package version reports build information of the fundlink binary.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set at build time via -ldflags "-X github.com/teranos/fundlink/version.Version=..."
var (
	CommitHash = "dev"
	BuildTime  = "unknown"
	Version    = "dev"
)

// Info contains version and build information
type Info struct {
	CommitHash string `json:"commit_hash"`
	BuildTime  string `json:"build_time"`
	Version    string `json:"version"`
	Modified   bool   `json:"modified,omitempty"`
	GoVersion  string `json:"go_version"`
	Platform   string `json:"platform"`
}

// Get returns the current version information. Without ldflags the commit
// and build time fall back to the VCS stamp the go toolchain embeds.
func Get() Info {
	info := Info{
		CommitHash: CommitHash,
		BuildTime:  BuildTime,
		Version:    Version,
		GoVersion:  runtime.Version(),
		Platform:   fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		info.applyBuildSettings(bi.Settings)
	}
	return info
}

func (i *Info) applyBuildSettings(settings []debug.BuildSetting) {
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			if i.CommitHash == "dev" {
				i.CommitHash = s.Value
			}
		case "vcs.time":
			if i.BuildTime == "unknown" {
				i.BuildTime = s.Value
			}
		case "vcs.modified":
			i.Modified = s.Value == "true"
		}
	}
}

// String returns a human-readable version string
func (i Info) String() string {
	commit := i.Short()
	if i.Modified {
		commit += "-dirty"
	}
	return fmt.Sprintf("fundlink %s (commit %s, built %s)", i.Version, commit, i.BuildTime)
}

// Short returns the abbreviated commit hash
func (i Info) Short() string {
	if len(i.CommitHash) >= 7 {
		return i.CommitHash[:7]
	}
	return i.CommitHash
}

// Package buildinfo provides build-time version information.
//
// Variables are set via ldflags during build:
//
//	go build -ldflags "-X github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// Without ldflags, a binary installed with go install reports its module
// version and VCS revision from the embedded build info.
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

var (
	// Version is the semantic version (e.g., "v1.2.3").
	Version = "dev"
	// Commit is the git commit SHA.
	Commit = "none"
	// Date is the build timestamp.
	Date = "unknown"
)

// Info is the JSON form of the build information.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Get returns the build information, falling back to the module build info
// for fields ldflags left at their defaults.
func Get() Info {
	info := Info{Version: Version, Commit: Commit, Date: Date}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "none" {
				info.Commit = s.Value
			}
		case "vcs.time":
			if info.Date == "unknown" {
				info.Date = s.Value
			}
		}
	}
	return info
}

// String returns the formatted build information.
func String() string {
	i := Get()
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", i.Version, i.Commit, i.Date)
}

// Template returns the version template string for cobra.
func Template() string {
	i := Get()
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", i.Version, i.Commit, i.Date)
}

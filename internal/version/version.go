// Package version reports what build of mapperlink is running.
package version

import (
	"crypto/sha256"
	"fmt"
	"runtime/debug"
	"sync"
)

// Set with -ldflags "-X github.com/standardbeagle/mapperlink/internal/version.GitCommit=..."
var (
	Version   = "0.3.0"
	BuildDate = "development"
	GitCommit = "unknown"
)

// BuildInfo describes the running binary
type BuildInfo struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	BuildDate string `json:"build_date" yaml:"build_date"`
	GoVersion string `json:"go_version" yaml:"go_version"`
	BuildID   string `json:"build_id" yaml:"build_id"`
	Modified  bool   `json:"modified,omitempty" yaml:"modified,omitempty"`
}

var (
	info     BuildInfo
	infoOnce sync.Once
)

// Get returns the build description. Values not injected at link time are
// taken from the module's embedded VCS stamps when present.
func Get() BuildInfo {
	infoOnce.Do(func() {
		info = readBuildInfo()
	})
	return info
}

// FullInfo returns detailed version information
func FullInfo() string {
	bi := Get()
	commit := bi.Commit
	if bi.Modified {
		commit += "-dirty"
	}
	return fmt.Sprintf("mapperlink %s (commit: %s, built: %s, %s, build: %s)",
		bi.Version, commit, bi.BuildDate, bi.GoVersion, bi.BuildID)
}

// BuildID returns a short fingerprint of the running binary.
// The MCP server reports it so clients can tell two builds of the same version apart.
func BuildID() string {
	return Get().BuildID
}

func readBuildInfo() BuildInfo {
	bi := BuildInfo{
		Version:   Version,
		Commit:    GitCommit,
		BuildDate: BuildDate,
		GoVersion: "unknown",
	}

	rt, ok := debug.ReadBuildInfo()
	if !ok {
		bi.BuildID = Version + "-" + GitCommit
		return bi
	}
	bi.GoVersion = rt.GoVersion

	h := sha256.New()
	h.Write([]byte(rt.GoVersion))
	h.Write([]byte(rt.Main.Path))
	h.Write([]byte(rt.Main.Version))

	for _, s := range rt.Settings {
		switch s.Key {
		case "vcs.revision":
			if bi.Commit == "unknown" && len(s.Value) >= 12 {
				bi.Commit = s.Value[:12]
			}
		case "vcs.time":
			if bi.BuildDate == "development" {
				bi.BuildDate = s.Value
			}
		case "vcs.modified":
			bi.Modified = s.Value == "true"
		default:
			continue
		}
		h.Write([]byte(s.Key))
		h.Write([]byte(s.Value))
	}

	bi.BuildID = fmt.Sprintf("%x", h.Sum(nil))[:16]
	return bi
}

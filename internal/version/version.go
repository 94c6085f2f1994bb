// Package version reports the nexus release version.
package version

import (
	_ "embed"
	"runtime/debug"
	"strings"
)

//go:embed VERSION
var versionContent string

// Override replaces the embedded version when set at link time:
//
//	go build -ldflags "-X github.com/ShayCichocki/agentnexus/internal/version.Override=1.2.3"
var Override string

// Get returns the release version. Builds from a VCS checkout append the
// short revision, and a "+dirty" marker for modified trees.
func Get() string {
	if Override != "" {
		return Override
	}
	v := strings.TrimSpace(versionContent)
	if rev, dirty := revision(); rev != "" {
		v += "-" + rev
		if dirty {
			v += "+dirty"
		}
	}
	return v
}

func revision() (string, bool) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "", false
	}
	var rev string
	var dirty bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if len(rev) > 7 {
		rev = rev[:7]
	}
	return rev, dirty
}

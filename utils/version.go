package utils

import (
	"fmt"
	"runtime"
)

// Set at build time with -ldflags "-X github.com/EasterCompany/dex-vmt-service/utils.version=...".
var (
	version   = "dev"
	branch    = "unknown"
	commit    = "unknown"
	buildDate = "unknown"
)

// Version describes the running build.
type Version struct {
	Version   string `json:"version"`
	Branch    string `json:"branch"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	Arch      string `json:"arch"`
	GoVersion string `json:"go_version"`
}

// GetVersion constructs and returns the version information for the service.
func GetVersion() Version {
	return Version{
		Version:   version,
		Branch:    branch,
		Commit:    commit,
		BuildDate: buildDate,
		Arch:      runtime.GOOS + "/" + runtime.GOARCH,
		GoVersion: runtime.Version(),
	}
}

func (v Version) String() string {
	return fmt.Sprintf("%s (%s@%s, built %s, %s)", v.Version, v.Branch, v.Commit, v.BuildDate, v.Arch)
}

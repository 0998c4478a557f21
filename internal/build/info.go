// Package build holds build information injected via ldflags.
package build

import "runtime"

// Info holds build-time information.
type Info struct {
	Version   string
	Commit    string
	BuildDate string
	GoVersion string
}

// Current fills GoVersion from the running binary.
func Current(version, commit, buildDate string) Info {
	return Info{
		Version:   version,
		Commit:    commit,
		BuildDate: buildDate,
		GoVersion: runtime.Version(),
	}
}

// RepoURL returns the repository URL.
func RepoURL() string {
	return "https://github.com/bnema/wkview"
}

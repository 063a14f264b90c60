// Package buildinfo reports what a topfloor binary was built from.
//
// Release builds set the variables via ldflags:
//
//	go build -ldflags "-X github.com/matzehuels/topfloor/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/matzehuels/topfloor/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/matzehuels/topfloor/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// Without ldflags the module version and VCS stamp embedded by the Go
// toolchain are used. The versions of the solver libraries are reported
// too, since they decide which optimum is found when several exist.
package buildinfo

import (
	"fmt"
	"runtime/debug"
	"strings"
)

var (
	// Version is the semantic version (e.g., "v1.2.3").
	Version = "dev"
	// Commit is the git commit SHA.
	Commit = "none"
	// Date is the build timestamp.
	Date = "unknown"
)

// solverModules are reported by [Get] when linked into the binary.
var solverModules = []string{
	"github.com/crillab/gophersat",
	"gonum.org/v1/gonum",
}

// Info is the resolved build information.
type Info struct {
	Version string
	Commit  string
	Date    string
	// Solvers lists "module version" for each linked solver library.
	Solvers []string
}

// Get resolves the build information of the running binary.
func Get() Info {
	bi, _ := debug.ReadBuildInfo()
	return resolve(bi)
}

func resolve(bi *debug.BuildInfo) Info {
	info := Info{Version: Version, Commit: Commit, Date: Date}
	if bi == nil {
		return info
	}
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch {
		case s.Key == "vcs.revision" && info.Commit == "none":
			info.Commit = s.Value
		case s.Key == "vcs.time" && info.Date == "unknown":
			info.Date = s.Value
		}
	}
	for _, dep := range bi.Deps {
		for _, m := range solverModules {
			if dep.Path == m {
				info.Solvers = append(info.Solvers, dep.Path+" "+dep.Version)
			}
		}
	}
	return info
}

// String returns the formatted build information.
func (i Info) String() string {
	s := fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", i.Version, i.Commit, i.Date)
	if len(i.Solvers) > 0 {
		s += "\nsolvers: " + strings.Join(i.Solvers, ", ")
	}
	return s
}

// String returns the formatted build information of the running binary.
func String() string { return Get().String() }

// Template returns the version template string for cobra.
func Template() string {
	i := Get()
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", i.Version, i.Commit, i.Date)
}

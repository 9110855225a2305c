// Package version reports build provenance for the tide binary.
package version

import "fmt"

const app = "tide"

// Overridden at build time via -ldflags.
var (
	Commit    = "unknown"
	BuildTime = "unknown"
	Channel   = "dev"
)

// String returns the line printed by `tide --version`.
func String() string {
	return fmt.Sprintf("%s %s (commit %s, built %s)", app, Channel, shortCommit(), BuildTime)
}

func shortCommit() string {
	const short = 7
	if len(Commit) <= short {
		return Commit
	}
	return Commit[:short]
}

package main

import "github.com/restlabs/restcheck/apps/cli/cmd"

// Set via -ldflags at release time.
var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	cmd.Execute(version, buildTime)
}

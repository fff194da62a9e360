// Package main is the single-binary entrypoint for powertray.
// One binary: the daemon, the control API, and the CLI around them.
package main

import "github.com/powertray/powertray/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}

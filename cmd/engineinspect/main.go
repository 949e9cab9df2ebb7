// Package main is the entry point for the engineinspect CLI.
package main

import (
	"fmt"
	"os"

	"github.com/docengine/core/cmd/engineinspect/cmd"
)

var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

func main() {
	cmd.SetVersion(version, buildTime, gitCommit)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

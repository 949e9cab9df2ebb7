// Package cmd implements the engineinspect CLI's commands.
package cmd

import (
	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

// rootCmd is the engineinspect base command.
var rootCmd = &cobra.Command{
	Use:   "engineinspect",
	Short: "Exercise the extraction engine and merge/split operations from the command line",
	Long: `engineinspect drives the extraction engine and the merge/split operations
against built-in sample data, for manual inspection and smoke-testing
outside of a real embedding application.

Examples:
  # Run extraction against the built-in sample document and print the schema
  engineinspect extract

  # Merge two sample text elements and print the result
  engineinspect merge

  # Split a sample paragraph at its optimal points and print the segments
  engineinspect split
`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(splitCmd)
	rootCmd.AddCommand(versionCmd)
}

// SetVersion sets version information reported by the version subcommand.
func SetVersion(v, bt, gc string) {
	version = v
	buildTime = bt
	gitCommit = gc
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("engineinspect version %s\n", version)
		cmd.Printf("build time: %s\n", buildTime)
		cmd.Printf("git commit: %s\n", gitCommit)
	},
}

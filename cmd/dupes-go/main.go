package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, errRemovalFailed) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "dupes-go [path]",
	Short: "Find duplicate files in a directory tree",
	Long: `dupes-go scans a directory tree and groups files with identical content.

Files are first grouped by size; only files sharing a size are hashed
(XXH64 over a memory mapping). Without a path the current directory is
scanned. Use the compare command to look for copies of a reference tree.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runScan,
}

func init() {
	rootCmd.Version = version
	bindFlags(rootCmd.PersistentFlags())
	rootCmd.AddCommand(compareCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	path := "."
	if len(args) == 1 {
		path = args[0]
	}
	return run(cmd, path, "")
}

package main

import (
	"github.com/spf13/cobra"
)

var compareCmd = &cobra.Command{
	Use:   "compare <path> <reference>",
	Short: "Find files in path that duplicate files in reference",
	Long: `compare scans both trees and reports the files under path that have a
copy under reference. Files under reference are never listed or removed.

reference may lie inside path. path must not be reference or lie inside it.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, args[0], args[1])
	},
}

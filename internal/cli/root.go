// Package cli defines the cleanmapd command tree.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is stamped by the release build.
var Version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "cleanmapd",
	Short: "Cleanup marker and points service",
	Long: `cleanmapd tracks user-reported cleanup markers through their lifecycle
(report → claim → moderator review) and keeps the durable points ledger
that pays reporters and cleaners on approval.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the cleanmapd version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("cleanmapd %s\n", Version)
	},
}

// Execute runs the command tree.
func Execute() error {
	return rootCmd.Execute()
}

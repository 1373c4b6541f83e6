// Package main provides the entry point for the portalscan CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for portalscan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "portalscan",
		Short: "Archive authenticated web portals and extract payment identifiers",
		Long: `Portalscan maps authenticated web portals into durable on-disk archives
and scans the archived pages for payment identifiers (cryptocurrency
addresses, IBANs, beneficiary and bank names).

Mapping and extraction are separate steps: "map" logs in with a headless
browser and archives every reachable page, "scan-archive" runs the
detector battery over a finished archive without touching the network.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewMapCmd())
	cmd.AddCommand(NewScanArchiveCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

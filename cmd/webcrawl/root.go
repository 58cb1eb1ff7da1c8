// Package main provides the entry point for the webcrawl CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for webcrawl.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "webcrawl",
		Short: "Bounded crawler that archives page text and images",
		Long: `webcrawl crawls a website starting from a seed URL, staying on the
seed's origin and within a configurable depth and page budget.

For every page it visits it saves the visible text to a file, and
downloads the images the page references. Duplicate images are detected
by content hash and downloaded only once per run. Output lands in a
dated directory on your desktop by default.`,
		Version:       resolveBuild().Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
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

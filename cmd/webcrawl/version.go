package main

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Overridden at release time via
// -ldflags "-X main.version=... -X main.commit=... -X main.date=...".
var (
	version = ""
	commit  = ""
	date    = ""
)

// buildDetails describes the binary being run. Fields that cannot be
// determined hold "unknown" so the output always has three lines.
type buildDetails struct {
	Version string
	Commit  string
	Date    string
}

// resolveBuild fills buildDetails from ldflags first, then from the
// module build info stamped by the Go toolchain. `go install` and
// source builds lack ldflags, so the VCS settings are the usual path.
func resolveBuild() buildDetails {
	d := buildDetails{
		Version: version,
		Commit:  commit,
		Date:    date,
	}

	info, ok := debug.ReadBuildInfo()
	if ok {
		if d.Version == "" {
			d.Version = info.Main.Version
		}
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if d.Commit == "" {
					d.Commit = shortRevision(s.Value)
				}
			case "vcs.time":
				if d.Date == "" {
					d.Date = s.Value
				}
			}
		}
	}

	if d.Version == "" {
		d.Version = "(devel)"
	}
	if d.Commit == "" {
		d.Commit = "unknown"
	}
	if d.Date == "" {
		d.Date = "unknown"
	}
	return d
}

// shortRevision abbreviates a VCS revision to the familiar 7 characters.
func shortRevision(rev string) string {
	if len(rev) > 7 {
		return rev[:7]
	}
	return rev
}

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print the version, commit hash, and build date of webcrawl.`,
		Run: func(cmd *cobra.Command, _ []string) {
			d := resolveBuild()
			fmt.Fprintf(cmd.OutOrStdout(), "webcrawl version %s\n", d.Version)
			fmt.Fprintf(cmd.OutOrStdout(), "  commit: %s\n", d.Commit)
			fmt.Fprintf(cmd.OutOrStdout(), "  built:  %s\n", d.Date)
		},
	}
}

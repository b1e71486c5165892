// Package cli provides the cobra command tree for the Descry binary.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/descry-cli/internal/core/ports/driven"
	"github.com/custodia-labs/descry-cli/internal/core/ports/driving"
	"github.com/custodia-labs/descry-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services used by the commands. Set once at startup via SetServices.
var (
	researchService driving.ResearchService
	reportStore     driven.ReportStore
	configStore     driven.ConfigStore
)

var verboseFlag bool

var rootCmd = &cobra.Command{
	Use:   "descry",
	Short: "Deep research from your terminal",
	Long: `Descry runs multi-step research for a topic: it optimises your query,
asks clarifying questions, plans and executes parallel web searches, and
writes a consolidated report.

Run 'descry research "your topic"' to start, or 'descry tui' for the
interactive terminal UI.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose logging")
}

// SetServices wires the core services into the command tree.
// Must be called before Execute.
func SetServices(research driving.ResearchService, reports driven.ReportStore, config driven.ConfigStore) {
	researchService = research
	reportStore = reports
	configStore = config
}

// SetVersion sets the version string reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command with the given context.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

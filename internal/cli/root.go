// Package cli wires the skein commands: generate (emit artifacts only),
// plan (emit and invoke the planner), and replicas (inspect the persistent
// replica store).
package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/me/skein/internal/logging"
)

var (
	flagDebug     bool
	flagLogLevel  string
	flagLogFormat string

	logger *slog.Logger
)

// NewRootCmd creates the root cobra command for the skein CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "skein",
		Short: "skein — hierarchical workflow composer",
		Long:  "skein composes hierarchical workflows with their catalogs and hands the artifact set to an external planner.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flagDebug {
				flagLogLevel = "debug"
			}
			logger = logging.New(logging.ParseLevel(flagLogLevel), flagLogFormat)
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "Log format (text, json)")

	root.AddCommand(
		newGenerateCmd(),
		newPlanCmd(),
		newReplicasCmd(),
	)

	return root
}

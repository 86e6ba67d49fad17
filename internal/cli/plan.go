package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/me/skein/internal/planner"
)

func newPlanCmd() *cobra.Command {
	var flags runFlags
	var submit bool
	var plannerBin string
	var verbosity int

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Emit the artifact set and invoke the external planner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := flags.bundle()
			if err != nil {
				return err
			}
			cfg := flags.runConfig()
			cfg.Submit = submit
			cfg.PlannerBinary = plannerBin
			cfg.Verbosity = verbosity

			p := planner.NewExecPlanner(cfg.PlannerBinary, logger)
			d, closeStore, err := buildDriver(cmd.Context(), cfg, p)
			if err != nil {
				return err
			}
			defer closeStore()

			res, err := d.Run(cmd.Context(), b)
			if err != nil {
				return err
			}
			if res.RunHandle != "" {
				fmt.Printf("run: %s\n", res.RunHandle)
			}
			if submit {
				fmt.Println("Workflow submitted.")
			} else {
				fmt.Println("Workflow planned. Re-run with --submit to execute.")
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&submit, "submit", false, "Also submit the planned workflow")
	cmd.Flags().StringVar(&plannerBin, "planner", "skein-plan", "External planner binary")
	cmd.Flags().CountVarP(&verbosity, "verbose", "v", "Planner verbosity (repeatable)")
	return cmd
}

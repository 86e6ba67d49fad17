package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/me/skein/internal/config"
	"github.com/me/skein/internal/driver"
	"github.com/me/skein/internal/pipeline"
	"github.com/me/skein/internal/planner"
	"github.com/me/skein/internal/stage"
	"github.com/me/skein/internal/store"
)

// runFlags are the flags shared by generate and plan.
type runFlags struct {
	site      string
	dir       string
	output    string
	variant   string
	skipSites bool
	publishTo string
	replicaDB string
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.site, "site", "condorpool", "Execution site for outer jobs")
	cmd.Flags().StringVar(&f.dir, "dir", ".", "Directory artifacts are written to")
	cmd.Flags().StringVarP(&f.output, "output", "o", "workflow.yml", "Workflow artifact file name")
	cmd.Flags().StringVar(&f.variant, "variant", string(pipeline.VariantDeferred), "Nested resolution: deferred or prePlanned")
	cmd.Flags().BoolVar(&f.skipSites, "skip-sites", false, "Leave the site catalog out")
	cmd.Flags().StringVar(&f.publishTo, "publish", "", "Publish artifacts to a destination URL (file:// or s3://)")
	cmd.Flags().StringVar(&f.replicaDB, "replica-db", "", "SQLite replica store path")
}

func (f *runFlags) runConfig() config.RunConfig {
	cfg := config.DefaultRunConfig()
	cfg.ExecutionSite = f.site
	cfg.RunDir = f.dir
	cfg.OutputFile = f.output
	cfg.SkipSites = f.skipSites
	cfg.PublishTo = f.publishTo
	cfg.ReplicaDB = f.replicaDB
	return cfg
}

func (f *runFlags) bundle() (*pipeline.Bundle, error) {
	v := pipeline.Variant(f.variant)
	switch v {
	case pipeline.VariantDeferred, pipeline.VariantPrePlanned:
	default:
		return nil, fmt.Errorf("unknown variant %q", f.variant)
	}
	return pipeline.Hierarchical(pipeline.Config{
		ExecutionSite: f.site,
		BaseDir:       f.dir,
		SkipSites:     f.skipSites,
		Variant:       v,
	})
}

// buildDriver assembles a driver with the optional replica store and
// publisher collaborators. The returned closer releases the store.
func buildDriver(ctx context.Context, cfg config.RunConfig, p planner.Planner) (*driver.Driver, func() error, error) {
	d := driver.New(cfg, p, logger)
	closer := func() error { return nil }

	if cfg.ReplicaDB != "" {
		st, err := openStore(ctx, cfg.ReplicaDB)
		if err != nil {
			return nil, nil, err
		}
		d = d.WithReplicaStore(st)
		closer = st.Close
	}
	if cfg.PublishTo != "" {
		pub, err := stage.New(cfg.PublishTo, logger)
		if err != nil {
			closer()
			return nil, nil, err
		}
		d = d.WithPublisher(pub)
	}
	return d, closer, nil
}

// openStore opens the SQLite replica store and applies migrations.
func openStore(ctx context.Context, path string) (*store.SQLiteStore, error) {
	st, err := store.NewSQLiteStore(path, logger)
	if err != nil {
		return nil, fmt.Errorf("open replica store: %w", err)
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, fmt.Errorf("migrate replica store: %w", err)
	}
	return st, nil
}

func newGenerateCmd() *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Emit the workflow and catalog artifacts without planning",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := flags.bundle()
			if err != nil {
				return err
			}
			cfg := flags.runConfig()

			d, closeStore, err := buildDriver(cmd.Context(), cfg, nil)
			if err != nil {
				return err
			}
			defer closeStore()

			if err := d.Generate(cmd.Context(), b); err != nil {
				return err
			}
			fmt.Printf("Artifacts written to %s\n", cfg.RunDir)
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/me/skein/pkg/catalog"
)

func newReplicasCmd() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "replicas",
		Short: "Manage the persistent replica store",
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", "replicas.db", "SQLite replica store path")

	cmd.AddCommand(
		newReplicasAddCmd(&dbPath),
		newReplicasListCmd(&dbPath),
	)
	return cmd
}

func newReplicasAddCmd(dbPath *string) *cobra.Command {
	var site string

	cmd := &cobra.Command{
		Use:   "add <lfn> <pfn>",
		Short: "Register a physical location for a logical file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(cmd.Context(), *dbPath)
			if err != nil {
				return err
			}
			defer st.Close()

			r := catalog.Replica{LFN: args[0], Site: site, PFN: args[1]}
			if err := st.Put(cmd.Context(), r); err != nil {
				return err
			}
			fmt.Printf("Registered %s @ %s -> %s\n", r.LFN, r.Site, r.PFN)
			return nil
		},
	}

	cmd.Flags().StringVar(&site, "site", "local", "Site the replica lives on")
	return cmd
}

func newReplicasListCmd(dbPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list [lfn]",
		Short: "List stored replicas, optionally for one logical file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(cmd.Context(), *dbPath)
			if err != nil {
				return err
			}
			defer st.Close()

			var rs []catalog.Replica
			if len(args) == 1 {
				rs, err = st.Lookup(cmd.Context(), args[0])
			} else {
				rs, err = st.All(cmd.Context())
			}
			if err != nil {
				return err
			}
			if len(rs) == 0 {
				fmt.Println("No replicas stored.")
				return nil
			}
			for _, r := range rs {
				fmt.Printf("%s\t%s\t%s\n", r.LFN, r.Site, r.PFN)
			}
			return nil
		},
	}
}

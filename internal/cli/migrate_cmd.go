package cli

import (
	"fmt"

	"github.com/linapoint/resortagents/internal/db"
	"github.com/spf13/cobra"
)

func newMigrateCmd(rt *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and print the schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := db.Migrate(rt.App.DB); err != nil {
				return err
			}
			version, err := db.Version(rt.App.DB)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s schema version %d\n", rt.Config.Database.Path, version)
			return nil
		},
	}
}

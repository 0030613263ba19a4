package cli

import (
	"fmt"

	"github.com/linapoint/resortagents/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newImproveCmd(rt *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "improve",
		Short: "Review recent bookings and update agent prompts",
		RunE: func(cmd *cobra.Command, args []string) error {
			stop := func() {}
			if rt.interactive() {
				stop = formatter.StartSpinner(cmd.ErrOrStderr(), "reviewing recent activity")
			}
			res, err := rt.App.SelfImprove.RunAndPersist(cmd.Context())
			stop()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatSelfImprove(res, rt.Config.Agents.MinScore))
			return nil
		},
	}
}

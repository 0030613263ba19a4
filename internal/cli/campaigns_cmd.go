package cli

import (
	"fmt"

	"github.com/linapoint/resortagents/internal/cli/formatter"
	"github.com/linapoint/resortagents/internal/domain"
	"github.com/spf13/cobra"
)

func newCampaignsCmd(rt *Runtime) *cobra.Command {
	var (
		status string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "campaigns",
		Short: "List marketing campaigns",
		RunE: func(cmd *cobra.Command, args []string) error {
			campaigns, err := rt.App.Marketing.ListCampaigns(cmd.Context(), domain.CampaignStatus(status), limit)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatCampaigns(campaigns, rt.now()))
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status: draft, running, completed or failed")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum campaigns to show")
	return cmd
}

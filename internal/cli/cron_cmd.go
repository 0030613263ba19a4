package cli

import (
	"fmt"

	"github.com/linapoint/resortagents/internal/cli/formatter"
	"github.com/spf13/cobra"
)

// newCronCmd runs the scheduled jobs once, for system cron or manual catch-up.
func newCronCmd(rt *Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cron",
		Short: "Run a scheduled job once",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "whatsapp",
			Short: "Send check-in reminders and welcome messages",
			RunE: func(cmd *cobra.Command, args []string) error {
				res, err := rt.App.WhatsApp.SendCheckInReminders(cmd.Context(), rt.now())
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), formatter.FormatReminders(res))
				return nil
			},
		},
		&cobra.Command{
			Use:   "proactive",
			Short: "Send proactive pre-arrival messages",
			RunE: func(cmd *cobra.Command, args []string) error {
				res, err := rt.App.WhatsApp.SendProactiveMessages(cmd.Context(), rt.now())
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), formatter.FormatProactive(res))
				return nil
			},
		},
		&cobra.Command{
			Use:   "daily-marketing",
			Short: "Advance draft and running campaigns",
			RunE: func(cmd *cobra.Command, args []string) error {
				res, err := rt.App.Marketing.RunDaily(cmd.Context(), rt.now())
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), formatter.FormatDailyMarketing(res))
				return nil
			},
		},
		&cobra.Command{
			Use:   "re-engagement",
			Short: "Schedule win-back emails for lapsed guests",
			RunE: func(cmd *cobra.Command, args []string) error {
				res, err := rt.App.Marketing.ReEngageLapsedGuests(cmd.Context(), rt.now())
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), formatter.FormatReEngagement(res))
				return nil
			},
		},
		&cobra.Command{
			Use:   "events",
			Short: "List guests celebrating an occasion today",
			RunE: func(cmd *cobra.Command, args []string) error {
				triggers, err := rt.App.Events.CheckEvents(cmd.Context(), rt.now())
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), formatter.FormatEventTriggers(triggers))
				return nil
			},
		},
	)
	return cmd
}

package cli

import (
	"fmt"
	"time"

	"github.com/linapoint/resortagents/internal/agents"
	"github.com/linapoint/resortagents/internal/cli/formatter"
	"github.com/linapoint/resortagents/internal/domain"
	"github.com/spf13/cobra"
)

const dateLayout = "2006-01-02"

func newScoutCmd(rt *Runtime) *cobra.Command {
	var room, checkIn, checkOut, location string

	cmd := &cobra.Command{
		Use:   "scout",
		Short: "Compare OTA prices and quote a direct rate that beats them",
		RunE: func(cmd *cobra.Command, args []string) error {
			if checkIn == "" {
				checkIn = rt.now().AddDate(0, 0, 30).Format(dateLayout)
			}
			if checkOut == "" {
				in, err := time.Parse(dateLayout, checkIn)
				if err != nil {
					return fmt.Errorf("invalid --check-in %q: want YYYY-MM-DD", checkIn)
				}
				checkOut = in.AddDate(0, 0, 3).Format(dateLayout)
			}

			res, err := rt.App.Scout.Run(cmd.Context(), room, checkIn, checkOut, location)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatPriceScout(res))
			return nil
		},
	}

	cmd.Flags().StringVar(&room, "room", "Overwater Suite", "Room type")
	cmd.Flags().StringVar(&checkIn, "check-in", "", "Check-in date YYYY-MM-DD (default 30 days out)")
	cmd.Flags().StringVar(&checkOut, "check-out", "", "Check-out date YYYY-MM-DD (default three nights)")
	cmd.Flags().StringVar(&location, "location", "San Pedro, Belize", "Resort location")
	return cmd
}

func newCurateCmd(rt *Runtime) *cobra.Command {
	var (
		budget    float64
		interests []string
		activity  string
		group     int
	)

	cmd := &cobra.Command{
		Use:   "curate",
		Short: "Build a tour package for a budget and interests",
		RunE: func(cmd *cobra.Command, args []string) error {
			if budget < 0 {
				return fmt.Errorf("--budget must not be negative")
			}
			if group < 1 {
				return fmt.Errorf("--group must be at least 1")
			}
			tier := domain.TierForBudget(budget)
			res := rt.App.Curator.Curate(agents.CuratorPreferences{
				Interests:     domain.CoalesceList(interests, domain.DefaultInterests),
				ActivityLevel: domain.ActivityLevel(activity),
				Budget:        tier,
			}, budget)
			out := cmd.OutOrStdout()
			fmt.Fprint(out, formatter.FormatCuratedExperience(tier, budget, res))
			if group > 1 && len(res.Tours) > 0 {
				fmt.Fprintf(out, "%s %s\n", formatter.Dim(fmt.Sprintf("Per guest (%d):", group)), formatter.Money(res.TotalPrice/float64(group)))
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&budget, "budget", 300, "Tour budget in USD")
	cmd.Flags().StringSliceVar(&interests, "interests", nil, "Interests, e.g. snorkeling,dining")
	cmd.Flags().IntVar(&group, "group", 2, "Number of guests sharing the package")
	cmd.Flags().StringVar(&activity, "activity", string(domain.ActivityMedium), "Activity level: low, medium or high")
	return cmd
}

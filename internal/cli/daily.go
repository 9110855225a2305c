package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/tide/internal/ports/primary"
)

// DailyCmd returns the daily command: resolve (or create) today's
// daily tide.
func DailyCmd() *cobra.Command {
	var date string
	var tz string

	cmd := &cobra.Command{
		Use:   "daily",
		Short: "Show today's daily tide, creating it if needed",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, userID, err := services()
			if err != nil {
				return err
			}

			day, err := parseDate(date)
			if err != nil {
				return err
			}

			tide, err := c.Tides.GetOrCreateDailyTide(cmd.Context(), primary.DailyTideRequest{
				UserID:   userID,
				Timezone: timezone(tz, c),
				Date:     day,
			})
			if err != nil {
				return fmt.Errorf("failed to resolve daily tide: %w", err)
			}

			fmt.Printf("\nDaily tide: %s\n", tide.ID)
			fmt.Printf("Date:   %s\n", tide.DateStart)
			fmt.Printf("Status: %s\n", statusColored(tide.Status))
			fmt.Printf("Flows:  %d sessions, %d minutes\n", tide.FlowCount, tide.TotalDuration)
			if tide.ParentTideID != "" {
				fmt.Printf("Week:   %s\n", tide.ParentTideID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Date (YYYY-MM-DD, defaults to today)")
	cmd.Flags().StringVar(&tz, "timezone", "", "IANA timezone (defaults to config)")

	return cmd
}

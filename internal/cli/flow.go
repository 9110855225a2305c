package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/tide/internal/ports/primary"
)

var flowCmd = &cobra.Command{
	Use:   "flow",
	Short: "Record focused-work sessions",
	Long:  "Record flow sessions into the daily/weekly/monthly hierarchy",
}

var flowStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Record a flow session across the time hierarchy",
	Long: `Records one flow session into today's daily, weekly and monthly
tides, creating and linking them as needed. With --tide the session is
also recorded against that project or seasonal tide.

Examples:
  tide flow start
  tide flow start --intensity strong --duration 50
  tide flow start --tide <tide-id> --context "deep work on parser"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, userID, err := services()
		if err != nil {
			return err
		}

		intensity, _ := cmd.Flags().GetString("intensity")
		duration, _ := cmd.Flags().GetInt("duration")
		energy, _ := cmd.Flags().GetInt("energy")
		workContext, _ := cmd.Flags().GetString("context")
		explicitID, _ := cmd.Flags().GetString("tide")
		tz, _ := cmd.Flags().GetString("timezone")

		resp, err := c.Flows.StartHierarchicalFlow(cmd.Context(), primary.StartFlowRequest{
			UserID:         userID,
			Intensity:      intensity,
			Duration:       duration,
			EnergyLevel:    energy,
			WorkContext:    workContext,
			ExplicitTideID: explicitID,
			Timezone:       timezone(tz, c),
		})
		if err != nil {
			return fmt.Errorf("failed to record flow: %w", err)
		}

		s := resp.Session
		fmt.Printf("✓ Recorded %s flow session (%d minutes)\n", s.Intensity, s.Duration)
		fmt.Printf("  Daily:   %s\n", resp.DailyID)
		fmt.Printf("  Weekly:  %s\n", resp.WeeklyID)
		fmt.Printf("  Monthly: %s\n", resp.MonthID)
		if resp.ExplicitID != "" {
			fmt.Printf("  Tide:    %s\n", resp.ExplicitID)
		}
		return nil
	},
}

func init() {
	flowStartCmd.Flags().StringP("intensity", "i", "", "Session intensity (gentle, moderate, strong; default moderate)")
	flowStartCmd.Flags().IntP("duration", "d", 0, "Session length in minutes (default 25)")
	flowStartCmd.Flags().IntP("energy", "e", 0, "Energy level snapshot (1-10)")
	flowStartCmd.Flags().StringP("context", "c", "", "What the session was spent on")
	flowStartCmd.Flags().String("tide", "", "Explicit tide ID to also record into")
	flowStartCmd.Flags().String("timezone", "", "IANA timezone (defaults to config)")

	flowCmd.AddCommand(flowStartCmd)
}

// FlowCmd returns the flow command.
func FlowCmd() *cobra.Command {
	return flowCmd
}

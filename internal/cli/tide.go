package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/tide/internal/ports/primary"
)

var tideCmd = &cobra.Command{
	Use:   "tide",
	Short: "Manage tides (focused-work containers)",
	Long:  "Create, list, and manage project and seasonal tides",
}

var tideCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a project or seasonal tide",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, userID, err := services()
		if err != nil {
			return err
		}
		flowType, _ := cmd.Flags().GetString("type")
		description, _ := cmd.Flags().GetString("description")

		tide, err := c.Tides.CreateTide(cmd.Context(), primary.CreateTideRequest{
			UserID:      userID,
			Name:        args[0],
			FlowType:    flowType,
			Description: description,
		})
		if err != nil {
			return fmt.Errorf("failed to create tide: %w", err)
		}

		fmt.Printf("✓ Created %s tide %s: %s\n", tide.FlowType, tide.ID, tide.Name)
		return nil
	},
}

var tideListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tides",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, userID, err := services()
		if err != nil {
			return err
		}
		flowType, _ := cmd.Flags().GetString("type")
		activeOnly, _ := cmd.Flags().GetBool("active")

		tides, err := c.Tides.ListTides(cmd.Context(), userID, primary.TideFilters{
			FlowType:   flowType,
			ActiveOnly: activeOnly,
		})
		if err != nil {
			return fmt.Errorf("failed to list tides: %w", err)
		}

		if len(tides) == 0 {
			fmt.Println("No tides found")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tTYPE\tSTATUS\tRANGE\tFLOWS\tMINUTES")
		fmt.Fprintln(w, "--\t----\t----\t------\t-----\t-----\t-------")
		for _, t := range tides {
			rangeStr := "-"
			if t.DateStart != "" {
				rangeStr = t.DateStart
				if t.DateEnd != "" && t.DateEnd != t.DateStart {
					rangeStr += ".." + t.DateEnd
				}
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%d\n",
				t.ID, t.Name, t.FlowType, t.Status, rangeStr, t.FlowCount, t.TotalDuration)
		}
		w.Flush()
		return nil
	},
}

var tideShowCmd = &cobra.Command{
	Use:   "show [tide-id]",
	Short: "Show tide details with history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, userID, err := services()
		if err != nil {
			return err
		}

		tide, err := c.Tides.GetTide(cmd.Context(), userID, args[0])
		if err != nil {
			return fmt.Errorf("failed to get tide: %w", err)
		}

		fmt.Printf("\nTide: %s\n", tide.ID)
		fmt.Printf("Name:   %s\n", tide.Name)
		fmt.Printf("Type:   %s\n", tide.FlowType)
		fmt.Printf("Status: %s\n", statusColored(tide.Status))
		if tide.Description != "" {
			fmt.Printf("Description: %s\n", tide.Description)
		}
		if tide.DateStart != "" {
			fmt.Printf("Range:  %s .. %s\n", tide.DateStart, tide.DateEnd)
		}
		if tide.ParentTideID != "" {
			fmt.Printf("Parent: %s\n", tide.ParentTideID)
		}
		fmt.Printf("Flows:  %d sessions, %d minutes total\n", tide.FlowCount, tide.TotalDuration)
		if tide.LastFlowAt != nil {
			fmt.Printf("Last flow: %s\n", tide.LastFlowAt.Format("2006-01-02 15:04"))
		}
		fmt.Printf("Created: %s\n", tide.CreatedAt.Format("2006-01-02 15:04"))

		if len(tide.FlowSessions) > 0 {
			fmt.Printf("\nRecent sessions:\n")
			sessions := tide.FlowSessions
			if len(sessions) > 5 {
				sessions = sessions[len(sessions)-5:]
			}
			for _, s := range sessions {
				ctx := ""
				if s.WorkContext != "" {
					ctx = "  " + s.WorkContext
				}
				fmt.Printf("  %s  %-8s %3dm%s\n",
					s.StartedAt.Format("2006-01-02 15:04"), s.Intensity, s.Duration, ctx)
			}
		}
		if len(tide.EnergyUpdates) > 0 {
			latest := tide.EnergyUpdates[len(tide.EnergyUpdates)-1]
			fmt.Printf("\nEnergy: %d/10 (as of %s)\n", latest.EnergyLevel, latest.Timestamp.Format("2006-01-02 15:04"))
		}
		if len(tide.TaskLinks) > 0 {
			fmt.Printf("\nLinked tasks:\n")
			for _, l := range tide.TaskLinks {
				fmt.Printf("  %s  %s (%s)\n", l.ID, l.Title, l.URL)
			}
		}
		return nil
	},
}

var tideUpdateCmd = &cobra.Command{
	Use:   "update [tide-id]",
	Short: "Update tide name, description or status",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, userID, err := services()
		if err != nil {
			return err
		}

		req := primary.UpdateTideRequest{UserID: userID, TideID: args[0]}
		if cmd.Flags().Changed("name") {
			v, _ := cmd.Flags().GetString("name")
			req.Name = &v
		}
		if cmd.Flags().Changed("description") {
			v, _ := cmd.Flags().GetString("description")
			req.Description = &v
		}
		if cmd.Flags().Changed("status") {
			v, _ := cmd.Flags().GetString("status")
			req.Status = &v
		}
		if req.Name == nil && req.Description == nil && req.Status == nil {
			return fmt.Errorf("must specify --name, --description and/or --status")
		}

		tide, err := c.Tides.UpdateTide(cmd.Context(), req)
		if err != nil {
			return fmt.Errorf("failed to update tide: %w", err)
		}

		fmt.Printf("✓ Tide %s updated\n", tide.ID)
		return nil
	},
}

var tideCompleteCmd = &cobra.Command{
	Use:   "complete [tide-id]",
	Short: "Mark a tide completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, userID, err := services()
		if err != nil {
			return err
		}
		if err := c.Tides.CompleteTide(cmd.Context(), userID, args[0]); err != nil {
			return fmt.Errorf("failed to complete tide: %w", err)
		}
		fmt.Printf("✓ Tide %s completed\n", args[0])
		return nil
	},
}

var tidePauseCmd = &cobra.Command{
	Use:   "pause [tide-id]",
	Short: "Pause an active tide",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, userID, err := services()
		if err != nil {
			return err
		}
		if err := c.Tides.PauseTide(cmd.Context(), userID, args[0]); err != nil {
			return fmt.Errorf("failed to pause tide: %w", err)
		}
		fmt.Printf("✓ Tide %s paused\n", args[0])
		return nil
	},
}

var tideResumeCmd = &cobra.Command{
	Use:   "resume [tide-id]",
	Short: "Resume a paused tide",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, userID, err := services()
		if err != nil {
			return err
		}
		if err := c.Tides.ResumeTide(cmd.Context(), userID, args[0]); err != nil {
			return fmt.Errorf("failed to resume tide: %w", err)
		}
		fmt.Printf("✓ Tide %s resumed\n", args[0])
		return nil
	},
}

func init() {
	tideCreateCmd.Flags().StringP("type", "t", "project", "Flow type (project, seasonal)")
	tideCreateCmd.Flags().StringP("description", "d", "", "Tide description")

	tideListCmd.Flags().StringP("type", "t", "", "Filter by flow type")
	tideListCmd.Flags().Bool("active", false, "Only active tides")

	tideUpdateCmd.Flags().String("name", "", "New name")
	tideUpdateCmd.Flags().StringP("description", "d", "", "New description")
	tideUpdateCmd.Flags().String("status", "", "New status (active, paused, completed)")

	tideCmd.AddCommand(tideCreateCmd)
	tideCmd.AddCommand(tideListCmd)
	tideCmd.AddCommand(tideShowCmd)
	tideCmd.AddCommand(tideUpdateCmd)
	tideCmd.AddCommand(tideCompleteCmd)
	tideCmd.AddCommand(tidePauseCmd)
	tideCmd.AddCommand(tideResumeCmd)
}

// TideCmd returns the tide command.
func TideCmd() *cobra.Command {
	return tideCmd
}

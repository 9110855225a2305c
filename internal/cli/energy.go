package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/example/tide/internal/ports/primary"
)

var energyCmd = &cobra.Command{
	Use:   "energy",
	Short: "Record energy levels",
}

var energyAddCmd = &cobra.Command{
	Use:   "add [tide-id] [level]",
	Short: "Record an energy level (1-10) against a tide",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, userID, err := services()
		if err != nil {
			return err
		}

		level, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("energy level must be a number 1-10, got %q", args[1])
		}
		context, _ := cmd.Flags().GetString("context")

		update, err := c.Tides.AddEnergyUpdate(cmd.Context(), primary.AddEnergyRequest{
			UserID:      userID,
			TideID:      args[0],
			EnergyLevel: level,
			Context:     context,
		})
		if err != nil {
			return fmt.Errorf("failed to record energy: %w", err)
		}

		fmt.Printf("✓ Recorded energy %d/10 on tide %s\n", update.EnergyLevel, args[0])
		return nil
	},
}

func init() {
	energyAddCmd.Flags().StringP("context", "c", "", "What influenced this reading")

	energyCmd.AddCommand(energyAddCmd)
}

// EnergyCmd returns the energy command.
func EnergyCmd() *cobra.Command {
	return energyCmd
}

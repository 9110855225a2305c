package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/tide/internal/ports/primary"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Link external tasks to tides",
}

var taskLinkCmd = &cobra.Command{
	Use:   "link [tide-id] [url]",
	Short: "Link an external task to a tide",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, userID, err := services()
		if err != nil {
			return err
		}
		title, _ := cmd.Flags().GetString("title")
		taskType, _ := cmd.Flags().GetString("type")

		link, err := c.Tides.AddTaskLink(cmd.Context(), primary.AddTaskLinkRequest{
			UserID: userID,
			TideID: args[0],
			URL:    args[1],
			Title:  title,
			Type:   taskType,
		})
		if err != nil {
			return fmt.Errorf("failed to link task: %w", err)
		}

		fmt.Printf("✓ Linked task %s: %s\n", link.ID, link.Title)
		return nil
	},
}

var taskUnlinkCmd = &cobra.Command{
	Use:   "unlink [tide-id] [link-id]",
	Short: "Remove a task link from a tide",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, userID, err := services()
		if err != nil {
			return err
		}

		removed, err := c.Tides.RemoveTaskLink(cmd.Context(), userID, args[0], args[1])
		if err != nil {
			return fmt.Errorf("failed to unlink task: %w", err)
		}
		if !removed {
			fmt.Printf("No task link %s on tide %s\n", args[1], args[0])
			return nil
		}

		fmt.Printf("✓ Unlinked task %s\n", args[1])
		return nil
	},
}

func init() {
	taskLinkCmd.Flags().StringP("title", "t", "", "Task title (required)")
	taskLinkCmd.Flags().String("type", "", "Task type (e.g. issue, ticket)")
	taskLinkCmd.MarkFlagRequired("title")

	taskCmd.AddCommand(taskLinkCmd)
	taskCmd.AddCommand(taskUnlinkCmd)
}

// TaskCmd returns the task command.
func TaskCmd() *cobra.Command {
	return taskCmd
}

package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/tide/internal/ports/primary"
)

// ContextsCmd returns the contexts command: the per-granularity
// summary around a date.
func ContextsCmd() *cobra.Command {
	var date string
	var tz string

	cmd := &cobra.Command{
		Use:   "contexts",
		Short: "Summarize daily, weekly and monthly tides around a date",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, userID, err := services()
			if err != nil {
				return err
			}

			day, err := parseDate(date)
			if err != nil {
				return err
			}

			contexts, err := c.Flows.ListTideContexts(cmd.Context(), primary.ContextsRequest{
				UserID:   userID,
				Timezone: timezone(tz, c),
				Date:     day,
			})
			if err != nil {
				return fmt.Errorf("failed to list contexts: %w", err)
			}

			fmt.Printf("\nContexts for %s\n\n", contexts.Date)
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "GRANULARITY\tRANGE\tFLOWS\tMINUTES\tAVAILABLE")
			fmt.Fprintln(w, "-----------\t-----\t-----\t-------\t---------")
			for _, tc := range contexts.Contexts {
				avail := "no"
				if tc.Available {
					avail = "yes"
				}
				fmt.Fprintf(w, "%s\t%s..%s\t%d\t%d\t%s\n",
					tc.Granularity, tc.DateStart, tc.DateEnd, tc.FlowCount, tc.TotalMinutes, avail)
			}
			w.Flush()
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Date (YYYY-MM-DD, defaults to today)")
	cmd.Flags().StringVar(&tz, "timezone", "", "IANA timezone (defaults to config)")

	return cmd
}

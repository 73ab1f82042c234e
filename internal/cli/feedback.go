package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewFeedbackCmd creates the 'feedback' command for a user's vote history.
func NewFeedbackCmd(opts *RootOptions) *cobra.Command {
	var recent int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "feedback <user>",
		Short: "Show a user's recent feedback and satisfaction",
		Example: `  reco-hub feedback ai730048
  reco-hub feedback ai730048 --recent 20`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := opts.openService()
			if err != nil {
				return err
			}
			defer closeFn()

			if !cmd.Flags().Changed("recent") {
				recent = opts.Config.Display.RecentVotes
			}
			fb, err := svc.FeedbackRecent(args[0], recent)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				return writeJSON(out, fb)
			}

			s := fb.Summary
			fmt.Fprintf(out, "Feedback for %s: %d votes, %d likes, %d dislikes, %.1f%% satisfaction\n",
				fb.UserID, s.Total, s.Likes, s.Dislikes, s.Satisfaction)
			if len(fb.Recent) == 0 {
				fmt.Fprintln(out, "No feedback yet.")
				return nil
			}

			fmt.Fprintln(out)
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "PRODUCT\tFEEDBACK")
			for _, e := range fb.Recent {
				fmt.Fprintf(tw, "%s\t%s\n", e.ProductID, voteMark(e.Vote))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVarP(&recent, "recent", "n", 0, "Number of recent votes to list (default from config)")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}

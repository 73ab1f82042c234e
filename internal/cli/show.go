package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/khanglvm/reco-hub/internal/dashboard"
	"github.com/khanglvm/reco-hub/internal/filter"
	"github.com/khanglvm/reco-hub/internal/ledger"
)

// NewShowCmd creates the 'show' command for a user's recommendation table.
func NewShowCmd(opts *RootOptions) *cobra.Command {
	var minScore float64
	var products []string
	var withExplain bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <user>",
		Short: "Show a user's recommendations",
		Long: `Show the ranked recommendations of a user with scores, score band and the
current feedback. Positions beyond the shortest score series are never shown.`,
		Example: `  reco-hub show ai730048
  reco-hub show ai730048 --min-score 0.5 --product 152 --explain`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := opts.openService()
			if err != nil {
				return err
			}
			defer closeFn()

			if !cmd.Flags().Changed("min-score") {
				minScore = opts.Config.Display.MinScore
			}
			page, err := svc.Recommendations(args[0], filter.Criteria{MinScore: minScore, IDSubstrings: products})
			if err != nil {
				return err
			}

			var explanations []dashboard.Explanation
			if withExplain {
				for _, row := range page.Rows {
					exp, err := svc.Explain(page.UserID, row.ProductID)
					if err != nil {
						return err
					}
					explanations = append(explanations, exp)
				}
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				return writeJSON(out, map[string]interface{}{
					"page":         page,
					"explanations": explanations,
				})
			}
			printPage(out, page, explanations)
			return nil
		},
	}

	cmd.Flags().Float64Var(&minScore, "min-score", 0, "Minimum final score (default from config)")
	cmd.Flags().StringArrayVarP(&products, "product", "p", nil, "Only product ids containing this text (repeatable)")
	cmd.Flags().BoolVarP(&withExplain, "explain", "e", false, "Include top feature impacts per product")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}

func printPage(out io.Writer, page dashboard.Page, explanations []dashboard.Explanation) {
	fmt.Fprintf(out, "Recommendations for %s (%d of %d)\n", page.UserID, len(page.Rows), page.Total)
	if len(page.VisitedStudies) > 0 {
		fmt.Fprintf(out, "Visited: %s\n", strings.Join(page.VisitedStudies, ", "))
	}
	for _, w := range page.Warnings {
		fmt.Fprintf(out, "⚠ %s\n", w)
	}
	fmt.Fprintln(out)

	if len(page.Rows) == 0 {
		fmt.Fprintln(out, "No recommendations match the filters.")
		return
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tPRODUCT\tFINAL\tRF\tCF\tBAND\tFEEDBACK")
	for _, row := range page.Rows {
		fmt.Fprintf(tw, "%d\t%s\t%.3f\t%.3f\t%.3f\t%s\t%s\n",
			row.Rank, row.ProductID, row.FinalScore, row.RFScore, row.CFScore, row.Band, voteMark(row.Vote))
	}
	tw.Flush()

	for _, exp := range explanations {
		fmt.Fprintln(out)
		printExplanation(out, exp)
	}
}

func voteMark(v ledger.Vote) string {
	switch v {
	case ledger.Like:
		return "👍"
	case ledger.Dislike:
		return "👎"
	default:
		return "-"
	}
}

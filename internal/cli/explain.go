package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/khanglvm/reco-hub/internal/dashboard"
)

// NewExplainCmd creates the 'explain' command for one recommended product.
func NewExplainCmd(opts *RootOptions) *cobra.Command {
	var top int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "explain <user> <product>",
		Short: "Show the feature impacts behind a recommendation",
		Example: `  reco-hub explain ai730048 152415
  reco-hub explain ai730048 152415 --top 0  # all features`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := opts.openService()
			if err != nil {
				return err
			}
			defer closeFn()

			if !cmd.Flags().Changed("top") {
				top = opts.Config.Display.TopFeatures
			}
			exp, err := svc.ExplainTop(args[0], args[1], top)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				return writeJSON(out, exp)
			}
			printExplanation(out, exp)
			return nil
		},
	}

	cmd.Flags().IntVarP(&top, "top", "n", 0, "Number of features; 0 shows all (default from config)")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}

func printExplanation(out io.Writer, exp dashboard.Explanation) {
	fmt.Fprintf(out, "Why %s was recommended to %s:\n", exp.ProductID, exp.UserID)
	if len(exp.Features) == 0 {
		fmt.Fprintln(out, "  No explanation available.")
		return
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  FEATURE\tVALUE\tIMPACT\tBAND")
	for _, f := range exp.Features {
		fmt.Fprintf(tw, "  %s\t%g\t%.4f\t%s\n", f.Feature, f.Value, f.Impact, f.Band)
	}
	tw.Flush()
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewCheckCmd creates the 'check' command that parses every record.
func NewCheckCmd(opts *RootOptions) *cobra.Command {
	var workers int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Parse every recommendation record and report problems",
		Long: `Parse all records of the recommendations table and list malformed fields,
length mismatches and out-of-range scores. Records are always usable; this
only reports what was recovered.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := opts.openService()
			if err != nil {
				return err
			}
			defer closeFn()

			reports, err := svc.Check(cmd.Context(), workers)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				return writeJSON(out, reports)
			}

			problems := 0
			for _, r := range reports {
				if len(r.Warnings) == 0 {
					continue
				}
				problems++
				fmt.Fprintf(out, "%s (%d usable items)\n", r.UserID, r.Items)
				for _, w := range r.Warnings {
					fmt.Fprintf(out, "  ⚠ %s\n", w)
				}
			}
			fmt.Fprintf(out, "\n%d records checked, %d with problems\n", len(reports), problems)
			return nil
		},
	}

	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Parallel parsers (default: one per CPU)")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}

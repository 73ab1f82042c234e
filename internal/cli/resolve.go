package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/khanglvm/reco-hub/internal/resolver"
)

// NewResolveCmd creates the 'resolve' command for mapping free text to a user.
func NewResolveCmd(opts *RootOptions) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "resolve <text>...",
		Short: "Find the user a free-text request refers to",
		Example: `  reco-hub resolve "show recommendations for ai730048"
  reco-hub resolve recommend ai73`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := opts.openService()
			if err != nil {
				return err
			}
			defer closeFn()

			res := svc.Resolve(strings.Join(args, " "))

			out := cmd.OutOrStdout()
			if jsonOutput {
				return writeJSON(out, res)
			}
			fmt.Fprintln(out, res.Message)
			if res.Status != resolver.Resolved {
				return fmt.Errorf("no user resolved (%s)", res.Status)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}

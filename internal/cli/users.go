package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewUsersCmd creates the 'users' command for listing catalog users.
func NewUsersCmd(opts *RootOptions) *cobra.Command {
	var search string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "users",
		Aliases: []string{"ls"},
		Short:   "List users with recommendations",
		Example: `  reco-hub users
  reco-hub users --search ai73`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := opts.openService()
			if err != nil {
				return err
			}
			defer closeFn()

			users, err := svc.Users(search)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				return writeJSON(out, users)
			}
			if len(users) == 0 {
				fmt.Fprintln(out, "No matching users.")
				return nil
			}
			for _, u := range users {
				fmt.Fprintln(out, u)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "Only users whose id contains this text (case-insensitive)")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}

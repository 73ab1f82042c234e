package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/khanglvm/reco-hub/internal/ledger"
)

// NewVoteCmd creates the 'vote' command for recording feedback.
func NewVoteCmd(opts *RootOptions) *cobra.Command {
	var toggle bool

	cmd := &cobra.Command{
		Use:   "vote <user> <product> like|dislike|clear",
		Short: "Record feedback on a recommended product",
		Long: `Record like or dislike feedback for a (user, product) pair, or clear it.

With --toggle the vote behaves like the dashboard buttons: repeating the
current vote clears it.`,
		Example: `  reco-hub vote ai730048 152415 like
  reco-hub vote ai730048 152415 like --toggle
  reco-hub vote ai730048 152415 clear`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, product := args[0], args[1]
			vote, err := ledger.ParseVote(args[2])
			if err != nil {
				return err
			}

			svc, closeFn, err := opts.openService()
			if err != nil {
				return err
			}
			defer closeFn()

			if toggle {
				if vote == ledger.None {
					return fmt.Errorf("%w: --toggle needs like or dislike", ledger.ErrInvalidVote)
				}
				if vote, err = svc.Vote(user, product, vote); err != nil {
					return err
				}
			} else if err := svc.SetVote(user, product, vote); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s / %s: %s\n", user, product, vote)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&toggle, "toggle", "t", false, "Clear the vote if it already has this value")

	return cmd
}

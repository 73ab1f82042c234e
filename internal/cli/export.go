package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/khanglvm/reco-hub/internal/ledger"
)

// NewExportCmd creates the 'export' command for downloading feedback as CSV.
func NewExportCmd(opts *RootOptions) *cobra.Command {
	var user string
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export feedback as CSV",
		Long: `Export the feedback ledger, or one user's slice of it, as CSV with the
columns MUDID,Product_ID,Feedback.

Without --output the CSV is written to stdout. An --output directory receives
a timestamped file such as feedback_ai730048_20240309_140507.csv.`,
		Example: `  reco-hub export > all.csv
  reco-hub export --user ai730048 --output ./exports/`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := opts.openService()
			if err != nil {
				return err
			}
			defer closeFn()

			if output == "" {
				return svc.Export(cmd.OutOrStdout(), user)
			}

			var buf bytes.Buffer
			if err := svc.Export(&buf, user); err != nil {
				return err
			}

			path := output
			if info, err := os.Stat(output); err == nil && info.IsDir() {
				path = filepath.Join(output, ledger.ExportFileName(user, time.Now()))
			}
			if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
				return fmt.Errorf("failed to write export: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported feedback to %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&user, "user", "u", "", "Only this user's feedback")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file or directory (default stdout)")

	return cmd
}

/*
Package cli implements the reco-hub commands.

Every command shares the global flags defined on the root command. Flags
override the loaded configuration, which in turn layers environment over the
config file over defaults.
*/
package cli

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/khanglvm/reco-hub/internal/config"
	"github.com/khanglvm/reco-hub/internal/dashboard"
	"github.com/khanglvm/reco-hub/internal/ledger"
	"github.com/khanglvm/reco-hub/internal/logging"
	"github.com/khanglvm/reco-hub/internal/record"
	"github.com/khanglvm/reco-hub/internal/version"
)

// annotationConfigOptional marks commands that run before a config file exists.
const annotationConfigOptional = "config-optional"

// RootOptions holds the global flags and the configuration they produce.
type RootOptions struct {
	ConfigPath string
	DataPath   string
	LedgerPath string
	Backend    string
	LogLevel   string

	// Config is populated before any subcommand runs.
	Config *config.Config
}

// NewRootCmd creates the root command with every subcommand attached.
func NewRootCmd() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "reco-hub",
		Short: "Browse product recommendations and record feedback",
		Long: `reco-hub serves per-user product recommendations from a model output
table, explains them with per-feature impacts, and records like/dislike
feedback in a local ledger.`,
		Version:       version.GetVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.ConfigPath, "config", "", "Config file (default ~/.reco-hub.yaml or $RECO_HUB_CONFIG)")
	flags.StringVar(&opts.DataPath, "data", "", "Recommendations CSV (default: built-in demo table)")
	flags.StringVar(&opts.LedgerPath, "ledger", "", "Feedback store path")
	flags.StringVar(&opts.Backend, "backend", "", "Feedback store backend: csv or sqlite")
	flags.StringVar(&opts.LogLevel, "log-level", "", "Log level: debug, info, warn, error, off")

	cmd.AddCommand(NewUsersCmd(opts))
	cmd.AddCommand(NewResolveCmd(opts))
	cmd.AddCommand(NewShowCmd(opts))
	cmd.AddCommand(NewExplainCmd(opts))
	cmd.AddCommand(NewVoteCmd(opts))
	cmd.AddCommand(NewFeedbackCmd(opts))
	cmd.AddCommand(NewExportCmd(opts))
	cmd.AddCommand(NewCheckCmd(opts))
	cmd.AddCommand(NewServeCmd(opts))
	cmd.AddCommand(NewConfigCmd(opts))
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// load reads configuration, applies flag overrides and configures logging.
func (o *RootOptions) load(cmd *cobra.Command) error {
	var (
		cfg *config.Config
		err error
	)
	switch {
	case o.ConfigPath != "" && cmd.Annotations[annotationConfigOptional] == "true":
		cfg, err = config.LoadOptional(o.ConfigPath)
	case o.ConfigPath != "":
		cfg, err = config.LoadFrom(o.ConfigPath)
	default:
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	if o.DataPath != "" {
		cfg.Data.RecommendationsPath = o.DataPath
	}
	if o.LedgerPath != "" {
		cfg.Ledger.Path = o.LedgerPath
	}
	if o.Backend != "" {
		cfg.Ledger.Backend = o.Backend
	}
	if o.LogLevel != "" {
		cfg.Logging.Level = o.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cmd.ErrOrStderr(),
	})

	o.Config = cfg
	return nil
}

// openLedger opens the configured feedback store. The returned close
// function releases backend resources.
func (o *RootOptions) openLedger() (*ledger.Ledger, func(), error) {
	path, err := o.Config.LedgerPath()
	if err != nil {
		return nil, nil, err
	}

	switch o.Config.Ledger.Backend {
	case config.BackendSQLite:
		table := ledger.NewSQLiteTable(path)
		return ledger.New(table), func() { table.Close() }, nil
	default:
		return ledger.New(ledger.NewCSVTable(path)), func() {}, nil
	}
}

// loadTable reads the recommendations table, or the demo table when no
// path is configured.
func (o *RootOptions) loadTable() (*record.Table, error) {
	path, err := o.Config.RecommendationsPath()
	if err != nil {
		return nil, err
	}
	if path == "" {
		logging.Debug().Msg("no recommendations file configured, using demo table")
		return record.SampleTable(), nil
	}
	return record.LoadTableFile(path)
}

// openService wires table, ledger and search into a dashboard service.
func (o *RootOptions) openService() (*dashboard.Service, func(), error) {
	table, err := o.loadTable()
	if err != nil {
		return nil, nil, err
	}

	l, closeLedger, err := o.openLedger()
	if err != nil {
		return nil, nil, err
	}

	svc, err := dashboard.New(table, l, dashboard.Options{
		TopFeatures: o.Config.Display.TopFeatures,
		RecentVotes: o.Config.Display.RecentVotes,
	})
	if err != nil {
		closeLedger()
		return nil, nil, err
	}

	return svc, func() {
		svc.Close()
		closeLedger()
	}, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// Package app provides the command line surface of gem-sources.
package app

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	otelglobal "go.opentelemetry.io/otel"

	manager "github.com/stacklok/gem-sources/internal/app"
	"github.com/stacklok/gem-sources/internal/config"
	"github.com/stacklok/gem-sources/internal/logger"
	"github.com/stacklok/gem-sources/internal/otel"
	"github.com/stacklok/gem-sources/internal/versions"
)

const formatJSON = "json"

// rootOptions holds the intent flags of the root command
type rootOptions struct {
	add        []string
	remove     []string
	check      bool
	init       bool
	dryRun     bool
	configPath string
}

// options converts the parsed flags into a run request
func (o *rootOptions) options(args []string) manager.Options {
	return manager.Options{
		Init:   o.init,
		Check:  o.check,
		Add:    o.add,
		Remove: o.remove,
		DryRun: o.dryRun,
		Args:   args,
	}
}

func (o *rootOptions) hasIntent() bool {
	return o.init || o.check || len(o.add) > 0 || len(o.remove) > 0
}

// NewRootCmd creates the gem-sources root command with its subcommands
func NewRootCmd() *cobra.Command {
	return newRootCmd(&rootOptions{})
}

func newRootCmd(opts *rootOptions) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "gem-sources [flags] [args...]",
		DisableAutoGenTag: true,
		SilenceUsage:      true,
		SilenceErrors:     true,
		Short:             "Manage gem sources as checked active and inactive lists",
		Long: `gem-sources keeps a file of gem sources split into active and inactive lists,
probes each source for reachability and keeps the sources registered with gem in step:
active sources are added and inactive ones removed.

Intents compose in a fixed order: init (or load), check, add, remove, sync, write.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !opts.hasIntent() {
				if len(args) > 0 {
					logger.Warnf("Ignoring arguments: %v", args)
				}
				return cmd.Help()
			}
			return runRoot(cmd, opts, args)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.String(config.KeySourcesFile, "", "Sources file (default $XDG_CONFIG_HOME/"+config.DefaultSourcesFileName+")")
	pf.String(config.KeyGemCommand, config.DefaultGemCommand, "Package manager executable")
	pf.Duration(config.KeyProbeTimeout, config.DefaultProbeTimeout, "Timeout of a single reachability probe")
	pf.Int(config.KeyProbeConcurrency, config.DefaultProbeConcurrency, "Number of sources probed in parallel")
	pf.String(config.KeyLogLevel, "", "Log level (debug, info, warn, error)")
	pf.Bool(config.KeyDebug, false, "Enable debug logging")
	pf.StringVar(&opts.configPath, "config", "", "Optional YAML file with settings")

	f := rootCmd.Flags()
	f.StringArrayVarP(&opts.add, "add", "a", nil, "Add a source; may be repeated")
	f.StringArrayVarP(&opts.remove, "remove", "r", nil, "Remove a source; may be repeated")
	f.BoolVarP(&opts.check, "check", "c", false, "Re-probe every source and reclassify it")
	f.BoolVarP(&opts.init, "init", "i", false, "Build the sources file from the sources gem knows")
	f.BoolVar(&opts.dryRun, "dry-run", false, "Probe and plan without changing gem or the sources file")

	rootCmd.AddCommand(newListCmd(opts))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func runRoot(cmd *cobra.Command, opts *rootOptions, args []string) error {
	m, err := newManager(cmd, opts)
	if err != nil {
		return err
	}

	report, err := m.Run(cmd.Context(), opts.options(args))
	if err != nil {
		return err
	}

	if report.Plan != nil {
		printPlan(cmd.OutOrStdout(), report)
		return nil
	}
	logger.Infof("%d active, %d inactive sources",
		len(report.Registry.Active()), len(report.Registry.Inactive()))
	return nil
}

// newManager resolves configuration and builds the orchestration manager
func newManager(cmd *cobra.Command, opts *rootOptions) (*manager.Manager, error) {
	loaderOpts := []config.Option{config.WithFlags(cmd.Flags())}
	if opts.configPath != "" {
		loaderOpts = append(loaderOpts, config.WithConfigPath(opts.configPath))
	}

	cfg, err := config.LoadConfig(loaderOpts...)
	if err != nil {
		return nil, err
	}
	logger.Initialize(cfg.LogLevel)
	logger.Debugf("Using sources file %s", cfg.SourcesFile)

	return manager.NewManager(
		manager.WithConfig(cfg),
		manager.WithTracer(otelglobal.Tracer(otel.TracerName)),
	)
}

func printPlan(w io.Writer, report *manager.Report) {
	for _, url := range report.Plan.ToAdd {
		_, _ = fmt.Fprintf(w, "would add %s\n", url)
	}
	for _, url := range report.Plan.ToRemove {
		_, _ = fmt.Fprintf(w, "would remove %s\n", url)
	}
	if report.Plan.Empty() {
		_, _ = fmt.Fprintln(w, "gem sources already up to date")
	}
}

func newListCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List known sources with their state and whether gem has them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := cmd.Flags().GetString("format")
			if err != nil {
				return err
			}

			m, err := newManager(cmd, opts)
			if err != nil {
				return err
			}
			entries, err := m.List(cmd.Context())
			if err != nil {
				return err
			}
			return renderEntries(cmd.OutOrStdout(), entries, format)
		},
	}
	cmd.Flags().String("format", "", "Output format (json)")
	return cmd
}

type entryJSON struct {
	URL   string `json:"url"`
	State string `json:"state"`
	Live  bool   `json:"live"`
}

func renderEntries(w io.Writer, entries []manager.Entry, format string) error {
	if format == formatJSON {
		out := make([]entryJSON, 0, len(entries))
		for _, e := range entries {
			out = append(out, entryJSON{URL: e.URL, State: e.State(), Live: e.Live})
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	table := tablewriter.NewWriter(w)
	table.Header("URL", "State", "Live")
	for _, e := range entries {
		live := "no"
		if e.Live {
			live = "yes"
		}
		if err := table.Append([]string{e.URL, e.State(), live}); err != nil {
			return fmt.Errorf("failed to render source %s: %w", e.URL, err)
		}
	}
	return table.Render()
}

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := versions.Get()
			format, err := cmd.Flags().GetString("format")
			if err != nil {
				return err
			}

			if format == formatJSON {
				output, err := json.MarshalIndent(info, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to format version info as JSON: %w", err)
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(output))
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), info.String())
			return err
		},
	}
	cmd.Flags().String("format", "", "Output format (json)")
	return cmd
}

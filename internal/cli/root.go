// Package cli implements the phasesync command line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/phaselab/phasesync/internal/config"
)

// RootOptions holds global flags and state shared by all subcommands.
type RootOptions struct {
	ConfigPath string

	// Config is loaded before any subcommand runs. Commands constructed
	// outside NewRootCommand may leave it nil and fall back to defaults.
	Config *config.Config
}

func (o *RootOptions) cfg() *config.Config {
	if o.Config == nil {
		return config.Default()
	}

	return o.Config
}

// NewRootCommand creates the root command for the phasesync CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "phasesync",
		Short: "phasesync - phase synchronization analysis",
		Long: `Phase synchronization analysis for epoched multichannel recordings.

Estimates PLV, iPLV, PLI, and wPLI between channel pairs, with optional
band-pass filtering, Welch spectra, plot rendering, and a browser-based
viewer. Epoch sets travel as long-format CSV files; gen produces
synthetic ones for trying the pipeline.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOrDefault(opts.ConfigPath)
			if err != nil {
				return WrapExitError(ExitCommandError, "load config", err)
			}

			opts.Config = cfg

			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "YAML config path (built-in defaults when empty)")

	cmd.AddCommand(NewGenCommand(opts))
	cmd.AddCommand(NewInfoCommand(opts))
	cmd.AddCommand(NewPSDCommand(opts))
	cmd.AddCommand(NewSyncCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))

	return cmd
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/phaselab/phasesync/internal/session"
	"github.com/phaselab/phasesync/internal/webview"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Listen string
	Band   string
	Order  int
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve <epochs.csv>",
		Short: "Serve the browser viewer for an epoch CSV",
		Long: `Serve the browser-based synchrony viewer.

Loads the epoch set once and exposes it on a local HTTP endpoint with a
small JSON API and a single-page viewer for switching bands, adding
synchrony traces, and rendering plots.

Example:
  phasesync serve demo.csv
  phasesync serve demo.csv --listen :9000 --band alpha`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Listen, "listen", "", "listen address (overrides config)")
	cmd.Flags().StringVarP(&opts.Band, "band", "b", "", "initial band preset name or low,high in Hz")
	cmd.Flags().IntVar(&opts.Order, "order", 0, "band-pass filter order (config default when 0)")

	return cmd
}

func runServe(opts *ServeOptions, path string, cmd *cobra.Command) error {
	cfg := opts.cfg()
	if opts.Listen != "" {
		cfg.Listen = opts.Listen
	}

	ep, err := loadEpochs(path)
	if err != nil {
		return err
	}

	order := opts.Order
	if order <= 0 {
		order = cfg.Filter.Order
	}

	sess, err := session.New(ep, session.WithFilterOrder(order))
	if err != nil {
		return WrapExitError(ExitCommandError, "session", err)
	}

	low, high, banded, err := resolveBand(cfg, opts.Band)
	if err != nil {
		return WrapExitError(ExitCommandError, "band", err)
	}

	if banded {
		if err := sess.SetBand(low, high); err != nil {
			return WrapExitError(ExitCommandError, "band-pass", err)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d trials x %d channels x %d samples from %s\n",
		ep.NumTrials(), ep.NumChannels(), ep.NumSamples(), path)

	app := webview.New(sess, cfg)
	if err := app.ListenAndServe(); err != nil {
		return WrapExitError(ExitCommandError, "serve", err)
	}

	return nil
}

package cli

import (
	"fmt"
	"math"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/phaselab/phasesync/internal/traceplot"
	"github.com/phaselab/phasesync/measure/psd"
)

// PSDOptions holds flags for the psd command.
type PSDOptions struct {
	*RootOptions
	Channel string
	Segment int
	Overlap int
	Plot    string
}

// NewPSDCommand creates the psd command.
func NewPSDCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PSDOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "psd <epochs.csv>",
		Short: "Welch power spectral density of one channel",
		Long: `Estimate the power spectral density of one channel with Welch's
method, averaged across trials.

Prints the spectral peak and the power inside each configured band,
relative to the total. With --plot the full spectrum is rendered to a
PNG, which helps pick band edges before running sync.

Example:
  phasesync psd demo.csv --channel ch0
  phasesync psd demo.csv --channel ch0 --segment 128 --plot spectrum.png`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPSD(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Channel, "channel", "c", "", "channel name (required)")
	cmd.Flags().IntVar(&opts.Segment, "segment", 0, "Welch segment length in samples (auto when 0)")
	cmd.Flags().IntVar(&opts.Overlap, "overlap", 0, "segment overlap in samples (half a segment when 0)")
	cmd.Flags().StringVar(&opts.Plot, "plot", "", "write spectrum plot to this PNG path")
	_ = cmd.MarkFlagRequired("channel")

	return cmd
}

func runPSD(opts *PSDOptions, path string, cmd *cobra.Command) error {
	cfg := opts.cfg()

	ep, err := loadEpochs(path)
	if err != nil {
		return err
	}

	ch, err := ep.ChannelIndex(opts.Channel)
	if err != nil {
		return WrapExitError(ExitCommandError, "channel", err)
	}

	var psdOpts []psd.Option
	if opts.Segment > 0 {
		psdOpts = append(psdOpts, psd.WithSegmentLength(opts.Segment))
	}

	if opts.Overlap > 0 {
		psdOpts = append(psdOpts, psd.WithOverlap(opts.Overlap))
	}

	sp, err := psd.Welch(ep, ch, psdOpts...)
	if err != nil {
		return WrapExitError(ExitCommandError, "welch", err)
	}

	out := cmd.OutOrStdout()

	peakHz, peakPower := sp.Peak()
	fmt.Fprintf(out, "%s: peak %.2f Hz (%.1f dB)\n\n", opts.Channel, peakHz, powerDB(peakPower))

	total, err := sp.BandPower(0, ep.SampleRate()/2)
	if err != nil {
		return WrapExitError(ExitCommandError, "band power", err)
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Band\tRange\tPower\tRel\n")
	fmt.Fprintf(tw, "----\t-----\t-----\t---\n")

	for _, name := range spectralBandOrder(cfg) {
		b := cfg.Bands[name]

		p, err := sp.BandPower(b.Low, b.High)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("band %s", name), err)
		}

		rel := 0.0
		if total > 0 {
			rel = 100 * p / total
		}

		fmt.Fprintf(tw, "%s\t%s\t%.4g\t%.1f%%\n", name, b, p, rel)
	}

	if err := tw.Flush(); err != nil {
		return WrapExitError(ExitCommandError, "write table", err)
	}

	if opts.Plot == "" {
		return nil
	}

	series := []traceplot.Series{{Label: opts.Channel, Times: sp.Freqs, Values: sp.PowerDB()}}

	err = traceplot.Save(series, opts.Plot,
		traceplot.WithTitle(fmt.Sprintf("Welch PSD, %s", opts.Channel)),
		traceplot.WithAxisLabels("frequency (Hz)", "power (dB)"),
		traceplot.WithFreeScale(),
	)
	if err != nil {
		return WrapExitError(ExitCommandError, "plot", err)
	}

	fmt.Fprintf(out, "\nwrote spectrum plot to %s\n", opts.Plot)

	return nil
}

func powerDB(p float64) float64 {
	if p < 1e-20 {
		p = 1e-20
	}

	return 10 * math.Log10(p)
}

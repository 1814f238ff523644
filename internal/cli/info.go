package cli

import (
	"fmt"
	"math"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-vecmath"
	"github.com/phaselab/phasesync/measure/psd"
)

// NewInfoCommand creates the info command.
func NewInfoCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <epochs.csv>",
		Short: "Describe an epoch CSV",
		Long: `Describe an epoch CSV.

Prints the tensor shape and timing, then one row per channel with
amplitude statistics pooled across trials and the spectral peak from a
Welch estimate.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runInfo(opts *RootOptions, path string, cmd *cobra.Command) error {
	ep, err := loadEpochs(path)
	if err != nil {
		return err
	}

	times := ep.Times()
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "%s: %d trials x %d channels x %d samples\n",
		path, ep.NumTrials(), ep.NumChannels(), ep.NumSamples())
	fmt.Fprintf(out, "rate %g Hz, samples span %g..%g s (%g s per trial)\n\n",
		ep.SampleRate(), times[0], times[len(times)-1], ep.Duration())

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Channel\tMean\tRMS\tPeak Abs\tPeak [Hz]\n")
	fmt.Fprintf(tw, "-------\t----\t---\t--------\t---------\n")

	for c := 0; c < ep.NumChannels(); c++ {
		flat := flattenChannel(ep, c)
		n := float64(len(flat))

		mean := vecmath.Sum(flat) / n
		rms := math.Sqrt(vecmath.DotProduct(flat, flat) / n)
		peak := vecmath.MaxAbs(flat)

		sp, err := psd.Welch(ep, c)
		if err != nil {
			return WrapExitError(ExitCommandError, "spectrum", err)
		}

		peakHz, _ := sp.Peak()

		name, err := ep.ChannelName(c)
		if err != nil {
			return WrapExitError(ExitCommandError, "channel", err)
		}

		fmt.Fprintf(tw, "%s\t%+.4f\t%.4f\t%.4f\t%.2f\n", name, mean, rms, peak, peakHz)
	}

	if err := tw.Flush(); err != nil {
		return WrapExitError(ExitCommandError, "write table", err)
	}

	return nil
}

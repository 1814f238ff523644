package cli

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/phaselab/phasesync/internal/session"
	"github.com/phaselab/phasesync/internal/traceplot"
	"github.com/phaselab/phasesync/measure/phase"
	"github.com/phaselab/phasesync/stats/trace"
)

// SyncOptions holds flags for the sync command.
type SyncOptions struct {
	*RootOptions
	Method string
	Pairs  []string
	Band   string
	Order  int
	NaN    bool
	Plot   string
	CSV    string
}

// NewSyncCommand creates the sync command.
func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SyncOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sync <epochs.csv>",
		Short: "Estimate phase synchronization between channel pairs",
		Long: `Estimate phase synchronization between channel pairs.

Each pair yields one synchrony trace, a per-sample value in [0, 1]
estimated across trials, summarized here by its distribution. Pairs are
named "ch1-ch2" using the channel names from the CSV; without --pairs
every unordered pair is analyzed. A pair that fails, for example over
an unknown channel name, is reported and skipped without discarding
the rest.

Example:
  phasesync sync demo.csv --method wpli --band alpha
  phasesync sync demo.csv --pairs Cz-Pz,Cz-Oz --band 8,12 --plot sync.png`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Method, "method", "m", "", "synchrony measure: plv, iplv, pli, wpli (config default when empty)")
	cmd.Flags().StringSliceVar(&opts.Pairs, "pairs", nil, "channel pairs as ch1-ch2 (every unordered pair when empty)")
	cmd.Flags().StringVarP(&opts.Band, "band", "b", "", "band preset name or low,high in Hz (broadband when empty)")
	cmd.Flags().IntVar(&opts.Order, "order", 0, "band-pass filter order (config default when 0)")
	cmd.Flags().BoolVar(&opts.NaN, "nan", false, "report undefined wPLI samples as NaN instead of 0")
	cmd.Flags().StringVar(&opts.Plot, "plot", "", "write trace plot to this PNG path")
	cmd.Flags().StringVar(&opts.CSV, "csv", "", "write traces to this CSV path")

	return cmd
}

func runSync(opts *SyncOptions, path string, cmd *cobra.Command) error {
	cfg := opts.cfg()

	methodName := opts.Method
	if methodName == "" {
		methodName = cfg.Method
	}

	method, err := phase.ParseMethod(methodName)
	if err != nil {
		return WrapExitError(ExitCommandError, "method", err)
	}

	ep, err := loadEpochs(path)
	if err != nil {
		return err
	}

	order := opts.Order
	if order <= 0 {
		order = cfg.Filter.Order
	}

	var metricOpts []phase.Option
	if opts.NaN {
		metricOpts = append(metricOpts, phase.WithZeroDenominator(phase.ZeroDenomNaN))
	}

	sess, err := session.New(ep,
		session.WithFilterOrder(order),
		session.WithMetricOptions(metricOpts...),
	)
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

	pairs, err := resolvePairs(ep, opts.Pairs)
	if err != nil {
		return WrapExitError(ExitCommandError, "pairs", err)
	}

	results := sess.ComputePairs(cmd.Context(), method, pairs)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s, %s, %d trials\n\n", method.Label(), sess.BandLabel(), ep.NumTrials())

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Pair\tMean\tMedian\tMin\tMax\tStdDev\tSamples\n")
	fmt.Fprintf(tw, "----\t----\t------\t---\t---\t------\t-------\n")

	failed := 0

	for _, res := range results {
		if res.Err != nil {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: pair %s: %v\n", res.Pair, res.Err)

			continue
		}

		sum, err := trace.Summarize(res.Trace.Values)
		if err != nil {
			fmt.Fprintf(tw, "%s\tundefined\t-\t-\t-\t-\t0\n", res.Pair)

			continue
		}

		fmt.Fprintf(tw, "%s\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\t%d\n",
			res.Pair, sum.Mean, sum.Median, sum.Min, sum.Max, sum.StdDev, sum.Count)
	}

	if err := tw.Flush(); err != nil {
		return WrapExitError(ExitCommandError, "write table", err)
	}

	traces := sess.Traces()

	if opts.Plot != "" && len(traces) > 0 {
		series := make([]traceplot.Series, len(traces))
		for i, tr := range traces {
			series[i] = traceplot.Series{Label: tr.Label(), Times: tr.Times, Values: tr.Values}
		}

		if err := traceplot.Save(series, opts.Plot, traceplot.WithTitle(method.Label())); err != nil {
			return WrapExitError(ExitCommandError, "plot", err)
		}

		fmt.Fprintf(out, "\nwrote trace plot to %s\n", opts.Plot)
	}

	if opts.CSV != "" && len(traces) > 0 {
		if err := writeTraceCSV(opts.CSV, traces); err != nil {
			return WrapExitError(ExitCommandError, "traces", err)
		}

		fmt.Fprintf(out, "wrote traces to %s\n", opts.CSV)
	}

	if failed == len(results) {
		return NewExitError(ExitFailure, "every pair failed")
	}

	if failed > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "%d of %d pairs failed\n", failed, len(results))
	}

	return nil
}

// writeTraceCSV exports traces in a wide layout, one column per trace.
// Undefined samples are left empty.
func writeTraceCSV(path string, traces []*session.Trace) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(f)

	header := make([]string, 0, len(traces)+1)
	header = append(header, "time")

	for _, tr := range traces {
		header = append(header, tr.Label())
	}

	if err := cw.Write(header); err != nil {
		f.Close()
		return err
	}

	record := make([]string, len(header))

	for i, tm := range traces[0].Times {
		record[0] = strconv.FormatFloat(tm, 'g', -1, 64)

		for j, tr := range traces {
			record[j+1] = ""
			if !math.IsNaN(tr.Values[i]) {
				record[j+1] = strconv.FormatFloat(tr.Values[i], 'g', -1, 64)
			}
		}

		if err := cw.Write(record); err != nil {
			f.Close()
			return err
		}
	}

	cw.Flush()

	if err := cw.Error(); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

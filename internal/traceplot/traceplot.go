// Package traceplot renders computed time courses as line plots for
// export. PNG and SVG are selected by file extension in Save, or by an
// explicit format in WriteTo for streaming over HTTP.
package traceplot

import (
	"errors"
	"fmt"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// ErrNoSeries is returned when there is nothing to plot.
var ErrNoSeries = errors.New("traceplot: at least one series required")

// Series is one labelled line: Values over Times. NaN and infinite
// values are dropped from the rendered line, so a wPLI trace under the
// NaN zero-denominator policy plots its defined samples only.
type Series struct {
	Label  string
	Times  []float64
	Values []float64
}

// Config defines configuration for rendering.
type Config struct {
	Title      string
	XLabel     string
	YLabel     string
	Width      vg.Length
	Height     vg.Length
	FixedScale bool // lock the y axis to [0, 1]
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns the defaults for synchrony traces: time on the
// x axis and the y axis locked to the unit range all four measures map
// into.
func DefaultConfig() Config {
	return Config{
		XLabel:     "time (s)",
		YLabel:     "synchrony",
		Width:      20 * vg.Centimeter,
		Height:     10 * vg.Centimeter,
		FixedScale: true,
	}
}

// WithTitle sets the plot title.
func WithTitle(title string) Option {
	return func(cfg *Config) { cfg.Title = title }
}

// WithAxisLabels sets the axis labels.
func WithAxisLabels(x, y string) Option {
	return func(cfg *Config) {
		cfg.XLabel = x
		cfg.YLabel = y
	}
}

// WithSize sets the canvas size. Non-positive dimensions are ignored.
func WithSize(width, height vg.Length) Option {
	return func(cfg *Config) {
		if width > 0 && height > 0 {
			cfg.Width = width
			cfg.Height = height
		}
	}
}

// WithFreeScale lets the y axis autoscale to the data, for quantities
// that are not confined to [0, 1] such as spectral power.
func WithFreeScale() Option {
	return func(cfg *Config) { cfg.FixedScale = false }
}

// ApplyOptions applies zero or more options to the default config.
func ApplyOptions(opts ...Option) Config {
	cfg := DefaultConfig()

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}

// Render builds the plot without writing it anywhere.
func Render(series []Series, opts ...Option) (*plot.Plot, error) {
	if len(series) == 0 {
		return nil, ErrNoSeries
	}

	cfg := ApplyOptions(opts...)

	p := plot.New()
	p.Title.Text = cfg.Title
	p.X.Label.Text = cfg.XLabel
	p.Y.Label.Text = cfg.YLabel
	p.Add(plotter.NewGrid())
	p.Legend.Top = true

	if cfg.FixedScale {
		p.Y.Min, p.Y.Max = 0, 1
	}

	for i, s := range series {
		if len(s.Times) != len(s.Values) {
			return nil, fmt.Errorf("traceplot: series %q: %d times for %d values",
				s.Label, len(s.Times), len(s.Values))
		}

		pts := make(plotter.XYs, 0, len(s.Values))
		for j, v := range s.Values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}

			pts = append(pts, plotter.XY{X: s.Times[j], Y: v})
		}

		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("traceplot: series %q: %w", s.Label, err)
		}

		line.Color = plotutil.Color(i)
		line.Width = vg.Points(1.5)

		p.Add(line)
		p.Legend.Add(s.Label, line)
	}

	return p, nil
}

// Save renders the series and writes the image to path. The format
// follows the file extension (.png, .svg, .pdf, ...).
func Save(series []Series, path string, opts ...Option) error {
	p, err := Render(series, opts...)
	if err != nil {
		return err
	}

	cfg := ApplyOptions(opts...)

	if err := p.Save(cfg.Width, cfg.Height, path); err != nil {
		return fmt.Errorf("traceplot: save %s: %w", path, err)
	}

	return nil
}

// WriteTo renders the series into w in the given format ("png", "svg").
func WriteTo(w io.Writer, series []Series, format string, opts ...Option) error {
	p, err := Render(series, opts...)
	if err != nil {
		return err
	}

	cfg := ApplyOptions(opts...)

	wt, err := p.WriterTo(cfg.Width, cfg.Height, format)
	if err != nil {
		return fmt.Errorf("traceplot: format %q: %w", format, err)
	}

	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("traceplot: write: %w", err)
	}

	return nil
}

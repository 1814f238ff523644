package webview

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/phaselab/phasesync/internal/session"
	"github.com/phaselab/phasesync/internal/traceplot"
	"github.com/phaselab/phasesync/measure/phase"
	"github.com/phaselab/phasesync/measure/psd"
	"github.com/phaselab/phasesync/stats/trace"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("webview: encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// jsonFloats marshals non-finite samples as null. JSON has no NaN, and
// wPLI traces under the NaN zero-denominator policy may carry them.
type jsonFloats []float64

func (f jsonFloats) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')

	for i, v := range f {
		if i > 0 {
			buf.WriteByte(',')
		}

		if math.IsNaN(v) || math.IsInf(v, 0) {
			buf.WriteString("null")
			continue
		}

		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}

		buf.Write(b)
	}

	buf.WriteByte(']')

	return buf.Bytes(), nil
}

type summaryJSON struct {
	Count   int     `json:"count"`
	Dropped int     `json:"dropped"`
	Mean    float64 `json:"mean"`
	Median  float64 `json:"median"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	StdDev  float64 `json:"stddev"`
	Q25     float64 `json:"q25"`
	Q75     float64 `json:"q75"`
}

type traceJSON struct {
	ID      string       `json:"id"`
	Method  string       `json:"method"`
	Ch1     string       `json:"ch1"`
	Ch2     string       `json:"ch2"`
	Band    string       `json:"band"`
	Label   string       `json:"label"`
	Times   []float64    `json:"times"`
	Values  jsonFloats   `json:"values"`
	Summary *summaryJSON `json:"summary,omitempty"`
	Created time.Time    `json:"created"`
}

func toTraceJSON(tr *session.Trace) traceJSON {
	out := traceJSON{
		ID:      tr.ID,
		Method:  tr.Method,
		Ch1:     tr.Ch1,
		Ch2:     tr.Ch2,
		Band:    tr.Band,
		Label:   tr.Label(),
		Times:   tr.Times,
		Values:  jsonFloats(tr.Values),
		Created: tr.Created,
	}

	// A trace that is undefined at every sample has no summary.
	if sum, err := trace.Summarize(tr.Values); err == nil {
		out.Summary = &summaryJSON{
			Count:   sum.Count,
			Dropped: sum.Dropped,
			Mean:    sum.Mean,
			Median:  sum.Median,
			Min:     sum.Min,
			Max:     sum.Max,
			StdDev:  sum.StdDev,
			Q25:     sum.Q25,
			Q75:     sum.Q75,
		}
	}

	return out
}

func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	http.ServeFileFS(w, r, content, "index.html")
}

type infoResponse struct {
	Trials        int      `json:"trials"`
	Channels      []string `json:"channels"`
	Samples       int      `json:"samples"`
	SampleRate    float64  `json:"sample_rate"`
	StartTime     float64  `json:"start_time"`
	Duration      float64  `json:"duration"`
	Band          string   `json:"band"`
	FilterOrder   int      `json:"filter_order"`
	Traces        int      `json:"traces"`
	DefaultMethod string   `json:"default_method"`
}

func (a *App) handleInfo(w http.ResponseWriter, r *http.Request) {
	ep := a.sess.Epochs()

	writeJSON(w, http.StatusOK, infoResponse{
		Trials:        ep.NumTrials(),
		Channels:      ep.ChannelNames(),
		Samples:       ep.NumSamples(),
		SampleRate:    ep.SampleRate(),
		StartTime:     ep.StartTime(),
		Duration:      ep.Duration(),
		Band:          a.sess.BandLabel(),
		FilterOrder:   a.sess.FilterOrder(),
		Traces:        len(a.sess.Traces()),
		DefaultMethod: a.cfg.Method,
	})
}

type methodJSON struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

func (a *App) handleMethods(w http.ResponseWriter, r *http.Request) {
	methods := phase.Methods()

	list := make([]methodJSON, len(methods))
	for i, m := range methods {
		list[i] = methodJSON{Name: m.String(), Label: m.Label()}
	}

	writeJSON(w, http.StatusOK, map[string]any{"methods": list})
}

type bandJSON struct {
	Name string  `json:"name"`
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

func (a *App) handleBands(w http.ResponseWriter, r *http.Request) {
	list := make([]bandJSON, 0, len(a.cfg.Bands))
	for _, name := range a.cfg.BandNames() {
		b := a.cfg.Bands[name]
		list = append(list, bandJSON{Name: name, Low: b.Low, High: b.High})
	}

	// Present in spectral order, not alphabetical.
	sort.Slice(list, func(i, j int) bool { return list[i].Low < list[j].Low })

	writeJSON(w, http.StatusOK, map[string]any{"bands": list})
}

type bandRequest struct {
	Name string  `json:"name"`
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

func (a *App) handleSetBand(w http.ResponseWriter, r *http.Request) {
	var req bandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	low, high := req.Low, req.High

	if req.Name != "" {
		b, err := a.cfg.Band(req.Name)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		low, high = b.Low, b.High
	}

	if err := a.sess.SetBand(low, high); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"band": a.sess.BandLabel(),
		"low":  low,
		"high": high,
	})
}

func (a *App) handleClearBand(w http.ResponseWriter, r *http.Request) {
	a.sess.ClearBand()

	writeJSON(w, http.StatusOK, map[string]any{"band": a.sess.BandLabel()})
}

func (a *App) handleListTraces(w http.ResponseWriter, r *http.Request) {
	traces := a.sess.Traces()

	list := make([]traceJSON, len(traces))
	for i, tr := range traces {
		list[i] = toTraceJSON(tr)
	}

	writeJSON(w, http.StatusOK, map[string]any{"traces": list})
}

type traceRequest struct {
	Method string `json:"method"`
	Ch1    string `json:"ch1"`
	Ch2    string `json:"ch2"`
}

func (a *App) handleAddTrace(w http.ResponseWriter, r *http.Request) {
	var req traceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	name := req.Method
	if name == "" {
		name = a.cfg.Method
	}

	m, err := phase.ParseMethod(name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	tr, err := a.sess.Compute(m, req.Ch1, req.Ch2)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	writeJSON(w, http.StatusCreated, toTraceJSON(tr))
}

func (a *App) handleResetTraces(w http.ResponseWriter, r *http.Request) {
	a.sess.Reset()
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) handlePlot(w http.ResponseWriter, r *http.Request) {
	traces := a.sess.Traces()
	if len(traces) == 0 {
		writeError(w, http.StatusNotFound, errors.New("no traces computed yet"))
		return
	}

	series := make([]traceplot.Series, len(traces))
	for i, tr := range traces {
		series[i] = traceplot.Series{Label: tr.Label(), Times: tr.Times, Values: tr.Values}
	}

	// Render to a buffer first so failures can still become an error
	// response instead of a truncated image.
	var buf bytes.Buffer
	if err := traceplot.WriteTo(&buf, series, "png", traceplot.WithTitle("phase synchrony")); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")

	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Printf("webview: write plot: %v", err)
	}
}

type psdResponse struct {
	Channel string    `json:"channel"`
	Band    string    `json:"band"`
	Freqs   []float64 `json:"freqs"`
	PowerDB []float64 `json:"power_db"`
}

func (a *App) handlePSD(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("channel")
	if name == "" {
		writeError(w, http.StatusBadRequest, errors.New("channel query parameter required"))
		return
	}

	ep := a.sess.Epochs()

	ch, err := ep.ChannelIndex(name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var opts []psd.Option

	if s := r.URL.Query().Get("segment"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("segment: %w", err))
			return
		}

		opts = append(opts, psd.WithSegmentLength(n))
	}

	sp, err := psd.Welch(ep, ch, opts...)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	writeJSON(w, http.StatusOK, psdResponse{
		Channel: name,
		Band:    a.sess.BandLabel(),
		Freqs:   sp.Freqs,
		PowerDB: sp.PowerDB(),
	})
}

package epochs

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// CSV interchange format: a metadata comment line followed by long-format
// rows, one sample per row.
//
//	# phasesync epochs v1 rate=256 start=-0.2 trials=40 channels=2 samples=512
//	trial,channel,sample,value
//	0,Cz,0,0.0314107591
//	...
//
// The channel column carries the channel name; channel-axis order is the
// order of first appearance. This is a plain interchange format for this
// tool, not a neuroscience file format.

const csvMagic = "phasesync epochs v1"

// Errors returned by CSV decoding.
var (
	ErrCSVHeader     = errors.New("epochs: missing or malformed metadata header")
	ErrCSVColumns    = errors.New("epochs: unexpected CSV columns")
	ErrCSVRow        = errors.New("epochs: malformed CSV row")
	ErrCSVIncomplete = errors.New("epochs: incomplete epoch data")
)

// WriteCSV encodes ep in the long-format CSV interchange layout.
func WriteCSV(w io.Writer, ep *Epochs) error {
	meta := fmt.Sprintf("# %s rate=%s start=%s trials=%d channels=%d samples=%d\n",
		csvMagic,
		strconv.FormatFloat(ep.SampleRate(), 'g', -1, 64),
		strconv.FormatFloat(ep.StartTime(), 'g', -1, 64),
		ep.NumTrials(), ep.NumChannels(), ep.NumSamples())

	if _, err := io.WriteString(w, meta); err != nil {
		return fmt.Errorf("epochs: write metadata: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"trial", "channel", "sample", "value"}); err != nil {
		return fmt.Errorf("epochs: write header: %w", err)
	}

	record := make([]string, 4)

	for t := 0; t < ep.NumTrials(); t++ {
		for c := 0; c < ep.NumChannels(); c++ {
			row := ep.data[t][c]
			for i, v := range row {
				record[0] = strconv.Itoa(t)
				record[1] = ep.names[c]
				record[2] = strconv.Itoa(i)
				record[3] = strconv.FormatFloat(v, 'g', -1, 64)

				if err := cw.Write(record); err != nil {
					return fmt.Errorf("epochs: write row: %w", err)
				}
			}
		}
	}

	cw.Flush()

	return cw.Error()
}

// ReadCSV decodes an epoch set written by WriteCSV. Every cell of the
// declared tensor must be present exactly once; missing or surplus rows,
// unknown columns, and malformed values fail with row context.
func ReadCSV(r io.Reader) (*Epochs, error) {
	br := bufio.NewReader(r)

	metaLine, err := br.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("epochs: read metadata: %w", err)
	}

	meta, err := parseMeta(metaLine)
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = 4

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCSVHeader, err)
	}

	want := []string{"trial", "channel", "sample", "value"}
	for i, col := range header {
		if col != want[i] {
			return nil, fmt.Errorf("%w: got %q, want %q", ErrCSVColumns, header, want)
		}
	}

	data := make([][][]float64, meta.trials)
	for t := range data {
		data[t] = make([][]float64, meta.channels)
		for c := range data[t] {
			data[t][c] = make([]float64, meta.samples)
		}
	}

	names := make([]string, 0, meta.channels)
	nameIdx := make(map[string]int, meta.channels)
	seen := make([]bool, meta.trials*meta.channels*meta.samples)
	filled := 0

	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCSVRow, err)
		}

		line, _ := cr.FieldPos(0)

		trial, err := strconv.Atoi(record[0])
		if err != nil || trial < 0 || trial >= meta.trials {
			return nil, fmt.Errorf("%w: line %d: bad trial %q", ErrCSVRow, line, record[0])
		}

		ch, ok := nameIdx[record[1]]
		if !ok {
			if record[1] == "" {
				return nil, fmt.Errorf("%w: line %d: empty channel name", ErrCSVRow, line)
			}

			if len(names) == meta.channels {
				return nil, fmt.Errorf("%w: line %d: channel %q exceeds declared count %d", ErrCSVRow, line, record[1], meta.channels)
			}

			ch = len(names)
			names = append(names, record[1])
			nameIdx[record[1]] = ch
		}

		sample, err := strconv.Atoi(record[2])
		if err != nil || sample < 0 || sample >= meta.samples {
			return nil, fmt.Errorf("%w: line %d: bad sample %q", ErrCSVRow, line, record[2])
		}

		value, err := strconv.ParseFloat(record[3], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: bad value %q", ErrCSVRow, line, record[3])
		}

		cell := (trial*meta.channels+ch)*meta.samples + sample
		if seen[cell] {
			return nil, fmt.Errorf("%w: line %d: duplicate cell trial=%d channel=%q sample=%d", ErrCSVRow, line, trial, record[1], sample)
		}

		seen[cell] = true
		filled++
		data[trial][ch][sample] = value
	}

	if filled != len(seen) {
		return nil, fmt.Errorf("%w: %d of %d cells present", ErrCSVIncomplete, filled, len(seen))
	}

	return New(data, meta.rate, WithChannelNames(names), WithStartTime(meta.start))
}

type csvMeta struct {
	rate     float64
	start    float64
	trials   int
	channels int
	samples  int
}

func parseMeta(line string) (csvMeta, error) {
	line = strings.TrimSpace(line)
	prefix := "# " + csvMagic

	if !strings.HasPrefix(line, prefix) {
		return csvMeta{}, fmt.Errorf("%w: first line %q", ErrCSVHeader, line)
	}

	meta := csvMeta{}
	required := map[string]bool{"rate": false, "start": false, "trials": false, "channels": false, "samples": false}

	for _, field := range strings.Fields(line[len(prefix):]) {
		key, value, ok := strings.Cut(field, "=")
		if !ok {
			return csvMeta{}, fmt.Errorf("%w: field %q", ErrCSVHeader, field)
		}

		var err error

		switch key {
		case "rate":
			meta.rate, err = strconv.ParseFloat(value, 64)
		case "start":
			meta.start, err = strconv.ParseFloat(value, 64)
		case "trials":
			meta.trials, err = strconv.Atoi(value)
		case "channels":
			meta.channels, err = strconv.Atoi(value)
		case "samples":
			meta.samples, err = strconv.Atoi(value)
		default:
			return csvMeta{}, fmt.Errorf("%w: unknown field %q", ErrCSVHeader, key)
		}

		if err != nil {
			return csvMeta{}, fmt.Errorf("%w: field %q: %v", ErrCSVHeader, field, err)
		}

		required[key] = true
	}

	for key, present := range required {
		if !present {
			return csvMeta{}, fmt.Errorf("%w: missing field %q", ErrCSVHeader, key)
		}
	}

	if meta.trials <= 0 || meta.channels <= 0 || meta.samples <= 0 {
		return csvMeta{}, fmt.Errorf("%w: non-positive tensor shape", ErrCSVHeader)
	}

	return meta, nil
}

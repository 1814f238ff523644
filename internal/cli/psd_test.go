package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/phaselab/phasesync/measure/psd"
)

func runPSDCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := &bytes.Buffer{}
	cmd := NewPSDCommand(&RootOptions{})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)

	err := cmd.Execute()

	return buf.String(), err
}

func psdFixture(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "data.csv")
	writeEpochsCSV(t, path, 4, 128, []float64{0, 0.7854, 1.5708}, 0.1)

	return path
}

func TestPSDTable(t *testing.T) {
	output, err := runPSDCmd(t, psdFixture(t), "--channel", "ch0")
	if err != nil {
		t.Fatalf("psd: %v", err)
	}

	if !strings.Contains(output, "ch0: peak 10.00 Hz") {
		t.Fatalf("output missing spectral peak:\n%s", output)
	}

	// All configured bands show up, delta before gamma.
	for _, want := range []string{"delta", "theta", "alpha", "beta", "gamma", "8-12 Hz", "%"} {
		if !strings.Contains(output, want) {
			t.Fatalf("output missing %q:\n%s", want, output)
		}
	}

	if strings.Index(output, "delta") > strings.Index(output, "gamma") {
		t.Fatalf("bands not in spectral order:\n%s", output)
	}
}

func TestPSDPlot(t *testing.T) {
	plotPath := filepath.Join(t.TempDir(), "spectrum.png")

	output, err := runPSDCmd(t, psdFixture(t), "--channel", "ch1", "--plot", plotPath)
	if err != nil {
		t.Fatalf("psd: %v", err)
	}

	if !strings.Contains(output, "wrote spectrum plot") {
		t.Fatalf("output = %q", output)
	}

	raw, err := os.ReadFile(plotPath)
	if err != nil {
		t.Fatalf("read plot: %v", err)
	}

	if !bytes.HasPrefix(raw, []byte("\x89PNG")) {
		t.Fatal("plot file is not a PNG")
	}
}

func TestPSDUnknownChannel(t *testing.T) {
	_, err := runPSDCmd(t, psdFixture(t), "--channel", "Oz")
	if err == nil {
		t.Fatal("want error for unknown channel")
	}

	if code := GetExitCode(err); code != ExitCommandError {
		t.Fatalf("exit code = %d, want %d", code, ExitCommandError)
	}
}

func TestPSDRequiresChannelFlag(t *testing.T) {
	_, err := runPSDCmd(t, psdFixture(t))
	if err == nil {
		t.Fatal("want error without --channel")
	}

	if !strings.Contains(err.Error(), "channel") {
		t.Fatalf("error = %v", err)
	}
}

func TestPSDBadSegment(t *testing.T) {
	_, err := runPSDCmd(t, psdFixture(t), "--channel", "ch0", "--segment", "7")
	if err == nil {
		t.Fatal("want error for odd segment length")
	}

	if !errors.Is(err, psd.ErrSegment) {
		t.Fatalf("error = %v, want ErrSegment", err)
	}

	if code := GetExitCode(err); code != ExitCommandError {
		t.Fatalf("exit code = %d, want %d", code, ExitCommandError)
	}
}

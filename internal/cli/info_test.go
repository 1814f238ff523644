package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runInfoCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := &bytes.Buffer{}
	cmd := NewInfoCommand(&RootOptions{})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)

	err := cmd.Execute()

	return buf.String(), err
}

func TestInfoDescribesEpochs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	writeEpochsCSV(t, path, 4, 128, []float64{0, 0.7854, 1.5708}, 0.1)

	output, err := runInfoCmd(t, path)
	if err != nil {
		t.Fatalf("info: %v", err)
	}

	for _, want := range []string{
		"4 trials x 3 channels x 128 samples",
		"rate 256 Hz",
		"Peak [Hz]",
		"ch0",
		"ch2",
	} {
		if !strings.Contains(output, want) {
			t.Fatalf("output missing %q:\n%s", want, output)
		}
	}

	// A 10 Hz carrier lands exactly on a 2 Hz bin grid.
	if !strings.Contains(output, "10.00") {
		t.Fatalf("output missing 10 Hz spectral peak:\n%s", output)
	}
}

func TestInfoMissingFile(t *testing.T) {
	_, err := runInfoCmd(t, filepath.Join(t.TempDir(), "absent.csv"))
	if err == nil {
		t.Fatal("want error for missing file")
	}

	if code := GetExitCode(err); code != ExitCommandError {
		t.Fatalf("exit code = %d, want %d", code, ExitCommandError)
	}
}

func TestInfoRejectsMalformedCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.csv")
	if err := os.WriteFile(path, []byte("not,an,epoch,file\n1,2,3,4\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	_, err := runInfoCmd(t, path)
	if err == nil {
		t.Fatal("want error for malformed file")
	}

	if code := GetExitCode(err); code != ExitCommandError {
		t.Fatalf("exit code = %d, want %d", code, ExitCommandError)
	}
}

package ui

import (
	"bytes"
	"errors"
	"testing"

	"go.uber.org/goleak"
)

func TestSpinnerNonTerminal(t *testing.T) {
	defer goleak.VerifyNone(t)

	var buf bytes.Buffer
	s := NewSpinner(&buf, "extracting archives")
	s.Start()
	s.Start()
	s.Update("building betaValue")
	s.Stop(true, "built 1 artifact")
	s.Stop(true, "ignored")

	want := "extracting archives...\n✓ built 1 artifact\n"
	if got := buf.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestRun(t *testing.T) {
	defer goleak.VerifyNone(t)

	var buf bytes.Buffer
	boom := errors.New("no mirrored file")
	if err := Run(&buf, "resolving", func() error { return boom }); err != boom {
		t.Fatalf("Run returned %v, want %v", err, boom)
	}
	if got, want := buf.String(), "resolving...\n✗ no mirrored file\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}

	buf.Reset()
	if err := Run(&buf, "resolving", func() error { return nil }); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got, want := buf.String(), "resolving...\n✓ done\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

package loggertest_test

import (
	"strings"
	"testing"

	"github.com/schmitthub/nugetsync/internal/iostreams"
	"github.com/schmitthub/nugetsync/internal/logger/loggertest"
)

func TestNew_CapturesOutput(t *testing.T) {
	tl := loggertest.New()

	tl.Info().Msg("hello world")

	output := tl.Output()
	if !strings.Contains(output, "hello world") {
		t.Errorf("Output() should contain logged message, got %q", output)
	}
}

func TestNew_CapturesDebug(t *testing.T) {
	tl := loggertest.New()

	tl.Debug().Msg("details")

	if !strings.Contains(tl.Output(), "details") {
		t.Errorf("debug lines should be captured, got %q", tl.Output())
	}
}

func TestNew_Reset(t *testing.T) {
	tl := loggertest.New()

	tl.Info().Msg("first message")
	tl.Reset()

	if tl.Output() != "" {
		t.Error("Output() should be empty after Reset()")
	}

	tl.Info().Msg("second message")
	if !strings.Contains(tl.Output(), "second message") {
		t.Error("Output() should contain message logged after Reset()")
	}
}

func TestNewNop_DiscardsOutput(t *testing.T) {
	tl := loggertest.NewNop()

	tl.Info().Msg("should be discarded")

	if tl.Output() != "" {
		t.Errorf("NewNop().Output() should be empty, got %q", tl.Output())
	}
}

func TestCount(t *testing.T) {
	tl := loggertest.New()

	tl.Info().Str("version", "1.0.0").Msg("skipped")
	tl.Info().Str("version", "2.0.0").Msg("skipped")
	tl.Warn().Str("version", "1.0.0").Msg("other")

	if got := tl.Count("skipped", nil); got != 2 {
		t.Errorf("Count(skipped) = %d, want 2", got)
	}
	if got := tl.Count("skipped", map[string]string{"version": "1.0.0"}); got != 1 {
		t.Errorf("Count(skipped, version=1.0.0) = %d, want 1", got)
	}
	if got := len(tl.Entries()); got != 3 {
		t.Errorf("Entries() len = %d, want 3", got)
	}
}

// Compile-time check: *TestLogger satisfies iostreams.Logger
var _ iostreams.Logger = (*loggertest.TestLogger)(nil)

package pit38

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
)

// testDiagnostics returns a collector that does not write to the test output.
func testDiagnostics() *Diagnostics {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewDiagnostics(logger)
}

func TestDiagnosticsCounts(t *testing.T) {
	diags := testDiagnostics()
	if !diags.Empty() {
		t.Fatal("new collector is not empty")
	}
	diags.Reportf(Oversell, "one")
	diags.Reportf(Oversell, "two")
	diags.ReportN(MissingRate, 3, "three at once")
	diags.ReportN(DataInconsistency, 0, "never recorded")

	if got := diags.Count(Oversell); got != 2 {
		t.Errorf("Count(Oversell) = %d, want 2", got)
	}
	if got := diags.Count(MissingRate); got != 3 {
		t.Errorf("Count(MissingRate) = %d, want 3", got)
	}
	if got := diags.Total(); got != 5 {
		t.Errorf("Total() = %d, want 5", got)
	}
	kinds := diags.Conditions()
	if len(kinds) != 2 || kinds[0] != MissingRate || kinds[1] != Oversell {
		t.Errorf("Conditions() = %v, want [missing-rate oversell]", kinds)
	}
}

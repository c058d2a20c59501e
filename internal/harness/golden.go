package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"
)

// AssertGolden compares data against testdata/golden/{name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func AssertGolden(t *testing.T, name string, data []byte) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
}

// AssertMismatchGolden compares the mismatch report of fr against a
// golden file. The fixture must fail.
func AssertMismatchGolden(t *testing.T, name string, fr FixtureResult) {
	t.Helper()

	if fr.Mismatch == nil {
		t.Fatalf("fixture #%d has no mismatch (outcome %s)", fr.Index, fr.Outcome)
	}
	AssertGolden(t, name, []byte(fr.Mismatch.Report()))
}

package harness

import (
	"fmt"
	"strings"
)

// Report renders the mismatch as the multi-line diagnostic printed by
// the check command.
func (m *Mismatch) Report() string {
	var b strings.Builder
	fmt.Fprintf(&b, "trace #%d (%s): mismatch at step %d\n", m.Fixture, m.Path, m.Step)
	fmt.Fprintf(&b, "action: %s\n", m.Action)

	fmt.Fprintf(&b, "state %s\n", verdict(m.StateDiffers))
	fmt.Fprintf(&b, "  actual:   %s\n", m.ActualState)
	fmt.Fprintf(&b, "  expected: %s\n", m.ExpectedState)

	fmt.Fprintf(&b, "error %s\n", verdict(m.ErrorDiffers))
	fmt.Fprintf(&b, "  actual:   %q\n", string(m.ActualError))
	fmt.Fprintf(&b, "  expected: %q\n", string(m.ExpectedError))
	return b.String()
}

func verdict(differs bool) string {
	if differs {
		return "differs"
	}
	return "matches"
}

package watch

import (
	"fmt"
	"strings"

	"slidesmith/pkg/admission"
)

// FormatSnapshot renders a snapshot as a plain text block. Used by the
// status command and by watch when stdout is not a TTY.
func FormatSnapshot(snapshot admission.Snapshot) string {
	var b strings.Builder
	limits := snapshot.Limits
	fmt.Fprintf(&b, "Rate limits: %d/minute, %d/hour\n", limits.PerMinute, limits.PerHour)
	fmt.Fprintf(&b, "Concurrency: %d global, %d per identity\n", limits.MaxGlobal, limits.MaxPerIdentity)
	fmt.Fprintf(&b, "Global pool: %d/%d available%s\n",
		snapshot.Global.Available, snapshot.Global.Capacity, exhaustedSuffix(snapshot.Global.Exhausted))
	if len(snapshot.Identities) == 0 {
		b.WriteString("No identity pools yet\n")
		return b.String()
	}
	fmt.Fprintf(&b, "%-32s %8s %10s %9s\n", "Identity", "In use", "Available", "Capacity")
	for _, pool := range snapshot.Identities {
		fmt.Fprintf(&b, "%-32s %8d %10d %9d%s\n",
			pool.Identity, pool.InUse, pool.Available, pool.Capacity, exhaustedSuffix(pool.Exhausted))
	}
	return b.String()
}

func exhaustedSuffix(exhausted bool) string {
	if exhausted {
		return " (exhausted)"
	}
	return ""
}

// Package invariant provides always-on assertion checks for the presence
// invariants the dispatcher and ambulance state machine must maintain
// (queue disjointness, availability-set consistency, legal preemption).
// The source guards these with a release-build macro that compiles them
// out; we keep them always on, since the core has no release/debug split.
package invariant

import "github.com/sirupsen/logrus"

// Check logs a fatal diagnostic and halts the process if cond is false.
func Check(cond bool, format string, args ...any) {
	if !cond {
		logrus.Fatalf("invariant violated: "+format, args...)
	}
}

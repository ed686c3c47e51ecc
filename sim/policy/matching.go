// Package policy isolates the dispatcher's triage-dependent matching table
// behind a small interface, mirroring the teacher's AdmissionPolicy
// interface/factory pattern. It intentionally has no dependency on the sim
// package — Triage and VehicleType are local duck-typed stand-ins for
// sim.TriageCode/sim.AmbulanceType (both plain strings), so the dispatcher
// converts at the call boundary. This keeps the matching table swappable
// and unit-testable without an import cycle back to the package that
// consumes it (sim.Dispatcher needs both policy and the entity types that
// policy would otherwise have to import).
package policy

import "fmt"

// Triage stands in for sim.TriageCode.
type Triage string

// VehicleType stands in for sim.AmbulanceType.
type VehicleType string

// SearchStep is one attempt in a triage's matching search order: look for
// an available ambulance of Primary type; if found, also try to pair it
// with a Pair-type vehicle (empty Pair means no pairing is attempted).
type SearchStep struct {
	Primary VehicleType
	Pair    VehicleType
}

// MatchingPolicy decides, for an incoming emergency's triage code, the
// ordered sequence of ambulance-type searches the dispatcher should try.
type MatchingPolicy interface {
	SearchOrder(triage Triage) []SearchStep
}

// TriagePolicy implements the default matching table (§4.4.3).
type TriagePolicy struct{}

// SearchOrder implements MatchingPolicy for TriagePolicy.
func (TriagePolicy) SearchOrder(triage Triage) []SearchStep {
	switch triage {
	case "RED":
		return []SearchStep{
			{Primary: "ALS", Pair: "MV"},
			{Primary: "BLS", Pair: "MV"},
		}
	case "YELLOW":
		return []SearchStep{
			{Primary: "ALS"},
			{Primary: "BLS"},
		}
	case "GREEN":
		return []SearchStep{
			{Primary: "BLS"},
			{Primary: "ALS"},
		}
	case "WHITE":
		return []SearchStep{
			{Primary: "BLS"},
		}
	default:
		// BLACK and any unrecognized code are never dispatched.
		return nil
	}
}

// NewMatchingPolicy creates a matching policy by name. Valid names:
// "triage" (the default table). Panics on unrecognized names, matching the
// teacher's NewAdmissionPolicy/NewRoutingPolicy factories.
func NewMatchingPolicy(name string) MatchingPolicy {
	switch name {
	case "", "triage":
		return TriagePolicy{}
	default:
		panic(fmt.Sprintf("unknown matching policy %q; valid policies: [triage]", name))
	}
}

package sim

import (
	"fmt"
	"hash/fnv"
	"math/rand"

	"gonum.org/v1/gonum/stat/distuv"
)

// SimulationKey uniquely identifies a reproducible simulation run. Two runs
// with the same SimulationKey and identical rosters/configuration MUST
// produce byte-identical persistence logs.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// Subsystem names partition the RNG so that, e.g., adding an emergency to
// the roster does not perturb the treatment-duration draws of unrelated
// emergencies.
const (
	SubsystemTreatment   = "treatment"
	SubsystemCallRed     = "dispatch.RED"
	SubsystemCallYellow  = "dispatch.YELLOW"
	SubsystemCallGreen   = "dispatch.GREEN"
	SubsystemCallWhite   = "dispatch.WHITE"
)

// SubsystemCallDelay returns the call-handling-delay subsystem name for a
// triage code, so RNG derivation stays 1:1 with the configured per-triage λ.
func SubsystemCallDelay(triage TriageCode) string {
	return fmt.Sprintf("dispatch.%s", triage)
}

// PartitionedRNG provides deterministic, isolated RNG instances per
// subsystem: masterSeed XOR fnv1a64(subsystemName). Not thread-safe; the
// kernel is single-threaded, so this is never accessed concurrently.
type PartitionedRNG struct {
	key        SimulationKey
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a SimulationKey.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:        key,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns a deterministically-seeded RNG for the named
// subsystem. The same name always returns the same cached *rand.Rand.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}
	derivedSeed := int64(p.key) ^ fnv1a64(name)
	rng := rand.New(rand.NewSource(derivedSeed))
	p.subsystems[name] = rng
	return rng
}

// Exponential draws one sample from an Exponential(lambda) distribution
// using the named subsystem's isolated RNG.
func (p *PartitionedRNG) Exponential(subsystem string, lambda float64) float64 {
	dist := distuv.Exponential{Rate: lambda, Src: p.ForSubsystem(subsystem)}
	return dist.Rand()
}

// Key returns the SimulationKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() SimulationKey {
	return p.key
}

func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}

package sim

import (
	"testing"

	"github.com/ems-sim/ems-sim/sim/policy"
	"github.com/ems-sim/ems-sim/sim/trace"
)

func TestEmergency_GenerateFiresAtTimestamp(t *testing.T) {
	k := NewKernel(1000)
	rng := NewPartitionedRNG(NewSimulationKey(1))
	d := NewDispatcher(k, NullRouter{}, rng, trace.NullSink{}, policy.TriagePolicy{}, nil)
	d.CallLambda = map[TriageCode]float64{TriageWhite: 1.0 / 480}

	e := NewEmergency("E1", "Torino", TriageWhite, Coordinate{}, 42, false, "", 200, 0)
	e.Generate(d)
	k.Run()

	if e.OccurringTime != 42 {
		t.Errorf("occurring_time = %d, want 42", e.OccurringTime)
	}
	if e.State == EmergencyUnscheduled {
		t.Error("emergency should have left the UNSCHEDULED state")
	}
}

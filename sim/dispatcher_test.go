package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ems-sim/ems-sim/sim/policy"
	"github.com/ems-sim/ems-sim/sim/trace"
)

// fixedRouter returns a constant travel duration/distance for every query,
// regardless of coordinates, so lifecycle tests don't depend on geography.
type fixedRouter struct {
	duration int64
	distance float64
}

func (r fixedRouter) ComputeDistances(sources, destinations []Coordinate) []Segment {
	out := make([]Segment, 0, len(sources)*len(destinations))
	for _, s := range sources {
		for _, d := range destinations {
			out = append(out, Segment{Start: s, End: d, Duration: r.duration, Distance: r.distance})
		}
	}
	return out
}

func (r fixedRouter) ComputeRoute(start, end Coordinate) []Segment {
	return []Segment{{Start: start, End: end, Duration: r.duration, Distance: r.distance}}
}

func newTestDispatcher(horizon int64) (*Kernel, *Dispatcher) {
	k := NewKernel(horizon)
	router := fixedRouter{duration: 300, distance: 5}
	rng := NewPartitionedRNG(NewSimulationKey(1))
	hospital := &Hospital{ID: "H1", Place: Coordinate{Lat: 1, Lon: 1}, Type: HospitalHub}
	d := NewDispatcher(k, router, rng, trace.NullSink{}, policy.TriagePolicy{}, []*Hospital{hospital})
	d.DistanceThresholdKM = 50
	d.TimeThresholdSeconds = 1200
	d.ServiceTimeThreshold = 600
	d.DischargingTime = 180
	d.CleaningTime = 600
	d.CleanupInterval = 43200
	d.Preemptable = true
	d.CallLambda = map[TriageCode]float64{TriageRed: 1.0 / 60, TriageYellow: 1.0 / 120, TriageGreen: 1.0 / 240, TriageWhite: 1.0 / 480}
	return k, d
}

func TestDispatcher_SoloAssignmentCompletesRescue(t *testing.T) {
	k, d := newTestDispatcher(100000)

	a := NewAmbulance("A1", "ALS unit", AmbulanceALS, Coordinate{Lat: 0, Lon: 0}, 0, 86400, 0)
	a.Shift(d, 0)

	e := NewEmergency("E1", "Turin", TriageRed, Coordinate{Lat: 0.1, Lon: 0.1}, 0, false, "", 200, 0)
	e.Timestamp = 10
	e.Generate(d)

	k.Run()

	require.Equal(t, EmergencyEnded, e.State)
	assert.Nil(t, a.CurrentEmergency, "ambulance should have cleared its current emergency")
	assert.Contains(t, []AmbulanceState{StateWaitingAtBase, StateUnavailable}, a.State)
}

func TestDispatcher_QueuesWhenNoAmbulanceAvailable(t *testing.T) {
	k, d := newTestDispatcher(1000)

	e := NewEmergency("E1", "Turin", TriageGreen, Coordinate{Lat: 0.1, Lon: 0.1}, 0, false, "", 200, 0)
	e.Timestamp = 10
	e.Generate(d)

	k.Run()

	require.Len(t, d.Waiting[TriageGreen], 1)
}

func TestDispatcher_HospitalTransportRecordsHospitalAndArrivalTime(t *testing.T) {
	k, d := newTestDispatcher(100000)

	a := NewAmbulance("A1", "BLS unit", AmbulanceBLS, Coordinate{Lat: 0, Lon: 0}, 0, 86400, 0)
	a.Shift(d, 0)

	e := NewEmergency("E1", "Turin", TriageYellow, Coordinate{Lat: 0.1, Lon: 0.1}, 0, true, HospitalHub, 200, 0)
	e.Timestamp = 10
	e.Generate(d)

	k.Run()

	require.NotNil(t, e.AssignedHospital)
	assert.Equal(t, "H1", e.AssignedHospital.ID)
	assert.NotEqual(t, Infinity, e.AtHospitalTime, "at_hospital_time should have been set")
}

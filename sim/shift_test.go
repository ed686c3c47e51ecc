package sim

import (
	"testing"

	"github.com/ems-sim/ems-sim/sim/policy"
	"github.com/ems-sim/ems-sim/sim/trace"
)

// TestAmbulance_OvernightShiftRecurrence grounds the shift-loop arithmetic
// directly on the source simulator's offset/current_daystart/current_daytime
// computation (§4.2): for an ambulance whose shift starts at 22:00 and ends
// at 06:00, with the simulation origin at local midnight (offset 0), the
// first on-duty window is clamped to [0, 21600) since the ambulance is
// already mid-shift at simulation start, and every subsequent occurrence
// advances by a full day relative to the shift's own start time.
func TestAmbulance_OvernightShiftRecurrence(t *testing.T) {
	k := NewKernel(3 * 86400)
	rng := NewPartitionedRNG(NewSimulationKey(1))
	d := NewDispatcher(k, NullRouter{}, rng, trace.NullSink{}, policy.TriagePolicy{}, nil)
	d.DistanceThresholdKM = 50
	d.TimeThresholdSeconds = 1200

	a := NewAmbulance("A1", "overnight", AmbulanceALS, Coordinate{}, 79200, 21600, 0)
	a.Shift(d, 0)

	var windows [][2]int64
	for _, at := range []int64{0, 21601, 79201, 108001, 165601, 194401} {
		t := at
		k.At(t).Subscribe(func() {
			windows = append(windows, [2]int64{a.StartDuty, a.EndDuty})
		})
	}
	k.Run()

	want := [][2]int64{
		{0, 21600},
		{0, 21600},
		{79200, 108000},
		{79200, 108000},
		{165600, 194400},
		{165600, 194400},
	}
	if len(windows) != len(want) {
		t.Fatalf("got %d observations, want %d", len(windows), len(want))
	}
	for i := range want {
		if windows[i] != want[i] {
			t.Errorf("observation %d = %v, want %v", i, windows[i], want[i])
		}
	}
}

func TestAmbulance_Is24HourNeverGoesOffDuty(t *testing.T) {
	k := NewKernel(200000)
	rng := NewPartitionedRNG(NewSimulationKey(1))
	d := NewDispatcher(k, NullRouter{}, rng, trace.NullSink{}, policy.TriagePolicy{}, nil)

	a := NewAmbulance("A1", "24h", AmbulanceALS, Coordinate{}, 0, 86400, 0)
	a.Shift(d, 0)
	k.Run()

	if a.State != StateWaitingAtBase {
		t.Errorf("state = %s, want WAITING_AT_BASE", a.State)
	}
	if a.EndDuty != k.Horizon {
		t.Errorf("end_duty = %d, want horizon %d", a.EndDuty, k.Horizon)
	}
}

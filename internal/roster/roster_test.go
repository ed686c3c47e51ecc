package roster

import (
	"strings"
	"testing"
	"time"

	"github.com/ems-sim/ems-sim/sim"
)

func TestParseAmbulances(t *testing.T) {
	input := strings.Join([]string{
		"A1 Central-ALS ALS 45.07,7.69 22:00-06:00",
		"A2 North-BLS BLS 45.10,7.70 08:00-20:00",
		"A3 Always-On MV 45.05,7.65 00:00-00:00",
		"",
	}, "\n")

	got, err := parseAmbulances(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parseAmbulances: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}

	if got[0].ShiftStart != 79200 || got[0].ShiftEnd != 21600 {
		t.Errorf("A1 shift = %d-%d, want 79200-21600", got[0].ShiftStart, got[0].ShiftEnd)
	}
	if !got[0].Overnight() {
		t.Error("A1 should be an overnight shift")
	}
	if !got[2].Is24Hour() {
		t.Error("A3 (start==end) should expand to a 24-hour shift")
	}
	if got[1].Type != sim.AmbulanceBLS {
		t.Errorf("A2 type = %s, want BLS", got[1].Type)
	}
}

func TestParseAmbulances_RejectsUnknownType(t *testing.T) {
	_, err := parseAmbulances(strings.NewReader("A1 Bad XYZ 45.07,7.69 08:00-20:00"))
	if err == nil {
		t.Fatal("expected an error for an unrecognized ambulance type")
	}
}

func TestParseHospitals(t *testing.T) {
	input := "H1 Molinette H 45.06,7.67\nH2 Spoke-A S 45.08,7.71\n"
	got, err := parseHospitals(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parseHospitals: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Type != sim.HospitalHub {
		t.Errorf("H1 type = %s, want HUB", got[0].Type)
	}
	if got[1].Index != 1 {
		t.Errorf("H2 index = %d, want 1", got[1].Index)
	}
}

func TestParseEmergencies(t *testing.T) {
	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(1))
	input := strings.Join([]string{
		"E1 Torino RED 45.07,7.69 - 2024-03-01 08:00:00 H H1",
		"E2 Torino WHITE 45.08,7.70 - 2024-03-01 10:30:00",
		"",
	}, "\n")

	result, err := parseEmergencies(strings.NewReader(input), time.Time{}, time.Time{}, rng)
	if err != nil {
		t.Fatalf("parseEmergencies: %v", err)
	}
	if len(result.Emergencies) != 2 {
		t.Fatalf("len = %d, want 2", len(result.Emergencies))
	}
	if !result.Emergencies[0].NeedsHospital {
		t.Error("E1 should need a hospital")
	}
	if result.Emergencies[0].NeededHospitalType != sim.HospitalHub {
		t.Errorf("E1 needed hospital type = %s, want HUB", result.Emergencies[0].NeededHospitalType)
	}
	if result.Emergencies[1].NeedsHospital {
		t.Error("E2 should not need a hospital")
	}
	if result.MaxCallTime.Before(result.MinCallTime) {
		t.Error("MaxCallTime should not be before MinCallTime")
	}

	ResolveTimestamps(result.Emergencies, result.MinCallTime)
	if result.Emergencies[0].Timestamp != 0 {
		t.Errorf("E1 timestamp relative to its own (earliest) call time = %d, want 0", result.Emergencies[0].Timestamp)
	}
	wantDelta := int64(2*3600 + 30*60)
	if result.Emergencies[1].Timestamp != wantDelta {
		t.Errorf("E2 timestamp = %d, want %d", result.Emergencies[1].Timestamp, wantDelta)
	}
}

func TestParseEmergencies_FiltersOutsideWindow(t *testing.T) {
	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(1))
	input := "E1 Torino RED 45.07,7.69 - 2024-03-01 08:00:00\nE2 Torino RED 45.07,7.69 - 2024-03-02 08:00:00\n"

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 1, 23, 59, 59, 0, time.UTC)

	result, err := parseEmergencies(strings.NewReader(input), start, end, rng)
	if err != nil {
		t.Fatalf("parseEmergencies: %v", err)
	}
	if len(result.Emergencies) != 1 {
		t.Fatalf("len = %d, want 1 (second call falls outside the window)", len(result.Emergencies))
	}
}

package trace

import "testing"

func TestNullSink_DiscardsWithoutPanicking(t *testing.T) {
	var s Sink = NullSink{}
	s.LogRescue(RescueRecord{Emergency: "E1", Ambulance: "A1"})
	s.LogAmbulanceEvent(AmbulanceEventRecord{Ambulance: "A1", State: "WAITING_AT_BASE"})
	if err := s.SetDatabase("ignored"); err != nil {
		t.Errorf("SetDatabase() = %v, want nil", err)
	}
}

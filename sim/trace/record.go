// Package trace is the persistence adapter (§6 of the specification): a
// fire-and-forget sink for completed rescues and ambulance state
// transitions. This package has no dependency on the sim package's
// scheduling machinery — it stores and writes plain data.
package trace

// RescueRecord is a completed rescue: who dispatched which vehicle, when,
// and to which hospital (if any).
type RescueRecord struct {
	Emergency    string
	Ambulance    string
	Hospital     string // empty if the rescue did not require hospitalization
	Triage       string
	CallTime     int64
	StartTime    int64
	AtEmergency  int64
	AtHospital   int64 // zero if Hospital is empty
}

// AmbulanceEventRecord is one ambulance state transition, optionally tied
// to the emergency it was serving at the time.
type AmbulanceEventRecord struct {
	Ambulance string
	Emergency string // empty outside an active rescue
	State     string
	Time      int64
}

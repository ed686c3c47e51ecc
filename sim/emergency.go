package sim

import "time"

// Emergency is the mutable, process-owned state of one incoming call.
// Dispatcher and ambulance code hold non-owning references.
type Emergency struct {
	ID           string
	Municipality string
	Triage       TriageCode
	Place        Coordinate
	Timestamp    int64     // seconds since the simulation origin
	CallTime     time.Time // original wall-clock timestamp, for logging only

	NeedsHospital       bool
	NeededHospitalType  HospitalType
	TreatmentDuration   int64 // sampled at creation: 200 + Exp(1/300)

	OccurringTime     int64
	StartServingTime  int64
	ReachingTime      int64
	AtHospitalTime    int64

	State            EmergencyState
	AssignedHospital *Hospital

	// Index is this emergency's position in the process-wide roster.
	Index int
}

// NewEmergency returns an Emergency with every temporal field except
// Timestamp at the Infinity sentinel; Generate sets OccurringTime when the
// call fires.
func NewEmergency(id, municipality string, triage TriageCode, place Coordinate, timestamp int64, needsHospital bool, neededType HospitalType, treatmentDuration int64, index int) *Emergency {
	return &Emergency{
		ID:                 id,
		Municipality:       municipality,
		Triage:             triage,
		Place:              place,
		Timestamp:          timestamp,
		NeedsHospital:      needsHospital,
		NeededHospitalType: neededType,
		TreatmentDuration:  treatmentDuration,
		OccurringTime:      Infinity,
		StartServingTime:   Infinity,
		ReachingTime:       Infinity,
		AtHospitalTime:     Infinity,
		State:              EmergencyUnscheduled,
		Index:              index,
	}
}

// ResetServing resets StartServingTime to the sentinel, as happens when a
// dispatched-but-not-yet-arrived emergency is preempted back to waiting.
func (e *Emergency) ResetServing() {
	e.StartServingTime = Infinity
}

package sim

// Ambulance is the mutable, process-owned state of one vehicle. Dispatcher
// and roster code hold non-owning references. These fields are mutated by
// the ambulance's lifecycle process (shift.go, rescue.go) and by the
// dispatcher's assign/assignPair when it hands the vehicle a rescue.
type Ambulance struct {
	ID          string
	Description string
	Type        AmbulanceType
	Base        Coordinate

	// ShiftStart/ShiftEnd are daytime offsets in seconds from midnight.
	// ShiftStart < ShiftEnd: dayshift. ShiftStart > ShiftEnd: overnight.
	// ShiftEnd - ShiftStart == 86400: 24-hour ambulance.
	ShiftStart int64
	ShiftEnd   int64

	// Index is this ambulance's position in the process-wide roster,
	// used for stable iteration order.
	Index int

	State           AmbulanceState
	CurrentPosition Coordinate
	CurrentSegment  *Segment
	CurrentRoute    []Segment // lazily materialized, cleared by travelTo
	Moving          bool
	TravelStart     int64
	TravelTime      int64

	StartDuty int64
	EndDuty   int64

	CurrentEmergency *Emergency

	// RescueFinishedSignal and PreemptSignal are reusable latches: fired
	// once, then replaced with a fresh Event for the next cycle.
	RescueFinishedSignal *Event
	PreemptSignal        *Event
}

// NewAmbulance returns an Ambulance ready to enter its shift loop.
func NewAmbulance(id, description string, atype AmbulanceType, base Coordinate, shiftStart, shiftEnd int64, index int) *Ambulance {
	return &Ambulance{
		ID:                   id,
		Description:          description,
		Type:                 atype,
		Base:                 base,
		ShiftStart:           shiftStart,
		ShiftEnd:             shiftEnd,
		Index:                index,
		State:                StateUnavailable,
		CurrentPosition:      base,
		RescueFinishedSignal: NewEvent(),
		PreemptSignal:        NewEvent(),
	}
}

// Is24Hour reports whether this ambulance's shift spans the full day.
func (a *Ambulance) Is24Hour() bool {
	return a.ShiftEnd-a.ShiftStart == 86400
}

// Overnight reports whether this ambulance's shift crosses midnight.
func (a *Ambulance) Overnight() bool {
	return a.ShiftStart > a.ShiftEnd
}

package sim

// Hospital is immutable after roster load and held in a process-wide
// ordered sequence; its Index is its position in that sequence.
// Hospital-selection ties go to the hospital earlier in that sequence (§4.3).
type Hospital struct {
	ID          string
	Description string
	Place       Coordinate
	Type        HospitalType
	Index       int
}

// Compatible reports whether this hospital can receive an emergency that
// needs the given hospital type: an exact type match, or any non-PEDIATRIC
// hospital when the emergency asks for SPOKE.
func (h *Hospital) Compatible(needed HospitalType) bool {
	if h.Type == needed {
		return true
	}
	if needed == HospitalSpoke && h.Type != HospitalPediatric {
		return true
	}
	return false
}

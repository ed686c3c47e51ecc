// Package roster loads the whitespace/line-delimited ambulance, hospital
// and emergency rosters (§6 of the specification) into sim entities. The
// text formats are grounded directly on the operator>> overloads in the
// original simulator's ambulance.cpp/hospital.cpp/emergency.cpp/routing.cpp.
package roster

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ems-sim/ems-sim/sim"
)

// parseCoordinate parses a "lat,lon" token into a sim.Coordinate.
func parseCoordinate(tok string) (sim.Coordinate, error) {
	parts := strings.SplitN(tok, ",", 2)
	if len(parts) != 2 {
		return sim.Coordinate{}, fmt.Errorf("malformed coordinate %q: want lat,lon", tok)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return sim.Coordinate{}, fmt.Errorf("malformed coordinate %q: %w", tok, err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return sim.Coordinate{}, fmt.Errorf("malformed coordinate %q: %w", tok, err)
	}
	return sim.Coordinate{Lat: lat, Lon: lon}, nil
}

// parseShiftWindow parses an "HH:MM-HH:MM" token into shift_start/shift_end
// offsets in seconds from midnight.
func parseShiftWindow(tok string) (start, end int64, err error) {
	parts := strings.SplitN(tok, "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed shift window %q: want HH:MM-HH:MM", tok)
	}
	start, err = parseClock(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("malformed shift window %q: %w", tok, err)
	}
	end, err = parseClock(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("malformed shift window %q: %w", tok, err)
	}
	return start, end, nil
}

func parseClock(tok string) (int64, error) {
	parts := strings.SplitN(tok, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("malformed clock %q: want HH:MM", tok)
	}
	hours, err := strconv.ParseUint(strings.TrimSpace(parts[0]), 10, 32)
	if err != nil {
		return 0, err
	}
	minutes, err := strconv.ParseUint(strings.TrimSpace(parts[1]), 10, 32)
	if err != nil {
		return 0, err
	}
	return int64(hours*60+minutes) * 60, nil
}

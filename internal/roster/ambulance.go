package roster

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ems-sim/ems-sim/sim"
)

// LoadAmbulances reads one ambulance per non-blank line: id, description
// (no internal whitespace), type (ALS/BLS/MV), base as "lat,lon", and a
// shift window as "HH:MM-HH:MM". A window with start==end means a
// 24-hour ambulance; it is expanded to shift_end = shift_start + 86400.
func LoadAmbulances(path string) ([]*sim.Ambulance, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ambulance roster: %w", err)
	}
	defer f.Close()
	return parseAmbulances(f)
}

func parseAmbulances(r io.Reader) ([]*sim.Ambulance, error) {
	var out []*sim.Ambulance
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 5 {
			return nil, fmt.Errorf("malformed ambulance line %q: want 5 fields, got %d", line, len(fields))
		}
		id, description, typeTok, baseTok, shiftTok := fields[0], fields[1], fields[2], fields[3], fields[4]

		atype, err := sim.ParseAmbulanceType(typeTok)
		if err != nil {
			return nil, fmt.Errorf("ambulance %s: %w", id, err)
		}
		base, err := parseCoordinate(baseTok)
		if err != nil {
			return nil, fmt.Errorf("ambulance %s: %w", id, err)
		}
		start, end, err := parseShiftWindow(shiftTok)
		if err != nil {
			return nil, fmt.Errorf("ambulance %s: %w", id, err)
		}
		if start == end {
			end = start + 86400
		}

		out = append(out, sim.NewAmbulance(id, description, atype, base, start, end, len(out)))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

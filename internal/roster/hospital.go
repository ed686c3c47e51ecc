package roster

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ems-sim/ems-sim/sim"
)

// LoadHospitals reads one hospital per non-blank line: id, description,
// type token (H/S/PPI/K), and place as "lat,lon".
func LoadHospitals(path string) ([]*sim.Hospital, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open hospital roster: %w", err)
	}
	defer f.Close()
	return parseHospitals(f)
}

func parseHospitals(r io.Reader) ([]*sim.Hospital, error) {
	var out []*sim.Hospital
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 4 {
			return nil, fmt.Errorf("malformed hospital line %q: want 4 fields, got %d", line, len(fields))
		}
		id, description, typeTok, placeTok := fields[0], fields[1], fields[2], fields[3]

		htype, err := sim.ParseHospitalType(typeTok)
		if err != nil {
			return nil, fmt.Errorf("hospital %s: %w", id, err)
		}
		place, err := parseCoordinate(placeTok)
		if err != nil {
			return nil, fmt.Errorf("hospital %s: %w", id, err)
		}

		out = append(out, &sim.Hospital{
			ID:          id,
			Description: description,
			Place:       place,
			Type:        htype,
			Index:       len(out),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

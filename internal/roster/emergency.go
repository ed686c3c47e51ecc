package roster

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ems-sim/ems-sim/sim"
)

const emergencyTimeLayout = "2006-01-02 15:04:05"

// LoadResult bundles the parsed emergencies with the observed call-time
// span, used for horizon auto-detection when the configuration does not
// pin down an explicit start/end (§6, §4.5).
type LoadResult struct {
	Emergencies []*sim.Emergency
	MinCallTime time.Time
	MaxCallTime time.Time
}

// LoadEmergencies reads one emergency per non-blank line: id, municipality
// (no internal whitespace), triage code, place as "lat,lon", an ignored
// token, a date ("YYYY-MM-DD") and a time ("HH:MM:SS"), and an optional
// trailing "neededHospitalType actualHospitalID" pair. Calls outside
// [start, end] are dropped; pass a zero start/end to keep everything and
// let the caller derive the horizon from MinCallTime/MaxCallTime. A line
// that cannot be parsed is skipped with a warning.
//
// rng samples each emergency's treatment duration (200 + Exp(1/300)) at
// load time, matching the source's per-emergency distribution draw at
// construction rather than at dispatch time.
func LoadEmergencies(path string, start, end time.Time, rng *sim.PartitionedRNG) (LoadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return LoadResult{}, fmt.Errorf("open emergency roster: %w", err)
	}
	defer f.Close()
	return parseEmergencies(f, start, end, rng)
}

func parseEmergencies(r io.Reader, start, end time.Time, rng *sim.PartitionedRNG) (LoadResult, error) {
	var result LoadResult
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 7 {
			logrus.Warnf("skipping malformed emergency line %d %q: want at least 7 fields, got %d", lineNo, line, len(fields))
			continue
		}
		id, municipality, triageTok, placeTok := fields[0], fields[1], fields[2], fields[3]
		// fields[4] is an unused token in the source format (a column the
		// original emergency export always writes but never reads back).
		dateTok, timeTok := fields[5], fields[6]

		triage, err := sim.ParseTriageCode(triageTok)
		if err != nil {
			logrus.Warnf("skipping emergency %s (line %d): %v", id, lineNo, err)
			continue
		}
		place, err := parseCoordinate(placeTok)
		if err != nil {
			logrus.Warnf("skipping emergency %s (line %d): %v", id, lineNo, err)
			continue
		}
		callTime, err := time.Parse(emergencyTimeLayout, dateTok+" "+timeTok)
		if err != nil {
			logrus.Warnf("skipping emergency %s (line %d): malformed timestamp %q %q: %v", id, lineNo, dateTok, timeTok, err)
			continue
		}

		if !start.IsZero() && callTime.Before(start) {
			continue
		}
		if !end.IsZero() && callTime.After(end) {
			continue
		}
		if result.MinCallTime.IsZero() || callTime.Before(result.MinCallTime) {
			result.MinCallTime = callTime
		}
		if result.MaxCallTime.IsZero() || callTime.After(result.MaxCallTime) {
			result.MaxCallTime = callTime
		}

		needsHospital := false
		neededType := sim.HospitalType("")
		if len(fields) >= 8 {
			neededType, err = sim.ParseHospitalType(fields[7])
			if err != nil {
				logrus.Warnf("skipping emergency %s (line %d): %v", id, lineNo, err)
				continue
			}
			needsHospital = true
			// fields[8], if present, is the actual (historical) hospital
			// the patient was taken to. The simulator re-derives its own
			// assignment (§4.3) and never reads this column back.
		}

		treatmentDuration := int64(200 + rng.Exponential(sim.SubsystemTreatment, 1.0/300.0))

		result.Emergencies = append(result.Emergencies, sim.NewEmergency(
			id, municipality, triage, place, 0, needsHospital, neededType, treatmentDuration, len(result.Emergencies),
		))
		// Timestamp (seconds since simulation origin) is filled in once the
		// caller knows the resolved origin; see ResolveTimestamps.
		result.Emergencies[len(result.Emergencies)-1].CallTime = callTime
	}
	if err := scanner.Err(); err != nil {
		return LoadResult{}, err
	}
	return result, nil
}

// ResolveTimestamps fixes every emergency's Timestamp relative to origin,
// once the simulation's start time is known (it may itself have been
// derived from MinCallTime when the configuration left it unset).
func ResolveTimestamps(emergencies []*sim.Emergency, origin time.Time) {
	for _, e := range emergencies {
		e.Timestamp = int64(e.CallTime.Sub(origin).Seconds())
	}
}

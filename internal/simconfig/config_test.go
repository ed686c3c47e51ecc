package simconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_OverridesDefaultsAndKeepsOmittedFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "seed: 99\nambulance_roster: ambulances.txt\nhospital_roster: hospitals.txt\nemergency_roster: emergencies.txt\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Seed != 99 {
		t.Errorf("Seed = %d, want 99", cfg.Seed)
	}
	if cfg.DistanceThresholdKM != Default().DistanceThresholdKM {
		t.Error("omitted field should keep its default")
	}
}

func TestLoad_RejectsUnknownFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("seedd: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Load should reject an unknown field (strict decoding)")
	}
}

func TestValidate_RequiresRosterPaths(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err == nil {
		t.Error("Validate should fail without roster paths")
	}
	cfg.AmbulanceRoster = "a.txt"
	cfg.HospitalRoster = "h.txt"
	cfg.EmergencyRoster = "e.txt"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestValidate_RejectsMalformedStartTime(t *testing.T) {
	cfg := Default()
	cfg.AmbulanceRoster, cfg.HospitalRoster, cfg.EmergencyRoster = "a", "h", "e"
	cfg.StartTime = "not-a-time"
	if err := cfg.Validate(); err == nil {
		t.Error("Validate should reject a malformed start_time")
	}
}

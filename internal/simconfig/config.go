// Package simconfig loads the EMS simulation's YAML configuration file,
// mirroring the strict-decoding style the CLI uses for its own defaults
// file: unknown fields are a hard error rather than silently ignored.
package simconfig

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full simulation configuration (§A.2 / §6). Zero-value
// StartTime/EndTime mean "derive the horizon from the emergency roster"
// (§4.5's min/max call time expansion).
type Config struct {
	Seed int64 `yaml:"seed"`

	StartTime string `yaml:"start_time"` // "2006-01-02 15:04:05", empty to auto-detect
	EndTime   string `yaml:"end_time"`   // same layout, empty to auto-detect

	AmbulanceRoster string `yaml:"ambulance_roster"`
	HospitalRoster  string `yaml:"hospital_roster"`
	EmergencyRoster string `yaml:"emergency_roster"`

	RouterBaseURL string `yaml:"router_base_url"`

	MatchingPolicy string `yaml:"matching_policy"`

	DistanceThresholdKM  float64 `yaml:"distance_threshold_km"`
	TimeThresholdSeconds int64   `yaml:"time_threshold_seconds"`
	ServiceTimeThreshold int64   `yaml:"service_time_threshold_seconds"`
	DischargingTime      int64   `yaml:"discharging_time_seconds"`
	CleaningTime         int64   `yaml:"cleaning_time_seconds"`
	CleanupInterval      int64   `yaml:"cleanup_interval_seconds"`
	Preemptable          bool    `yaml:"preemptable"`

	CallLambdaRed    float64 `yaml:"call_lambda_red"`
	CallLambdaYellow float64 `yaml:"call_lambda_yellow"`
	CallLambdaGreen  float64 `yaml:"call_lambda_green"`
	CallLambdaWhite  float64 `yaml:"call_lambda_white"`

	DatabasePath string `yaml:"database_path"` // empty disables persistence
}

// Default returns the configuration's defaults, matching the original
// simulator's compiled-in constants (app.cpp).
func Default() Config {
	return Config{
		Seed:                 42,
		MatchingPolicy:       "triage",
		DistanceThresholdKM:  20,
		TimeThresholdSeconds: 2700,
		ServiceTimeThreshold: 1080,
		DischargingTime:      180,
		CleaningTime:         600,
		CleanupInterval:      43200,
		Preemptable:          true,
		CallLambdaRed:        1.0 / 253,
		CallLambdaYellow:     1.0 / 367,
		CallLambdaGreen:      1.0 / 688,
		CallLambdaWhite:      1.0 / 1188,
	}
}

// Load reads and strictly decodes the YAML file at path over Default(),
// so an omitted field keeps its default rather than zeroing out.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects configurations that cannot possibly run.
func (c Config) Validate() error {
	if c.AmbulanceRoster == "" {
		return fmt.Errorf("ambulance_roster is required")
	}
	if c.HospitalRoster == "" {
		return fmt.Errorf("hospital_roster is required")
	}
	if c.EmergencyRoster == "" {
		return fmt.Errorf("emergency_roster is required")
	}
	if c.DistanceThresholdKM <= 0 {
		return fmt.Errorf("distance_threshold_km must be positive")
	}
	if c.TimeThresholdSeconds <= 0 {
		return fmt.Errorf("time_threshold_seconds must be positive")
	}
	if _, err := c.parseStartTime(); err != nil {
		return err
	}
	if _, err := c.parseEndTime(); err != nil {
		return err
	}
	return nil
}

const configTimeLayout = "2006-01-02 15:04:05"

// parseStartTime returns the zero time if StartTime is unset, signaling
// auto-detection from the emergency roster.
func (c Config) parseStartTime() (time.Time, error) {
	if c.StartTime == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(configTimeLayout, c.StartTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed start_time %q: %w", c.StartTime, err)
	}
	return t, nil
}

func (c Config) parseEndTime() (time.Time, error) {
	if c.EndTime == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(configTimeLayout, c.EndTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed end_time %q: %w", c.EndTime, err)
	}
	return t, nil
}

// ParsedStartTime returns the parsed start time, or the zero time if unset.
func (c Config) ParsedStartTime() time.Time {
	t, _ := c.parseStartTime()
	return t
}

// ParsedEndTime returns the parsed end time, or the zero time if unset.
func (c Config) ParsedEndTime() time.Time {
	t, _ := c.parseEndTime()
	return t
}

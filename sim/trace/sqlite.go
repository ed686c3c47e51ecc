package trace

import (
	"database/sql"
	"fmt"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/sirupsen/logrus"
)

// SQLiteSink persists rescue and ambulance-event records to a SQLite file,
// using the pure-Go, cgo-free ncruces/go-sqlite3 driver (no system SQLite
// dependency). Write failures are logged once and dropped, never returned,
// matching the fire-and-forget contract of Sink.
type SQLiteSink struct {
	db *sql.DB
}

// NewSQLiteSink opens (creating if absent) the SQLite file at path and
// ensures the schema exists.
func NewSQLiteSink(path string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database %s: %w", path, err)
	}
	s := &SQLiteSink{db: db}
	if err := s.createSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteSink) createSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS rescue (
			emergency    TEXT NOT NULL,
			ambulance    TEXT NOT NULL,
			hospital     TEXT,
			triage       TEXT NOT NULL,
			call         INTEGER NOT NULL,
			start        INTEGER NOT NULL,
			at_emergency INTEGER NOT NULL,
			at_hospital  INTEGER,
			PRIMARY KEY (emergency, ambulance)
		);
		CREATE TABLE IF NOT EXISTS ambulance_event (
			ambulance TEXT NOT NULL,
			emergency TEXT,
			state     TEXT NOT NULL,
			time      INTEGER NOT NULL
		);
	`)
	return err
}

// SetDatabase truncates and recreates both tables, per §6's one-shot
// set_database contract. The path argument is ignored: the tables are
// those of the database NewSQLiteSink opened.
func (s *SQLiteSink) SetDatabase(_ string) error {
	if _, err := s.db.Exec(`DROP TABLE IF EXISTS rescue; DROP TABLE IF EXISTS ambulance_event;`); err != nil {
		return fmt.Errorf("truncate tables: %w", err)
	}
	return s.createSchema()
}

// LogRescue implements Sink.
func (s *SQLiteSink) LogRescue(r RescueRecord) {
	var hospital, atHospital any
	if r.Hospital != "" {
		hospital = r.Hospital
		atHospital = r.AtHospital
	}
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO rescue (emergency, ambulance, hospital, triage, call, start, at_emergency, at_hospital)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Emergency, r.Ambulance, hospital, r.Triage, r.CallTime, r.StartTime, r.AtEmergency, atHospital,
	)
	if err != nil {
		logrus.Warnf("persistence: dropping rescue record for %s/%s: %v", r.Emergency, r.Ambulance, err)
	}
}

// LogAmbulanceEvent implements Sink.
func (s *SQLiteSink) LogAmbulanceEvent(r AmbulanceEventRecord) {
	var emergency any
	if r.Emergency != "" {
		emergency = r.Emergency
	}
	_, err := s.db.Exec(
		`INSERT INTO ambulance_event (ambulance, emergency, state, time) VALUES (?, ?, ?, ?)`,
		r.Ambulance, emergency, r.State, r.Time,
	)
	if err != nil {
		logrus.Warnf("persistence: dropping ambulance_event record for %s: %v", r.Ambulance, err)
	}
}

// Close releases the underlying database handle.
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}

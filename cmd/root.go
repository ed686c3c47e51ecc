// cmd/root.go
package cmd

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ems-sim/ems-sim/internal/roster"
	"github.com/ems-sim/ems-sim/internal/simconfig"
	"github.com/ems-sim/ems-sim/sim"
	"github.com/ems-sim/ems-sim/sim/policy"
	"github.com/ems-sim/ems-sim/sim/trace"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "ems-sim",
	Short: "Discrete-event simulator for an emergency medical services fleet",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the EMS dispatch simulation",
	Run: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		cfg, err := simconfig.Load(configPath)
		if err != nil {
			logrus.Fatalf("loading configuration: %v", err)
		}
		if err := cfg.Validate(); err != nil {
			logrus.Fatalf("invalid configuration: %v", err)
		}

		runSimulation(cfg)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	runCmd.Flags().StringVar(&configPath, "config", "config.yaml", "Path to the simulation configuration file")
	runCmd.Flags().StringVar(&logLevel, "log", "info", "Log level (debug, info, warn, error)")
	rootCmd.AddCommand(runCmd)
}

// runSimulation wires rosters, kernel, router, persistence and dispatcher
// together and drives the simulation to completion (§6 bootstrap).
func runSimulation(cfg simconfig.Config) {
	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(cfg.Seed))

	ambulances, err := roster.LoadAmbulances(cfg.AmbulanceRoster)
	if err != nil {
		logrus.Fatalf("loading ambulance roster: %v", err)
	}
	hospitals, err := roster.LoadHospitals(cfg.HospitalRoster)
	if err != nil {
		logrus.Fatalf("loading hospital roster: %v", err)
	}
	result, err := roster.LoadEmergencies(cfg.EmergencyRoster, cfg.ParsedStartTime(), cfg.ParsedEndTime(), rng)
	if err != nil {
		logrus.Fatalf("loading emergency roster: %v", err)
	}
	if len(result.Emergencies) == 0 {
		logrus.Fatal("emergency roster produced zero calls within the configured window")
	}

	start := cfg.ParsedStartTime()
	if start.IsZero() {
		start = time.Date(result.MinCallTime.Year(), result.MinCallTime.Month(), result.MinCallTime.Day(), 0, 0, 0, 0, result.MinCallTime.Location())
	}
	end := cfg.ParsedEndTime()
	if end.IsZero() {
		end = time.Date(result.MaxCallTime.Year(), result.MaxCallTime.Month(), result.MaxCallTime.Day(), 23, 59, 59, 0, result.MaxCallTime.Location())
	}
	roster.ResolveTimestamps(result.Emergencies, start)
	horizon := int64(end.Sub(start).Seconds())
	originOffset := int64(start.Hour()*3600 + start.Minute()*60 + start.Second())
	logrus.Infof("simulation horizon %s - %s (%d seconds, origin offset %ds)", start, end, horizon, originOffset)

	kernel := sim.NewKernel(horizon)

	var router sim.Router
	if cfg.RouterBaseURL == "" {
		logrus.Warn("no router_base_url configured; routing queries will always report no candidates")
		router = sim.NullRouter{}
	} else {
		router = sim.NewOSRMRouter(cfg.RouterBaseURL)
	}

	var sink trace.Sink
	if cfg.DatabasePath == "" {
		sink = trace.NullSink{}
	} else {
		sqliteSink, err := trace.NewSQLiteSink(cfg.DatabasePath)
		if err != nil {
			logrus.Fatalf("opening persistence database: %v", err)
		}
		if err := sqliteSink.SetDatabase(cfg.DatabasePath); err != nil {
			logrus.Fatalf("initializing persistence schema: %v", err)
		}
		defer sqliteSink.Close()
		sink = sqliteSink
	}

	matching := policy.NewMatchingPolicy(cfg.MatchingPolicy)
	dispatcher := sim.NewDispatcher(kernel, router, rng, sink, matching, hospitals)
	dispatcher.Preemptable = cfg.Preemptable
	dispatcher.DistanceThresholdKM = cfg.DistanceThresholdKM
	dispatcher.TimeThresholdSeconds = cfg.TimeThresholdSeconds
	dispatcher.ServiceTimeThreshold = cfg.ServiceTimeThreshold
	dispatcher.DischargingTime = cfg.DischargingTime
	dispatcher.CleaningTime = cfg.CleaningTime
	dispatcher.CleanupInterval = cfg.CleanupInterval
	dispatcher.CallLambda = map[sim.TriageCode]float64{
		sim.TriageRed:    cfg.CallLambdaRed,
		sim.TriageYellow: cfg.CallLambdaYellow,
		sim.TriageGreen:  cfg.CallLambdaGreen,
		sim.TriageWhite:  cfg.CallLambdaWhite,
	}

	for _, a := range ambulances {
		a.Shift(dispatcher, originOffset)
	}
	for _, e := range result.Emergencies {
		e.Generate(dispatcher)
	}
	dispatcher.RunCleanupLoop()

	logrus.Infof("starting simulation: %d ambulances, %d hospitals, %d emergencies", len(ambulances), len(hospitals), len(result.Emergencies))
	kernel.Run()
	logrus.Info("simulation complete")
}

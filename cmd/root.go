package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/cpehle/aivika/sim"
)

var (
	logLevel   string
	configPath string

	start, stop, dt float64
	method          string

	seed         int64
	arrivalRate  float64
	serviceRate  float64
	serverCount  int
	arrivalCount int

	decayRate    float64
	initialValue float64
)

// rootCmd is the base command for the CLI.
var rootCmd = &cobra.Command{
	Use:   "aivika",
	Short: "Discrete-event simulation kernel demonstrator",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
	},
}

// queueCmd runs the single-queue, multi-server process demo.
var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Run the multi-server queueing process demo",
	Run: func(cmd *cobra.Command, args []string) {
		if configPath != "" {
			cfg, err := loadRunConfig(configPath)
			if err != nil {
				logrus.Fatalf("unable to read config %s: %v", configPath, err)
			}
			applyQueueConfig(cfg)
		}

		specs := sim.Specs{Start: start, Stop: stop, Dt: dt, Method: methodFromName(method)}

		logrus.Infof("running queueing demo: servers=%d arrivals=%d arrival_rate=%v service_rate=%v seed=%d",
			serverCount, arrivalCount, arrivalRate, serviceRate, seed)

		result := runQueueingDemo(specs, seed, arrivalRate, serviceRate, serverCount, arrivalCount)

		fmt.Printf("served=%d wait_mean=%.6f wait_p95=%.6f server_busy_time=%.6f\n",
			result.served, result.waitMean, result.waitP95, result.serverBusyTime)
	},
}

// integrateCmd runs the Dynamics-layer decay-equation demo.
var integrateCmd = &cobra.Command{
	Use:   "integrate",
	Short: "Integrate dx/dt = -k*x and compare against the closed-form solution",
	Run: func(cmd *cobra.Command, args []string) {
		specs := sim.Specs{Start: start, Stop: stop, Dt: dt, Method: methodFromName(method)}

		result := runIntegrationDemo(specs, decayRate, initialValue)

		fmt.Printf("final=%.9f expected=%.9f abs_error=%.3e\n",
			result.final, result.expected, result.absError)
	},
}

func applyQueueConfig(cfg *runConfig) {
	if cfg.Start != 0 {
		start = cfg.Start
	}
	if cfg.Stop != 0 {
		stop = cfg.Stop
	}
	if cfg.Dt != 0 {
		dt = cfg.Dt
	}
	if cfg.Method != "" {
		method = cfg.Method
	}
	if cfg.Seed != 0 {
		seed = cfg.Seed
	}
	if cfg.ArrivalRate != 0 {
		arrivalRate = cfg.ArrivalRate
	}
	if cfg.ServiceRate != 0 {
		serviceRate = cfg.ServiceRate
	}
	if cfg.ServerCount != 0 {
		serverCount = cfg.ServerCount
	}
	if cfg.ArrivalCount != 0 {
		arrivalCount = cfg.ArrivalCount
	}
}

// Execute runs the CLI root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "info", "log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().Float64Var(&start, "start", 0, "simulation start time")
	rootCmd.PersistentFlags().Float64Var(&stop, "stop", 100, "simulation stop time")
	rootCmd.PersistentFlags().Float64Var(&dt, "dt", 1, "integration step size")
	rootCmd.PersistentFlags().StringVar(&method, "method", "euler", "integration method (euler, rk2, rk4)")

	queueCmd.Flags().StringVar(&configPath, "config", "", "YAML config file overriding the flags below")
	queueCmd.Flags().Int64Var(&seed, "seed", 42, "seed for the run's partitioned RNG")
	queueCmd.Flags().Float64Var(&arrivalRate, "arrival-rate", 1.0, "mean arrivals per unit time")
	queueCmd.Flags().Float64Var(&serviceRate, "service-rate", 1.2, "mean services per unit time, per server")
	queueCmd.Flags().IntVar(&serverCount, "servers", 1, "number of servers")
	queueCmd.Flags().IntVar(&arrivalCount, "arrivals", 1000, "number of customers to simulate")

	integrateCmd.Flags().Float64Var(&decayRate, "k", 1.0, "decay rate in dx/dt = -k*x")
	integrateCmd.Flags().Float64Var(&initialValue, "initial", 1.0, "initial value x(start)")

	rootCmd.AddCommand(queueCmd)
	rootCmd.AddCommand(integrateCmd)
}

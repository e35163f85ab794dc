package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/merpredict/merpredict/predict"
)

var (
	// CLI flags shared across subcommands
	logLevel string // Log verbosity level

	// CLI flags for the predict subcommand
	modelPath    string  // Path to the model summary YAML
	scenarioPath string  // Path to the scenario CSV
	outPath      string  // Path for the fit,lwr,upr result CSV
	nSamples     int     // Number of joint simulation draws
	level        float64 // Two-sided interval coverage in (0,1)
	seed         int64   // Seed for reproducible draws (0 = clock)
	scale        string  // Result scale: link or response
	newLevel     string  // Policy for unknown grouping-factor levels: fail, zero, ignore
	pointEst     string  // Point estimate: mean or median
	inclResidVar bool    // Add residual-variance noise (gaussian family)
	workers      int     // Worker pool size (0 = GOMAXPROCS)
	maxEnsemble  int64   // Sample ensemble byte ceiling (0 = unbounded)

	// CLI flags for the locate subcommand
	locGroup    string    // Grouping factor to rank
	locTerm     string    // Conditional-mode component to rank by (default intercept)
	locQuantile []float64 // Requested quantiles in [0,1]
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "merpredict",
	Short: "Monte Carlo prediction intervals for fitted mixed-effects models",
}

// predictCmd runs the simulation engine over a model summary and scenario table
var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Simulate prediction intervals for a scenario",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()
		if modelPath == "" || scenarioPath == "" {
			logrus.Fatalf("both --model and --scenario are required")
		}
		start := time.Now()
		if err := runPredict(); err != nil {
			logrus.Fatalf("predict failed: %v", err)
		}
		logrus.Infof("wrote %s in %v", outPath, time.Since(start))
	},
}

// locateCmd looks up the group level at a requested quantile of random-effect magnitude
var locateCmd = &cobra.Command{
	Use:   "locate",
	Short: "Locate the group level at a quantile of random-effect magnitude",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()
		if modelPath == "" || locGroup == "" {
			logrus.Fatalf("both --model and --group are required")
		}
		if err := runLocate(os.Stdout); err != nil {
			logrus.Fatalf("locate failed: %v", err)
		}
	},
}

func setupLogging() {
	lvl, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(lvl)
}

// runPredict loads inputs, runs the engine, and writes the result CSV. Split
// from the cobra Run closure so tests can drive it directly.
func runPredict() error {
	model, err := predict.LoadModelSummary(modelPath)
	if err != nil {
		return err
	}
	scenario, err := predict.LoadScenarioCSV(scenarioPath, model)
	if err != nil {
		return err
	}

	opts := predict.DefaultOptions()
	opts.NSamples = nSamples
	opts.Level = level
	opts.IncludeResidualVariance = inclResidVar
	opts.Scale = predict.Scale(scale)
	opts.NewLevelPolicy = predict.NewLevelPolicy(newLevel)
	opts.PointEstimate = predict.PointEstimate(pointEst)
	opts.Workers = workers
	opts.MaxEnsembleBytes = maxEnsemble
	if seed != 0 {
		s := seed
		opts.Seed = &s
	}

	logrus.Infof("simulating %d observations with S=%d, level=%.2f, scale=%s",
		len(scenario), opts.NSamples, opts.Level, opts.Scale)

	result, err := predict.Intervals(model, scenario, opts)
	if err != nil {
		return err
	}
	return predict.WriteResultCSV(outPath, result)
}

// runLocate prints one "quantile<TAB>level" line per requested quantile.
func runLocate(w *os.File) error {
	model, err := predict.LoadModelSummary(modelPath)
	if err != nil {
		return err
	}
	levels, err := predict.LevelsAtQuantiles(model, locGroup, locQuantile, locTerm)
	if err != nil {
		return err
	}
	for i, q := range locQuantile {
		fmt.Fprintf(w, "%g\t%s\n", q, levels[i])
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")

	predictCmd.Flags().StringVar(&modelPath, "model", "", "Model summary YAML from the fitting library")
	predictCmd.Flags().StringVar(&scenarioPath, "scenario", "", "Scenario CSV with covariate and grouping-factor columns")
	predictCmd.Flags().StringVar(&outPath, "out", "results.csv", "Output CSV with fit,lwr,upr columns")
	predictCmd.Flags().IntVar(&nSamples, "n-samples", 1000, "Number of joint simulation draws")
	predictCmd.Flags().Float64Var(&level, "level", 0.8, "Two-sided interval coverage in (0,1)")
	predictCmd.Flags().Int64Var(&seed, "seed", 0, "Random seed (0 = clock)")
	predictCmd.Flags().StringVar(&scale, "scale", string(predict.ScaleResponse), "Result scale: link or response")
	predictCmd.Flags().StringVar(&newLevel, "new-level-policy", string(predict.NewLevelZero), "Unknown-level policy: fail, zero, ignore")
	predictCmd.Flags().StringVar(&pointEst, "point-estimate", string(predict.EstimateMedian), "Point estimate: mean or median")
	predictCmd.Flags().BoolVar(&inclResidVar, "include-residual-variance", true, "Add residual-variance noise (gaussian family only)")
	predictCmd.Flags().IntVar(&workers, "workers", 0, "Worker pool size (0 = GOMAXPROCS)")
	predictCmd.Flags().Int64Var(&maxEnsemble, "max-ensemble-bytes", 0, "Sample ensemble byte ceiling (0 = unbounded)")

	locateCmd.Flags().StringVar(&modelPath, "model", "", "Model summary YAML from the fitting library")
	locateCmd.Flags().StringVar(&locGroup, "group", "", "Grouping factor to rank")
	locateCmd.Flags().StringVar(&locTerm, "term", "", "Conditional-mode component to rank by (default: intercept)")
	locateCmd.Flags().Float64SliceVar(&locQuantile, "quantile", []float64{0.5}, "Quantiles in [0,1]")

	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(locateCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

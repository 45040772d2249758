// Package cli implements the hashver command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/albertocavalcante/hashver/internal/log"
	"github.com/albertocavalcante/hashver/internal/telemetry"
)

// Version information (set via ldflags)
var (
	Version   = "dev"
	GitCommit = "unknown"
)

// globalFlags holds persistent flags that apply to all commands
var globalFlags struct {
	verbosity    int
	logFormat    string
	project      string
	graph        string
	metricsFile  string
	otlpEndpoint string
}

// invocationID identifies this run in logs and summaries.
var invocationID string

// shutdownTracing flushes spans; set once a session enabled tracing.
var shutdownTracing telemetry.ShutdownFunc

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "hashver",
	Short: "Content-derived versions for Maven multi-module projects",
	Long: `Hashver computes a hashversion for every module of a Maven project.

A hashversion changes exactly when the module sources, its pom.xml, its
ancestor poms or anything in its resolved dependency tree changes. Builds
that use hashversions can skip modules whose artifact already exists.

The project graph (modules, parents and resolved dependency trees) is read
from hashver-reactor.json or hashver-reactor.yaml in the project root.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setupRun,
	PersistentPostRunE: finishRun,
	// Default behavior: show help
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// versionCmd shows version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "hashver %s (%s)\n", Version, GitCommit)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)

	// Global flags (persistent across all commands)
	rootCmd.PersistentFlags().IntVarP(&globalFlags.verbosity, "verbosity", "v", 1,
		"Verbosity level (0=error, 1=warn, 2=info, 3=debug, 4=trace)")
	rootCmd.PersistentFlags().StringVar(&globalFlags.logFormat, "log-format", "text",
		"Log format (text, json)")
	rootCmd.PersistentFlags().StringVarP(&globalFlags.project, "project", "C", "",
		"Project directory (default: nearest workspace root above the working directory)")
	rootCmd.PersistentFlags().StringVar(&globalFlags.graph, "graph", "",
		"Project graph file (default: hashver-reactor.{json,yaml,yml} in the project directory)")
	rootCmd.PersistentFlags().StringVar(&globalFlags.metricsFile, "metrics-file", "",
		"Write Prometheus metrics to this file when the command finishes")
	rootCmd.PersistentFlags().StringVar(&globalFlags.otlpEndpoint, "otlp-endpoint", "",
		"Export traces to this OTLP/gRPC endpoint (host:port)")

	// Hook to apply flags before command runs
	cobra.OnInitialize(initLogging)
}

// initLogging applies CLI flags to the logger.
// This runs after flags are parsed but before command execution.
func initLogging() {
	format := globalFlags.logFormat
	if !log.ValidFormat(format) {
		format = "text"
	}
	log.Init(globalFlags.verbosity, format)
}

func setupRun(_ *cobra.Command, _ []string) error {
	if !log.ValidFormat(globalFlags.logFormat) {
		return fmt.Errorf("invalid --log-format %q (valid: %v)", globalFlags.logFormat, log.Formats)
	}

	current = nil
	invocationID = uuid.NewString()
	log.SetInvocation(invocationID)
	return nil
}

func finishRun(cmd *cobra.Command, _ []string) error {
	var errs []error
	if shutdownTracing != nil {
		errs = append(errs, shutdownTracing(context.WithoutCancel(cmd.Context())))
		shutdownTracing = nil
	}
	if path := metricsFile(); path != "" {
		if err := telemetry.WriteMetrics(path); err != nil {
			errs = append(errs, fmt.Errorf("failed to write metrics: %w", err))
		}
	}
	return errors.Join(errs...)
}

// metricsFile returns the --metrics-file flag or the configured file of
// the current session.
func metricsFile() string {
	if globalFlags.metricsFile != "" {
		return globalFlags.metricsFile
	}
	if current != nil {
		return current.cfg.Telemetry.MetricsFile
	}
	return ""
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// RootCmd returns the root command for testing.
func RootCmd() *cobra.Command {
	return rootCmd
}

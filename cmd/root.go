package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/marcus/kadilac/internal/config"
	"github.com/spf13/cobra"
)

var (
	version string
	homeDir string
	debug   bool
	logFile *os.File
)

// SetVersion sets the version string
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

var rootCmd = &cobra.Command{
	Use:   "kadilac",
	Short: "Dealership console for FIPE valuations and sale closing",
	Long: `kadilac - A terminal front end for the Kadilac dealership backend.

Looks up FIPE reference prices through a category, make, model and year
cascade, closes vehicle sales with trade-in credit, and searches the
available inventory.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logFile != nil {
			logFile.Close()
			logFile = nil
		}
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: "valuation", Title: "Valuation:"},
		&cobra.Group{ID: "sales", Title: "Sales:"},
		&cobra.Group{ID: "system", Title: "System:"},
	)
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Write debug logs to kadilac.log")
	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "Data directory (default $KADILAC_HOME or ~/.kadilac)")

	cobra.OnInitialize(initHome, initLogging)
}

func initHome() {
	if homeDir != "" {
		return
	}
	dir, err := config.HomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot determine data directory: %v\n", err)
		os.Exit(1)
	}
	homeDir = dir
}

// initLogging sends slog output to kadilac.log in the data directory.
// The terminal belongs to the interactive views, so nothing is logged there.
func initLogging() {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	if err := os.MkdirAll(homeDir, 0700); err != nil {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))
		slog.Warn("logging to stderr", "err", err)
		return
	}
	f, err := os.OpenFile(filepath.Join(homeDir, "kadilac.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))
		slog.Warn("logging to stderr", "err", err)
		return
	}
	logFile = f
	slog.SetDefault(slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level})))
}

// getHomeDir returns the data directory
func getHomeDir() string {
	return homeDir
}

// commandContext is canceled on interrupt or terminate
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

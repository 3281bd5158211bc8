// ABOUTME: Root Cobra command for the workout CLI.
// ABOUTME: Loads config, sets up logging and owns the storage lifecycle via PersistentPre/PostRunE.
package main

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/prodigy803-dusra/Workout-Tracker-sub000/internal/config"
	"github.com/prodigy803-dusra/Workout-Tracker-sub000/internal/logging"
	"github.com/prodigy803-dusra/Workout-Tracker-sub000/internal/models"
	"github.com/prodigy803-dusra/Workout-Tracker-sub000/internal/storage"
)

var (
	repo      storage.Repository
	cfg       *config.Config
	unit      models.Unit
	logCloser io.Closer

	logLevelFlag string
	logJSONFlag  bool
)

var rootCmd = &cobra.Command{
	Use:   "workout",
	Short: "Template-driven strength training log",
	Long: `Workout is a CLI tool for logging strength training sessions.

Sessions are started from templates. Each template slot offers one or more
interchangeable exercises, and new sessions are pre-filled with the weights
and reps you last performed.

QUICK START:

  $ workout exercise add "Bench Press" --muscle chest
  $ workout template create "Push Day"
  $ workout template slot add "Push Day" "Main press"
  $ workout template option add 1 "Bench Press"
  $ workout session start "Push Day"      # Draft pre-filled from last time
  $ workout session show                  # Slots, choices and sets
  $ workout set log 1 1 100 5 --done      # choice 1, set 1: 100 x 5
  $ workout session finish                # Finalize and detect PRs

ANALYTICS:

  $ workout session history               # Finalized sessions
  $ workout stats overall                 # Totals and last 7 days
  $ workout stats streak                  # Consecutive training days
  $ workout stats e1rm "Bench Press"      # Estimated 1RM per session

MCP INTEGRATION:

  Run 'workout mcp' to start the Model Context Protocol server for use with
  Claude Desktop or other MCP-compatible AI assistants. Add to your Claude
  config:

  {
    "mcpServers": {
      "workout": { "command": "workout", "args": ["mcp"] }
    }
  }

DATA STORAGE:

  Sessions are stored in SQLite at ~/.local/share/workout/workout.db.
  Settings live in ~/.config/workout/config.json.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip storage init for commands that don't need it
		switch cmd.Name() {
		case "version", "help", "install-skill", "completion":
			return nil
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		level, err := cfg.GetLogLevel()
		if err != nil {
			return err
		}
		if logLevelFlag != "" {
			level, err = logrus.ParseLevel(logLevelFlag)
			if err != nil {
				return fmt.Errorf("invalid --log-level: %w", err)
			}
		}
		logCloser = logging.Setup(logging.SetupParams{
			Level:      level,
			FileName:   cfg.GetLogFile(),
			JSONFormat: logJSONFlag,
			Quiet:      cmd.Name() == "mcp",
		})

		unit, err = cfg.GetUnit()
		if err != nil {
			return err
		}

		repo, err = cfg.OpenStorage()
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeResources()
	},
}

// Execute runs the root command and releases storage even when a command fails.
func Execute() error {
	err := rootCmd.Execute()
	return multierr.Append(err, closeResources())
}

func closeResources() error {
	var err error
	if repo != nil {
		err = multierr.Append(err, repo.Close())
		repo = nil
	}
	if logCloser != nil {
		err = multierr.Append(err, logCloser.Close())
		logCloser = nil
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logJSONFlag, "log-json", false, "emit logs as JSON")
}

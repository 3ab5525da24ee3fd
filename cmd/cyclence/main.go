package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/emilianohg/cyclence/internal/config"
	"github.com/emilianohg/cyclence/internal/db"
	"github.com/emilianohg/cyclence/internal/tracker"
	"github.com/emilianohg/cyclence/internal/tui"
)

var rootCmd = &cobra.Command{
	Use:   "cyclence",
	Short: "Recurring task tracker with decaying points",
	Long: `Cyclence tracks chores and habits that repeat every few days.
Each task is worth points that decay the longer it sits overdue.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		env, err := setup(cmd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer env.close()

		if err := tui.Run(env.tracker, env.cfg); err != nil {
			env.log.Error().Err(err).Msg("tui exited")
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

// env is what every command needs once config and storage are up.
type env struct {
	cfg     *config.Config
	tracker *tracker.Tracker
	log     zerolog.Logger
	logFile io.Closer
}

func (e *env) close() {
	db.Close()
	if e.logFile != nil {
		e.logFile.Close()
	}
}

// setup loads config, opens the database, runs the first migration on a
// fresh database and registers the configured user.
func setup(cmd *cobra.Command) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	log, logFile, err := newLogger(cfg, verbose)
	if err != nil {
		return nil, err
	}
	e := &env{cfg: cfg, log: log, logFile: logFile}

	database, err := db.Open()
	if err != nil {
		e.close()
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// First-time setup runs without user interaction
	status, _ := db.GetMigrationStatus()
	if status != nil && status.CurrentVersion == 0 {
		if err := db.RunMigrations(); err != nil {
			e.close()
			return nil, fmt.Errorf("running initial migrations: %w", err)
		}
		log.Info().Uint("version", status.LatestVersion).Msg("database initialized")
	}

	e.tracker = tracker.New(database, tracker.WithLogger(log))
	if _, err := e.tracker.EnsureUser(cfg.User, cfg.Name); err != nil {
		e.close()
		return nil, fmt.Errorf("registering user %s: %w", cfg.User, err)
	}
	return e, nil
}

// newLogger writes JSON lines to the error log, plus a console copy on
// stderr when verbose.
func newLogger(cfg *config.Config, verbose bool) (zerolog.Logger, io.Closer, error) {
	level, err := cfg.Level()
	if err != nil {
		return zerolog.Nop(), nil, err
	}
	if err := config.EnsureDirectories(); err != nil {
		return zerolog.Nop(), nil, err
	}
	logPath, err := config.ErrorLogPath()
	if err != nil {
		return zerolog.Nop(), nil, err
	}

	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("opening log: %w", err)
	}

	var w io.Writer = f
	if verbose {
		w = zerolog.MultiLevelWriter(f, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
		if level > zerolog.DebugLevel {
			level = zerolog.DebugLevel
		}
	}

	log := zerolog.New(w).Level(level).With().Timestamp().Str("user", cfg.User).Logger()
	return log, f, nil
}

// run adapts a command body that needs the environment into a cobra RunE.
func run(fn func(e *env, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.close()

		if err := fn(e, cmd, args); err != nil {
			e.log.Warn().Err(err).Str("command", cmd.Name()).Msg("command failed")
			return err
		}
		return nil
	}
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log to stderr as well as the error log")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(completeCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(shareCmd)
	rootCmd.AddCommand(friendsCmd)
	rootCmd.AddCommand(inviteCmd)
	rootCmd.AddCommand(notificationsCmd)
	rootCmd.AddCommand(respondCmd)
	rootCmd.AddCommand(remindCmd)
	rootCmd.AddCommand(migrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

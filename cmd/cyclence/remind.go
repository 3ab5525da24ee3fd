package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/emilianohg/cyclence/internal/db"
	"github.com/emilianohg/cyclence/internal/reminder"
)

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Leave reminders for due tasks on a schedule",
	Long: `Run the reminder loop until interrupted. Every time the configured
reminder_schedule fires, each due or overdue task gets one reminder for the day.

Examples:
  cyclence remind                     # use reminder_schedule from config
  cyclence remind --schedule "@every 1h"
  cyclence remind --once              # remind now and exit`,
	Args: cobra.NoArgs,
	RunE: run(func(e *env, cmd *cobra.Command, args []string) error {
		if once, _ := cmd.Flags().GetBool("once"); once {
			n, err := e.tracker.RemindDue(e.cfg.User)
			if err != nil {
				return err
			}
			fmt.Printf("Left %d reminder(s).\n", n)
			return nil
		}

		spec := e.cfg.ReminderSchedule
		if cmd.Flags().Changed("schedule") {
			spec, _ = cmd.Flags().GetString("schedule")
		}

		scheduler := reminder.NewScheduler(time.Local, e.log)
		id, err := scheduler.Schedule(spec, e.cfg.User, e.tracker)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		scheduler.Start()
		e.log.Info().Str("schedule", spec).Time("next", scheduler.Next(id)).Msg("reminder loop started")
		fmt.Printf("Reminding on %q, next run %s. Press Ctrl+C to stop.\n",
			spec, scheduler.Next(id).Format("Jan 02 15:04:05"))

		<-ctx.Done()
		scheduler.Stop()
		e.log.Info().Msg("reminder loop stopped")
		return nil
	}),
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Args:  cobra.NoArgs,
	RunE: run(func(e *env, cmd *cobra.Command, args []string) error {
		status, err := db.GetMigrationStatus()
		if err != nil {
			return err
		}
		if status.Dirty {
			return fmt.Errorf("database is dirty at version %d; fix it manually", status.CurrentVersion)
		}
		if !status.Pending {
			fmt.Printf("Database is up to date (version %d).\n", status.CurrentVersion)
			return nil
		}

		if err := db.RunMigrations(); err != nil {
			return err
		}
		e.log.Info().Uint("from", status.CurrentVersion).Uint("to", status.LatestVersion).Msg("migrations applied")
		fmt.Printf("Migrated from version %d to %d.\n", status.CurrentVersion, status.LatestVersion)
		return nil
	}),
}

func init() {
	remindCmd.Flags().String("schedule", "", "Cron spec with seconds field, overrides reminder_schedule")
	remindCmd.Flags().Bool("once", false, "Leave reminders now and exit")
}

package main

import (
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/spf13/cobra"

	"github.com/emilianohg/cyclence/internal/humanize"
	"github.com/emilianohg/cyclence/internal/recurrence"
	"github.com/emilianohg/cyclence/internal/tracker"
)

var addCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Add a recurring task",
	Long: `Add a task that recurs every N days.

Examples:
  cyclence add "Water plants" --every 3
  cyclence add "Eat ham" --every 12 --points 120 --decay 3 --first-due 2026-10-20
  cyclence add "Change sheets" --every 14 --allow-early=false --tags home,bedroom`,
	Args: cobra.ExactArgs(1),
	RunE: run(func(e *env, cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		opts := recurrence.Options{Name: args[0]}
		opts.Length, _ = flags.GetInt("every")
		opts.Points, _ = flags.GetInt("points")
		opts.DecayLength, _ = flags.GetInt("decay")
		opts.Tags, _ = flags.GetStringSlice("tags")
		opts.Notes, _ = flags.GetString("notes")

		opts.AllowEarly = e.cfg.DefaultAllowEarly
		if flags.Changed("allow-early") {
			opts.AllowEarly, _ = flags.GetBool("allow-early")
		}
		if !flags.Changed("points") {
			opts.Points = e.cfg.DefaultPoints
		}

		if v, _ := flags.GetString("first-due"); v != "" {
			d, err := civil.ParseDate(v)
			if err != nil {
				return fmt.Errorf("invalid --first-due %q (expected YYYY-MM-DD)", v)
			}
			opts.FirstDue = d
		}

		task, err := e.tracker.CreateTask(e.cfg.User, opts)
		if err != nil {
			return err
		}

		fmt.Printf("Created %s (%s)\n", task.Name, shortID(task.ID))
		fmt.Printf("Every %s, first due %s\n", humanize.Duration(task.Length), humanize.Date(task.FirstDue))
		return nil
	}),
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks, most urgent first",
	Args:    cobra.NoArgs,
	RunE: run(func(e *env, cmd *cobra.Command, args []string) error {
		board, err := e.tracker.Board(e.cfg.User)
		if err != nil {
			return err
		}

		if len(board.Entries) == 0 {
			fmt.Println("No tasks yet. Add one with 'cyclence add'.")
			return nil
		}

		for _, entry := range board.Entries {
			fmt.Printf("%s  %-28s %-8s %-14s %4d/%d pts\n",
				shortID(entry.Task.ID),
				entry.Task.Name,
				entry.Dueity,
				humanize.Relative(entry.DueDate, board.Today),
				entry.Worth,
				entry.Task.Points,
			)
		}
		fmt.Printf("\n%d points earned\n", board.TotalPoints)
		return nil
	}),
}

var showCmd = &cobra.Command{
	Use:   "show TASK",
	Short: "Show a task with its upcoming due dates",
	Args:  cobra.ExactArgs(1),
	RunE: run(func(e *env, cmd *cobra.Command, args []string) error {
		task, err := e.tracker.Task(e.cfg.User, args[0])
		if err != nil {
			return err
		}

		n, _ := cmd.Flags().GetInt("schedule")
		if !cmd.Flags().Changed("schedule") {
			n = e.cfg.SchedulePreview
		}

		today := e.tracker.Today()
		entry := tracker.Evaluate(task, today)

		fmt.Printf("%s  %s\n", task.ID, task.Name)
		fmt.Printf("Every:      %s\n", humanize.Duration(task.Length))
		fmt.Printf("Due:        %s (%s, %s)\n", humanize.Date(entry.DueDate), humanize.Relative(entry.DueDate, today), entry.Dueity)
		fmt.Printf("Worth:      %d of %d points, decays over %s\n", entry.Worth, task.Points, humanize.Duration(task.DecayLength))
		fmt.Printf("Early:      %t\n", task.AllowEarly)
		fmt.Printf("Last done:  %s\n", humanize.Relative(entry.LastCompleted, today))
		if len(task.Tags) > 0 {
			fmt.Printf("Tags:       %s\n", strings.Join(task.Tags, ", "))
		}
		if task.Notes != "" {
			fmt.Printf("Notes:      %s\n", task.Notes)
		}

		if completions := task.Completions(); len(completions) > 0 {
			fmt.Println("\nHistory:")
			for _, c := range completions {
				fmt.Printf("  %s  %-20s %4d pts  %s\n",
					humanize.Date(c.CompletedOn), c.CompletedBy, c.PointsEarned, lateness(c.DaysLate))
			}
		}

		if n > 0 {
			fmt.Println("\nUpcoming:")
			for _, due := range recurrence.Upcoming(task.DueSchedule(today), n) {
				fmt.Printf("  %s  %s\n", humanize.Date(due), humanize.Relative(due, today))
			}
		}
		return nil
	}),
}

var completeCmd = &cobra.Command{
	Use:   "complete TASK [DATE]",
	Short: "Mark a task done today or on a past date",
	Long: `Mark a task done. DATE defaults to today and cannot be in the future.

Examples:
  cyclence complete "Water plants"
  cyclence complete 3f2a 2026-10-18`,
	Args: cobra.RangeArgs(1, 2),
	RunE: run(func(e *env, cmd *cobra.Command, args []string) error {
		var on civil.Date
		if len(args) > 1 {
			d, err := civil.ParseDate(args[1])
			if err != nil {
				return fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", args[1])
			}
			on = d
		}

		c, err := e.tracker.Complete(e.cfg.User, args[0], on)
		if err != nil {
			return err
		}

		fmt.Printf("Completed on %s for %d points", humanize.Date(c.CompletedOn), c.PointsEarned)
		if c.DaysLate > 0 {
			fmt.Printf(" (%s late)", humanize.Duration(c.DaysLate))
		}
		fmt.Println()
		return nil
	}),
}

var editCmd = &cobra.Command{
	Use:   "edit TASK",
	Short: "Change a task's settings",
	Args:  cobra.ExactArgs(1),
	RunE: run(func(e *env, cmd *cobra.Command, args []string) error {
		edit, err := taskEditFromFlags(cmd)
		if err != nil {
			return err
		}

		task, err := e.tracker.EditTask(e.cfg.User, args[0], edit)
		if err != nil {
			return err
		}
		fmt.Printf("Updated %s\n", task)
		return nil
	}),
}

var deleteCmd = &cobra.Command{
	Use:   "delete TASK",
	Short: "Delete a task, or leave it if it is shared",
	Args:  cobra.ExactArgs(1),
	RunE: run(func(e *env, cmd *cobra.Command, args []string) error {
		if err := e.tracker.DeleteTask(e.cfg.User, args[0]); err != nil {
			return err
		}
		fmt.Println("Done.")
		return nil
	}),
}

// taskEditFromFlags collects only the flags the user actually set.
func taskEditFromFlags(cmd *cobra.Command) (tracker.TaskEdit, error) {
	flags := cmd.Flags()
	var edit tracker.TaskEdit
	changed := false

	if flags.Changed("name") {
		v, _ := flags.GetString("name")
		edit.Name = &v
		changed = true
	}
	if flags.Changed("every") {
		v, _ := flags.GetInt("every")
		edit.Length = &v
		changed = true
	}
	if flags.Changed("allow-early") {
		v, _ := flags.GetBool("allow-early")
		edit.AllowEarly = &v
		changed = true
	}
	if flags.Changed("points") {
		v, _ := flags.GetInt("points")
		edit.Points = &v
		changed = true
	}
	if flags.Changed("decay") {
		v, _ := flags.GetInt("decay")
		edit.DecayLength = &v
		changed = true
	}
	if flags.Changed("tags") {
		v, _ := flags.GetStringSlice("tags")
		edit.Tags = &v
		changed = true
	}
	if flags.Changed("notes") {
		v, _ := flags.GetString("notes")
		edit.Notes = &v
		changed = true
	}

	if !changed {
		return edit, fmt.Errorf("nothing to change; pass at least one flag")
	}
	return edit, nil
}

func lateness(days int) string {
	switch {
	case days > 0:
		return humanize.Duration(days) + " late"
	case days < 0:
		return humanize.Duration(-days) + " early"
	}
	return "on time"
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func init() {
	addCmd.Flags().IntP("every", "e", 0, "Days between due dates (required)")
	addCmd.Flags().String("first-due", "", "First due date, YYYY-MM-DD (default: tomorrow)")
	addCmd.Flags().IntP("points", "p", 0, "Points for an on-time completion (default from config)")
	addCmd.Flags().IntP("decay", "d", 0, "Days over which points decay to zero (default: same as --every)")
	addCmd.Flags().Bool("allow-early", true, "Allow completing before the due date (default from config)")
	addCmd.Flags().StringSlice("tags", nil, "Comma separated tags")
	addCmd.Flags().String("notes", "", "Free-form notes")
	addCmd.MarkFlagRequired("every")

	showCmd.Flags().IntP("schedule", "s", 0, "Number of upcoming due dates to print (default from config)")

	editCmd.Flags().String("name", "", "New name")
	editCmd.Flags().IntP("every", "e", 0, "Days between due dates")
	editCmd.Flags().IntP("points", "p", 0, "Points for an on-time completion")
	editCmd.Flags().IntP("decay", "d", 0, "Days over which points decay to zero")
	editCmd.Flags().Bool("allow-early", true, "Allow completing before the due date")
	editCmd.Flags().StringSlice("tags", nil, "Replace the tags")
	editCmd.Flags().String("notes", "", "Replace the notes")
}

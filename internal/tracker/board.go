package tracker

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"cloud.google.com/go/civil"

	"github.com/emilianohg/cyclence/internal/humanize"
	"github.com/emilianohg/cyclence/internal/models"
	"github.com/emilianohg/cyclence/internal/recurrence"
	"github.com/emilianohg/cyclence/internal/repository"
	"github.com/emilianohg/cyclence/internal/scoring"
)

// Entry is a task with its state derived for one day.
type Entry struct {
	Task          *recurrence.Task
	DueDate       civil.Date
	Dueity        recurrence.Dueity
	Worth         int
	SortValue     int
	Hue           scoring.HSL
	LastCompleted civil.Date
}

type Board struct {
	Today       civil.Date
	Entries     []Entry
	TotalPoints int
}

// Evaluate derives a task's state as of today.
func Evaluate(t *recurrence.Task, today civil.Date) Entry {
	dueity := t.Dueity(today)
	worth := t.PointWorth(today)
	last, _ := t.LastCompleted()
	return Entry{
		Task:          t,
		DueDate:       t.DueDate(),
		Dueity:        dueity,
		Worth:         worth,
		SortValue:     t.SortValue(today),
		Hue:           scoring.Hue(worth, t.Points, dueity == recurrence.NotDue),
		LastCompleted: last,
	}
}

// SortEntries orders entries most urgent first, then by due date and name.
func SortEntries(entries []Entry) {
	slices.SortStableFunc(entries, func(a, b Entry) int {
		if a.SortValue != b.SortValue {
			return b.SortValue - a.SortValue
		}
		if d := a.DueDate.DaysSince(b.DueDate); d != 0 {
			return d
		}
		return strings.Compare(strings.ToLower(a.Task.Name), strings.ToLower(b.Task.Name))
	})
}

// Board returns the actor's tasks ranked by urgency.
func (s *Tracker) Board(actor string) (*Board, error) {
	tasks, err := repository.NewTaskRepo(s.db).ListForUser(actor)
	if err != nil {
		return nil, err
	}

	total, err := repository.NewCompletionRepo(s.db).TotalPoints(actor)
	if err != nil {
		return nil, err
	}

	today := s.Today()
	entries := make([]Entry, 0, len(tasks))
	for _, t := range tasks {
		entries = append(entries, Evaluate(t, today))
	}
	SortEntries(entries)

	return &Board{Today: today, Entries: entries, TotalPoints: total}, nil
}

// RemindDue leaves a reminder for every due or overdue task, at most one per
// task per day, and returns how many were created.
func (s *Tracker) RemindDue(actor string) (int, error) {
	board, err := s.Board(actor)
	if err != nil {
		return 0, err
	}

	now := s.now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	notes := repository.NewNotificationRepo(s.db)

	created := 0
	for _, e := range board.Entries {
		if e.Dueity == recurrence.NotDue {
			continue
		}

		sent, err := notes.SentSince(actor, e.Task.ID, models.KindReminder, startOfDay)
		if err != nil {
			return created, err
		}
		if sent {
			continue
		}

		message := fmt.Sprintf("'%s' is due today, worth %d points", e.Task.Name, e.Worth)
		if e.Dueity == recurrence.Overdue {
			message = fmt.Sprintf("'%s' has been due since %s, now worth %d points",
				e.Task.Name, humanize.Date(e.DueDate), e.Worth)
		}

		taskID := e.Task.ID
		if _, err := notes.Create(models.Notification{
			UserEmail: actor,
			Kind:      models.KindReminder,
			Message:   message,
			TaskID:    &taskID,
			CreatedAt: now,
		}); err != nil {
			return created, err
		}
		created++
	}

	s.log.Info().Str("user", actor).Int("reminders", created).Msg("reminders sent")
	return created, nil
}

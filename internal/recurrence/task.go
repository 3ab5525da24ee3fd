// Package recurrence models recurring tasks: their due dates, due status,
// upcoming schedule and completion history.
package recurrence

import (
	"fmt"
	"iter"
	"slices"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"github.com/emilianohg/cyclence/internal/scoring"
)

// Dueity is the due status of a task relative to a given day.
type Dueity int

const (
	NotDue Dueity = iota
	Due
	Overdue
)

func (d Dueity) String() string {
	switch d {
	case NotDue:
		return "not due"
	case Due:
		return "due"
	case Overdue:
		return "overdue"
	}
	return fmt.Sprintf("Dueity(%d)", int(d))
}

// Completion records that a task occurrence was finished. It is never
// modified after the task appends it.
type Completion struct {
	CompletedOn  civil.Date
	CompletedBy  string
	PointsEarned int
	DaysLate     int
	RecordedOn   time.Time
}

// Options configures a new task. Zero FirstDue means tomorrow and zero
// DecayLength means the task's Length.
type Options struct {
	Name        string
	Length      int
	FirstDue    civil.Date
	AllowEarly  bool
	Points      int
	DecayLength int
	Tags        []string
	Notes       string
}

// Task is a recurring task. Lengths are counted in days.
type Task struct {
	ID          string
	Name        string
	Length      int
	FirstDue    civil.Date
	AllowEarly  bool
	Points      int
	DecayLength int
	Tags        []string
	Notes       string

	completions []Completion
}

// NewTask builds a task with a fresh ID. today is used when FirstDue is unset.
func NewTask(opts Options, today civil.Date) (*Task, error) {
	if opts.FirstDue.IsZero() {
		opts.FirstDue = today.AddDays(1)
	}
	return Restore(uuid.NewString(), opts, nil)
}

// Restore rebuilds a stored task together with its completion history.
func Restore(id string, opts Options, completions []Completion) (*Task, error) {
	t := &Task{
		ID:          id,
		Name:        opts.Name,
		Length:      opts.Length,
		FirstDue:    opts.FirstDue,
		AllowEarly:  opts.AllowEarly,
		Points:      opts.Points,
		DecayLength: opts.DecayLength,
		Tags:        normalizeTags(opts.Tags),
		Notes:       opts.Notes,
	}
	if t.DecayLength == 0 {
		t.DecayLength = t.Length
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}

	t.completions = slices.Clone(completions)
	slices.SortStableFunc(t.completions, func(a, b Completion) int {
		return a.CompletedOn.DaysSince(b.CompletedOn)
	})
	return t, nil
}

// Validate checks the task configuration.
func (t *Task) Validate() error {
	switch {
	case strings.TrimSpace(t.Name) == "":
		return fmt.Errorf("%w: name is required", ErrInvalidConfiguration)
	case t.Length < 1:
		return fmt.Errorf("%w: length must be at least 1 day, got %d", ErrInvalidConfiguration, t.Length)
	case t.DecayLength < 1:
		return fmt.Errorf("%w: decay length must be at least 1 day, got %d", ErrInvalidConfiguration, t.DecayLength)
	case t.Points < 0:
		return fmt.Errorf("%w: points cannot be negative, got %d", ErrInvalidConfiguration, t.Points)
	case !t.FirstDue.IsValid():
		return fmt.Errorf("%w: invalid first due date %v", ErrInvalidConfiguration, t.FirstDue)
	}
	return nil
}

// Completions returns the completion history, oldest first.
func (t *Task) Completions() []Completion {
	return slices.Clone(t.completions)
}

// LastCompleted returns the date of the latest completion, if any.
func (t *Task) LastCompleted() (civil.Date, bool) {
	if len(t.completions) == 0 {
		return civil.Date{}, false
	}
	return t.completions[len(t.completions)-1].CompletedOn, true
}

// DueDate is FirstDue until the task is completed, then one Length after the
// latest completion.
func (t *Task) DueDate() civil.Date {
	last, ok := t.LastCompleted()
	if !ok {
		return t.FirstDue
	}
	return last.AddDays(t.Length)
}

func (t *Task) Dueity(today civil.Date) Dueity {
	due := t.DueDate()
	switch {
	case due.Before(today):
		return Overdue
	case due.After(today):
		return NotDue
	default:
		return Due
	}
}

func (t *Task) IsDue(today civil.Date) bool     { return t.Dueity(today) == Due }
func (t *Task) IsOverdue(today civil.Date) bool { return t.Dueity(today) == Overdue }
func (t *Task) IsNotDue(today civil.Date) bool  { return t.Dueity(today) == NotDue }

// DueSchedule yields the upcoming due dates. An overdue task yields only
// today. Otherwise the sequence is infinite: due, due+length, due+2*length...
// Each call starts over from the first date.
func (t *Task) DueSchedule(today civil.Date) iter.Seq[civil.Date] {
	due := t.DueDate()
	length := t.Length
	overdue := due.Before(today)

	return func(yield func(civil.Date) bool) {
		if overdue {
			yield(today)
			return
		}
		for d := due; ; d = d.AddDays(length) {
			if !yield(d) {
				return
			}
		}
	}
}

// Upcoming collects at most n dates from a schedule.
func Upcoming(schedule iter.Seq[civil.Date], n int) []civil.Date {
	if n <= 0 {
		return nil
	}
	dates := make([]civil.Date, 0, n)
	for d := range schedule {
		dates = append(dates, d)
		if len(dates) == n {
			break
		}
	}
	return dates
}

// PointWorth is how many points completing the task on the given day earns.
func (t *Task) PointWorth(completedOn civil.Date) int {
	return scoring.PointWorth(t.DueDate(), completedOn, t.DecayLength, t.Points, t.AllowEarly)
}

// Complete appends a completion by completer. A zero completedOn means today,
// where today is taken from now.
func (t *Task) Complete(completer string, completedOn civil.Date, now time.Time) (Completion, error) {
	today := civil.DateOf(now)
	if completedOn.IsZero() {
		completedOn = today
	}

	if completedOn.After(today) {
		return Completion{}, fmt.Errorf("%w: %s is after %s", ErrFutureCompletion, completedOn, today)
	}
	if last, ok := t.LastCompleted(); ok && !completedOn.After(last) {
		return Completion{}, fmt.Errorf("%w: last completed %s", ErrAlreadyCompleted, last)
	}

	// Points and lateness are measured against the due date before this
	// completion moves it.
	due := t.DueDate()
	if !t.AllowEarly && completedOn.Before(due) {
		return Completion{}, fmt.Errorf("%w: due %s", ErrEarlyCompletion, due)
	}

	c := Completion{
		CompletedOn:  completedOn,
		CompletedBy:  completer,
		PointsEarned: t.PointWorth(completedOn),
		DaysLate:     completedOn.DaysSince(due),
		RecordedOn:   now,
	}
	t.completions = append(t.completions, c)
	return c, nil
}

// SortValue ranks tasks by urgency; higher is more urgent. Lateness is
// counted both inside the decay window and again on its own so overdue tasks
// outrank tasks that are only decaying.
func (t *Task) SortValue(today civil.Date) int {
	if !t.AllowEarly && t.IsNotDue(today) {
		return 0
	}
	due := t.DueDate()
	zeroPointDate := due.AddDays(-t.DecayLength)
	mult := max(0, today.DaysSince(zeroPointDate))
	daysLate := max(0, today.DaysSince(due))
	return t.Points * (mult + daysLate)
}

// SetTags replaces the tags, lowercased, deduplicated and sorted.
func (t *Task) SetTags(tags []string) {
	t.Tags = normalizeTags(tags)
}

func (t *Task) String() string {
	return fmt.Sprintf("%s starts on %s and recurs every %d days", t.Name, t.FirstDue, t.Length)
}

func normalizeTags(tags []string) []string {
	var out []string
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag != "" && !slices.Contains(out, tag) {
			out = append(out, tag)
		}
	}
	slices.Sort(out)
	return out
}

package recurrence

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = civil.Date{Year: 2026, Month: time.October, Day: 19}

func at(d civil.Date) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 9, 30, 0, 0, time.UTC)
}

func mustTask(t *testing.T, opts Options) *Task {
	t.Helper()
	if opts.Name == "" {
		opts.Name = "Eat Ham"
	}
	task, err := NewTask(opts, today)
	require.NoError(t, err)
	return task
}

func TestNewTask_Defaults(t *testing.T) {
	task := mustTask(t, Options{Length: 12, Points: 100, Tags: []string{"there", "Hi", "hi", " "}})

	assert.NotEmpty(t, task.ID)
	assert.Equal(t, today.AddDays(1), task.FirstDue)
	assert.Equal(t, 12, task.DecayLength)
	assert.Equal(t, []string{"hi", "there"}, task.Tags)
	assert.Empty(t, task.Completions())
}

func TestNewTask_InvalidConfiguration(t *testing.T) {
	cases := map[string]Options{
		"zero length":     {Name: "a", Length: 0},
		"negative length": {Name: "a", Length: -3},
		"negative decay":  {Name: "a", Length: 3, DecayLength: -1},
		"negative points": {Name: "a", Length: 3, Points: -5},
		"missing name":    {Name: "  ", Length: 3},
	}
	for name, opts := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewTask(opts, today)
			assert.ErrorIs(t, err, ErrInvalidConfiguration)
		})
	}
}

func TestDueDate(t *testing.T) {
	task := mustTask(t, Options{Length: 7, FirstDue: today.AddDays(-2), AllowEarly: true, Points: 10})
	assert.Equal(t, today.AddDays(-2), task.DueDate())

	_, err := task.Complete("me@example.com", today.AddDays(-1), at(today))
	require.NoError(t, err)
	assert.Equal(t, today.AddDays(6), task.DueDate())

	_, err = task.Complete("me@example.com", civil.Date{}, at(today))
	require.NoError(t, err)
	assert.Equal(t, today.AddDays(7), task.DueDate())
}

func TestDueity(t *testing.T) {
	cases := []struct {
		firstDue civil.Date
		want     Dueity
	}{
		{today.AddDays(-1), Overdue},
		{today, Due},
		{today.AddDays(1), NotDue},
	}
	for _, tc := range cases {
		t.Run(tc.want.String(), func(t *testing.T) {
			task := mustTask(t, Options{Length: 12, FirstDue: tc.firstDue})
			assert.Equal(t, tc.want, task.Dueity(today))

			flags := []bool{task.IsDue(today), task.IsOverdue(today), task.IsNotDue(today)}
			set := 0
			for _, f := range flags {
				if f {
					set++
				}
			}
			assert.Equal(t, 1, set)
			assert.Equal(t, tc.want == Due, task.IsDue(today))
			assert.Equal(t, tc.want == Overdue, task.IsOverdue(today))
			assert.Equal(t, tc.want == NotDue, task.IsNotDue(today))
		})
	}
}

func TestDueSchedule_Overdue(t *testing.T) {
	task := mustTask(t, Options{Length: 5, FirstDue: today.AddDays(-4)})

	var got []civil.Date
	for d := range task.DueSchedule(today) {
		got = append(got, d)
	}
	assert.Equal(t, []civil.Date{today}, got)
}

func TestDueSchedule_Infinite(t *testing.T) {
	task := mustTask(t, Options{Length: 5, FirstDue: today.AddDays(2)})
	due := task.DueDate()

	got := Upcoming(task.DueSchedule(today), 50)
	require.Len(t, got, 50)
	for n, d := range got {
		assert.Equal(t, due.AddDays(n*5), d, "index %d", n)
	}

	// a fresh sequence starts over
	again := Upcoming(task.DueSchedule(today), 2)
	assert.Equal(t, got[:2], again)
	assert.Nil(t, Upcoming(task.DueSchedule(today), 0))
}

func TestDueSchedule_DueToday(t *testing.T) {
	task := mustTask(t, Options{Length: 3, FirstDue: today})
	assert.Equal(t, []civil.Date{today, today.AddDays(3), today.AddDays(6)},
		Upcoming(task.DueSchedule(today), 3))
}

func TestComplete_Scenario(t *testing.T) {
	tomorrow := today.AddDays(1)

	t.Run("on time", func(t *testing.T) {
		task := mustTask(t, Options{Length: 12, FirstDue: tomorrow, Points: 120, DecayLength: 3})
		c, err := task.Complete("me@example.com", civil.Date{}, at(tomorrow))
		require.NoError(t, err)
		assert.Equal(t, 120, c.PointsEarned)
		assert.Equal(t, 0, c.DaysLate)
		assert.Equal(t, tomorrow, c.CompletedOn)
		assert.Equal(t, "me@example.com", c.CompletedBy)
		assert.Equal(t, at(tomorrow), c.RecordedOn)
		assert.Equal(t, tomorrow.AddDays(12), task.DueDate())
	})

	t.Run("two days late", func(t *testing.T) {
		task := mustTask(t, Options{Length: 12, FirstDue: tomorrow, Points: 120, DecayLength: 3})
		c, err := task.Complete("me@example.com", civil.Date{}, at(tomorrow.AddDays(2)))
		require.NoError(t, err)
		assert.Equal(t, 40, c.PointsEarned)
		assert.Equal(t, 2, c.DaysLate)
	})
}

func TestComplete_Backdated(t *testing.T) {
	task := mustTask(t, Options{Length: 10, FirstDue: today.AddDays(-6), Points: 100, DecayLength: 10})

	c, err := task.Complete("me@example.com", today.AddDays(-3), at(today))
	require.NoError(t, err)
	assert.Equal(t, 3, c.DaysLate)
	assert.Equal(t, 70, c.PointsEarned)
	assert.Equal(t, today.AddDays(7), task.DueDate())
}

func TestComplete_Rejections(t *testing.T) {
	t.Run("future", func(t *testing.T) {
		task := mustTask(t, Options{Length: 3, FirstDue: today, AllowEarly: true})
		_, err := task.Complete("me@example.com", today.AddDays(1), at(today))
		assert.ErrorIs(t, err, ErrFutureCompletion)
		assert.Empty(t, task.Completions())
	})

	t.Run("same day twice", func(t *testing.T) {
		task := mustTask(t, Options{Length: 3, FirstDue: today.AddDays(-1), AllowEarly: true})
		_, err := task.Complete("me@example.com", today, at(today))
		require.NoError(t, err)

		_, err = task.Complete("me@example.com", today, at(today))
		assert.ErrorIs(t, err, ErrAlreadyCompleted)
		assert.Len(t, task.Completions(), 1)
	})

	t.Run("before last completion", func(t *testing.T) {
		task := mustTask(t, Options{Length: 3, FirstDue: today.AddDays(-5), AllowEarly: true})
		_, err := task.Complete("me@example.com", today.AddDays(-1), at(today))
		require.NoError(t, err)

		_, err = task.Complete("me@example.com", today.AddDays(-2), at(today))
		assert.ErrorIs(t, err, ErrAlreadyCompleted)
	})

	t.Run("early not allowed", func(t *testing.T) {
		task := mustTask(t, Options{Length: 3, FirstDue: today.AddDays(2), AllowEarly: false})
		_, err := task.Complete("me@example.com", today, at(today))
		assert.ErrorIs(t, err, ErrEarlyCompletion)
		assert.Empty(t, task.Completions())
	})
}

func TestComplete_EarlyAllowed(t *testing.T) {
	task := mustTask(t, Options{Length: 7, FirstDue: today.AddDays(2), AllowEarly: true, Points: 70, DecayLength: 7})

	c, err := task.Complete("me@example.com", civil.Date{}, at(today))
	require.NoError(t, err)
	assert.Equal(t, -2, c.DaysLate)
	assert.Equal(t, 50, c.PointsEarned)
	assert.Equal(t, today.AddDays(7), task.DueDate())
}

func TestRestore_SortsCompletions(t *testing.T) {
	completions := []Completion{
		{CompletedOn: today.AddDays(-1)},
		{CompletedOn: today.AddDays(-10)},
	}
	task, err := Restore("id-1", Options{Name: "x", Length: 4, FirstDue: today.AddDays(-12)}, completions)
	require.NoError(t, err)

	last, ok := task.LastCompleted()
	require.True(t, ok)
	assert.Equal(t, today.AddDays(-1), last)
	assert.Equal(t, today.AddDays(3), task.DueDate())

	// the caller's slice is not shared
	completions[0].PointsEarned = 99
	assert.Equal(t, 0, task.Completions()[1].PointsEarned)
}

func TestSortValue(t *testing.T) {
	t.Run("not due and early not allowed", func(t *testing.T) {
		task := mustTask(t, Options{Length: 5, FirstDue: today.AddDays(1), Points: 10})
		assert.Equal(t, 0, task.SortValue(today))
	})

	t.Run("not due but early allowed", func(t *testing.T) {
		// zero point date is 4 days ago
		task := mustTask(t, Options{Length: 5, FirstDue: today.AddDays(1), AllowEarly: true, Points: 10})
		assert.Equal(t, 40, task.SortValue(today))
	})

	t.Run("due today", func(t *testing.T) {
		task := mustTask(t, Options{Length: 5, FirstDue: today, Points: 10, DecayLength: 3})
		assert.Equal(t, 30, task.SortValue(today))
	})

	t.Run("overdue counts lateness twice", func(t *testing.T) {
		task := mustTask(t, Options{Length: 5, FirstDue: today.AddDays(-2), Points: 10, DecayLength: 3})
		// mult = 5, daysLate = 2
		assert.Equal(t, 70, task.SortValue(today))
	})

	t.Run("far before window", func(t *testing.T) {
		task := mustTask(t, Options{Length: 30, FirstDue: today.AddDays(10), AllowEarly: true, Points: 10, DecayLength: 3})
		assert.Equal(t, 0, task.SortValue(today))
	})
}

func TestDueityString(t *testing.T) {
	assert.Equal(t, "not due", NotDue.String())
	assert.Equal(t, "due", Due.String())
	assert.Equal(t, "overdue", Overdue.String())
	assert.Equal(t, "Dueity(9)", Dueity(9).String())
}

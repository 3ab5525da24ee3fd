package repository

import (
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/emilianohg/cyclence/internal/recurrence"
)

type CompletionRepo struct {
	db Querier
}

func NewCompletionRepo(db Querier) *CompletionRepo {
	return &CompletionRepo{db: db}
}

// Append stores a completion. A second completion for the same task and day
// is rejected with recurrence.ErrAlreadyCompleted.
func (r *CompletionRepo) Append(taskID string, c recurrence.Completion) error {
	_, err := r.db.Exec(`
		INSERT INTO completions (task_id, completed_on, completed_by, points_earned, days_late, recorded_on)
		VALUES (?, ?, ?, ?, ?, ?)
	`, taskID, c.CompletedOn.String(), c.CompletedBy, c.PointsEarned, c.DaysLate, c.RecordedOn)

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
		return fmt.Errorf("%w: %s", recurrence.ErrAlreadyCompleted, c.CompletedOn)
	}
	return err
}

// ListByTask returns the task's completions, oldest first.
func (r *CompletionRepo) ListByTask(taskID string) ([]recurrence.Completion, error) {
	rows, err := r.db.Query(`
		SELECT completed_on, completed_by, points_earned, days_late, recorded_on
		FROM completions
		WHERE task_id = ?
		ORDER BY completed_on ASC
	`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var completions []recurrence.Completion
	for rows.Next() {
		var c recurrence.Completion
		var completedOn string

		if err := rows.Scan(&completedOn, &c.CompletedBy, &c.PointsEarned, &c.DaysLate, &c.RecordedOn); err != nil {
			return nil, err
		}

		c.CompletedOn, err = parseDate(completedOn)
		if err != nil {
			return nil, err
		}
		completions = append(completions, c)
	}
	return completions, rows.Err()
}

// TotalPoints sums the points a user has earned across all tasks.
func (r *CompletionRepo) TotalPoints(email string) (int, error) {
	var total int
	err := r.db.QueryRow(
		"SELECT COALESCE(SUM(points_earned), 0) FROM completions WHERE completed_by = ?",
		email,
	).Scan(&total)
	return total, err
}

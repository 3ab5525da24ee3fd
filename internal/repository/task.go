package repository

import (
	"database/sql"

	"github.com/emilianohg/cyclence/internal/recurrence"
)

type TaskRepo struct {
	db Querier
}

func NewTaskRepo(db Querier) *TaskRepo {
	return &TaskRepo{db: db}
}

// Create stores the task and makes owner its first user.
func (r *TaskRepo) Create(t *recurrence.Task, owner string) error {
	_, err := r.db.Exec(`
		INSERT INTO tasks (id, name, length_days, first_due, allow_early, points, decay_days, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.Name, t.Length, t.FirstDue.String(), t.AllowEarly, t.Points, t.DecayLength, t.Notes)
	if err != nil {
		return err
	}

	if err := r.setTags(t.ID, t.Tags); err != nil {
		return err
	}

	return r.AddUser(t.ID, owner)
}

// GetByID loads a task with its tags and completion history.
func (r *TaskRepo) GetByID(id string) (*recurrence.Task, error) {
	rows, err := r.queryTaskRows(`
		SELECT id, name, length_days, first_due, allow_early, points, decay_days, notes
		FROM tasks
		WHERE id = ?
	`, id)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	return r.hydrate(rows[0])
}

// ListForUser returns every task the user takes part in, oldest first.
func (r *TaskRepo) ListForUser(email string) ([]*recurrence.Task, error) {
	rows, err := r.queryTaskRows(`
		SELECT t.id, t.name, t.length_days, t.first_due, t.allow_early, t.points, t.decay_days, t.notes
		FROM tasks t
		JOIN task_users tu ON tu.task_id = t.id
		WHERE tu.user_email = ?
		ORDER BY t.created_at, t.name
	`, email)
	if err != nil {
		return nil, err
	}

	tasks := make([]*recurrence.Task, 0, len(rows))
	for _, row := range rows {
		t, err := r.hydrate(row)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// Update saves the task's configuration. Completions are append-only and are
// not touched.
func (r *TaskRepo) Update(t *recurrence.Task) error {
	_, err := r.db.Exec(`
		UPDATE tasks
		SET name = ?, length_days = ?, allow_early = ?, points = ?, decay_days = ?, notes = ?
		WHERE id = ?
	`, t.Name, t.Length, t.AllowEarly, t.Points, t.DecayLength, t.Notes, t.ID)
	if err != nil {
		return err
	}
	return r.setTags(t.ID, t.Tags)
}

func (r *TaskRepo) Delete(id string) error {
	_, err := r.db.Exec("DELETE FROM tasks WHERE id = ?", id)
	return err
}

func (r *TaskRepo) AddUser(taskID, email string) error {
	_, err := r.db.Exec("INSERT OR IGNORE INTO task_users (task_id, user_email) VALUES (?, ?)", taskID, email)
	return err
}

func (r *TaskRepo) RemoveUser(taskID, email string) error {
	_, err := r.db.Exec("DELETE FROM task_users WHERE task_id = ? AND user_email = ?", taskID, email)
	return err
}

// Users returns the emails of everyone sharing the task.
func (r *TaskRepo) Users(taskID string) ([]string, error) {
	rows, err := r.db.Query("SELECT user_email FROM task_users WHERE task_id = ? ORDER BY user_email", taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, err
		}
		emails = append(emails, email)
	}
	return emails, rows.Err()
}

func (r *TaskRepo) HasUser(taskID, email string) (bool, error) {
	var n int
	err := r.db.QueryRow(
		"SELECT COUNT(*) FROM task_users WHERE task_id = ? AND user_email = ?",
		taskID, email,
	).Scan(&n)
	return n > 0, err
}

type taskRow struct {
	id       string
	firstDue string
	opts     recurrence.Options
}

// queryTaskRows reads every row before returning so follow-up queries can
// reuse the connection.
func (r *TaskRepo) queryTaskRows(query string, args ...any) ([]taskRow, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []taskRow
	for rows.Next() {
		var row taskRow
		if err := rows.Scan(
			&row.id, &row.opts.Name, &row.opts.Length, &row.firstDue, &row.opts.AllowEarly,
			&row.opts.Points, &row.opts.DecayLength, &row.opts.Notes,
		); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *TaskRepo) hydrate(row taskRow) (*recurrence.Task, error) {
	firstDue, err := parseDate(row.firstDue)
	if err != nil {
		return nil, err
	}
	row.opts.FirstDue = firstDue

	tags, err := r.tags(row.id)
	if err != nil {
		return nil, err
	}
	row.opts.Tags = tags

	completions, err := NewCompletionRepo(r.db).ListByTask(row.id)
	if err != nil {
		return nil, err
	}

	return recurrence.Restore(row.id, row.opts, completions)
}

func (r *TaskRepo) tags(taskID string) ([]string, error) {
	rows, err := r.db.Query("SELECT tag FROM task_tags WHERE task_id = ? ORDER BY tag", taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

func (r *TaskRepo) setTags(taskID string, tags []string) error {
	if _, err := r.db.Exec("DELETE FROM task_tags WHERE task_id = ?", taskID); err != nil {
		return err
	}
	for _, tag := range tags {
		if _, err := r.db.Exec("INSERT OR IGNORE INTO task_tags (task_id, tag) VALUES (?, ?)", taskID, tag); err != nil {
			return err
		}
	}
	return nil
}

// Exists reports whether a task with id is stored.
func (r *TaskRepo) Exists(id string) (bool, error) {
	var one int
	err := r.db.QueryRow("SELECT 1 FROM tasks WHERE id = ?", id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

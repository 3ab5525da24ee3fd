package repository

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/emilianohg/cyclence/internal/models"
)

type NotificationRepo struct {
	db Querier
}

func NewNotificationRepo(db Querier) *NotificationRepo {
	return &NotificationRepo{db: db}
}

// Create stores n, filling in its ID and creation time when unset.
func (r *NotificationRepo) Create(n models.Notification) (*models.Notification, error) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	n.CreatedAt = n.CreatedAt.UTC()

	_, err := r.db.Exec(`
		INSERT INTO notifications (id, user_email, kind, message, sender, task_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, n.ID, n.UserEmail, string(n.Kind), n.Message, n.Sender, n.TaskID, n.CreatedAt)
	if err != nil {
		return nil, err
	}

	return &n, nil
}

func (r *NotificationRepo) GetByID(id string) (*models.Notification, error) {
	rows, err := r.db.Query(`
		SELECT id, user_email, kind, message, sender, task_id, created_at
		FROM notifications
		WHERE id = ?
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notes, err := scanNotifications(rows)
	if err != nil || len(notes) == 0 {
		return nil, err
	}
	return &notes[0], nil
}

// ListForUser returns the user's notifications, newest first.
func (r *NotificationRepo) ListForUser(email string) ([]models.Notification, error) {
	rows, err := r.db.Query(`
		SELECT id, user_email, kind, message, sender, task_id, created_at
		FROM notifications
		WHERE user_email = ?
		ORDER BY created_at DESC, rowid DESC
	`, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanNotifications(rows)
}

func (r *NotificationRepo) Delete(id string) error {
	_, err := r.db.Exec("DELETE FROM notifications WHERE id = ?", id)
	return err
}

// SentSince reports whether a notification of kind about taskID reached the
// user at or after since.
func (r *NotificationRepo) SentSince(email, taskID string, kind models.NotificationKind, since time.Time) (bool, error) {
	var n int
	err := r.db.QueryRow(`
		SELECT COUNT(*) FROM notifications
		WHERE user_email = ? AND task_id = ? AND kind = ? AND created_at >= ?
	`, email, taskID, string(kind), since.UTC()).Scan(&n)
	return n > 0, err
}

func scanNotifications(rows *sql.Rows) ([]models.Notification, error) {
	var notes []models.Notification
	for rows.Next() {
		var n models.Notification
		var kind string
		var taskID sql.NullString

		if err := rows.Scan(&n.ID, &n.UserEmail, &kind, &n.Message, &n.Sender, &taskID, &n.CreatedAt); err != nil {
			return nil, err
		}

		n.Kind = models.NotificationKind(kind)
		if taskID.Valid {
			n.TaskID = &taskID.String
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

package models

import "time"

type User struct {
	Email     string
	Name      string
	CreatedAt time.Time
}

// DisplayName falls back to the email when no name is set.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

type NotificationKind string

const (
	KindMessage  NotificationKind = "message"
	KindError    NotificationKind = "error"
	KindBefriend NotificationKind = "befriend"
	KindShare    NotificationKind = "share"
	KindReminder NotificationKind = "reminder"
)

// Actionable kinds can be accepted, the rest can only be dismissed.
func (k NotificationKind) Actionable() bool {
	return k == KindBefriend || k == KindShare
}

type Notification struct {
	ID        string
	UserEmail string
	Kind      NotificationKind
	Message   string
	Sender    string  // email of the user who triggered it, empty for system messages
	TaskID    *string // nullable, set for share and reminder notifications
	CreatedAt time.Time
}

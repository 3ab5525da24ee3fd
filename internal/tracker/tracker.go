// Package tracker runs the recurrence engine against stored tasks: creating
// and completing them, sharing them with friends and raising notifications.
package tracker

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"

	"github.com/emilianohg/cyclence/internal/humanize"
	"github.com/emilianohg/cyclence/internal/models"
	"github.com/emilianohg/cyclence/internal/recurrence"
	"github.com/emilianohg/cyclence/internal/repository"
)

var (
	ErrTaskNotFound         = errors.New("task not found")
	ErrAmbiguousTask        = errors.New("more than one task matches")
	ErrUserNotFound         = errors.New("user not found")
	ErrNotFriends           = errors.New("tasks can only be shared with friends")
	ErrSelfInvite           = errors.New("you cannot befriend yourself")
	ErrNotificationNotFound = errors.New("notification not found")
)

type Tracker struct {
	db  *sql.DB
	now func() time.Time
	log zerolog.Logger
}

type Option func(*Tracker)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

func WithLogger(log zerolog.Logger) Option {
	return func(t *Tracker) { t.log = log }
}

func New(db *sql.DB, opts ...Option) *Tracker {
	t := &Tracker{
		db:  db,
		now: time.Now,
		log: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Today is the current calendar date in local time.
func (s *Tracker) Today() civil.Date {
	return civil.DateOf(s.now())
}

// EnsureUser registers the local user.
func (s *Tracker) EnsureUser(email, name string) (*models.User, error) {
	return repository.NewUserRepo(s.db).GetOrCreate(email, name)
}

// CreateTask validates opts and stores the task owned by owner.
func (s *Tracker) CreateTask(owner string, opts recurrence.Options) (*recurrence.Task, error) {
	task, err := recurrence.NewTask(opts, s.Today())
	if err != nil {
		return nil, err
	}

	err = s.withTx(func(tx *sql.Tx) error {
		return repository.NewTaskRepo(tx).Create(task, owner)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.log.Info().Str("task", task.ID).Str("name", task.Name).Str("owner", owner).Msg("task created")
	return task, nil
}

// Task finds one of the actor's tasks by ID, ID prefix or name.
func (s *Tracker) Task(actor, ref string) (*recurrence.Task, error) {
	return s.resolveTask(s.db, actor, ref)
}

// Tasks returns all of the actor's tasks.
func (s *Tracker) Tasks(actor string) ([]*recurrence.Task, error) {
	return repository.NewTaskRepo(s.db).ListForUser(actor)
}

// Complete records a completion of the task on the given day; a zero date
// means today. Rejected completions leave storage unchanged.
func (s *Tracker) Complete(actor, ref string, on civil.Date) (recurrence.Completion, error) {
	var completion recurrence.Completion
	var task *recurrence.Task

	err := s.withTx(func(tx *sql.Tx) error {
		var err error
		task, err = s.resolveTask(tx, actor, ref)
		if err != nil {
			return err
		}

		completion, err = task.Complete(actor, on, s.now())
		if err != nil {
			return err
		}

		return repository.NewCompletionRepo(tx).Append(task.ID, completion)
	})

	if errors.Is(err, recurrence.ErrAlreadyCompleted) && task != nil {
		day := on
		if day.IsZero() {
			day = s.Today()
		}
		s.notify(models.Notification{
			UserEmail: actor,
			Kind:      models.KindError,
			Message:   fmt.Sprintf("You already completed '%s' on %s", task.Name, humanize.Date(day)),
			TaskID:    &task.ID,
		})
	}
	if err != nil {
		s.log.Warn().Err(err).Str("ref", ref).Str("user", actor).Msg("completion rejected")
		return recurrence.Completion{}, err
	}

	s.log.Info().
		Str("task", task.ID).
		Str("completed_on", completion.CompletedOn.String()).
		Int("points", completion.PointsEarned).
		Int("days_late", completion.DaysLate).
		Msg("completion recorded")
	return completion, nil
}

// TaskEdit holds the settings to change; nil fields are left alone.
type TaskEdit struct {
	Name        *string
	Length      *int
	AllowEarly  *bool
	Points      *int
	DecayLength *int
	Tags        *[]string
	Notes       *string
}

func (s *Tracker) EditTask(actor, ref string, edit TaskEdit) (*recurrence.Task, error) {
	var task *recurrence.Task

	err := s.withTx(func(tx *sql.Tx) error {
		var err error
		task, err = s.resolveTask(tx, actor, ref)
		if err != nil {
			return err
		}

		if edit.Name != nil {
			task.Name = strings.TrimSpace(*edit.Name)
		}
		if edit.Length != nil {
			task.Length = *edit.Length
		}
		if edit.AllowEarly != nil {
			task.AllowEarly = *edit.AllowEarly
		}
		if edit.Points != nil {
			task.Points = *edit.Points
		}
		if edit.DecayLength != nil {
			task.DecayLength = *edit.DecayLength
		}
		if edit.Tags != nil {
			task.SetTags(*edit.Tags)
		}
		if edit.Notes != nil {
			task.Notes = *edit.Notes
		}

		if err := task.Validate(); err != nil {
			return err
		}
		return repository.NewTaskRepo(tx).Update(task)
	})
	if err != nil {
		return nil, err
	}

	s.notify(models.Notification{
		UserEmail: actor,
		Kind:      models.KindMessage,
		Message:   fmt.Sprintf("The task '%s' has been updated", task.Name),
		TaskID:    &task.ID,
	})
	return task, nil
}

// DeleteTask removes the actor from a shared task, or deletes the task when
// the actor is its only user.
func (s *Tracker) DeleteTask(actor, ref string) error {
	var message string

	err := s.withTx(func(tx *sql.Tx) error {
		tasks := repository.NewTaskRepo(tx)
		task, err := s.resolveTask(tx, actor, ref)
		if err != nil {
			return err
		}

		users, err := tasks.Users(task.ID)
		if err != nil {
			return err
		}

		if len(users) > 1 {
			message = fmt.Sprintf("You have been removed from the task '%s'", task.Name)
			return tasks.RemoveUser(task.ID, actor)
		}
		message = fmt.Sprintf("The task '%s' has been deleted.", task.Name)
		return tasks.Delete(task.ID)
	})
	if err != nil {
		return err
	}

	s.notify(models.Notification{UserEmail: actor, Kind: models.KindMessage, Message: message})
	s.log.Info().Str("ref", ref).Str("user", actor).Msg(message)
	return nil
}

// Friends lists the actor's friends.
func (s *Tracker) Friends(actor string) ([]models.User, error) {
	return repository.NewFriendRepo(s.db).ListFriends(actor)
}

// Invite sends a friend request to email.
func (s *Tracker) Invite(actor, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == strings.ToLower(actor) {
		s.notify(models.Notification{
			UserEmail: actor,
			Kind:      models.KindError,
			Message:   "Forever alone: you tried to befriend yourself",
		})
		return ErrSelfInvite
	}

	sender, err := repository.NewUserRepo(s.db).GetByEmail(actor)
	if err != nil {
		return err
	}
	if sender == nil {
		return fmt.Errorf("%w: %s", ErrUserNotFound, actor)
	}

	if _, err := repository.NewUserRepo(s.db).GetOrCreate(email, ""); err != nil {
		return err
	}

	already, err := repository.NewFriendRepo(s.db).AreFriends(actor, email)
	if err != nil || already {
		return err
	}

	_, err = repository.NewNotificationRepo(s.db).Create(models.Notification{
		UserEmail: email,
		Kind:      models.KindBefriend,
		Message:   fmt.Sprintf("%s wants to be your friend", sender.DisplayName()),
		Sender:    actor,
		CreatedAt: s.now(),
	})
	return err
}

// Share offers one of the actor's tasks to a friend.
func (s *Tracker) Share(actor, ref, friend string) error {
	task, err := s.Task(actor, ref)
	if err != nil {
		return err
	}

	friends, err := repository.NewFriendRepo(s.db).AreFriends(actor, friend)
	if err != nil {
		return err
	}
	if !friends {
		return fmt.Errorf("%w: %s", ErrNotFriends, friend)
	}

	has, err := repository.NewTaskRepo(s.db).HasUser(task.ID, friend)
	if err != nil || has {
		return err
	}

	sender, err := repository.NewUserRepo(s.db).GetByEmail(actor)
	if err != nil {
		return err
	}
	name := actor
	if sender != nil {
		name = sender.DisplayName()
	}

	_, err = repository.NewNotificationRepo(s.db).Create(models.Notification{
		UserEmail: friend,
		Kind:      models.KindShare,
		Message:   fmt.Sprintf("%s wants to share the task '%s' with you", name, task.Name),
		Sender:    actor,
		TaskID:    &task.ID,
		CreatedAt: s.now(),
	})
	return err
}

// Notifications returns the actor's notifications, newest first.
func (s *Tracker) Notifications(actor string) ([]models.Notification, error) {
	return repository.NewNotificationRepo(s.db).ListForUser(actor)
}

// Respond accepts or dismisses a notification. Accepting a friend request or
// a shared task acts on it; either way the notification is removed.
func (s *Tracker) Respond(actor, notificationID string, accept bool) error {
	notes := repository.NewNotificationRepo(s.db)
	note, err := notes.GetByID(notificationID)
	if err != nil {
		return err
	}
	if note == nil || note.UserEmail != actor {
		return fmt.Errorf("%w: %s", ErrNotificationNotFound, notificationID)
	}

	var replies []models.Notification
	err = s.withTx(func(tx *sql.Tx) error {
		if accept {
			switch note.Kind {
			case models.KindBefriend:
				if err := repository.NewFriendRepo(tx).Add(actor, note.Sender); err != nil {
					return err
				}
				replies = append(replies, models.Notification{
					UserEmail: note.Sender,
					Kind:      models.KindMessage,
					Message:   fmt.Sprintf("%s has accepted your friend request", actor),
					Sender:    actor,
				})

			case models.KindShare:
				if note.TaskID == nil {
					break
				}
				tasks := repository.NewTaskRepo(tx)
				task, err := tasks.GetByID(*note.TaskID)
				if err != nil {
					return err
				}
				if task == nil {
					return fmt.Errorf("%w: %s", ErrTaskNotFound, *note.TaskID)
				}
				if err := tasks.AddUser(task.ID, actor); err != nil {
					return err
				}
				replies = append(replies,
					models.Notification{
						UserEmail: actor,
						Kind:      models.KindMessage,
						Message:   fmt.Sprintf("You have accepted the task '%s'", task.Name),
						TaskID:    &task.ID,
					},
					models.Notification{
						UserEmail: note.Sender,
						Kind:      models.KindMessage,
						Message:   fmt.Sprintf("%s has accepted the task '%s'", actor, task.Name),
						Sender:    actor,
						TaskID:    &task.ID,
					},
				)
			}
		}
		return repository.NewNotificationRepo(tx).Delete(note.ID)
	})
	if err != nil {
		return err
	}

	for _, reply := range replies {
		s.notify(reply)
	}
	return nil
}

// resolveTask matches ref against the actor's tasks by exact ID, ID prefix
// or case-insensitive name.
func (s *Tracker) resolveTask(q repository.Querier, actor, ref string) (*recurrence.Task, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, ErrTaskNotFound
	}

	tasks, err := repository.NewTaskRepo(q).ListForUser(actor)
	if err != nil {
		return nil, err
	}

	var matches []*recurrence.Task
	for _, t := range tasks {
		if t.ID == ref {
			return t, nil
		}
		if strings.HasPrefix(t.ID, strings.ToLower(ref)) || strings.EqualFold(t.Name, ref) {
			matches = append(matches, t)
		}
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrAmbiguousTask, ref)
	}
}

// notify stores a notification on a best-effort basis; failures are logged.
func (s *Tracker) notify(n models.Notification) {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.now()
	}
	if _, err := repository.NewNotificationRepo(s.db).Create(n); err != nil {
		s.log.Error().Err(err).Str("user", n.UserEmail).Str("kind", string(n.Kind)).Msg("failed to store notification")
	}
}

func (s *Tracker) withTx(fn func(tx *sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Package reminder runs the periodic due-task reminder job.
package reminder

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Reminder is whatever leaves reminders for a user's due tasks.
type Reminder interface {
	RemindDue(user string) (int, error)
}

// Scheduler wraps a cron instance whose specs include a seconds field.
type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger
}

func NewScheduler(loc *time.Location, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithLocation(loc), cron.WithSeconds()),
		log:  log,
	}
}

// Schedule registers the reminder job for user on a six-field cron spec or
// a descriptor such as "@every 1h".
func (s *Scheduler) Schedule(spec, user string, r Reminder) (cron.EntryID, error) {
	id, err := s.cron.AddFunc(spec, Job(r, user, s.log))
	if err != nil {
		return 0, fmt.Errorf("invalid reminder schedule %q: %w", spec, err)
	}
	return id, nil
}

// Next reports when the entry runs next. It is zero until the scheduler starts.
func (s *Scheduler) Next(id cron.EntryID) time.Time {
	return s.cron.Entry(id).Next
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// Job returns a cron job that sends the user's reminders and logs the outcome.
func Job(r Reminder, user string, log zerolog.Logger) func() {
	return func() {
		n, err := r.RemindDue(user)
		if err != nil {
			log.Error().Err(err).Str("user", user).Msg("reminder run failed")
			return
		}
		log.Debug().Str("user", user).Int("created", n).Msg("reminder run finished")
	}
}

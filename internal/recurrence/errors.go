package recurrence

import "errors"

var (
	// ErrFutureCompletion is returned when a completion is dated after today.
	ErrFutureCompletion = errors.New("the completion date cannot be in the future")

	// ErrAlreadyCompleted is returned when the task was already completed on
	// the requested date (or later).
	ErrAlreadyCompleted = errors.New("task already completed on that date")

	// ErrEarlyCompletion is returned when a task that does not allow early
	// completion is completed before its due date.
	ErrEarlyCompletion = errors.New("task is not due yet and cannot be completed early")

	// ErrInvalidConfiguration is returned when a task is built with a
	// non-positive length or decay length, or negative points.
	ErrInvalidConfiguration = errors.New("invalid task configuration")
)

package workout

import "errors"

var (
	// ErrWorkoutInProgress is returned by Start when a session is already
	// in progress. Retrying cannot fix it; the caller surfaces it directly.
	ErrWorkoutInProgress = errors.New("a workout is already in progress")

	// ErrDayNotFound is returned by Start when the workout day is absent.
	ErrDayNotFound = errors.New("workout day not found")

	// ErrProgramNotFound is returned by Start when the day's program is absent.
	ErrProgramNotFound = errors.New("program not found")

	// ErrNotFound is returned when a referenced session or log is absent,
	// which usually means the client holds stale state.
	ErrNotFound = errors.New("not found")
)

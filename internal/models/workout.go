package models

import "time"

// Unit is a weight unit for a set log or an exercise preference.
type Unit string

const (
	UnitKg  Unit = "kg"
	UnitLbs Unit = "lbs"
)

// Valid reports whether u is one of the two supported units.
func (u Unit) Valid() bool {
	return u == UnitKg || u == UnitLbs
}

// LbsToKg converts pounds to kilograms.
const LbsToKg = 0.453592

// SessionStatus is the lifecycle state of a workout session.
type SessionStatus string

const (
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
)

// LogStatus is the state of one exercise within a session.
type LogStatus string

const (
	LogLogged  LogStatus = "logged"
	LogSkipped LogStatus = "skipped"
)

// Program is a training program owning an ordered list of workout days.
type Program struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// WorkoutDay is one day within a program.
type WorkoutDay struct {
	ID        int64     `json:"id"`
	ProgramID int64     `json:"programId"`
	Name      string    `json:"name"`
	SortOrder int       `json:"sortOrder"`
	CreatedAt time.Time `json:"createdAt"`
}

// DayExercise prescribes one exercise (and its set count) on a workout day.
type DayExercise struct {
	ID           int64     `json:"id"`
	WorkoutDayID int64     `json:"workoutDayId"`
	ExerciseID   int64     `json:"exerciseId"`
	SetsCount    int       `json:"setsCount"`
	SortOrder    int       `json:"sortOrder"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Exercise is a library exercise. The unit preference is what new set logs
// for this exercise are pre-filled with.
type Exercise struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	UnitPreference Unit      `json:"unitPreference"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Prescription is a day exercise joined with its library exercise, as read
// when starting a session.
type Prescription struct {
	ExerciseID   int64  `json:"exerciseId"`
	ExerciseName string `json:"exerciseName"`
	SetsCount    int    `json:"setsCount"`
	SortOrder    int    `json:"sortOrder"`
	Unit         Unit   `json:"unitPreference"`
}

// WorkoutSession is one workout attempt. Program and day names are
// snapshotted at start so later renames or deletions don't rewrite history.
type WorkoutSession struct {
	ID           int64         `json:"id"`
	ProgramID    *int64        `json:"programId"`
	WorkoutDayID *int64        `json:"workoutDayId"`
	ProgramName  string        `json:"programName"`
	DayName      string        `json:"dayName"`
	Status       SessionStatus `json:"status"`
	StartedAt    time.Time     `json:"startedAt"`
	CompletedAt  *time.Time    `json:"completedAt"`
}

// ExerciseLog is one exercise's occurrence inside a session. ExerciseID is
// nil if the library exercise was deleted; the denormalized name remains.
type ExerciseLog struct {
	ID           int64     `json:"id"`
	ExerciseID   *int64    `json:"exerciseId"`
	SessionID    int64     `json:"sessionId"`
	ExerciseName string    `json:"exerciseName"`
	Status       LogStatus `json:"status"`
	IsAdhoc      bool      `json:"isAdhoc"`
	SortOrder    int       `json:"sortOrder"`
	CreatedAt    time.Time `json:"createdAt"`
}

// SetLog is one set within an exercise log. Weight and reps are nil until
// the user enters them.
type SetLog struct {
	ID            int64     `json:"id"`
	ExerciseLogID int64     `json:"exerciseLogId"`
	SetNumber     int       `json:"setNumber"`
	Weight        *float64  `json:"weight"`
	Reps          *int      `json:"reps"`
	Unit          Unit      `json:"unit"`
	CreatedAt     time.Time `json:"createdAt"`
}

// SetUpdate is a partial update to a set log. Fields that are not Set are
// left unchanged; fields that are Set but not Valid are cleared to NULL.
type SetUpdate struct {
	Weight OptFloat
	Reps   OptInt
	Unit   Unit // empty means unchanged
}

// Empty reports whether the update touches no columns.
func (u SetUpdate) Empty() bool {
	return !u.Weight.Set && !u.Reps.Set && u.Unit == ""
}

// PR is a personal record detected when summarizing a completed session.
type PR struct {
	ExerciseName string  `json:"exerciseName"`
	Weight       float64 `json:"weight"`
	Reps         int     `json:"reps"`
	Unit         Unit    `json:"unit"`
}

// WorkoutSummary aggregates a session for display after completion.
// Exercise counts cover prescribed exercises only; set and volume totals
// include ad-hoc additions. Volume is kilogram-denominated.
type WorkoutSummary struct {
	SessionID          int64      `json:"sessionId"`
	ProgramName        string     `json:"programName"`
	DayName            string     `json:"dayName"`
	StartedAt          time.Time  `json:"startedAt"`
	CompletedAt        *time.Time `json:"completedAt"`
	TotalExercises     int        `json:"totalExercises"`
	CompletedExercises int        `json:"completedExercises"`
	SkippedExercises   int        `json:"skippedExercises"`
	TotalSets          int        `json:"totalSets"`
	TotalVolume        float64    `json:"totalVolume"`
	DurationMinutes    *int       `json:"durationMinutes"`
	PRs                []PR       `json:"prs"`
}

// SessionSummary is one row in the paginated history list.
type SessionSummary struct {
	ID             int64      `json:"id"`
	ProgramName    string     `json:"programName"`
	DayName        string     `json:"dayName"`
	StartedAt      time.Time  `json:"startedAt"`
	CompletedAt    *time.Time `json:"completedAt"`
	ExerciseCount  int        `json:"exerciseCount"`
	CompletedCount int        `json:"completedCount"`
	SkippedCount   int        `json:"skippedCount"`
}

// Performance is a single weighted set with the session date it was lifted.
type Performance struct {
	Weight float64   `json:"weight"`
	Reps   int       `json:"reps"`
	Unit   Unit      `json:"unit"`
	Date   time.Time `json:"date"`
}

// ExerciseStats summarizes a library exercise's history.
type ExerciseStats struct {
	MaxWeight     *Performance `json:"maxWeight"`
	LastPerformed *time.Time   `json:"lastPerformed"`
}

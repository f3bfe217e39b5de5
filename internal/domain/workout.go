package domain

import "time"

// WorkoutSession is the server-side record of one performed routine.
type WorkoutSession struct {
	SessionID        string    `json:"sessionId"`
	UserID           string    `json:"userId,omitempty"`
	RoutineVersionID string    `json:"routineVersionId"`
	StartTime        time.Time `json:"startTime"`
	EndTime          time.Time `json:"endTime"`
	CreatedAt        time.Time `json:"createdAt"`
}

// SetRecord is one logged set, immutable once created. A set counts as
// completed iff its id has an entry in ActiveWorkout.LoggedSets.
type SetRecord struct {
	RecordID       string    `json:"recordId"`
	SessionID      string    `json:"sessionId"`
	SetID          string    `json:"setId"`
	ActualReps     *int      `json:"actualReps,omitempty"`
	ActualWeight   *float64  `json:"actualWeight,omitempty"`
	ActualRestTime *int      `json:"actualRestTime,omitempty"`
	ActualDuration *int      `json:"actualDuration,omitempty"`
	ActualDistance *float64  `json:"actualDistance,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// RestTimerState is the between-set countdown embedded in an ActiveWorkout.
// Created inactive; armed by the workout engine; decremented by the timer
// driver once per second while active.
type RestTimerState struct {
	IsActive      bool   `json:"isActive"`
	SetID         string `json:"setId,omitempty"`
	RemainingTime int    `json:"remainingTime"`
	TotalTime     int    `json:"totalTime"`
}

// Progress reports how much of the countdown has elapsed, in [0,1].
// A timer that was never armed reports 0.
func (t RestTimerState) Progress() float64 {
	if t.TotalTime == 0 {
		return 0
	}
	return float64(t.TotalTime-t.RemainingTime) / float64(t.TotalTime)
}

// ActiveWorkout is the client-owned state of the workout in progress.
// At most one exists at a time; the workout engine persists it to the local
// store after every mutating command so it survives an app restart.
// Exercises is an immutable snapshot copied from the routine at workout start.
type ActiveWorkout struct {
	SessionID            string               `json:"sessionId"`
	RoutineVersionID     string               `json:"routineVersionId"`
	RoutineName          string               `json:"routineName"`
	StartTime            time.Time            `json:"startTime"`
	CurrentExerciseIndex int                  `json:"currentExerciseIndex"`
	Exercises            []ExercisePlan       `json:"exercises"`
	LoggedSets           map[string]SetRecord `json:"loggedSets"`
	RestTimer            RestTimerState       `json:"restTimer"`
}

// SessionHistory is one row of the finished-session listing.
type SessionHistory struct {
	SessionID      string    `json:"sessionId"`
	RoutineName    string    `json:"routineName"`
	StartTime      time.Time `json:"startTime"`
	EndTime        time.Time `json:"endTime"`
	TotalSets      int       `json:"totalSets"`
	TotalExercises int       `json:"totalExercises"`
}

// SessionDetails is a session plus all of its logged sets.
type SessionDetails struct {
	WorkoutSession
	Sets []SetRecord `json:"sets"`
}

type StartWorkoutRequest struct {
	RoutineID string `json:"routineId" validate:"required"`
}

type LogSetRequest struct {
	SessionID      string   `json:"sessionId" validate:"required"`
	SetID          string   `json:"setId" validate:"required"`
	ActualReps     *int     `json:"actualReps,omitempty" validate:"omitempty,gte=0"`
	ActualWeight   *float64 `json:"actualWeight,omitempty" validate:"omitempty,gte=0"`
	ActualDuration *int     `json:"actualDuration,omitempty" validate:"omitempty,gte=0"`
	ActualDistance *float64 `json:"actualDistance,omitempty" validate:"omitempty,gte=0"`
}

type FinishWorkoutRequest struct {
	SessionID         string    `json:"sessionId" validate:"required"`
	FeedbackSentiment Sentiment `json:"feedbackSentiment,omitempty" validate:"omitempty,oneof=POSITIVE NEGATIVE NEUTRAL"`
	FeedbackText      string    `json:"feedbackText,omitempty"`
}

package domain

import "time"

// Program is a user's training program: an ordered collection of routines.
type Program struct {
	ProgramID   string     `json:"programId"`
	UserID      string     `json:"userId"`
	ProgramName string     `json:"programName"`
	Experience  Experience `json:"experience"`
	StartDate   string     `json:"startDate,omitempty"`
	GoalDate    string     `json:"goalDate,omitempty"`
	Goal        string     `json:"goal,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	Routines    []Routine  `json:"routines"`
}

// Routine is an ordered template of exercises a user can perform.
type Routine struct {
	RoutineID    string    `json:"routineId"`
	UserID       string    `json:"userId,omitempty"`
	RoutineName  string    `json:"routineName"`
	RoutineOrder int       `json:"routineOrder"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ExercisePlan is one exercise within a routine version, with its planned sets.
type ExercisePlan struct {
	PlanID           string        `json:"planId"`
	RoutineVersionID string        `json:"routineVersionId,omitempty"`
	ExerciseID       string        `json:"exerciseId,omitempty"`
	ExerciseName     string        `json:"exerciseName"`
	ExecOrder        int           `json:"execOrder"`
	Memo             string        `json:"memo,omitempty"`
	Description      string        `json:"description,omitempty"`
	Sets             []ExerciseSet `json:"sets"`
}

// ExerciseSet is one planned set. RestTime is the planned rest in seconds
// after the set; zero means no rest countdown.
type ExerciseSet struct {
	SetID       string   `json:"setId"`
	PlanID      string   `json:"planId,omitempty"`
	SetTypeName string   `json:"setTypeName,omitempty"`
	SetOrder    int      `json:"setOrder"`
	Reps        *int     `json:"reps,omitempty"`
	Weight      *float64 `json:"weight,omitempty"`
	RestTime    int      `json:"restTime"`
	Duration    *int     `json:"duration,omitempty"`
	Distance    *float64 `json:"distance,omitempty"`
}

// RoutineDetail is the full definition of a routine as served by the API.
type RoutineDetail struct {
	RoutineID   string         `json:"routineId"`
	RoutineName string         `json:"routineName"`
	Plans       []ExercisePlan `json:"plans"`
}

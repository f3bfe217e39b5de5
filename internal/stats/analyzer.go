package stats

import (
	"context"
	"time"

	"reppy/coach-client/internal/domain"
)

// HistoryService provides finished-session history.
type HistoryService interface {
	SessionHistory(ctx context.Context, userID string, from, to time.Time) ([]domain.SessionHistory, error)
}

// MonthlyStats is what the stats screen renders for one month.
type MonthlyStats struct {
	Month          time.Time   `json:"month"` // first day of the month
	TotalWorkouts  int         `json:"totalWorkouts"`
	TotalSets      int         `json:"totalSets"`
	TotalExercises int         `json:"totalExercises"`
	CurrentStreak  int         `json:"currentStreak"`
	WorkoutsByDay  map[int]int `json:"workoutsByDay"` // day of month -> session count
}

// Analyzer aggregates session history into display-ready statistics.
type Analyzer struct {
	history HistoryService
	now     func() time.Time
}

func NewAnalyzer(history HistoryService) *Analyzer {
	return &Analyzer{history: history, now: time.Now}
}

// MonthlyStats aggregates the calendar month containing month.
func (a *Analyzer) MonthlyStats(ctx context.Context, userID string, month time.Time) (*MonthlyStats, error) {
	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, month.Location())
	last := first.AddDate(0, 1, -1)

	sessions, err := a.history.SessionHistory(ctx, userID, first, last)
	if err != nil {
		return nil, err
	}

	s := &MonthlyStats{
		Month:         first,
		WorkoutsByDay: make(map[int]int),
	}
	dates := make([]time.Time, 0, len(sessions))
	for _, sess := range sessions {
		s.TotalWorkouts++
		s.TotalSets += sess.TotalSets
		s.TotalExercises += sess.TotalExercises
		s.WorkoutsByDay[sess.StartTime.Day()]++
		dates = append(dates, sess.StartTime)
	}
	s.CurrentStreak = Streak(dates, a.now())
	return s, nil
}

// Streak counts consecutive daily workouts ending today. No workout today
// means zero; a missed day further back ends the run.
func Streak(dates []time.Time, today time.Time) int {
	if len(dates) == 0 {
		return 0
	}
	seen := make(map[time.Time]struct{}, len(dates))
	for _, d := range dates {
		seen[dayOf(d)] = struct{}{}
	}

	day := dayOf(today)
	if _, ok := seen[day]; !ok {
		return 0
	}
	streak := 0
	for {
		if _, ok := seen[day]; !ok {
			return streak
		}
		streak++
		day = day.AddDate(0, 0, -1)
	}
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Estimated1RM estimates the one-rep max with the Epley formula.
func Estimated1RM(weight float64, reps int) float64 {
	if reps <= 1 {
		return weight
	}
	return weight * (1 + float64(reps)/30)
}

// TotalVolume sums reps x weight over the records that carry both.
func TotalVolume(records []domain.SetRecord) float64 {
	var total float64
	for _, r := range records {
		if r.ActualReps != nil && r.ActualWeight != nil {
			total += float64(*r.ActualReps) * *r.ActualWeight
		}
	}
	return total
}

// CompletionPercent reports completed out of total as a whole percentage.
func CompletionPercent(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(float64(completed)/float64(total)*100 + 0.5)
}

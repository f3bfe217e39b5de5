package workout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reppy/coach-client/internal/domain"
	"reppy/coach-client/internal/store"
)

func intPtr(n int) *int           { return &n }
func floatPtr(f float64) *float64 { return &f }

type fakeRoutines struct {
	detail *domain.RoutineDetail
	err    error
}

func (f *fakeRoutines) RoutineDetails(_ context.Context, routineID string) (*domain.RoutineDetail, error) {
	if f.err != nil {
		return nil, f.err
	}
	d := *f.detail
	d.RoutineID = routineID
	return &d, nil
}

type fakeSessions struct {
	startErr  error
	logErr    error
	finishErr error

	started  int
	logged   []domain.LogSetRequest
	finished []domain.FinishWorkoutRequest
}

func (f *fakeSessions) StartSession(_ context.Context, req domain.StartWorkoutRequest) (*domain.WorkoutSession, error) {
	if f.startErr != nil {
		return nil, f.startErr
	}
	f.started++
	return &domain.WorkoutSession{
		SessionID:        "session-1",
		RoutineVersionID: req.RoutineID,
		StartTime:        time.Now().UTC(),
	}, nil
}

func (f *fakeSessions) LogSet(_ context.Context, req domain.LogSetRequest) (*domain.SetRecord, error) {
	if f.logErr != nil {
		return nil, f.logErr
	}
	f.logged = append(f.logged, req)
	return &domain.SetRecord{
		RecordID:     "record-" + req.SetID,
		SessionID:    req.SessionID,
		SetID:        req.SetID,
		ActualReps:   req.ActualReps,
		ActualWeight: req.ActualWeight,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

func (f *fakeSessions) FinishSession(_ context.Context, req domain.FinishWorkoutRequest) (*domain.WorkoutSession, error) {
	if f.finishErr != nil {
		return nil, f.finishErr
	}
	f.finished = append(f.finished, req)
	return &domain.WorkoutSession{SessionID: req.SessionID, EndTime: time.Now().UTC()}, nil
}

func testRoutine() *domain.RoutineDetail {
	return &domain.RoutineDetail{
		RoutineName: "Push Day",
		Plans: []domain.ExercisePlan{
			{
				PlanID:       "plan-1",
				ExerciseName: "Bench Press",
				ExecOrder:    1,
				Sets: []domain.ExerciseSet{
					{SetID: "set-1", SetOrder: 1, Reps: intPtr(10), Weight: floatPtr(60), RestTime: 90},
					{SetID: "set-2", SetOrder: 2, Reps: intPtr(8), Weight: floatPtr(70), RestTime: 90},
				},
			},
			{
				PlanID:       "plan-2",
				ExerciseName: "Overhead Press",
				ExecOrder:    2,
				Sets: []domain.ExerciseSet{
					{SetID: "set-3", SetOrder: 1, Reps: intPtr(10), Weight: floatPtr(35), RestTime: 60},
				},
			},
		},
	}
}

func newTestEngine(t *testing.T) (*Engine, store.Store, *fakeSessions) {
	t.Helper()
	st := store.NewMemStore()
	sessions := &fakeSessions{}
	e := New(st, &fakeRoutines{detail: testRoutine()}, sessions, nil)
	return e, st, sessions
}

func TestStartWorkout(t *testing.T) {
	e, st, _ := newTestEngine(t)
	ctx := context.Background()

	sessionID, err := e.StartWorkout(ctx, "routine-1")
	require.NoError(t, err)
	assert.Equal(t, "session-1", sessionID)

	active := e.Active()
	require.NotNil(t, active)
	assert.Equal(t, "Push Day", active.RoutineName)
	assert.Equal(t, 0, active.CurrentExerciseIndex)
	assert.Len(t, active.Exercises, 2)
	assert.Empty(t, active.LoggedSets)
	assert.False(t, active.RestTimer.IsActive)

	// persisted before becoming visible
	var persisted domain.ActiveWorkout
	ok, err := st.Get(ctx, store.KeyActiveWorkout, &persisted)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "session-1", persisted.SessionID)
}

func TestStartWorkoutFailureLeavesPriorIntact(t *testing.T) {
	e, _, sessions := newTestEngine(t)
	ctx := context.Background()

	_, err := e.StartWorkout(ctx, "routine-1")
	require.NoError(t, err)
	before := e.Active()

	sessions.startErr = errors.New("backend down")
	_, err = e.StartWorkout(ctx, "routine-2")
	require.ErrorIs(t, err, ErrSessionStart)

	after := e.Active()
	require.NotNil(t, after)
	assert.Equal(t, before.SessionID, after.SessionID)
}

func TestLogSet(t *testing.T) {
	e, st, sessions := newTestEngine(t)
	ctx := context.Background()

	_, err := e.StartWorkout(ctx, "routine-1")
	require.NoError(t, err)

	record, err := e.LogSet(ctx, "set-1", SetInput{Reps: intPtr(10), Weight: floatPtr(60)})
	require.NoError(t, err)
	assert.Equal(t, "set-1", record.SetID)
	require.Len(t, sessions.logged, 1)
	assert.Equal(t, "session-1", sessions.logged[0].SessionID)

	got, ok := e.SetRecord("set-1")
	require.True(t, ok)
	assert.Equal(t, record.RecordID, got.RecordID)

	var persisted domain.ActiveWorkout
	_, err = st.Get(ctx, store.KeyActiveWorkout, &persisted)
	require.NoError(t, err)
	assert.Contains(t, persisted.LoggedSets, "set-1")
}

func TestLogSetFailureLeavesStateUnchanged(t *testing.T) {
	e, _, sessions := newTestEngine(t)
	ctx := context.Background()

	_, err := e.StartWorkout(ctx, "routine-1")
	require.NoError(t, err)

	sessions.logErr = errors.New("backend down")
	_, err = e.LogSet(ctx, "set-1", SetInput{Reps: intPtr(10)})
	require.ErrorIs(t, err, ErrSetLog)

	_, ok := e.SetRecord("set-1")
	assert.False(t, ok, "failed log must not appear locally")
}

func TestLogSetRelogReplacesRecord(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := e.StartWorkout(ctx, "routine-1")
	require.NoError(t, err)

	_, err = e.LogSet(ctx, "set-1", SetInput{Reps: intPtr(10)})
	require.NoError(t, err)
	_, err = e.LogSet(ctx, "set-1", SetInput{Reps: intPtr(8)})
	require.NoError(t, err)

	active := e.Active()
	require.Len(t, active.LoggedSets, 1)
	assert.Equal(t, 8, *active.LoggedSets["set-1"].ActualReps)
}

func TestLogSetWithoutActiveWorkout(t *testing.T) {
	e, _, _ := newTestEngine(t)
	_, err := e.LogSet(context.Background(), "set-1", SetInput{})
	assert.ErrorIs(t, err, ErrNoActiveWorkout)
}

func TestExerciseNavigationClamps(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := e.StartWorkout(ctx, "routine-1")
	require.NoError(t, err)

	// back off the front edge is a no-op
	require.NoError(t, e.PreviousExercise(ctx))
	assert.Equal(t, 0, e.Active().CurrentExerciseIndex)

	require.NoError(t, e.NextExercise(ctx))
	assert.Equal(t, 1, e.Active().CurrentExerciseIndex)
	assert.Equal(t, "Overhead Press", e.CurrentExercise().ExerciseName)

	// forward off the back edge is a no-op
	require.NoError(t, e.NextExercise(ctx))
	assert.Equal(t, 1, e.Active().CurrentExerciseIndex)

	require.NoError(t, e.PreviousExercise(ctx))
	assert.Equal(t, 0, e.Active().CurrentExerciseIndex)
}

func TestFinishWorkout(t *testing.T) {
	e, st, sessions := newTestEngine(t)
	ctx := context.Background()

	_, err := e.StartWorkout(ctx, "routine-1")
	require.NoError(t, err)

	require.NoError(t, e.FinishWorkout(ctx, domain.SentimentPositive, "felt strong"))
	assert.Nil(t, e.Active())
	require.Len(t, sessions.finished, 1)
	assert.Equal(t, domain.SentimentPositive, sessions.finished[0].FeedbackSentiment)

	var persisted domain.ActiveWorkout
	ok, err := st.Get(ctx, store.KeyActiveWorkout, &persisted)
	require.NoError(t, err)
	assert.False(t, ok, "finished workout must be removed from the store")
}

func TestFinishWorkoutFailureKeepsWorkout(t *testing.T) {
	e, _, sessions := newTestEngine(t)
	ctx := context.Background()

	_, err := e.StartWorkout(ctx, "routine-1")
	require.NoError(t, err)

	sessions.finishErr = errors.New("backend down")
	err = e.FinishWorkout(ctx, domain.SentimentNeutral, "")
	require.ErrorIs(t, err, ErrFinish)
	assert.NotNil(t, e.Active(), "failed finish must keep the workout for retry")
}

func TestLoadPersistedRestoresAcrossRestart(t *testing.T) {
	st := store.NewMemStore()
	ctx := context.Background()

	first := New(st, &fakeRoutines{detail: testRoutine()}, &fakeSessions{}, nil)
	_, err := first.StartWorkout(ctx, "routine-1")
	require.NoError(t, err)
	_, err = first.LogSet(ctx, "set-1", SetInput{Reps: intPtr(10), Weight: floatPtr(60)})
	require.NoError(t, err)
	require.NoError(t, first.NextExercise(ctx))

	// a fresh engine over the same store stands in for an app restart
	second := New(st, &fakeRoutines{detail: testRoutine()}, &fakeSessions{}, nil)
	require.NoError(t, second.LoadPersisted(ctx))

	active := second.Active()
	require.NotNil(t, active)
	assert.Equal(t, "session-1", active.SessionID)
	assert.Equal(t, 1, active.CurrentExerciseIndex)
	assert.Contains(t, active.LoggedSets, "set-1")
}

func TestLoadPersistedClampsExerciseIndex(t *testing.T) {
	cases := []struct {
		name  string
		index int
		want  int
	}{
		{"beyond the end", 7, 1},
		{"negative", -3, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st := store.NewMemStore()
			ctx := context.Background()
			require.NoError(t, st.Set(ctx, store.KeyActiveWorkout, domain.ActiveWorkout{
				SessionID:            "session-1",
				Exercises:            testRoutine().Plans,
				CurrentExerciseIndex: tc.index,
				LoggedSets:           map[string]domain.SetRecord{},
			}))

			e := New(st, &fakeRoutines{detail: testRoutine()}, &fakeSessions{}, nil)
			require.NoError(t, e.LoadPersisted(ctx))
			assert.Equal(t, tc.want, e.Active().CurrentExerciseIndex)
			require.NotNil(t, e.CurrentExercise(), "restored pointer must resolve")
		})
	}
}

func TestLoadPersistedWithEmptyStore(t *testing.T) {
	e, _, _ := newTestEngine(t)
	require.NoError(t, e.LoadPersisted(context.Background()))
	assert.Nil(t, e.Active())
}

func TestSubscribeSeesLatestState(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	ch, cancel := e.Subscribe()
	defer cancel()

	_, err := e.StartWorkout(ctx, "routine-1")
	require.NoError(t, err)
	_, err = e.LogSet(ctx, "set-1", SetInput{Reps: intPtr(10)})
	require.NoError(t, err)

	// drain; the last received snapshot must reflect the logged set
	var snap *domain.ActiveWorkout
	for {
		select {
		case s := <-ch:
			snap = s
			continue
		default:
		}
		break
	}
	require.NotNil(t, snap)
	assert.Contains(t, snap.LoggedSets, "set-1")
}

func TestSubscribersReceiveIndependentSnapshots(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	ch1, cancel1 := e.Subscribe()
	defer cancel1()
	ch2, cancel2 := e.Subscribe()
	defer cancel2()

	_, err := e.StartWorkout(ctx, "routine-1")
	require.NoError(t, err)

	first := <-ch1
	require.NotNil(t, first)
	first.LoggedSets["tampered"] = domain.SetRecord{}
	first.CurrentExerciseIndex = 99

	second := <-ch2
	require.NotNil(t, second)
	assert.NotContains(t, second.LoggedSets, "tampered")
	assert.Equal(t, 0, second.CurrentExerciseIndex)
}

func TestActiveReturnsCopy(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := e.StartWorkout(ctx, "routine-1")
	require.NoError(t, err)

	snap := e.Active()
	snap.LoggedSets["tampered"] = domain.SetRecord{}
	snap.CurrentExerciseIndex = 99

	fresh := e.Active()
	assert.NotContains(t, fresh.LoggedSets, "tampered")
	assert.Equal(t, 0, fresh.CurrentExerciseIndex)
}

package workout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"reppy/coach-client/internal/domain"
	"reppy/coach-client/internal/store"
)

var (
	ErrNoActiveWorkout = errors.New("no active workout")
	ErrSessionStart    = errors.New("failed to start workout session")
	ErrSetLog          = errors.New("failed to log set")
	ErrFinish          = errors.New("failed to finish workout")
	ErrInvalidDuration = errors.New("rest duration must not be negative")
)

// RoutineService fetches routine definitions.
type RoutineService interface {
	RoutineDetails(ctx context.Context, routineID string) (*domain.RoutineDetail, error)
}

// SessionService persists workout sessions remotely. It is authoritative:
// local state is updated only after it confirms.
type SessionService interface {
	StartSession(ctx context.Context, req domain.StartWorkoutRequest) (*domain.WorkoutSession, error)
	LogSet(ctx context.Context, req domain.LogSetRequest) (*domain.SetRecord, error)
	FinishSession(ctx context.Context, req domain.FinishWorkoutRequest) (*domain.WorkoutSession, error)
}

// SetInput carries the performed values for one set.
type SetInput struct {
	Reps     *int
	Weight   *float64
	Duration *int
	Distance *float64
}

// Engine owns the single active workout. Mutating commands run one at a time
// to completion, remote call included; reads are always served from the last
// committed snapshot. Every committed mutation is written through to the
// store before it becomes visible.
type Engine struct {
	cmdMu sync.Mutex // serializes mutating commands

	mu      sync.RWMutex // guards active and subs
	active  *domain.ActiveWorkout
	subs    map[int]chan *domain.ActiveWorkout
	nextSub int

	store    store.Store
	routines RoutineService
	sessions SessionService
	logger   *zap.Logger
}

func New(st store.Store, routines RoutineService, sessions SessionService, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		store:    st,
		routines: routines,
		sessions: sessions,
		logger:   logger,
		subs:     make(map[int]chan *domain.ActiveWorkout),
	}
}

// StartWorkout fetches the routine definition, opens a session record
// remotely and replaces any previous active workout with a fresh one.
// On failure the prior active workout, if any, is left untouched.
func (e *Engine) StartWorkout(ctx context.Context, routineID string) (string, error) {
	e.cmdMu.Lock()
	defer e.cmdMu.Unlock()

	detail, err := e.routines.RoutineDetails(ctx, routineID)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSessionStart, err)
	}
	session, err := e.sessions.StartSession(ctx, domain.StartWorkoutRequest{RoutineID: routineID})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSessionStart, err)
	}

	w := &domain.ActiveWorkout{
		SessionID:        session.SessionID,
		RoutineVersionID: session.RoutineVersionID,
		RoutineName:      detail.RoutineName,
		StartTime:        time.Now().UTC(),
		Exercises:        append([]domain.ExercisePlan(nil), detail.Plans...),
		LoggedSets:       make(map[string]domain.SetRecord),
	}
	if err := e.commit(ctx, w); err != nil {
		return "", fmt.Errorf("%w: %w", ErrSessionStart, err)
	}

	e.logger.Info("workout started",
		zap.String("sessionId", session.SessionID),
		zap.String("routineId", routineID),
		zap.Int("exercises", len(w.Exercises)))
	return session.SessionID, nil
}

// LogSet sends the set to the server and, once confirmed, records it under
// setID and persists the snapshot. No optimistic insert: a remote failure
// leaves state unchanged.
func (e *Engine) LogSet(ctx context.Context, setID string, in SetInput) (*domain.SetRecord, error) {
	e.cmdMu.Lock()
	defer e.cmdMu.Unlock()

	cur := e.Active()
	if cur == nil {
		return nil, ErrNoActiveWorkout
	}

	record, err := e.sessions.LogSet(ctx, domain.LogSetRequest{
		SessionID:      cur.SessionID,
		SetID:          setID,
		ActualReps:     in.Reps,
		ActualWeight:   in.Weight,
		ActualDuration: in.Duration,
		ActualDistance: in.Distance,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSetLog, err)
	}

	cur.LoggedSets[setID] = *record
	if err := e.commit(ctx, cur); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSetLog, err)
	}

	e.logger.Debug("set logged",
		zap.String("sessionId", cur.SessionID),
		zap.String("setId", setID))
	return record, nil
}

// NextExercise moves the exercise pointer forward. At the last exercise it is
// a defined no-op, not an error.
func (e *Engine) NextExercise(ctx context.Context) error {
	return e.moveExercise(ctx, 1)
}

// PreviousExercise moves the exercise pointer back. At the first exercise it
// is a defined no-op, not an error.
func (e *Engine) PreviousExercise(ctx context.Context) error {
	return e.moveExercise(ctx, -1)
}

func (e *Engine) moveExercise(ctx context.Context, delta int) error {
	e.cmdMu.Lock()
	defer e.cmdMu.Unlock()

	cur := e.Active()
	if cur == nil {
		return ErrNoActiveWorkout
	}
	if len(cur.Exercises) == 0 {
		return nil
	}

	idx := cur.CurrentExerciseIndex + delta
	if idx < 0 {
		idx = 0
	}
	if max := len(cur.Exercises) - 1; idx > max {
		idx = max
	}
	if idx == cur.CurrentExerciseIndex {
		return nil
	}
	cur.CurrentExerciseIndex = idx
	return e.commit(ctx, cur)
}

// FinishWorkout closes the session remotely and clears the active workout
// from memory and the store. A remote failure leaves the workout intact so
// the user can retry.
func (e *Engine) FinishWorkout(ctx context.Context, sentiment domain.Sentiment, feedbackText string) error {
	e.cmdMu.Lock()
	defer e.cmdMu.Unlock()

	cur := e.Active()
	if cur == nil {
		return ErrNoActiveWorkout
	}

	_, err := e.sessions.FinishSession(ctx, domain.FinishWorkoutRequest{
		SessionID:         cur.SessionID,
		FeedbackSentiment: sentiment,
		FeedbackText:      feedbackText,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFinish, err)
	}
	if err := e.clear(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrFinish, err)
	}

	e.logger.Info("workout finished", zap.String("sessionId", cur.SessionID))
	return nil
}

// LoadPersisted restores an in-progress workout from the store without
// remote re-validation, repairing only structurally invalid fields (missing
// set map, out-of-range exercise pointer). Call once at startup.
func (e *Engine) LoadPersisted(ctx context.Context) error {
	e.cmdMu.Lock()
	defer e.cmdMu.Unlock()

	var w domain.ActiveWorkout
	ok, err := e.store.Get(ctx, store.KeyActiveWorkout, &w)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	if w.LoggedSets == nil {
		w.LoggedSets = make(map[string]domain.SetRecord)
	}
	// a corrupt store file must not restore an out-of-range pointer
	if w.CurrentExerciseIndex < 0 || len(w.Exercises) == 0 {
		w.CurrentExerciseIndex = 0
	} else if max := len(w.Exercises) - 1; w.CurrentExerciseIndex > max {
		w.CurrentExerciseIndex = max
	}

	e.mu.Lock()
	e.active = &w
	e.notifyLocked()
	e.mu.Unlock()

	e.logger.Info("restored persisted workout",
		zap.String("sessionId", w.SessionID),
		zap.Int("loggedSets", len(w.LoggedSets)))
	return nil
}

// Active returns a copy of the current workout state, or nil if none.
func (e *Engine) Active() *domain.ActiveWorkout {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return cloneWorkout(e.active)
}

// CurrentExercise returns the exercise the pointer is on, or nil if no
// workout is active.
func (e *Engine) CurrentExercise() *domain.ExercisePlan {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.active == nil || len(e.active.Exercises) == 0 {
		return nil
	}
	ex := e.active.Exercises[e.active.CurrentExerciseIndex]
	return &ex
}

// SetRecord looks up the logged record for setID.
func (e *Engine) SetRecord(setID string) (domain.SetRecord, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.active == nil {
		return domain.SetRecord{}, false
	}
	r, ok := e.active.LoggedSets[setID]
	return r, ok
}

// Subscribe returns a channel receiving a snapshot after every state change
// (nil when the workout is cleared) and a cancel function. Slow receivers
// only ever miss intermediate snapshots, never the latest one.
func (e *Engine) Subscribe() (<-chan *domain.ActiveWorkout, func()) {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.nextSub
	e.nextSub++
	ch := make(chan *domain.ActiveWorkout, 1)
	e.subs[id] = ch

	cancel := func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if c, ok := e.subs[id]; ok {
			delete(e.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

// commit persists the snapshot and only then makes it visible. Ticks that
// landed on the rest timer while the command was in flight are carried over.
func (e *Engine) commit(ctx context.Context, w *domain.ActiveWorkout) error {
	if err := e.store.Set(ctx, store.KeyActiveWorkout, w); err != nil {
		return err
	}
	e.mu.Lock()
	if e.active != nil && e.active.SessionID == w.SessionID {
		w.RestTimer = e.active.RestTimer
	}
	e.active = w
	e.notifyLocked()
	e.mu.Unlock()
	return nil
}

func (e *Engine) clear(ctx context.Context) error {
	if err := e.store.Remove(ctx, store.KeyActiveWorkout); err != nil {
		return err
	}
	e.mu.Lock()
	e.active = nil
	e.notifyLocked()
	e.mu.Unlock()
	return nil
}

// notifyLocked fans the latest snapshot out to subscribers. Callers hold e.mu.
// Each subscriber gets its own clone so one receiver mutating its snapshot
// cannot reach what another receives.
func (e *Engine) notifyLocked() {
	for _, ch := range e.subs {
		snap := cloneWorkout(e.active)
		select {
		case ch <- snap:
		default:
			// replace the stale pending snapshot
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}

// cloneWorkout copies the mutable parts of w so callers cannot reach into
// engine-owned state. Exercise plans are immutable after workout start and
// are shared.
func cloneWorkout(w *domain.ActiveWorkout) *domain.ActiveWorkout {
	if w == nil {
		return nil
	}
	cp := *w
	cp.Exercises = append([]domain.ExercisePlan(nil), w.Exercises...)
	cp.LoggedSets = make(map[string]domain.SetRecord, len(w.LoggedSets))
	for k, v := range w.LoggedSets {
		cp.LoggedSets[k] = v
	}
	return &cp
}

package workout

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"reppy/coach-client/internal/domain"
)

// Timer commands mutate in-memory state only; the countdown is not written
// through to the store. A restored workout comes back with the timer state
// from the last persisted command.

// StartRestTimer arms the countdown for setID. A running timer is replaced,
// never queued. Zero seconds yields an inactive timer immediately.
func (e *Engine) StartRestTimer(setID string, seconds int) error {
	if seconds < 0 {
		return ErrInvalidDuration
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active == nil {
		return ErrNoActiveWorkout
	}
	e.active.RestTimer = domain.RestTimerState{
		IsActive:      seconds > 0,
		SetID:         setID,
		RemainingTime: seconds,
		TotalTime:     seconds,
	}
	e.notifyLocked()
	return nil
}

// StopRestTimer cancels the countdown. Idempotent, callable at any time.
func (e *Engine) StopRestTimer() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active == nil {
		return
	}
	e.active.RestTimer = domain.RestTimerState{}
	e.notifyLocked()
}

// TickRestTimer advances the countdown by one second and returns the
// resulting state. The driver calling it must stop once IsActive flips false;
// the engine never cancels the driver itself.
func (e *Engine) TickRestTimer() domain.RestTimerState {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active == nil {
		return domain.RestTimerState{}
	}
	t := &e.active.RestTimer
	if !t.IsActive {
		return *t
	}
	if t.RemainingTime > 0 {
		t.RemainingTime--
	}
	t.IsActive = t.RemainingTime > 0
	e.notifyLocked()
	return *t
}

// RestTimer returns the current countdown state.
func (e *Engine) RestTimer() domain.RestTimerState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.active == nil {
		return domain.RestTimerState{}
	}
	return e.active.RestTimer
}

// TimerDriver runs the wall-clock countdown against the engine's rest timer.
// At most one ticking goroutine exists per driver; arming a new timer stops
// the previous goroutine before the new one starts.
type TimerDriver struct {
	engine   *Engine
	interval time.Duration
	logger   *zap.Logger

	mu   sync.Mutex
	stop chan struct{}
}

// NewTimerDriver builds a driver ticking every interval; zero means one
// second. Tests pass a short interval.
func NewTimerDriver(engine *Engine, interval time.Duration) *TimerDriver {
	if interval <= 0 {
		interval = time.Second
	}
	return &TimerDriver{
		engine:   engine,
		interval: interval,
		logger:   engine.logger,
	}
}

// Start arms the engine timer for setID and launches the countdown goroutine.
// The previous goroutine is stopped before the engine timer is rearmed, so a
// freshly armed timer is never decremented by a stale driver.
func (d *TimerDriver) Start(setID string, seconds int) error {
	if seconds < 0 {
		return ErrInvalidDuration
	}

	d.mu.Lock()
	if d.stop != nil {
		close(d.stop)
		d.stop = nil
	}
	d.mu.Unlock()

	if err := d.engine.StartRestTimer(setID, seconds); err != nil {
		return err
	}
	if seconds == 0 {
		return nil
	}

	d.mu.Lock()
	stop := make(chan struct{})
	d.stop = stop
	d.mu.Unlock()

	d.logger.Debug("rest timer armed",
		zap.String("setId", setID),
		zap.Int("seconds", seconds))
	go d.run(stop)
	return nil
}

// Stop cancels both the countdown state and the running goroutine. Safe to
// call at any time, including on subscription teardown.
func (d *TimerDriver) Stop() {
	d.mu.Lock()
	if d.stop != nil {
		close(d.stop)
		d.stop = nil
	}
	d.mu.Unlock()
	d.engine.StopRestTimer()
}

func (d *TimerDriver) run(stop chan struct{}) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			// A replaced driver must not tick the successor's timer.
			// Ownership is re-checked under the lock and held through the
			// tick; Start disowns the old driver under the same lock
			// before it rearms the engine.
			d.mu.Lock()
			if d.stop != stop {
				d.mu.Unlock()
				return
			}
			state := d.engine.TickRestTimer()
			if !state.IsActive {
				d.stop = nil
				d.mu.Unlock()
				return
			}
			d.mu.Unlock()
		}
	}
}

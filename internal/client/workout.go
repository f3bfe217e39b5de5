package client

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"reppy/coach-client/internal/domain"
)

// WorkoutClient talks to the workout session endpoints.
type WorkoutClient struct {
	c *Client
}

func NewWorkoutClient(c *Client) *WorkoutClient {
	return &WorkoutClient{c: c}
}

// StartSession opens a new session record for the routine and returns the
// canonical server copy.
func (w *WorkoutClient) StartSession(ctx context.Context, req domain.StartWorkoutRequest) (*domain.WorkoutSession, error) {
	var out domain.WorkoutSession
	if err := w.c.post(ctx, "/workouts/sessions", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LogSet records one performed set and returns the confirmed record.
func (w *WorkoutClient) LogSet(ctx context.Context, req domain.LogSetRequest) (*domain.SetRecord, error) {
	var out domain.SetRecord
	path := fmt.Sprintf("/workouts/sessions/%s/sets", url.PathEscape(req.SessionID))
	if err := w.c.post(ctx, path, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FinishSession closes the session, optionally attaching feedback.
func (w *WorkoutClient) FinishSession(ctx context.Context, req domain.FinishWorkoutRequest) (*domain.WorkoutSession, error) {
	var out domain.WorkoutSession
	path := fmt.Sprintf("/workouts/sessions/%s/finish", url.PathEscape(req.SessionID))
	if err := w.c.put(ctx, path, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SessionHistory lists finished sessions for the user within [from, to],
// inclusive, by calendar date.
func (w *WorkoutClient) SessionHistory(ctx context.Context, userID string, from, to time.Time) ([]domain.SessionHistory, error) {
	q := url.Values{}
	if !from.IsZero() {
		q.Set("startDate", from.Format("2006-01-02"))
	}
	if !to.IsZero() {
		q.Set("endDate", to.Format("2006-01-02"))
	}
	path := fmt.Sprintf("/users/%s/workouts/history", url.PathEscape(userID))
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var out []domain.SessionHistory
	if err := w.c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SessionDetails fetches a session together with all of its logged sets.
func (w *WorkoutClient) SessionDetails(ctx context.Context, sessionID string) (*domain.SessionDetails, error) {
	var out domain.SessionDetails
	path := fmt.Sprintf("/workouts/sessions/%s/details", url.PathEscape(sessionID))
	if err := w.c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

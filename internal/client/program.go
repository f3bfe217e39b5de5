package client

import (
	"context"
	"fmt"
	"net/url"

	"reppy/coach-client/internal/domain"
)

// ProgramClient talks to the program and routine endpoints.
type ProgramClient struct {
	c *Client
}

func NewProgramClient(c *Client) *ProgramClient {
	return &ProgramClient{c: c}
}

// ActiveProgram returns the user's currently active program, or nil if none.
func (p *ProgramClient) ActiveProgram(ctx context.Context, userID string) (*domain.Program, error) {
	var out *domain.Program
	path := fmt.Sprintf("/users/%s/programs/active", url.PathEscape(userID))
	if err := p.c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *ProgramClient) ProgramDetails(ctx context.Context, programID string) (*domain.Program, error) {
	var out domain.Program
	path := fmt.Sprintf("/programs/%s", url.PathEscape(programID))
	if err := p.c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RoutineDetails returns the full routine definition the workout engine
// snapshots at session start.
func (p *ProgramClient) RoutineDetails(ctx context.Context, routineID string) (*domain.RoutineDetail, error) {
	var out domain.RoutineDetail
	path := fmt.Sprintf("/routines/%s", url.PathEscape(routineID))
	if err := p.c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RoutinesByProgram lists the routine summaries of a program. Fetch the full
// definition of one with RoutineDetails.
func (p *ProgramClient) RoutinesByProgram(ctx context.Context, programID string) ([]domain.Routine, error) {
	var out []domain.Routine
	path := fmt.Sprintf("/programs/%s/routines", url.PathEscape(programID))
	if err := p.c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

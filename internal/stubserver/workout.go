package stubserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"reppy/coach-client/internal/domain"
)

// seedProgram attaches the shared demo routines to a new account as its
// active program. Caller holds s.mu.
func (s *Server) seedProgram(userID string) {
	routines := make([]domain.Routine, 0, len(s.routines))
	order := 1
	for _, rd := range s.routines {
		routines = append(routines, domain.Routine{
			RoutineID:    rd.RoutineID,
			UserID:       userID,
			RoutineName:  rd.RoutineName,
			RoutineOrder: order,
			CreatedAt:    time.Now().UTC(),
		})
		order++
	}
	s.programs[userID] = domain.Program{
		ProgramID:   uuid.NewString(),
		UserID:      userID,
		ProgramName: "Starter Strength",
		Experience:  domain.ExperienceBeginner,
		Goal:        "Build a consistent training habit",
		CreatedAt:   time.Now().UTC(),
		Routines:    routines,
	}
}

func (s *Server) handleActiveProgram(c *gin.Context) {
	s.mu.Lock()
	program, ok := s.programs[c.Param("userId")]
	s.mu.Unlock()
	if !ok {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "no active program")
		return
	}
	respondData(c, http.StatusOK, program)
}

func (s *Server) handleProgramDetails(c *gin.Context) {
	programID := c.Param("programId")
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, program := range s.programs {
		if program.ProgramID == programID {
			respondData(c, http.StatusOK, program)
			return
		}
	}
	respondError(c, http.StatusNotFound, "NOT_FOUND", "program not found")
}

func (s *Server) handleRoutinesByProgram(c *gin.Context) {
	programID := c.Param("programId")
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, program := range s.programs {
		if program.ProgramID == programID {
			respondData(c, http.StatusOK, program.Routines)
			return
		}
	}
	respondError(c, http.StatusNotFound, "NOT_FOUND", "program not found")
}

func (s *Server) handleRoutineDetails(c *gin.Context) {
	s.mu.Lock()
	detail, ok := s.routines[c.Param("routineId")]
	s.mu.Unlock()
	if !ok {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "routine not found")
		return
	}
	respondData(c, http.StatusOK, detail)
}

func (s *Server) handleStartSession(c *gin.Context) {
	var req domain.StartWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RoutineID == "" {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "routineId is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.routines[req.RoutineID]; !ok {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "routine not found")
		return
	}
	session := domain.WorkoutSession{
		SessionID:        uuid.NewString(),
		UserID:           currentUserID(c),
		RoutineVersionID: req.RoutineID,
		StartTime:        time.Now().UTC(),
		CreatedAt:        time.Now().UTC(),
	}
	s.sessions[session.SessionID] = &sessionState{session: session}
	respondData(c, http.StatusCreated, session)
}

func (s *Server) handleLogSet(c *gin.Context) {
	var req domain.LogSetRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.SetID == "" {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "setId is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.sessions[c.Param("sessionId")]
	if !ok {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "session not found")
		return
	}
	if !state.session.EndTime.IsZero() {
		respondError(c, http.StatusConflict, "SESSION_FINISHED", "session already finished")
		return
	}
	record := domain.SetRecord{
		RecordID:       uuid.NewString(),
		SessionID:      state.session.SessionID,
		SetID:          req.SetID,
		ActualReps:     req.ActualReps,
		ActualWeight:   req.ActualWeight,
		ActualDuration: req.ActualDuration,
		ActualDistance: req.ActualDistance,
		CreatedAt:      time.Now().UTC(),
	}
	state.sets = append(state.sets, record)
	respondData(c, http.StatusCreated, record)
}

func (s *Server) handleFinishSession(c *gin.Context) {
	var req domain.FinishWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.sessions[c.Param("sessionId")]
	if !ok {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "session not found")
		return
	}
	if state.session.EndTime.IsZero() {
		state.session.EndTime = time.Now().UTC()
	}
	respondData(c, http.StatusOK, state.session)
}

func (s *Server) handleSessionHistory(c *gin.Context) {
	userID := c.Param("userId")
	startDate := c.Query("startDate")
	endDate := c.Query("endDate")

	s.mu.Lock()
	defer s.mu.Unlock()
	history := make([]domain.SessionHistory, 0)
	for _, state := range s.sessions {
		if state.session.UserID != userID || state.session.EndTime.IsZero() {
			continue
		}
		day := state.session.StartTime.Format("2006-01-02")
		if startDate != "" && day < startDate {
			continue
		}
		if endDate != "" && day > endDate {
			continue
		}
		exercises := make(map[string]struct{})
		for _, set := range state.sets {
			exercises[s.planIDForSet(state.session.RoutineVersionID, set.SetID)] = struct{}{}
		}
		history = append(history, domain.SessionHistory{
			SessionID:      state.session.SessionID,
			RoutineName:    s.routineName(state.session.RoutineVersionID),
			StartTime:      state.session.StartTime,
			EndTime:        state.session.EndTime,
			TotalSets:      len(state.sets),
			TotalExercises: len(exercises),
		})
	}
	respondData(c, http.StatusOK, history)
}

func (s *Server) handleSessionDetails(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.sessions[c.Param("sessionId")]
	if !ok {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "session not found")
		return
	}
	respondData(c, http.StatusOK, domain.SessionDetails{
		WorkoutSession: state.session,
		Sets:           append([]domain.SetRecord(nil), state.sets...),
	})
}

// planIDForSet finds the exercise plan a set belongs to. Caller holds s.mu.
// Unknown sets group under their own id so they still count once.
func (s *Server) planIDForSet(routineID, setID string) string {
	if detail, ok := s.routines[routineID]; ok {
		for _, plan := range detail.Plans {
			for _, set := range plan.Sets {
				if set.SetID == setID {
					return plan.PlanID
				}
			}
		}
	}
	return setID
}

// routineName resolves a routine id to its name. Caller holds s.mu.
func (s *Server) routineName(routineID string) string {
	if detail, ok := s.routines[routineID]; ok {
		return detail.RoutineName
	}
	return "Workout"
}

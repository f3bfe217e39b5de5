// Package stubserver is a self-contained implementation of the remote coach
// API, backed by in-memory state. It exists for local development and for
// exercising the client end to end without the production backend.
package stubserver

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"reppy/coach-client/internal/domain"
)

// Config configures the stub API server.
type Config struct {
	JWTSecret     string
	JWTExpiration time.Duration
	// StreamDelay is the pause between SSE chunks. Zero streams as fast as
	// the connection allows, which is what tests want.
	StreamDelay time.Duration
}

type account struct {
	profile      domain.UserProfile
	passwordHash []byte
}

type sessionState struct {
	session domain.WorkoutSession
	sets    []domain.SetRecord
}

// Server holds all stub state. Every map is guarded by mu; handlers never
// hold mu while writing a response.
type Server struct {
	cfg    Config
	logger *zap.Logger

	mu       sync.Mutex
	byEmail  map[string]*account
	byID     map[string]*account
	programs map[string]domain.Program // keyed by userID
	routines map[string]domain.RoutineDetail
	sessions map[string]*sessionState
	messages map[string][]domain.ChatMessage // keyed by userID
}

func New(cfg Config, logger *zap.Logger) *Server {
	if cfg.JWTExpiration <= 0 {
		cfg.JWTExpiration = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		cfg:      cfg,
		logger:   logger,
		byEmail:  make(map[string]*account),
		byID:     make(map[string]*account),
		programs: make(map[string]domain.Program),
		routines: make(map[string]domain.RoutineDetail),
		sessions: make(map[string]*sessionState),
		messages: make(map[string][]domain.ChatMessage),
	}
	s.seedRoutines()
	return s
}

// Router builds the gin engine with all stub routes mounted under /api/v1.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")

	authGroup := apiV1.Group("/auth")
	{
		authGroup.POST("/signup", s.handleSignup)
		authGroup.POST("/login", s.handleLogin)
	}

	protected := apiV1.Group("")
	protected.Use(s.authMiddleware())
	{
		protected.POST("/auth/logout", s.handleLogout)
		protected.POST("/auth/refresh", s.handleRefresh)
		protected.GET("/auth/verify", s.handleVerify)

		protected.GET("/users/:userId/profile", s.handleGetProfile)
		protected.PUT("/users/:userId/profile", s.handleUpdateProfile)
		protected.GET("/users/:userId/programs/active", s.handleActiveProgram)
		protected.GET("/users/:userId/workouts/history", s.handleSessionHistory)

		protected.GET("/programs/:programId", s.handleProgramDetails)
		protected.GET("/programs/:programId/routines", s.handleRoutinesByProgram)
		protected.GET("/routines/:routineId", s.handleRoutineDetails)

		protected.POST("/workouts/sessions", s.handleStartSession)
		protected.POST("/workouts/sessions/:sessionId/sets", s.handleLogSet)
		protected.PUT("/workouts/sessions/:sessionId/finish", s.handleFinishSession)
		protected.GET("/workouts/sessions/:sessionId/details", s.handleSessionDetails)

		protected.POST("/chat/messages", s.handleSendMessage)
		protected.POST("/chat/messages/stream", s.handleStreamMessage)
		protected.GET("/chat/messages", s.handleChatHistory)
		protected.DELETE("/chat/messages/:messageId", s.handleDeleteMessage)
	}

	return router
}

// seedRoutines loads a demo program template shared by every account.
func (s *Server) seedRoutines() {
	reps := func(n int) *int { return &n }
	kg := func(w float64) *float64 { return &w }

	push := domain.RoutineDetail{
		RoutineID:   uuid.NewString(),
		RoutineName: "Push Day",
		Plans: []domain.ExercisePlan{
			{
				PlanID:       uuid.NewString(),
				ExerciseName: "Bench Press",
				ExecOrder:    1,
				Sets: []domain.ExerciseSet{
					{SetID: uuid.NewString(), SetOrder: 1, Reps: reps(10), Weight: kg(60), RestTime: 90},
					{SetID: uuid.NewString(), SetOrder: 2, Reps: reps(8), Weight: kg(70), RestTime: 90},
					{SetID: uuid.NewString(), SetOrder: 3, Reps: reps(6), Weight: kg(75), RestTime: 120},
				},
			},
			{
				PlanID:       uuid.NewString(),
				ExerciseName: "Overhead Press",
				ExecOrder:    2,
				Sets: []domain.ExerciseSet{
					{SetID: uuid.NewString(), SetOrder: 1, Reps: reps(10), Weight: kg(35), RestTime: 60},
					{SetID: uuid.NewString(), SetOrder: 2, Reps: reps(8), Weight: kg(40), RestTime: 60},
				},
			},
		},
	}
	pull := domain.RoutineDetail{
		RoutineID:   uuid.NewString(),
		RoutineName: "Pull Day",
		Plans: []domain.ExercisePlan{
			{
				PlanID:       uuid.NewString(),
				ExerciseName: "Deadlift",
				ExecOrder:    1,
				Sets: []domain.ExerciseSet{
					{SetID: uuid.NewString(), SetOrder: 1, Reps: reps(5), Weight: kg(100), RestTime: 180},
					{SetID: uuid.NewString(), SetOrder: 2, Reps: reps(5), Weight: kg(110), RestTime: 180},
				},
			},
		},
	}
	s.routines[push.RoutineID] = push
	s.routines[pull.RoutineID] = pull
}

// RoutineIDs lists the seeded routine ids, ordered by name, so callers can
// pick a routine without hardcoding generated ids.
func (s *Server) RoutineIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.routines))
	for id := range s.routines {
		ids = append(ids, id)
	}
	// stable order: Pull Day before Push Day would surprise; sort by name
	for i := range ids {
		for j := i + 1; j < len(ids); j++ {
			if s.routines[ids[j]].RoutineName < s.routines[ids[i]].RoutineName {
				ids[i], ids[j] = ids[j], ids[i]
			}
		}
	}
	return ids
}

// --- Response envelope helpers ---

func respondData(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error":   &domain.APIError{Code: code, Message: message},
	})
}

func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error":   &domain.APIError{Code: code, Message: message},
	})
}

package stubserver

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"reppy/coach-client/internal/domain"
)

const contextUserIDKey = "userID"

// jwtClaims mirrors the token payload the production backend issues.
type jwtClaims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

func (s *Server) generateJWT(userID string) (string, error) {
	now := time.Now()
	claims := jwtClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiration)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

// authMiddleware validates the Bearer token and stores the user id in the
// request context.
func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, http.StatusUnauthorized, "AUTH_MISSING_TOKEN", "Authorization header is missing")
			return
		}
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			abortWithError(c, http.StatusUnauthorized, "AUTH_MISSING_TOKEN", "Authorization header format must be Bearer {token}")
			return
		}

		claims := &jwtClaims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(s.cfg.JWTSecret), nil
		})
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				abortWithError(c, http.StatusUnauthorized, "AUTH_TOKEN_EXPIRED", "Token has expired")
			} else {
				abortWithError(c, http.StatusUnauthorized, "AUTH_INVALID_TOKEN", "Invalid token")
			}
			return
		}
		if !token.Valid || claims.UserID == "" {
			abortWithError(c, http.StatusUnauthorized, "AUTH_INVALID_TOKEN", "Invalid token or missing claims")
			return
		}

		c.Set(contextUserIDKey, claims.UserID)
		c.Next()
	}
}

func currentUserID(c *gin.Context) string {
	id, _ := c.Get(contextUserIDKey)
	str, _ := id.(string)
	return str
}

type signupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name"`
}

func (s *Server) handleSignup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	email := strings.ToLower(req.Email)
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(c, http.StatusInternalServerError, domain.CodeServerError, "failed to hash password")
		return
	}

	s.mu.Lock()
	if _, exists := s.byEmail[email]; exists {
		s.mu.Unlock()
		respondError(c, http.StatusConflict, "AUTH_USER_EXISTS", "email already registered")
		return
	}
	acct := &account{
		profile: domain.UserProfile{
			UserID:     uuid.NewString(),
			Email:      email,
			Name:       req.Name,
			UnitSystem: domain.UnitCmKg,
			CreatedAt:  time.Now().UTC(),
		},
		passwordHash: hash,
	}
	s.byEmail[email] = acct
	s.byID[acct.profile.UserID] = acct
	s.seedProgram(acct.profile.UserID)
	s.mu.Unlock()

	token, err := s.generateJWT(acct.profile.UserID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, domain.CodeServerError, "failed to issue token")
		return
	}
	s.logger.Info("user signed up", zap.String("email", email))
	respondData(c, http.StatusCreated, domain.AuthResponse{Token: token, UserID: acct.profile.UserID})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	s.mu.Lock()
	acct, ok := s.byEmail[strings.ToLower(req.Email)]
	s.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(acct.passwordHash, []byte(req.Password)) != nil {
		respondError(c, http.StatusUnauthorized, "AUTH_INVALID_CREDENTIALS", "invalid email or password")
		return
	}

	token, err := s.generateJWT(acct.profile.UserID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, domain.CodeServerError, "failed to issue token")
		return
	}
	respondData(c, http.StatusOK, domain.AuthResponse{Token: token, UserID: acct.profile.UserID})
}

func (s *Server) handleLogout(c *gin.Context) {
	// Tokens are stateless; logout is the client discarding its copy.
	respondData(c, http.StatusOK, gin.H{"loggedOut": true})
}

func (s *Server) handleRefresh(c *gin.Context) {
	userID := currentUserID(c)
	token, err := s.generateJWT(userID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, domain.CodeServerError, "failed to issue token")
		return
	}
	respondData(c, http.StatusOK, domain.AuthResponse{Token: token, UserID: userID})
}

func (s *Server) handleVerify(c *gin.Context) {
	// Reaching this handler means the middleware accepted the token.
	respondData(c, http.StatusOK, gin.H{"valid": true})
}

func (s *Server) handleGetProfile(c *gin.Context) {
	s.mu.Lock()
	acct, ok := s.byID[c.Param("userId")]
	s.mu.Unlock()
	if !ok {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "user not found")
		return
	}
	respondData(c, http.StatusOK, acct.profile)
}

func (s *Server) handleUpdateProfile(c *gin.Context) {
	var profile domain.UserProfile
	if err := c.ShouldBindJSON(&profile); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.byID[c.Param("userId")]
	if !ok {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "user not found")
		return
	}
	if profile.Name != "" {
		acct.profile.Name = profile.Name
	}
	if profile.UnitSystem != "" {
		acct.profile.UnitSystem = profile.UnitSystem
	}
	if profile.Locale != "" {
		acct.profile.Locale = profile.Locale
	}
	respondData(c, http.StatusOK, acct.profile)
}

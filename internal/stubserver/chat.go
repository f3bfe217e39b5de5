package stubserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"reppy/coach-client/internal/domain"
)

var suggestedFollowups = []string{
	"How much rest should I take between sets?",
	"What should I eat after a workout?",
	"How do I know when to increase the weight?",
}

// coachReply is the canned generation. Real responses come from the LLM
// backend; the stub just echoes a plausible coaching answer.
func coachReply(content string) string {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "Tell me a bit more about what you are working on."
	}
	return fmt.Sprintf("Great question about %q. Focus on consistent form first, then add weight gradually. Keep your rest periods honest and log every set so we can track your progress together.", trimmed)
}

func (s *Server) appendMessage(userID string, sender domain.SenderType, content string) domain.ChatMessage {
	msg := domain.ChatMessage{
		MessageID:  uuid.NewString(),
		UserID:     userID,
		SenderType: sender,
		Content:    content,
		CreatedAt:  time.Now().UTC(),
	}
	s.mu.Lock()
	s.messages[userID] = append(s.messages[userID], msg)
	s.mu.Unlock()
	return msg
}

func (s *Server) handleSendMessage(c *gin.Context) {
	var req domain.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Content) == "" {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "content is required")
		return
	}

	userID := currentUserID(c)
	s.appendMessage(userID, domain.SenderUser, req.Content)
	reply := s.appendMessage(userID, domain.SenderCoach, coachReply(req.Content))

	respondData(c, http.StatusOK, domain.SendMessageResponse{
		Message:            reply,
		SuggestedQuestions: suggestedFollowups,
	})
}

// handleStreamMessage answers over SSE: one data line per chunk, a payload
// carrying suggested questions, then the [DONE] sentinel.
func (s *Server) handleStreamMessage(c *gin.Context) {
	var req domain.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Content) == "" {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "content is required")
		return
	}

	userID := currentUserID(c)
	s.appendMessage(userID, domain.SenderUser, req.Content)
	reply := coachReply(req.Content)
	s.appendMessage(userID, domain.SenderCoach, reply)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)

	flusher, _ := c.Writer.(http.Flusher)
	writeChunk := func(chunk domain.StreamChunk) bool {
		payload, err := json.Marshal(chunk)
		if err != nil {
			return false
		}
		if _, err := fmt.Fprintf(c.Writer, "data: %s\n\n", payload); err != nil {
			return false
		}
		if flusher != nil {
			flusher.Flush()
		}
		return true
	}

	for _, word := range strings.SplitAfter(reply, " ") {
		if !writeChunk(domain.StreamChunk{Content: word}) {
			return
		}
		if s.cfg.StreamDelay > 0 {
			select {
			case <-c.Request.Context().Done():
				return
			case <-time.After(s.cfg.StreamDelay):
			}
		}
	}
	if !writeChunk(domain.StreamChunk{SuggestedQuestions: suggestedFollowups}) {
		return
	}
	fmt.Fprint(c.Writer, "data: [DONE]\n\n")
	if flusher != nil {
		flusher.Flush()
	}
}

func (s *Server) handleChatHistory(c *gin.Context) {
	userID := currentUserID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	s.mu.Lock()
	all := s.messages[userID]
	total := len(all)
	// newest first
	page := make([]domain.ChatMessage, 0, limit)
	for i := total - 1 - offset; i >= 0 && len(page) < limit; i-- {
		page = append(page, all[i])
	}
	s.mu.Unlock()

	respondData(c, http.StatusOK, domain.ChatHistoryResponse{
		Messages: page,
		Total:    total,
		HasMore:  offset+len(page) < total,
	})
}

func (s *Server) handleDeleteMessage(c *gin.Context) {
	userID := currentUserID(c)
	messageID := c.Param("messageId")

	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := s.messages[userID]
	for i, msg := range msgs {
		if msg.MessageID == messageID {
			s.messages[userID] = append(msgs[:i:i], msgs[i+1:]...)
			respondData(c, http.StatusOK, gin.H{"deleted": true})
			return
		}
	}
	respondError(c, http.StatusNotFound, "NOT_FOUND", "message not found")
}

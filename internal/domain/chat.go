package domain

import (
	"strings"
	"time"
)

// TempIDPrefix marks client-assigned message ids that have not been confirmed
// by the server yet. The chat reducer strips or rolls back temporary messages
// when the server responds.
const TempIDPrefix = "temp-"

// ChatMessage is one entry in the coach conversation.
type ChatMessage struct {
	MessageID  string     `json:"messageId"`
	UserID     string     `json:"userId,omitempty"`
	SenderType SenderType `json:"senderType"`
	Content    string     `json:"content"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// IsTemporary reports whether the message still carries a client-assigned id.
func (m ChatMessage) IsTemporary() bool {
	return strings.HasPrefix(m.MessageID, TempIDPrefix)
}

type SendMessageRequest struct {
	Content string `json:"content" validate:"required"`
}

type SendMessageResponse struct {
	Message            ChatMessage `json:"message"`
	SuggestedQuestions []string    `json:"suggestedQuestions,omitempty"`
}

// StreamChunk is one JSON payload of the chat SSE stream. Either field may be
// absent; the stream itself is terminated by a literal "[DONE]" sentinel line.
type StreamChunk struct {
	Content            string   `json:"content,omitempty"`
	SuggestedQuestions []string `json:"suggestedQuestions,omitempty"`
}

type ChatHistoryResponse struct {
	Messages []ChatMessage `json:"messages"`
	Total    int           `json:"total"`
	HasMore  bool          `json:"hasMore"`
}

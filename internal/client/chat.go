package client

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"reppy/coach-client/internal/domain"
)

// ErrStreamTransport reports a network or protocol failure mid-stream. Chunks
// delivered before the failure have already been handed to the caller.
var ErrStreamTransport = errors.New("chat stream transport failed")

const streamDoneSentinel = "[DONE]"

// ChatClient talks to the coach chat endpoints, including the SSE stream.
type ChatClient struct {
	c *Client
}

func NewChatClient(c *Client) *ChatClient {
	return &ChatClient{c: c}
}

// Send posts a message and waits for the complete response.
func (cc *ChatClient) Send(ctx context.Context, content string) (*domain.SendMessageResponse, error) {
	var out domain.SendMessageResponse
	req := domain.SendMessageRequest{Content: content}
	if err := cc.c.post(ctx, "/chat/messages", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Stream posts a message and delivers response text to onChunk as the server
// generates it. Chunks arrive in delivery order; Stream never reorders them.
// It blocks until the server sends the done sentinel and returns any suggested
// follow-up questions carried by the stream.
func (cc *ChatClient) Stream(ctx context.Context, content string, onChunk func(string)) ([]string, error) {
	body := domain.SendMessageRequest{Content: content}
	if err := cc.c.validate.Struct(body); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := cc.c.newRequest(ctx, http.MethodPost, "/chat/messages/stream", bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := cc.c.streamHTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStreamTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized && cc.c.onUnauthorized != nil {
		cc.c.onUnauthorized()
	}
	if resp.StatusCode != http.StatusOK {
		return nil, cc.streamError(resp)
	}

	var suggested []string
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		payload, ok := strings.CutPrefix(line, "data: ")
		if !ok {
			continue
		}
		if payload == streamDoneSentinel {
			return suggested, nil
		}
		var chunk domain.StreamChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			cc.c.logger.Warn("discarding malformed stream payload", zap.Error(err))
			continue
		}
		if chunk.Content != "" {
			onChunk(chunk.Content)
		}
		if chunk.SuggestedQuestions != nil {
			suggested = chunk.SuggestedQuestions
		}
	}
	if err := scanner.Err(); err != nil {
		return suggested, fmt.Errorf("%w: %w", ErrStreamTransport, err)
	}
	// the connection closed without a done sentinel
	return suggested, ErrStreamTransport
}

// streamError extracts an API error from a non-200 stream response.
func (cc *ChatClient) streamError(resp *http.Response) error {
	raw, err := io.ReadAll(resp.Body)
	if err == nil {
		var envelope apiResponse
		if jsonErr := json.Unmarshal(raw, &envelope); jsonErr == nil && envelope.Error != nil {
			return envelope.Error
		}
	}
	return &domain.APIError{
		Code:    domain.CodeServerError,
		Message: http.StatusText(resp.StatusCode),
	}
}

// History pages through the conversation, newest first.
func (cc *ChatClient) History(ctx context.Context, limit, offset int) (*domain.ChatHistoryResponse, error) {
	q := url.Values{}
	q.Set("limit", fmt.Sprint(limit))
	q.Set("offset", fmt.Sprint(offset))
	var out domain.ChatHistoryResponse
	if err := cc.c.get(ctx, "/chat/messages?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (cc *ChatClient) DeleteMessage(ctx context.Context, messageID string) error {
	return cc.c.delete(ctx, "/chat/messages/"+url.PathEscape(messageID))
}

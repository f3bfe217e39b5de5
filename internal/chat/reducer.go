package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"reppy/coach-client/internal/domain"
)

var ErrEmptyMessage = errors.New("message content is empty")

// Service is the remote chat transport.
type Service interface {
	Send(ctx context.Context, content string) (*domain.SendMessageResponse, error)
	Stream(ctx context.Context, content string, onChunk func(string)) ([]string, error)
	History(ctx context.Context, limit, offset int) (*domain.ChatHistoryResponse, error)
}

// Reducer owns the conversation message list and folds streamed responses
// into it. One turn runs at a time: IDLE, STREAMING while a stream is open,
// back to IDLE on completion or error.
type Reducer struct {
	turnMu sync.Mutex // one conversation turn at a time

	mu        sync.RWMutex
	messages  []domain.ChatMessage
	streaming bool
	suggested []string
	subs      map[int]chan []domain.ChatMessage
	nextSub   int

	service Service
	logger  *zap.Logger
}

func New(service Service, logger *zap.Logger) *Reducer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reducer{
		service: service,
		logger:  logger,
		subs:    make(map[int]chan []domain.ChatMessage),
	}
}

// Messages returns a copy of the conversation, oldest first.
func (r *Reducer) Messages() []domain.ChatMessage {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.ChatMessage(nil), r.messages...)
}

// Streaming reports whether a streamed response is currently in flight.
func (r *Reducer) Streaming() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.streaming
}

// SuggestedQuestions returns the follow-ups from the most recent coach reply.
func (r *Reducer) SuggestedQuestions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.suggested...)
}

// LoadHistory replaces the message list with a page of server history.
// The server returns newest first; the list is kept oldest first.
func (r *Reducer) LoadHistory(ctx context.Context, limit, offset int) error {
	resp, err := r.service.History(ctx, limit, offset)
	if err != nil {
		return err
	}
	msgs := append([]domain.ChatMessage(nil), resp.Messages...)
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}

	r.mu.Lock()
	r.messages = msgs
	r.notifyLocked()
	r.mu.Unlock()
	return nil
}

// SendMessage appends the user message optimistically and obtains the coach
// reply, streamed or in one shot. It blocks until the turn completes;
// cancelling ctx tears down an in-flight stream.
func (r *Reducer) SendMessage(ctx context.Context, content string, useStreaming bool) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return ErrEmptyMessage
	}

	r.turnMu.Lock()
	defer r.turnMu.Unlock()

	userMsg := domain.ChatMessage{
		MessageID:  domain.TempIDPrefix + uuid.NewString(),
		SenderType: domain.SenderUser,
		Content:    content,
		CreatedAt:  time.Now().UTC(),
	}
	r.mu.Lock()
	r.messages = append(r.messages, userMsg)
	r.notifyLocked()
	r.mu.Unlock()

	if useStreaming {
		return r.sendStreaming(ctx, content)
	}
	return r.sendComplete(ctx, content, userMsg)
}

// sendStreaming opens exactly one coach placeholder and rewrites its content
// from the chunk accumulator as the stream progresses. On transport error the
// partially streamed content stays visible.
func (r *Reducer) sendStreaming(ctx context.Context, content string) error {
	placeholder := domain.ChatMessage{
		MessageID:  domain.TempIDPrefix + "ai-" + uuid.NewString(),
		SenderType: domain.SenderCoach,
		CreatedAt:  time.Now().UTC(),
	}
	r.mu.Lock()
	r.streaming = true
	r.messages = append(r.messages, placeholder)
	r.notifyLocked()
	r.mu.Unlock()

	var acc strings.Builder
	suggested, err := r.service.Stream(ctx, content, func(chunk string) {
		acc.WriteString(chunk)
		r.replaceOpenPlaceholder(acc.String())
	})

	r.mu.Lock()
	r.streaming = false
	if err == nil && suggested != nil {
		r.suggested = suggested
	}
	r.notifyLocked()
	r.mu.Unlock()

	if err != nil {
		r.logger.Warn("chat stream ended early",
			zap.Int("accumulated", acc.Len()),
			zap.Error(err))
		return err
	}
	return nil
}

// replaceOpenPlaceholder rewrites the in-flight coach message with the full
// accumulator value. The placeholder is identified positionally: while a
// stream is open it is always the last message. Re-deriving the whole content
// makes duplicate delivery of the reducer's own update harmless.
func (r *Reducer) replaceOpenPlaceholder(content string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.messages) == 0 {
		return
	}
	last := &r.messages[len(r.messages)-1]
	if last.SenderType != domain.SenderCoach {
		return
	}
	last.Content = content
	r.notifyLocked()
}

// sendComplete waits for a single complete response. On success all
// temporary messages are reconciled against the server reply; on failure only
// the optimistic user message just added is rolled back.
func (r *Reducer) sendComplete(ctx context.Context, content string, userMsg domain.ChatMessage) error {
	resp, err := r.service.Send(ctx, content)

	r.mu.Lock()
	defer r.mu.Unlock()

	if err != nil {
		kept := r.messages[:0:0]
		for _, m := range r.messages {
			if m.MessageID != userMsg.MessageID {
				kept = append(kept, m)
			}
		}
		r.messages = kept
		r.notifyLocked()
		return err
	}

	kept := r.messages[:0:0]
	for _, m := range r.messages {
		if !m.IsTemporary() {
			kept = append(kept, m)
		}
	}
	r.messages = append(kept, userMsg, resp.Message)
	if resp.SuggestedQuestions != nil {
		r.suggested = resp.SuggestedQuestions
	}
	r.notifyLocked()
	return nil
}

// Subscribe returns a channel receiving the full message list after every
// change, plus a cancel function. Slow receivers only ever miss intermediate
// states, never the latest one.
func (r *Reducer) Subscribe() (<-chan []domain.ChatMessage, func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextSub
	r.nextSub++
	ch := make(chan []domain.ChatMessage, 1)
	r.subs[id] = ch

	cancel := func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if c, ok := r.subs[id]; ok {
			delete(r.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

// notifyLocked fans the current message list out to subscribers. Callers
// hold r.mu. Each subscriber gets its own copy so one receiver mutating its
// snapshot cannot reach what another receives.
func (r *Reducer) notifyLocked() {
	for _, ch := range r.subs {
		snap := append([]domain.ChatMessage(nil), r.messages...)
		select {
		case ch <- snap:
		default:
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

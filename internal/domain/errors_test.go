package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserFriendlyMessage(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"known code", &APIError{Code: "AUTH_INVALID_CREDENTIALS"}, "Invalid email or password"},
		{"network", &APIError{Code: CodeNetworkError, Message: "dial tcp: refused"}, "Unable to connect. Please check your internet connection"},
		{"unknown code with message", &APIError{Code: "WEIRD", Message: "server said so"}, "server said so"},
		{"unknown code without message", &APIError{Code: "WEIRD"}, "An unexpected error occurred"},
		{"wrapped api error", fmt.Errorf("sending: %w", &APIError{Code: "NOT_FOUND"}), "The requested resource was not found"},
		{"plain error", errors.New("something broke"), "something broke"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, UserFriendlyMessage(tc.err))
		})
	}
}

func TestAPIErrorError(t *testing.T) {
	assert.Equal(t, "NOT_FOUND: no such routine", (&APIError{Code: "NOT_FOUND", Message: "no such routine"}).Error())
	assert.Equal(t, "NOT_FOUND", (&APIError{Code: "NOT_FOUND"}).Error())
}

func TestRestTimerProgress(t *testing.T) {
	assert.Equal(t, 0.0, RestTimerState{}.Progress(), "unarmed timer reports zero")
	assert.Equal(t, 0.0, RestTimerState{TotalTime: 90, RemainingTime: 90}.Progress())
	assert.Equal(t, 0.5, RestTimerState{TotalTime: 90, RemainingTime: 45}.Progress())
	assert.Equal(t, 1.0, RestTimerState{TotalTime: 90, RemainingTime: 0}.Progress())
}

func TestChatMessageIsTemporary(t *testing.T) {
	assert.True(t, ChatMessage{MessageID: TempIDPrefix + "abc"}.IsTemporary())
	assert.False(t, ChatMessage{MessageID: "server-abc"}.IsTemporary())
}

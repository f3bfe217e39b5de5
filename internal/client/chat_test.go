package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reppy/coach-client/internal/domain"
)

// rawStreamServer answers the stream endpoint with exactly the given lines.
func rawStreamServer(t *testing.T, lines []string) *ChatClient {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for _, line := range lines {
			fmt.Fprintf(w, "%s\n", line)
		}
	}))
	t.Cleanup(ts.Close)
	return NewChatClient(New(ts.URL))
}

func TestStreamSkipsMalformedPayloads(t *testing.T) {
	cc := rawStreamServer(t, []string{
		`data: {"content":"Hel"}`,
		`data: this is not json`,
		``,
		`: comment line`,
		`data: {"content":"lo"}`,
		`data: {"suggestedQuestions":["next?"]}`,
		`data: [DONE]`,
	})

	var chunks []string
	suggested, err := cc.Stream(context.Background(), "hi", func(chunk string) {
		chunks = append(chunks, chunk)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Hel", "lo"}, chunks, "malformed lines are skipped, valid ones kept")
	assert.Equal(t, []string{"next?"}, suggested)
}

func TestStreamMissingSentinelIsTransportError(t *testing.T) {
	cc := rawStreamServer(t, []string{
		`data: {"content":"partial"}`,
	})

	var chunks []string
	_, err := cc.Stream(context.Background(), "hi", func(chunk string) {
		chunks = append(chunks, chunk)
	})
	require.ErrorIs(t, err, ErrStreamTransport)
	assert.Equal(t, []string{"partial"}, chunks, "chunks before the failure were already delivered")
}

func TestStreamNonOKStatusCarriesAPIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"success":false,"error":{"code":"RATE_LIMITED","message":"slow down"}}`)
	}))
	t.Cleanup(ts.Close)
	cc := NewChatClient(New(ts.URL))

	_, err := cc.Stream(context.Background(), "hi", func(string) {})
	require.Error(t, err)
	var apiErr *domain.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "RATE_LIMITED", apiErr.Code)
}

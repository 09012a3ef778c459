package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sseServer(t *testing.T, handler http.HandlerFunc) Config {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := DefaultConfig()
	cfg.BaseURL = srv.URL
	cfg.Model = "test-model"
	cfg.TimeoutMs = 5000
	return cfg
}

func writeDelta(w http.ResponseWriter, text string) {
	payload := map[string]any{
		"choices": []map[string]any{
			{"delta": map[string]string{"content": text}},
		},
	}
	data, _ := json.Marshal(payload)
	fmt.Fprintf(w, "data: %s\n\n", data)
}

func TestStreamChat_RelaysFragments(t *testing.T) {
	cfg := sseServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Stream)
		assert.Equal(t, "test-model", req.Model)
		require.Len(t, req.Messages, 2)

		w.Header().Set("Content-Type", "text/event-stream")
		writeDelta(w, "Привет")
		writeDelta(w, ", мир")
		fmt.Fprint(w, "data: [DONE]\n\n")
	})

	client := NewOpenAIClient(cfg, NoopObserver{})
	stream, err := client.StreamChat(context.Background(), []Message{
		{Role: RoleSystem, Content: "system"},
		{Role: RoleUser, Content: "user"},
	})
	require.NoError(t, err)

	text, err := Collect(stream)
	require.NoError(t, err)
	assert.Equal(t, "Привет, мир", text)
}

func TestStreamChat_SendsBearerToken(t *testing.T) {
	cfg := sseServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		fmt.Fprint(w, "data: [DONE]\n\n")
	})
	cfg.APIKey = "secret"

	client := NewOpenAIClient(cfg, NoopObserver{})
	stream, err := client.StreamChat(context.Background(), nil)
	require.NoError(t, err)

	text, err := Collect(stream)
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestStreamChat_ContextOverflowFrom400(t *testing.T) {
	cfg := sseServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error": {"code": "context_length_exceeded"}}`)
	})

	client := NewOpenAIClient(cfg, NoopObserver{})
	_, err := client.StreamChat(context.Background(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrContextOverflow)
}

func TestStreamChat_OtherStatusIsTransportError(t *testing.T) {
	cfg := sseServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error": "bad key"}`)
	})

	client := NewOpenAIClient(cfg, NoopObserver{})
	_, err := client.StreamChat(context.Background(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)
	assert.NotErrorIs(t, err, ErrContextOverflow)
}

func TestStreamChat_MalformedPayloadMidStream(t *testing.T) {
	cfg := sseServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeDelta(w, "частичный")
		fmt.Fprint(w, "data: {not json}\n\n")
	})

	client := NewOpenAIClient(cfg, NoopObserver{})
	stream, err := client.StreamChat(context.Background(), nil)
	require.NoError(t, err)

	text, err := Collect(stream)
	assert.Equal(t, "частичный", text)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)
}

func TestStreamChat_StreamEndsWithoutDone(t *testing.T) {
	cfg := sseServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeDelta(w, "всё")
	})

	client := NewOpenAIClient(cfg, NoopObserver{})
	stream, err := client.StreamChat(context.Background(), nil)
	require.NoError(t, err)

	text, err := Collect(stream)
	require.NoError(t, err)
	assert.Equal(t, "всё", text)
}

func TestStreamChat_ObserverSeesOutcome(t *testing.T) {
	cfg := sseServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeDelta(w, "a")
		writeDelta(w, "b")
		fmt.Fprint(w, "data: [DONE]\n\n")
	})

	observer := &captureObserver{}
	client := NewOpenAIClient(cfg, observer)
	stream, err := client.StreamChat(context.Background(), nil)
	require.NoError(t, err)

	_, err = Collect(stream)
	require.NoError(t, err)

	event := observer.last
	assert.True(t, event.Success)
	assert.Equal(t, 2, event.Fragments)
	assert.Equal(t, "test-model", event.Model)
	assert.Empty(t, event.ErrorCode)
}

type captureObserver struct {
	last StreamEvent
}

func (o *captureObserver) OnStreamComplete(event StreamEvent) {
	o.last = event
}

func TestErrorCodes(t *testing.T) {
	assert.Equal(t, "CONTEXT_OVERFLOW", errorCode(fmt.Errorf("%w: details", ErrContextOverflow)))
	assert.Equal(t, "TIMEOUT", errorCode(ErrTimeout))
	assert.Equal(t, "TRANSPORT", errorCode(ErrTransport))
	assert.Empty(t, errorCode(nil))
}

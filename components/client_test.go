package components

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startChatServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(handler))
	t.Cleanup(srv.Close)
	return srv
}

func writeCompletion(w http.ResponseWriter, content string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
		ID:    "chatcmpl-1",
		Model: "llama-3.3-70b-versatile",
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content}},
		},
		Usage: openai.Usage{PromptTokens: 10, CompletionTokens: 5},
	})
}

func TestClientPoolUsesContextCredential(t *testing.T) {
	var gotAuth atomic.Value
	srv := startChatServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get("Authorization"))
		writeCompletion(w, "ok")
	})
	pool := NewClientPool(srv.URL, WithDefaultKey("default-key"))

	ctx := WithCredential(context.Background(), "form-key")
	resp, err := pool.CreateChatCompletion(ctx, openai.ChatCompletionRequest{Model: "m"})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Choices[0].Message.Content)
	assert.Equal(t, "Bearer form-key", gotAuth.Load())

	_, err = pool.CreateChatCompletion(context.Background(), openai.ChatCompletionRequest{Model: "m"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer default-key", gotAuth.Load())
	assert.Same(t, pool.Client("form-key"), pool.Client("form-key"))
}

func TestClientPoolWithoutCredential(t *testing.T) {
	var calls atomic.Int32
	srv := startChatServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeCompletion(w, "ok")
	})
	pool := NewClientPool(srv.URL)
	_, err := pool.CreateChatCompletion(context.Background(), openai.ChatCompletionRequest{Model: "m"})
	require.ErrorIs(t, err, ErrNoCredential)
	assert.Zero(t, calls.Load())
}

func TestRetryClientRetriesTransient(t *testing.T) {
	var calls atomic.Int32
	srv := startChatServer(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":{"message":"rate limited","type":"rate_limit"}}`))
			return
		}
		writeCompletion(w, "done")
	})
	clt := NewRetryClient(NewClientPool(srv.URL, WithDefaultKey("k")), 3, time.Millisecond, nil)
	resp, err := clt.CreateChatCompletion(context.Background(), openai.ChatCompletionRequest{Model: "m"})
	require.NoError(t, err)
	assert.Equal(t, "done", resp.Choices[0].Message.Content)
	assert.EqualValues(t, 3, calls.Load())
}

func TestRetryClientDoesNotMaskPersistentFailure(t *testing.T) {
	var calls atomic.Int32
	srv := startChatServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid api key","type":"invalid_request_error"}}`))
	})
	clt := NewRetryClient(NewClientPool(srv.URL, WithDefaultKey("bad")), 3, time.Millisecond, nil)
	_, err := clt.CreateChatCompletion(context.Background(), openai.ChatCompletionRequest{Model: "m"})
	require.Error(t, err)
	var apiErr *openai.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.HTTPStatusCode)
	assert.EqualValues(t, 1, calls.Load())
}

func TestLLMResponseMergesUsage(t *testing.T) {
	resp := new(LLMResponse)
	resp.FromOpenAI(&openai.ChatCompletionResponse{ID: "a", Usage: openai.Usage{PromptTokens: 3, CompletionTokens: 4}})
	resp.FromOpenAI(&openai.ChatCompletionResponse{ID: "b", Usage: openai.Usage{PromptTokens: 1, CompletionTokens: 2}})
	assert.Equal(t, "b", resp.ID)
	assert.EqualValues(t, 4, resp.Usage.InputTokens)
	assert.EqualValues(t, 6, resp.Usage.OutputTokens)
}

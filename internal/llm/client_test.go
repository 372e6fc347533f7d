package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) LLMConfig {
	cfg := DefaultConfig()
	cfg.APIKey = "test-key"
	cfg.BaseURL = baseURL
	cfg.RateLimit = 0
	return cfg
}

type recordingObserver struct {
	mu     sync.Mutex
	events []LLMCallEvent
}

func (o *recordingObserver) OnCallComplete(e LLMCallEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, e)
}

const chatCompletionJSON = `{
  "id": "chatcmpl-1", "object": "chat.completion", "created": 1,
  "model": "gpt-4o-2024-08-06",
  "choices": [{"index": 0, "message": {"role": "assistant", "content": "  Park at Lionshead.  "}, "finish_reason": "stop"}],
  "usage": {"prompt_tokens": 10, "completion_tokens": 4, "total_tokens": 14}
}`

func TestOpenAIClient_Generate_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req openai.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o", req.Model)
		assert.Equal(t, float32(0.5), req.Temperature)
		assert.Equal(t, 700, req.MaxTokens)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, openai.ChatMessageRoleSystem, req.Messages[0].Role)
		assert.Equal(t, "You are a helpful assistant.", req.Messages[0].Content)
		assert.Equal(t, "where to park?", req.Messages[1].Content)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(chatCompletionJSON))
	}))
	defer srv.Close()

	obs := &recordingObserver{}
	client, err := NewOpenAIClient(testConfig(srv.URL+"/v1"), obs)
	require.NoError(t, err)

	resp, err := client.Generate(context.Background(), GenerateRequest{
		Task:       TaskAnswer,
		UserPrompt: "where to park?",
	})

	require.NoError(t, err)
	assert.Equal(t, "Park at Lionshead.", resp.Text)
	assert.Equal(t, "gpt-4o-2024-08-06", resp.Model)
	require.Len(t, obs.events, 1)
	assert.True(t, obs.events[0].Success)
	assert.Equal(t, 1, obs.events[0].Attempts)
}

func TestOpenAIClient_Generate_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.Write([]byte(chatCompletionJSON))
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL + "/v1")
	cfg.Tasks = map[TaskType]TaskConfig{
		TaskAnswer: {Temperature: 0.5, MaxTokens: 700, TimeoutMs: 50},
	}

	client, err := NewOpenAIClient(cfg, NoopObserver{})
	require.NoError(t, err)
	_, err = client.Generate(context.Background(), GenerateRequest{Task: TaskAnswer, UserPrompt: "test"})

	assert.ErrorIs(t, err, ErrTimeout)
}

func TestOpenAIClient_Generate_Unavailable(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1/v1") // nothing listening
	cfg.MaxRetries = 0

	client, err := NewOpenAIClient(cfg, NoopObserver{})
	require.NoError(t, err)
	_, err = client.Generate(context.Background(), GenerateRequest{Task: TaskAnswer, UserPrompt: "test"})

	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestOpenAIClient_Generate_RetryOnTransientError(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) == 1 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error": {"message": "internal error", "type": "server_error"}}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(chatCompletionJSON))
	}))
	defer srv.Close()

	client, err := NewOpenAIClient(testConfig(srv.URL+"/v1"), NoopObserver{})
	require.NoError(t, err)
	resp, err := client.Generate(context.Background(), GenerateRequest{Task: TaskAnswer, UserPrompt: "test"})

	require.NoError(t, err)
	assert.Equal(t, "Park at Lionshead.", resp.Text)
	assert.Equal(t, int32(2), atomic.LoadInt32(&attempts))
}

func TestOpenAIClient_Generate_EmptyChoicesExhaustRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "x", "object": "chat.completion", "model": "gpt-4o", "choices": []}`))
	}))
	defer srv.Close()

	obs := &recordingObserver{}
	client, err := NewOpenAIClient(testConfig(srv.URL+"/v1"), obs)
	require.NoError(t, err)
	_, err = client.Generate(context.Background(), GenerateRequest{Task: TaskAnswer, UserPrompt: "test"})

	assert.ErrorIs(t, err, ErrRetryExhausted)
	assert.ErrorIs(t, err, ErrEmptyResponse)
	require.Len(t, obs.events, 1)
	assert.Equal(t, "EMPTY", obs.events[0].ErrorCode)
	assert.Equal(t, 2, obs.events[0].Attempts)
}

func TestNewOpenAIClient_RequiresKey(t *testing.T) {
	cfg := DefaultConfig()
	cfg.APIKey = ""

	_, err := NewOpenAIClient(cfg, nil)

	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestNew_UnknownProvider(t *testing.T) {
	cfg := testConfig("")
	cfg.Provider = Provider("llama")

	_, err := New(cfg, nil)

	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestAnthropicClient_Generate_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "claude-sonnet-4-5-20250929", body["model"])
		assert.EqualValues(t, 700, body["max_tokens"])
		assert.EqualValues(t, 0.5, body["temperature"])
		system, ok := body["system"].([]any)
		require.True(t, ok)
		require.Len(t, system, 1)
		assert.Equal(t, "You are a helpful assistant.", system[0].(map[string]any)["text"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "msg_01", "type": "message", "role": "assistant",
			"model": "claude-sonnet-4-5-20250929",
			"content": [{"type": "text", "text": "Bluebird Parking "}, {"type": "text", "text": "is closest."}],
			"stop_reason": "end_turn", "stop_sequence": null,
			"usage": {"input_tokens": 10, "output_tokens": 5}
		}`))
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Provider = ProviderAnthropic
	cfg.Model = "claude-sonnet-4-5-20250929"

	client, err := New(cfg, NoopObserver{})
	require.NoError(t, err)
	resp, err := client.Generate(context.Background(), GenerateRequest{Task: TaskAnswer, UserPrompt: "closest lot?"})

	require.NoError(t, err)
	assert.Equal(t, "Bluebird Parking is closest.", resp.Text)
	assert.Equal(t, "claude-sonnet-4-5-20250929", resp.Model)
}

func TestAnthropicClient_Generate_ServerErrorExhaustsRetries(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"type": "error", "error": {"type": "api_error", "message": "overloaded"}}`))
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Provider = ProviderAnthropic
	cfg.Model = "claude-sonnet-4-5-20250929"

	client, err := New(cfg, NoopObserver{})
	require.NoError(t, err)
	_, err = client.Generate(context.Background(), GenerateRequest{Task: TaskAnswer, UserPrompt: "q"})

	assert.ErrorIs(t, err, ErrRetryExhausted)
	assert.Equal(t, int32(2), atomic.LoadInt32(&attempts))
}

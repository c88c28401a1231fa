package generation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/dailyreason/dailyreason/internal/config"
	"github.com/dailyreason/dailyreason/internal/httpclient"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

func testConfig(baseURL string) config.GenerationConfig {
	return config.GenerationConfig{
		APIKey:      "sk-test",
		BaseURL:     baseURL,
		Model:       config.DefaultOpenAIModel,
		MaxTokens:   config.DefaultOpenAIMaxTokens,
		Temperature: config.DefaultOpenAITemperature,
	}
}

func completion(content string) string {
	body, _ := json.Marshal(map[string]any{
		"id": "chatcmpl-1",
		"choices": []map[string]any{
			{"index": 0, "message": map[string]any{"role": "assistant", "content": content}},
		},
	})
	return string(body)
}

// scriptedServer answers request n with responses[n-1], repeating the last one.
func scriptedServer(t *testing.T, responses ...func(w http.ResponseWriter, r *http.Request)) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := int(calls.Add(1))
		if n > len(responses) {
			n = len(responses)
		}
		responses[n-1](w, r)
	}))
	server.Config.SetKeepAlivesEnabled(false)
	t.Cleanup(server.Close)
	return server, &calls
}

func respond(status int, body string) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func TestClient_Generate_SendsChatCompletionRequest(t *testing.T) {
	t.Parallel()

	var (
		gotPath string
		gotAuth string
		gotBody chatRequest
	)
	server, calls := scriptedServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		respond(http.StatusOK, completion("  Hire her.\n"))(w, r)
	})

	client := NewClient(testConfig(server.URL + "/v1/"))
	text, err := client.Generate(context.Background(), "write one sentence")
	require.NoError(t, err)

	assert.Equal(t, "Hire her.", text)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, "/v1/chat/completions", gotPath)
	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, chatRequest{
		Model:       config.DefaultOpenAIModel,
		Messages:    []chatMessage{{Role: "user", Content: "write one sentence"}},
		MaxTokens:   config.DefaultOpenAIMaxTokens,
		Temperature: config.DefaultOpenAITemperature,
	}, gotBody)
}

func TestClient_Generate_Retries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		responses     []func(http.ResponseWriter, *http.Request)
		wantCalls     int32
		wantText      string
		wantStatus    int
		errorContains string
	}{
		{
			name: "succeeds on third attempt",
			responses: []func(http.ResponseWriter, *http.Request){
				respond(http.StatusInternalServerError, `{"error":"overloaded"}`),
				respond(http.StatusTooManyRequests, `{"error":"slow down"}`),
				respond(http.StatusOK, completion("third time lucky")),
			},
			wantCalls: 3,
			wantText:  "third time lucky",
		},
		{
			name: "fails after three non-2xx responses",
			responses: []func(http.ResponseWriter, *http.Request){
				respond(http.StatusUnauthorized, `{"error":"bad key"}`),
				respond(http.StatusBadGateway, `bad gateway`),
			},
			wantCalls:     3,
			wantStatus:    http.StatusBadGateway,
			errorContains: "attempt 3",
		},
		{
			name: "missing content fails the attempt",
			responses: []func(http.ResponseWriter, *http.Request){
				respond(http.StatusOK, `{"choices":[]}`),
				respond(http.StatusOK, completion("recovered")),
			},
			wantCalls: 2,
			wantText:  "recovered",
		},
		{
			name: "whitespace content is treated as empty",
			responses: []func(http.ResponseWriter, *http.Request){
				respond(http.StatusOK, completion("   ")),
			},
			wantCalls:     3,
			errorContains: ErrEmptyContent.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server, calls := scriptedServer(t, tt.responses...)
			client := NewClient(testConfig(server.URL), WithBackoffBase(time.Millisecond))

			text, err := client.Generate(context.Background(), "prompt")
			assert.Equal(t, tt.wantCalls, calls.Load())

			if tt.errorContains == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.wantText, text)
				return
			}

			require.Error(t, err)
			assert.Empty(t, text)
			assert.ErrorIs(t, err, ErrGenerationFailed)
			assert.Contains(t, err.Error(), tt.errorContains)
			if tt.wantStatus != 0 {
				assert.Equal(t, tt.wantStatus, httpclient.StatusCode(err))
			}
		})
	}
}

func TestClient_Generate_AttemptTimeout(t *testing.T) {
	t.Parallel()

	server, calls := scriptedServer(t,
		func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		},
		respond(http.StatusOK, completion("after timeout")),
	)

	client := NewClient(testConfig(server.URL),
		WithAttemptTimeout(50*time.Millisecond),
		WithBackoffBase(time.Millisecond),
	)

	text, err := client.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "after timeout", text)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_Generate_AllAttemptsTimeOut(t *testing.T) {
	t.Parallel()

	server, calls := scriptedServer(t, func(_ http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	client := NewClient(testConfig(server.URL),
		WithAttempts(2),
		WithAttemptTimeout(20*time.Millisecond),
		WithBackoffBase(time.Millisecond),
	)

	_, err := client.Generate(context.Background(), "prompt")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGenerationFailed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, err.Error(), "timed out")
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_Generate_ParentCancelled(t *testing.T) {
	t.Parallel()

	server, calls := scriptedServer(t, respond(http.StatusServiceUnavailable, "down"))

	ctx, cancel := context.WithCancel(context.Background())
	client := NewClient(testConfig(server.URL), WithBackoffBase(time.Hour))

	done := make(chan error, 1)
	go func() {
		_, err := client.Generate(ctx, "prompt")
		done <- err
	}()

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Generate did not return after cancellation")
	}
}

package helpers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
)

// FakeOpenAI is an in-process chat completions endpoint
type FakeOpenAI struct {
	*httptest.Server

	mu      sync.Mutex
	content string
	status  int
	calls   atomic.Int32
}

// NewFakeOpenAI starts a server that answers every completion with content
func NewFakeOpenAI(content string) *FakeOpenAI {
	f := &FakeOpenAI{content: content, status: http.StatusOK}
	f.Server = httptest.NewServer(http.HandlerFunc(f.handle))
	return f
}

// SetContent changes the generated sentence
func (f *FakeOpenAI) SetContent(content string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.content = content
	f.status = http.StatusOK
}

// FailWith makes every request return status
func (f *FakeOpenAI) FailWith(status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = status
}

// Calls reports how many completion requests were received
func (f *FakeOpenAI) Calls() int {
	return int(f.calls.Load())
}

func (f *FakeOpenAI) handle(w http.ResponseWriter, r *http.Request) {
	f.calls.Add(1)

	if r.Method != http.MethodPost || r.URL.Path != "/chat/completions" {
		http.NotFound(w, r)
		return
	}

	f.mu.Lock()
	content, status := f.content, f.status
	f.mu.Unlock()

	if status != http.StatusOK {
		http.Error(w, `{"error":{"message":"upstream unavailable"}}`, status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	})
}

package testutil

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/suicidekings/carclub/internal/httpclient"
)

// MockHTTPClient implements a mock HTTP client for testing
type MockHTTPClient struct {
	mu     sync.RWMutex
	routes map[string][]MockResponse
	calls  map[string]int
}

// MockResponse represents a mock HTTP response
type MockResponse struct {
	StatusCode int
	Body       []byte
	Headers    map[string]string
}

// NewMockHTTPClient creates a new mock HTTP client
func NewMockHTTPClient() *MockHTTPClient {
	return &MockHTTPClient{
		routes: make(map[string][]MockResponse),
		calls:  make(map[string]int),
	}
}

// RegisterResponse registers a mock response for requests whose URL ends
// with the given path. Registering the same path again queues the response
// behind earlier ones; the last response repeats once the queue drains.
func (m *MockHTTPClient) RegisterResponse(path string, resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes[path] = append(m.routes[path], resp)
}

// Calls returns how many requests matched the given path
func (m *MockHTTPClient) Calls(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls[path]
}

// Send implements the httpclient.Client interface. Non-2xx responses are
// returned as httpclient errors, matching DefaultClient behaviour.
func (m *MockHTTPClient) Send(ctx context.Context, req *httpclient.Request) (*httpclient.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for path, queue := range m.routes {
		if !strings.HasSuffix(trimQuery(req.URL), path) && !strings.HasSuffix(req.URL, path) {
			continue
		}

		m.calls[path]++
		resp := queue[0]
		if len(queue) > 1 {
			m.routes[path] = queue[1:]
		}

		if resp.StatusCode >= 400 {
			return nil, httpclient.NewError(resp.StatusCode, resp.Body)
		}
		return &httpclient.Response{
			StatusCode: resp.StatusCode,
			Body:       resp.Body,
			Headers:    resp.Headers,
		}, nil
	}

	return nil, httpclient.NewError(http.StatusNotFound, []byte("no mock registered for "+req.URL))
}

func trimQuery(url string) string {
	if i := strings.Index(url, "?"); i >= 0 {
		return url[:i]
	}
	return url
}

// Clear removes all registered responses and call counts
func (m *MockHTTPClient) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes = make(map[string][]MockResponse)
	m.calls = make(map[string]int)
}

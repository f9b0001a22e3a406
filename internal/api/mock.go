package api

import (
	"io"
	"sync"

	http "github.com/bogdanfinn/fhttp"
)

// MockResponseBody is a ReadCloser that simulates reading response data
type MockResponseBody struct {
	data   []byte
	pos    int
	closed bool
}

// NewMockResponseBody creates a new MockResponseBody with the given data
func NewMockResponseBody(data []byte) *MockResponseBody {
	return &MockResponseBody{data: data}
}

// Read implements the io.Reader interface
func (m *MockResponseBody) Read(p []byte) (n int, err error) {
	if m.pos >= len(m.data) {
		return 0, io.EOF
	}
	n = copy(p, m.data[m.pos:])
	m.pos += n
	return n, nil
}

// Close implements the io.Closer interface
func (m *MockResponseBody) Close() error {
	m.closed = true
	return nil
}

// MockResponse is one canned reply of a MockHTTPDoer
type MockResponse struct {
	Status int
	Body   string
	Header map[string]string
	Err    error
}

// RecordedRequest is a request seen by a MockHTTPDoer, with its body drained
type RecordedRequest struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// MockHTTPDoer is an HTTPDoer that replays canned responses in order and
// records every request. When the queue runs out the last response repeats.
type MockHTTPDoer struct {
	mu        sync.Mutex
	responses []MockResponse
	Requests  []RecordedRequest
}

var _ HTTPDoer = (*MockHTTPDoer)(nil)

// NewMockHTTPDoer creates a doer replaying responses
func NewMockHTTPDoer(responses ...MockResponse) *MockHTTPDoer {
	return &MockHTTPDoer{responses: responses}
}

// Do implements HTTPDoer
func (m *MockHTTPDoer) Do(req *http.Request) (*http.Response, error) {
	rec := RecordedRequest{
		Method: req.Method,
		URL:    req.URL.String(),
		Header: req.Header.Clone(),
	}
	if req.Body != nil {
		rec.Body, _ = io.ReadAll(req.Body)
		_ = req.Body.Close()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests = append(m.Requests, rec)

	if len(m.responses) == 0 {
		return &http.Response{StatusCode: http.StatusOK, Body: NewMockResponseBody(nil), Header: make(http.Header)}, nil
	}

	idx := len(m.Requests) - 1
	if idx >= len(m.responses) {
		idx = len(m.responses) - 1
	}
	r := m.responses[idx]
	if r.Err != nil {
		return nil, r.Err
	}

	header := make(http.Header)
	for k, v := range r.Header {
		header.Set(k, v)
	}
	return &http.Response{
		StatusCode: r.Status,
		Body:       NewMockResponseBody([]byte(r.Body)),
		Header:     header,
	}, nil
}

// Calls returns the number of requests seen
func (m *MockHTTPDoer) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Requests)
}

// LastRequest returns the most recent request
func (m *MockHTTPDoer) LastRequest() RecordedRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Requests) == 0 {
		return RecordedRequest{}
	}
	return m.Requests[len(m.Requests)-1]
}

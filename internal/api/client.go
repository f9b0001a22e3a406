// Package api routes conversations to the hosted completion providers and
// provides the shared HTTP transport used by the other network clients.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	http "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
)

// DefaultTimeout bounds a single provider request
const DefaultTimeout = 120 * time.Second

// maxErrorBody caps how much of a failed response is kept for diagnostics
const maxErrorBody = 4096

// HTTPDoer is the subset of tls_client.HttpClient used by foldchat
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// NewHTTPClient creates the TLS client shared by the gateway, the identity
// provider and the blob store
func NewHTTPClient(timeout time.Duration) (tls_client.HttpClient, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	options := []tls_client.HttpClientOption{
		tls_client.WithTimeoutSeconds(int(timeout / time.Second)),
		tls_client.WithClientProfile(profiles.Chrome_120),
		tls_client.WithNotFollowRedirects(),
	}

	httpClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}
	return httpClient, nil
}

// NewJSONRequest builds a POST request carrying payload as JSON
func NewJSONRequest(ctx context.Context, method, url string, payload any) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// ReadBody reads and closes the response body. Non-2xx bodies are capped at
// 4 KiB.
func ReadBody(resp *http.Response) ([]byte, error) {
	defer func() {
		if resp.Body != nil {
			_ = resp.Body.Close()
		}
	}()
	if resp.Body == nil {
		return nil, nil
	}

	var r io.Reader = resp.Body
	if !IsSuccess(resp.StatusCode) {
		r = io.LimitReader(resp.Body, maxErrorBody)
	}
	return io.ReadAll(r)
}

// IsSuccess reports whether status is 2xx
func IsSuccess(status int) bool {
	return status >= 200 && status < 300
}

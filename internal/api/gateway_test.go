package api

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	http "github.com/bogdanfinn/fhttp"
	"github.com/rs/zerolog"

	apierrors "github.com/diogo/foldchat/internal/errors"
	"github.com/diogo/foldchat/internal/models"
)

const okBody = `{"id":"gen-1","choices":[{"index":0,"message":{"role":"assistant","content":"Hello there!"}}]}`

func history() []models.Message {
	return []models.Message{
		models.UserMessage("Hi"),
		models.AssistantMessage("Hello, how can I help?"),
		models.UserMessage("Tell me a joke"),
	}
}

func newTestGateway(doer HTTPDoer) *Gateway {
	return NewGateway(zerolog.Nop(),
		NewOpenRouterSender(doer, "or-key", "http://localhost:5173", "AI Chat App"),
		NewAIMLSender(doer, "aiml-key"),
	)
}

func TestGateway_UnknownModelMakesNoRequest(t *testing.T) {
	doer := NewMockHTTPDoer(MockResponse{Status: 200, Body: okBody})
	gw := newTestGateway(doer)

	_, err := gw.SendMessage(context.Background(), history(), "gpt-99")
	if !apierrors.IsUnknownModelError(err) {
		t.Fatalf("expected UnknownModelError, got %v", err)
	}
	if doer.Calls() != 0 {
		t.Errorf("expected no HTTP calls, got %d", doer.Calls())
	}
}

func TestGateway_EmptyHistory(t *testing.T) {
	doer := NewMockHTTPDoer()
	gw := newTestGateway(doer)

	_, err := gw.SendMessage(context.Background(), nil, models.DefaultModelID)
	if !apierrors.IsValidationError(err) {
		t.Errorf("expected ValidationError, got %v", err)
	}
	if doer.Calls() != 0 {
		t.Errorf("expected no HTTP calls, got %d", doer.Calls())
	}
}

func TestGateway_MissingSender(t *testing.T) {
	doer := NewMockHTTPDoer()
	gw := NewGateway(zerolog.Nop(), NewOpenRouterSender(doer, "k", "", ""))

	_, err := gw.SendMessage(context.Background(), history(), "mistral-7b")
	if !apierrors.IsUnknownModelError(err) {
		t.Errorf("expected UnknownModelError, got %v", err)
	}
}

func TestGateway_RoutesByProvider(t *testing.T) {
	tests := []struct {
		model    string
		endpoint string
	}{
		{"anthropic/claude-2", models.EndpointOpenRouter},
		{"meta-llama/llama-2-70b-chat", models.EndpointOpenRouter},
		{"mistral-7b", models.EndpointAIML},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			doer := NewMockHTTPDoer(MockResponse{Status: 200, Body: okBody})
			gw := newTestGateway(doer)

			reply, err := gw.SendMessage(context.Background(), history(), tt.model)
			if err != nil {
				t.Fatalf("SendMessage failed: %v", err)
			}
			if reply.Role != models.RoleAssistant || reply.Content != "Hello there!" {
				t.Errorf("reply = %+v", reply)
			}
			if got := doer.LastRequest().URL; got != tt.endpoint {
				t.Errorf("endpoint = %s, want %s", got, tt.endpoint)
			}
		})
	}
}

func TestOpenRouterSender_Request(t *testing.T) {
	doer := NewMockHTTPDoer(MockResponse{Status: 200, Body: okBody})
	gw := newTestGateway(doer)

	if _, err := gw.SendMessage(context.Background(), history(), "anthropic/claude-2"); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	req := doer.LastRequest()
	if req.Method != "POST" {
		t.Errorf("method = %s", req.Method)
	}
	for header, want := range map[string]string{
		"Authorization": "Bearer or-key",
		"HTTP-Referer":  "http://localhost:5173",
		"X-Title":       "AI Chat App",
		"Content-Type":  "application/json",
	} {
		if got := req.Header.Get(header); got != want {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}

	var body struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	if err := json.Unmarshal(req.Body, &body); err != nil {
		t.Fatalf("invalid request body: %v", err)
	}
	if body.Model != "anthropic/claude-2" {
		t.Errorf("model = %s", body.Model)
	}
	if len(body.Messages) != 3 || body.Messages[1].Role != "assistant" || body.Messages[2].Content != "Tell me a joke" {
		t.Errorf("messages = %+v", body.Messages)
	}
}

func TestAIMLSender_Request(t *testing.T) {
	doer := NewMockHTTPDoer(MockResponse{Status: 200, Body: okBody})
	gw := newTestGateway(doer)

	if _, err := gw.SendMessage(context.Background(), history(), "mistral-7b"); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	req := doer.LastRequest()
	if req.Header.Get("Authorization") != "Bearer aiml-key" {
		t.Errorf("Authorization = %q", req.Header.Get("Authorization"))
	}

	var body map[string]any
	if err := json.Unmarshal(req.Body, &body); err != nil {
		t.Fatalf("invalid request body: %v", err)
	}
	if body["max_tokens"] != float64(1000) {
		t.Errorf("max_tokens = %v", body["max_tokens"])
	}
	if v, ok := body["temperature"].(float64); !ok || v < 0.69 || v > 0.71 {
		t.Errorf("temperature = %v", body["temperature"])
	}
	if v, ok := body["top_p"].(float64); !ok || v < 0.94 || v > 0.96 {
		t.Errorf("top_p = %v", body["top_p"])
	}
	if stream, ok := body["stream"]; !ok || stream != false {
		t.Errorf("stream = %v (present %v)", stream, ok)
	}
}

func TestSenders_MissingAPIKey(t *testing.T) {
	doer := NewMockHTTPDoer()
	gw := NewGateway(zerolog.Nop(), NewOpenRouterSender(doer, "", "", ""), NewAIMLSender(doer, ""))

	for _, model := range []string{"anthropic/claude-2", "mistral-7b"} {
		_, err := gw.SendMessage(context.Background(), history(), model)
		if !apierrors.IsValidationError(err) {
			t.Errorf("%s: expected ValidationError, got %v", model, err)
		}
	}
	if doer.Calls() != 0 {
		t.Errorf("expected no HTTP calls, got %d", doer.Calls())
	}
}

func TestGateway_HTTPErrors(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		body         string
		wantMessage  string
		wantGuidance string
	}{
		{"unauthorized", 401, `{"error":{"message":"No auth credentials found"}}`, "No auth credentials found", "check your OpenRouter API key"},
		{"forbidden", 403, `{"error":{"message":"forbidden"}}`, "forbidden", "required permissions"},
		{"rate limit", 429, `{"error":{"message":"slow down"}}`, "slow down", "Rate limit exceeded"},
		{"server error", 500, `{"error":{"message":"boom"}}`, "boom", "server error"},
		{"unavailable", 503, `upstream down`, "upstream down", "service unavailable"},
		{"bad request", 400, `{"error":{"message":"bad model"}}`, "bad model", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doer := NewMockHTTPDoer(MockResponse{Status: tt.status, Body: tt.body})
			gw := newTestGateway(doer)

			_, err := gw.SendMessage(context.Background(), history(), "anthropic/claude-2")

			var httpErr *apierrors.ProviderHTTPError
			if !errors.As(err, &httpErr) {
				t.Fatalf("expected ProviderHTTPError, got %v", err)
			}
			if httpErr.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", httpErr.StatusCode, tt.status)
			}
			if httpErr.Message != tt.wantMessage {
				t.Errorf("Message = %q, want %q", httpErr.Message, tt.wantMessage)
			}
			if tt.wantGuidance == "" && httpErr.Guidance != "" {
				t.Errorf("unexpected guidance %q", httpErr.Guidance)
			}
			if !strings.Contains(httpErr.Guidance, tt.wantGuidance) {
				t.Errorf("Guidance = %q, want it to contain %q", httpErr.Guidance, tt.wantGuidance)
			}
		})
	}
}

func TestGateway_ErrorBodyTruncated(t *testing.T) {
	big := strings.Repeat("x", 10000)
	doer := NewMockHTTPDoer(MockResponse{Status: 502, Body: big})
	gw := newTestGateway(doer)

	_, err := gw.SendMessage(context.Background(), history(), "anthropic/claude-2")

	var httpErr *apierrors.ProviderHTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected ProviderHTTPError, got %v", err)
	}
	if len(httpErr.Message) != maxErrorBody {
		t.Errorf("message length = %d, want %d", len(httpErr.Message), maxErrorBody)
	}
}

func TestGateway_NetworkError(t *testing.T) {
	doer := NewMockHTTPDoer(MockResponse{Err: errors.New("dial tcp: connection refused")})
	gw := newTestGateway(doer)

	_, err := gw.SendMessage(context.Background(), history(), "mistral-7b")
	if !apierrors.IsNetworkError(err) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
	if !strings.Contains(err.Error(), "AIML") {
		t.Errorf("error should name the provider: %v", err)
	}
}

func TestGateway_InvalidResponseShape(t *testing.T) {
	tests := []struct {
		name  string
		model string
		body  string
		want  string // "invalid" or "http" or a reply
	}{
		{"openrouter no choices", "anthropic/claude-2", `{"id":"x"}`, "invalid"},
		{"openrouter not json", "anthropic/claude-2", `<html>`, "invalid"},
		{"openrouter empty content", "anthropic/claude-2", `{"choices":[{"message":{"role":"assistant","content":""}}]}`, noContentReply},
		{"aiml empty content", "mistral-7b", `{"choices":[{"message":{"role":"assistant","content":""}}]}`, "invalid"},
		{"aiml error object", "mistral-7b", `{"error":{"message":"model overloaded"}}`, "http"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doer := NewMockHTTPDoer(MockResponse{Status: 200, Body: tt.body})
			gw := newTestGateway(doer)

			reply, err := gw.SendMessage(context.Background(), history(), tt.model)
			switch tt.want {
			case "invalid":
				if !apierrors.IsInvalidResponseError(err) {
					t.Errorf("expected InvalidResponseError, got %v", err)
				}
			case "http":
				var httpErr *apierrors.ProviderHTTPError
				if !errors.As(err, &httpErr) || httpErr.Message != "model overloaded" {
					t.Errorf("expected ProviderHTTPError, got %v", err)
				}
			default:
				if err != nil || reply.Content != tt.want {
					t.Errorf("reply = %+v, err = %v", reply, err)
				}
			}
		})
	}
}

type blockingDoer struct{}

func (blockingDoer) Do(req *http.Request) (*http.Response, error) {
	<-req.Context().Done()
	return nil, req.Context().Err()
}

func TestAIMLSender_Timeout(t *testing.T) {
	sender := NewAIMLSender(blockingDoer{}, "k")
	sender.timeout = 20 * time.Millisecond

	model, _ := models.FindModel("mistral-7b")
	_, err := sender.Send(context.Background(), history(), model)
	if !apierrors.IsNetworkError(err) {
		t.Errorf("expected NetworkError on timeout, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded cause, got %v", err)
	}
}

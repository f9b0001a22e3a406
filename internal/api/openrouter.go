package api

import (
	"context"

	http "github.com/bogdanfinn/fhttp"
	openai "github.com/sashabaranov/go-openai"

	apierrors "github.com/diogo/foldchat/internal/errors"
	"github.com/diogo/foldchat/internal/models"
)

// OpenRouterSender sends conversations to the OpenRouter chat API
type OpenRouterSender struct {
	client   HTTPDoer
	apiKey   string
	appURL   string
	appTitle string
}

var _ Sender = (*OpenRouterSender)(nil)

// NewOpenRouterSender creates a sender. appURL and appTitle are sent as the
// HTTP-Referer and X-Title attribution headers.
func NewOpenRouterSender(client HTTPDoer, apiKey, appURL, appTitle string) *OpenRouterSender {
	return &OpenRouterSender{
		client:   client,
		apiKey:   apiKey,
		appURL:   appURL,
		appTitle: appTitle,
	}
}

func (s *OpenRouterSender) Provider() models.Provider {
	return models.ProviderOpenRouter
}

func (s *OpenRouterSender) Send(ctx context.Context, history []models.Message, model models.Model) (models.Message, error) {
	if s.apiKey == "" {
		return models.Message{}, apierrors.NewValidationError("api_key",
			"OpenRouter API key is not configured (set OPENROUTER_API_KEY)")
	}

	payload := openai.ChatCompletionRequest{
		Model:    model.ID,
		Messages: toOpenAIMessages(history),
	}

	req, err := NewJSONRequest(ctx, http.MethodPost, models.EndpointOpenRouter, payload)
	if err != nil {
		return models.Message{}, err
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	if s.appURL != "" {
		req.Header.Set("HTTP-Referer", s.appURL)
	}
	if s.appTitle != "" {
		req.Header.Set("X-Title", s.appTitle)
	}

	status, body, err := postCompletion(s.client, s.Provider(), models.EndpointOpenRouter, req)
	if err != nil {
		return models.Message{}, err
	}
	return parseCompletion(s.Provider(), status, body, true)
}

package api

import (
	"context"
	"time"

	http "github.com/bogdanfinn/fhttp"
	openai "github.com/sashabaranov/go-openai"

	apierrors "github.com/diogo/foldchat/internal/errors"
	"github.com/diogo/foldchat/internal/models"
)

// Sampling parameters sent with every AIML request
const (
	aimlMaxTokens   = 1000
	aimlTemperature = 0.7
	aimlTopP        = 0.95
	aimlTimeout     = 30 * time.Second
)

// aimlRequest adds an explicit stream flag; the embedded field omits false
type aimlRequest struct {
	openai.ChatCompletionRequest
	Stream bool `json:"stream"`
}

// AIMLSender sends conversations to the AIML chat API
type AIMLSender struct {
	client  HTTPDoer
	apiKey  string
	timeout time.Duration
}

var _ Sender = (*AIMLSender)(nil)

// NewAIMLSender creates a sender with the default 30s request timeout
func NewAIMLSender(client HTTPDoer, apiKey string) *AIMLSender {
	return &AIMLSender{
		client:  client,
		apiKey:  apiKey,
		timeout: aimlTimeout,
	}
}

func (s *AIMLSender) Provider() models.Provider {
	return models.ProviderAIML
}

func (s *AIMLSender) Send(ctx context.Context, history []models.Message, model models.Model) (models.Message, error) {
	if s.apiKey == "" {
		return models.Message{}, apierrors.NewValidationError("api_key",
			"AIML API key is not configured (set AIML_API_KEY)")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	payload := aimlRequest{
		ChatCompletionRequest: openai.ChatCompletionRequest{
			Model:       model.ID,
			Messages:    toOpenAIMessages(history),
			MaxTokens:   aimlMaxTokens,
			Temperature: aimlTemperature,
			TopP:        aimlTopP,
		},
		Stream: false,
	}

	req, err := NewJSONRequest(ctx, http.MethodPost, models.EndpointAIML, payload)
	if err != nil {
		return models.Message{}, err
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	status, body, err := postCompletion(s.client, s.Provider(), models.EndpointAIML, req)
	if err != nil {
		return models.Message{}, err
	}
	return parseCompletion(s.Provider(), status, body, false)
}

package api

import (
	"strings"

	http "github.com/bogdanfinn/fhttp"
	openai "github.com/sashabaranov/go-openai"
	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/foldchat/internal/errors"
	"github.com/diogo/foldchat/internal/models"
)

// Paths read from chat-completions responses
const (
	pathContent      = "choices.0.message.content"
	pathMessage      = "choices.0.message"
	pathErrorMessage = "error.message"
)

// noContentReply is returned when a provider answers with an empty message
const noContentReply = "No response content"

// toOpenAIMessages converts the history into request messages
func toOpenAIMessages(history []models.Message) []openai.ChatCompletionMessage {
	msgs := make([]openai.ChatCompletionMessage, len(history))
	for i, m := range history {
		role := openai.ChatMessageRoleUser
		if m.Role == models.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		msgs[i] = openai.ChatCompletionMessage{Role: role, Content: m.Content}
	}
	return msgs
}

// postCompletion sends req and returns the status and body. Any failure to
// get a response becomes a NetworkError.
func postCompletion(client HTTPDoer, provider models.Provider, endpoint string, req *http.Request) (int, []byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, apierrors.NewNetworkError(provider.DisplayName(), endpoint, err)
	}

	body, err := ReadBody(resp)
	if err != nil {
		return 0, nil, apierrors.NewNetworkError(provider.DisplayName(), endpoint, err)
	}
	return resp.StatusCode, body, nil
}

// errorFromBody builds a ProviderHTTPError from a failed response
func errorFromBody(provider models.Provider, status int, body []byte) error {
	msg := ""
	if gjson.ValidBytes(body) {
		msg = gjson.GetBytes(body, pathErrorMessage).String()
	}
	if msg == "" {
		msg = strings.TrimSpace(string(body))
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return apierrors.NewProviderHTTPError(provider.DisplayName(), status, msg)
}

// parseCompletion extracts the assistant reply from a chat-completions
// response. When allowEmpty is set an empty content field yields a
// placeholder reply instead of an error.
func parseCompletion(provider models.Provider, status int, body []byte, allowEmpty bool) (models.Message, error) {
	if !IsSuccess(status) {
		return models.Message{}, errorFromBody(provider, status, body)
	}

	if !gjson.ValidBytes(body) {
		return models.Message{}, apierrors.NewInvalidResponseError(provider.DisplayName(), pathContent)
	}

	parsed := gjson.ParseBytes(body)
	if errMsg := parsed.Get("error"); errMsg.Exists() && errMsg.Type != gjson.Null {
		msg := parsed.Get(pathErrorMessage).String()
		if msg == "" {
			msg = errMsg.String()
		}
		return models.Message{}, apierrors.NewProviderHTTPError(provider.DisplayName(), status, msg)
	}

	if !parsed.Get(pathMessage).Exists() {
		return models.Message{}, apierrors.NewInvalidResponseError(provider.DisplayName(), pathMessage)
	}

	content := parsed.Get(pathContent).String()
	if content == "" {
		if !allowEmpty {
			return models.Message{}, apierrors.NewInvalidResponseError(provider.DisplayName(), pathContent)
		}
		content = noContentReply
	}

	return models.AssistantMessage(content), nil
}

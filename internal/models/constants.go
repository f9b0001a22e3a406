// Package models contains the model catalog and the message type shared by
// the store, the provider gateway and the TUI.
package models

// Endpoints for the completion providers. They are fixed per provider.
const (
	EndpointOpenRouter = "https://openrouter.ai/api/v1/chat/completions"
	EndpointAIML       = "https://api.aimlapi.com/v1/chat/completions"
)

// Provider identifies the completion API vendor serving a model
type Provider string

const (
	ProviderOpenRouter Provider = "openrouter"
	ProviderAIML       Provider = "aiml"
)

// DisplayName returns the human readable provider name
func (p Provider) DisplayName() string {
	switch p {
	case ProviderOpenRouter:
		return "OpenRouter"
	case ProviderAIML:
		return "AIML"
	default:
		return string(p)
	}
}

// Model represents a completion engine offered by a provider
type Model struct {
	ID          string
	Name        string
	Description string
	Pricing     string
	Provider    Provider
}

// DefaultModelID is the model selected on first start
const DefaultModelID = "anthropic/claude-2"

var availableModels = []Model{
	{
		ID:          "anthropic/claude-2",
		Name:        "Claude 2",
		Description: "Anthropic's most capable model",
		Pricing:     "$8/M tokens",
		Provider:    ProviderOpenRouter,
	},
	{
		ID:          "google/palm-2-chat-bison",
		Name:        "PaLM 2 Bison",
		Description: "Google's chat-optimized model",
		Pricing:     "$0.5/M tokens",
		Provider:    ProviderOpenRouter,
	},
	{
		ID:          "meta-llama/llama-2-70b-chat",
		Name:        "Llama 2 70B",
		Description: "Meta's largest open model",
		Pricing:     "$1.5/M tokens",
		Provider:    ProviderOpenRouter,
	},
	{
		ID:          "mistral-7b",
		Name:        "Mistral 7B",
		Description: "Efficient open source model",
		Pricing:     "$0.2/M tokens",
		Provider:    ProviderAIML,
	},
}

// AvailableModels returns a copy of the catalog in display order
func AvailableModels() []Model {
	out := make([]Model, len(availableModels))
	copy(out, availableModels)
	return out
}

// FindModel looks up a model by id
func FindModel(id string) (Model, bool) {
	for _, m := range availableModels {
		if m.ID == id {
			return m, true
		}
	}
	return Model{}, false
}

// ModelsByProvider returns the catalog entries served by p
func ModelsByProvider(p Provider) []Model {
	var out []Model
	for _, m := range availableModels {
		if m.Provider == p {
			out = append(out, m)
		}
	}
	return out
}

// Providers returns the supported providers in display order
func Providers() []Provider {
	return []Provider{ProviderOpenRouter, ProviderAIML}
}

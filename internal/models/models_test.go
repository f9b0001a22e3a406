package models

import (
	"testing"
)

func TestAvailableModels(t *testing.T) {
	models := AvailableModels()

	if len(models) != 4 {
		t.Fatalf("AvailableModels() returned %d models, expected 4", len(models))
	}

	seen := make(map[string]bool)
	for _, model := range models {
		if model.ID == "" {
			t.Error("Model id should not be empty")
		}
		if model.Name == "" {
			t.Errorf("Model %s has no name", model.ID)
		}
		if model.Provider != ProviderOpenRouter && model.Provider != ProviderAIML {
			t.Errorf("Model %s has unknown provider %q", model.ID, model.Provider)
		}
		if seen[model.ID] {
			t.Errorf("duplicate model id %s", model.ID)
		}
		seen[model.ID] = true
	}
}

func TestAvailableModels_ReturnsCopy(t *testing.T) {
	models := AvailableModels()
	models[0].Name = "mutated"

	if AvailableModels()[0].Name == "mutated" {
		t.Error("AvailableModels should return a copy of the catalog")
	}
}

func TestFindModel(t *testing.T) {
	tests := []struct {
		id       string
		found    bool
		provider Provider
	}{
		{"anthropic/claude-2", true, ProviderOpenRouter},
		{"google/palm-2-chat-bison", true, ProviderOpenRouter},
		{"meta-llama/llama-2-70b-chat", true, ProviderOpenRouter},
		{"mistral-7b", true, ProviderAIML},
		{"gpt-17", false, ""},
		{"", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			model, ok := FindModel(tt.id)
			if ok != tt.found {
				t.Fatalf("FindModel(%q) found = %v, want %v", tt.id, ok, tt.found)
			}
			if model.Provider != tt.provider {
				t.Errorf("Provider = %q, want %q", model.Provider, tt.provider)
			}
		})
	}
}

func TestDefaultModelInCatalog(t *testing.T) {
	if _, ok := FindModel(DefaultModelID); !ok {
		t.Errorf("DefaultModelID %s is not in the catalog", DefaultModelID)
	}
}

func TestModelsByProvider(t *testing.T) {
	if got := len(ModelsByProvider(ProviderOpenRouter)); got != 3 {
		t.Errorf("openrouter models = %d, want 3", got)
	}
	aiml := ModelsByProvider(ProviderAIML)
	if len(aiml) != 1 || aiml[0].ID != "mistral-7b" {
		t.Errorf("aiml models = %+v", aiml)
	}
	if len(ModelsByProvider("nope")) != 0 {
		t.Error("expected no models for unknown provider")
	}
}

func TestProviderDisplayName(t *testing.T) {
	if ProviderOpenRouter.DisplayName() != "OpenRouter" {
		t.Errorf("DisplayName = %s", ProviderOpenRouter.DisplayName())
	}
	if ProviderAIML.DisplayName() != "AIML" {
		t.Errorf("DisplayName = %s", ProviderAIML.DisplayName())
	}
	if Provider("other").DisplayName() != "other" {
		t.Error("unknown providers should fall back to their raw value")
	}
}

func TestMessageConstructors(t *testing.T) {
	u := UserMessage("hi")
	if u.Role != RoleUser || u.Content != "hi" {
		t.Errorf("UserMessage = %+v", u)
	}
	a := AssistantMessage("hello")
	if a.Role != RoleAssistant || a.Content != "hello" {
		t.Errorf("AssistantMessage = %+v", a)
	}
}

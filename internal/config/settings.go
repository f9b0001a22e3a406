package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	apierrors "github.com/diogo/foldchat/internal/errors"
	"github.com/diogo/foldchat/internal/models"
	"github.com/diogo/foldchat/internal/persist"
)

// settingsBlob is the persisted form stored under persist.KeyChatSettings
type settingsBlob struct {
	SelectedModel string `json:"selected_model"`
}

// Settings holds the user's selected model, persisted on every change
type Settings struct {
	mu        sync.Mutex
	kv        persist.KV
	log       zerolog.Logger
	selected  string
	listeners []func(modelID string)
}

// LoadSettings reads the settings blob. A missing blob or a model that is no
// longer in the catalog falls back to models.DefaultModelID.
func LoadSettings(kv persist.KV, log zerolog.Logger) (*Settings, error) {
	s := &Settings{
		kv:       kv,
		log:      log.With().Str("component", "settings").Logger(),
		selected: models.DefaultModelID,
	}

	data, err := kv.Get(persist.KeyChatSettings)
	if err != nil {
		if errors.Is(err, persist.ErrNotFound) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	var blob settingsBlob
	if err := json.Unmarshal(data, &blob); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	if _, ok := models.FindModel(blob.SelectedModel); ok {
		s.selected = blob.SelectedModel
	} else if blob.SelectedModel != "" {
		s.log.Warn().Str("model", blob.SelectedModel).Msg("Stored model not in catalog, using default")
	}

	return s, nil
}

// SelectedModel returns the id of the selected model
func (s *Settings) SelectedModel() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// SetSelectedModel selects a catalog model and persists the choice
func (s *Settings) SetSelectedModel(modelID string) error {
	if _, ok := models.FindModel(modelID); !ok {
		return apierrors.NewUnknownModelError(modelID)
	}

	s.mu.Lock()
	if s.selected == modelID {
		s.mu.Unlock()
		return nil
	}
	s.selected = modelID

	data, err := json.Marshal(settingsBlob{SelectedModel: modelID})
	if err == nil {
		err = s.kv.Put(persist.KeyChatSettings, data)
	}
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to persist settings")
	}
	listeners := append([]func(string){}, s.listeners...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(modelID)
	}
	return nil
}

// Subscribe registers fn to be called after the selected model changes
func (s *Settings) Subscribe(fn func(modelID string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	apierrors "github.com/diogo/foldchat/internal/errors"
	"github.com/diogo/foldchat/internal/models"
	"github.com/diogo/foldchat/internal/persist"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.StorageBackend != persist.BackendFile {
		t.Errorf("StorageBackend = %q, want %q", cfg.StorageBackend, persist.BackendFile)
	}
	if cfg.AuthBackend != BackendLocal || cfg.AttachmentBackend != BackendLocal {
		t.Errorf("backends = %q/%q, want local", cfg.AuthBackend, cfg.AttachmentBackend)
	}
	if cfg.AttachmentBucket != "chat-attachments" {
		t.Errorf("AttachmentBucket = %q", cfg.AttachmentBucket)
	}
	if cfg.AppTitle != "AI Chat App" {
		t.Errorf("AppTitle = %q", cfg.AppTitle)
	}
	if cfg.MaxAttachmentBytes() != 20<<20 {
		t.Errorf("MaxAttachmentBytes = %d", cfg.MaxAttachmentBytes())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"storage", func(c *Config) { c.StorageBackend = "redis" }},
		{"auth", func(c *Config) { c.AuthBackend = "ldap" }},
		{"attachment", func(c *Config) { c.AttachmentBackend = "s3" }},
		{"size", func(c *Config) { c.MaxAttachmentMB = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestGetConfigDir(t *testing.T) {
	dir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() returned error: %v", err)
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("GetConfigDir() returned relative path: %s", dir)
	}
	if filepath.Base(dir) != ".foldchat" {
		t.Errorf("GetConfigDir() = %s", dir)
	}
}

func TestResolveDataDir(t *testing.T) {
	got, err := ResolveDataDir("/tmp/custom")
	if err != nil || got != "/tmp/custom" {
		t.Errorf("ResolveDataDir(custom) = %s, %v", got, err)
	}

	got, err = ResolveDataDir("")
	if err != nil {
		t.Fatalf("ResolveDataDir(\"\") failed: %v", err)
	}
	def, _ := GetConfigDir()
	if got != def {
		t.Errorf("ResolveDataDir(\"\") = %s, want %s", got, def)
	}
}

func TestLoadConfig_FileNotExists(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")

	cfg := DefaultConfig()
	cfg.StorageBackend = persist.BackendSQLite
	cfg.AuthBackend = BackendSupabase
	cfg.MaxAttachmentMB = 5
	cfg.Markdown.Style = "light"

	if err := SaveConfig(dir, cfg); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	info, err := os.Stat(GetConfigPath(dir))
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("config permissions = %v, want 0600", info.Mode().Perm())
	}

	loaded, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if loaded != cfg {
		t.Errorf("loaded %+v, want %+v", loaded, cfg)
	}
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	data, _ := json.Marshal(map[string]any{"storage_backend": "sqlite"})
	if err := os.WriteFile(GetConfigPath(dir), data, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.StorageBackend != "sqlite" {
		t.Errorf("StorageBackend = %q", cfg.StorageBackend)
	}
	if cfg.AppTitle != "AI Chat App" || cfg.MaxAttachmentMB != 20 {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(GetConfigPath(dir), []byte("{invalid"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(dir)
	if err == nil {
		t.Error("expected parse error")
	}
	if cfg != DefaultConfig() {
		t.Error("invalid file should return defaults")
	}
}

func TestAvailableModels(t *testing.T) {
	ids := AvailableModels()
	if len(ids) != len(models.AvailableModels()) {
		t.Fatalf("got %d ids", len(ids))
	}
	if ids[0] != models.DefaultModelID {
		t.Errorf("first model = %s", ids[0])
	}
}

func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadCredentials(t *testing.T) {
	unsetEnv(t, EnvOpenRouterKey, EnvAIMLKey, EnvSupabaseURL, EnvSupabaseAnonKey)
	t.Setenv(EnvAIMLKey, "aiml-from-env")

	dir := t.TempDir()
	env := "OPENROUTER_API_KEY=or-from-file\nAIML_API_KEY=aiml-from-file\nSUPABASE_URL=https://example.supabase.co/\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o600); err != nil {
		t.Fatal(err)
	}

	creds := LoadCredentials(dir, zerolog.Nop())

	if creds.OpenRouterAPIKey != "or-from-file" {
		t.Errorf("OpenRouterAPIKey = %q", creds.OpenRouterAPIKey)
	}
	if creds.AIMLAPIKey != "aiml-from-env" {
		t.Errorf("environment should win over .env, got %q", creds.AIMLAPIKey)
	}
	if creds.SupabaseURL != "https://example.supabase.co" {
		t.Errorf("SupabaseURL = %q", creds.SupabaseURL)
	}
	if creds.HasSupabase() {
		t.Error("HasSupabase should be false without an anon key")
	}
}

func TestCredentials_Missing(t *testing.T) {
	cfg := DefaultConfig()
	creds := Credentials{OpenRouterAPIKey: "k"}

	missing := creds.Missing(cfg)
	if len(missing) != 1 || missing[0] != EnvAIMLKey {
		t.Errorf("Missing = %v", missing)
	}

	cfg.AuthBackend = BackendSupabase
	missing = creds.Missing(cfg)
	if len(missing) != 3 {
		t.Errorf("Missing with supabase = %v", missing)
	}
}

func TestSettings_DefaultsAndPersist(t *testing.T) {
	kv := persist.NewMemoryKV()

	s, err := LoadSettings(kv, zerolog.Nop())
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}
	if s.SelectedModel() != models.DefaultModelID {
		t.Errorf("SelectedModel = %s", s.SelectedModel())
	}

	var notified []string
	s.Subscribe(func(id string) { notified = append(notified, id) })

	if err := s.SetSelectedModel("mistral-7b"); err != nil {
		t.Fatalf("SetSelectedModel failed: %v", err)
	}
	// Same model again is not a change
	_ = s.SetSelectedModel("mistral-7b")

	if len(notified) != 1 || notified[0] != "mistral-7b" {
		t.Errorf("notified = %v", notified)
	}

	data, _ := kv.Get(persist.KeyChatSettings)
	if string(data) != `{"selected_model":"mistral-7b"}` {
		t.Errorf("persisted = %s", data)
	}

	reloaded, err := LoadSettings(kv, zerolog.Nop())
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.SelectedModel() != "mistral-7b" {
		t.Errorf("reloaded SelectedModel = %s", reloaded.SelectedModel())
	}
}

func TestSettings_RejectsUnknownModel(t *testing.T) {
	s, _ := LoadSettings(persist.NewMemoryKV(), zerolog.Nop())

	err := s.SetSelectedModel("gpt-99")
	if !apierrors.IsUnknownModelError(err) {
		t.Errorf("expected unknown model error, got %v", err)
	}
	if s.SelectedModel() != models.DefaultModelID {
		t.Error("selection changed after rejected model")
	}
}

func TestSettings_StaleModelFallsBack(t *testing.T) {
	kv := persist.NewMemoryKV()
	_ = kv.Put(persist.KeyChatSettings, []byte(`{"selected_model":"retired-model"}`))

	s, err := LoadSettings(kv, zerolog.Nop())
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}
	if s.SelectedModel() != models.DefaultModelID {
		t.Errorf("SelectedModel = %s, want default", s.SelectedModel())
	}
}

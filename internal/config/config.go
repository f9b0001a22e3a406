// Package config handles configuration, credentials and persisted settings for foldchat.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/diogo/foldchat/internal/models"
	"github.com/diogo/foldchat/internal/persist"
)

// Backend names accepted by the auth and attachment settings
const (
	BackendLocal    = "local"
	BackendSupabase = "supabase"
)

// DefaultBucket is the blob storage bucket used for attachments
const DefaultBucket = "chat-attachments"

// MarkdownConfig configures markdown rendering options
type MarkdownConfig struct {
	Style            string `json:"style"`              // "dark", "light", "notty" or a glamour style name
	EnableEmoji      bool   `json:"enable_emoji"`       // Convert :emoji: to unicode
	PreserveNewLines bool   `json:"preserve_newlines"`  // Preserve original line breaks
	TableWrap        bool   `json:"table_wrap"`         // Enable word wrap in table cells
	InlineTableLinks bool   `json:"inline_table_links"` // Render links inline in tables
}

// Config represents the user configuration
type Config struct {
	// StorageBackend selects where chats and settings are kept: "file" or "sqlite".
	StorageBackend string `json:"storage_backend"`
	// AuthBackend selects the identity provider: "local" accounts stored on
	// disk, or "supabase" for the hosted identity service.
	AuthBackend string `json:"auth_backend"`
	// AttachmentBackend selects the blob store for uploads: "local" or "supabase".
	AttachmentBackend string `json:"attachment_backend"`
	AttachmentBucket  string `json:"attachment_bucket"`
	// MaxAttachmentMB limits the size of a single upload.
	MaxAttachmentMB int `json:"max_attachment_mb"`
	// AppURL and AppTitle identify the app to providers that ask for it.
	AppURL          string         `json:"app_url"`
	AppTitle        string         `json:"app_title"`
	LogLevel        string         `json:"log_level"`
	CopyToClipboard bool           `json:"copy_to_clipboard"`
	TUITheme        string         `json:"tui_theme,omitempty"`
	Markdown        MarkdownConfig `json:"markdown,omitempty"`
}

// DefaultMarkdownConfig returns the default markdown configuration
func DefaultMarkdownConfig() MarkdownConfig {
	return MarkdownConfig{
		Style:            "dark",
		EnableEmoji:      true,
		PreserveNewLines: true,
		TableWrap:        true,
		InlineTableLinks: false,
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		StorageBackend:    persist.BackendFile,
		AuthBackend:       BackendLocal,
		AttachmentBackend: BackendLocal,
		AttachmentBucket:  DefaultBucket,
		MaxAttachmentMB:   20,
		AppURL:            "http://localhost:5173",
		AppTitle:          "AI Chat App",
		LogLevel:          "info",
		TUITheme:          "tokyonight",
		Markdown:          DefaultMarkdownConfig(),
	}
}

// Validate checks backend names and limits
func (c Config) Validate() error {
	switch c.StorageBackend {
	case persist.BackendFile, persist.BackendSQLite:
	default:
		return fmt.Errorf("invalid storage_backend %q (want %s or %s)",
			c.StorageBackend, persist.BackendFile, persist.BackendSQLite)
	}
	for name, v := range map[string]string{
		"auth_backend":       c.AuthBackend,
		"attachment_backend": c.AttachmentBackend,
	} {
		if v != BackendLocal && v != BackendSupabase {
			return fmt.Errorf("invalid %s %q (want %s or %s)", name, v, BackendLocal, BackendSupabase)
		}
	}
	if c.MaxAttachmentMB <= 0 {
		return fmt.Errorf("max_attachment_mb must be positive")
	}
	return nil
}

// MaxAttachmentBytes returns the upload limit in bytes
func (c Config) MaxAttachmentBytes() int64 {
	return int64(c.MaxAttachmentMB) << 20
}

// GetConfigDir returns the default data directory path
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".foldchat"), nil
}

// ResolveDataDir returns dir when set, otherwise the default data directory
func ResolveDataDir(dir string) (string, error) {
	if strings.TrimSpace(dir) != "" {
		return dir, nil
	}
	return GetConfigDir()
}

// EnsureDir creates the data directory if it doesn't exist
func EnsureDir(dir string) error {
	// 0o700: the directory holds chats and the cached session
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return nil
}

// GetConfigPath returns the path to the config file inside dir
func GetConfigPath(dir string) string {
	return filepath.Join(dir, "config.json")
}

// GetAttachmentsDir returns the directory used by the local attachment store
func GetAttachmentsDir(dir string) string {
	return filepath.Join(dir, "attachments")
}

// LoadConfig loads the configuration from dir. A missing file yields defaults.
func LoadConfig(dir string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(GetConfigPath(dir))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to dir
func SaveConfig(dir string, cfg Config) error {
	if err := EnsureDir(dir); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(GetConfigPath(dir), data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// AvailableModels returns the ids of the models in the catalog
func AvailableModels() []string {
	catalog := models.AvailableModels()
	ids := make([]string, len(catalog))
	for i, m := range catalog {
		ids[i] = m.ID
	}
	return ids
}

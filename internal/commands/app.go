package commands

import (
	"fmt"
	"io"

	"github.com/atotto/clipboard"
	"github.com/rs/zerolog"

	"github.com/diogo/foldchat/internal/api"
	"github.com/diogo/foldchat/internal/attach"
	"github.com/diogo/foldchat/internal/auth"
	"github.com/diogo/foldchat/internal/config"
	"github.com/diogo/foldchat/internal/history"
	"github.com/diogo/foldchat/internal/persist"
	"github.com/diogo/foldchat/internal/render"
	"github.com/diogo/foldchat/internal/tui"
)

// app holds the services opened for one command run
type app struct {
	dataDir string
	cfg     config.Config
	creds   config.Credentials
	log     zerolog.Logger
	logFile io.Closer

	kv       persist.KV
	store    *history.Store
	settings *config.Settings
	client   api.HTTPDoer
}

// openApp resolves the data directory, loads the configuration and opens
// the store. Close releases the storage backend and the log file.
func openApp(opts *options, stderr io.Writer) (*app, error) {
	dir, err := config.ResolveDataDir(opts.dataDir)
	if err != nil {
		return nil, err
	}
	if err := config.EnsureDir(dir); err != nil {
		return nil, err
	}

	cfg, err := config.LoadConfig(dir)
	if err != nil {
		return nil, err
	}
	if opts.storage != "" {
		cfg.StorageBackend = opts.storage
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	var console io.Writer
	if opts.logStderr {
		console = stderr
	}
	log, logFile := newLogger(dir, cfg.LogLevel, console)
	a := &app{dataDir: dir, cfg: cfg, log: log, logFile: logFile}

	a.kv, err = persist.Open(cfg.StorageBackend, dir)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.StorageBackend, err)
	}

	a.store, err = history.NewStore(a.kv, history.WithLogger(log))
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("failed to load chats: %w", err)
	}

	a.settings, err = config.LoadSettings(a.kv, log)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	if opts.model != "" {
		if err := a.settings.SetSelectedModel(opts.model); err != nil {
			_ = a.Close()
			return nil, err
		}
	}

	a.creds = config.LoadCredentials(dir, log)

	log.Debug().
		Str("dir", dir).
		Str("storage", cfg.StorageBackend).
		Str("auth", cfg.AuthBackend).
		Int("chats", len(a.store.Chats())).
		Msg("Opened data directory")
	return a, nil
}

// Close releases the storage backend and the log file
func (a *app) Close() error {
	var err error
	if a.kv != nil {
		err = persist.Close(a.kv)
	}
	if a.logFile != nil {
		if cerr := a.logFile.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// httpClient returns the shared TLS client, creating it on first use
func (a *app) httpClient() (api.HTTPDoer, error) {
	if a.client != nil {
		return a.client, nil
	}
	client, err := api.NewHTTPClient(api.DefaultTimeout)
	if err != nil {
		return nil, err
	}
	a.client = client
	return client, nil
}

// requireSupabase fails when a hosted backend is selected without its keys
func (a *app) requireSupabase() error {
	if (a.cfg.AuthBackend == config.BackendSupabase || a.cfg.AttachmentBackend == config.BackendSupabase) &&
		!a.creds.HasSupabase() {
		return fmt.Errorf("%s and %s must be set to use the %s backend",
			config.EnvSupabaseURL, config.EnvSupabaseAnonKey, config.BackendSupabase)
	}
	return nil
}

// authManager builds the session manager for the configured identity backend
func (a *app) authManager() (*auth.Manager, error) {
	var provider auth.Provider
	switch a.cfg.AuthBackend {
	case config.BackendSupabase:
		if err := a.requireSupabase(); err != nil {
			return nil, err
		}
		client, err := a.httpClient()
		if err != nil {
			return nil, err
		}
		provider = auth.NewGoTrueProvider(client, a.creds.SupabaseURL, a.creds.SupabaseAnonKey, a.kv, a.log)
	default:
		provider = auth.NewLocalProvider(a.kv)
	}
	return auth.NewManager(provider, a.log), nil
}

// uploader builds the attachment uploader for the configured blob backend.
// token supplies the signed-in user's access token to hosted storage.
func (a *app) uploader(token func() string) (*attach.Uploader, error) {
	var blobs attach.BlobStore
	switch a.cfg.AttachmentBackend {
	case config.BackendSupabase:
		if err := a.requireSupabase(); err != nil {
			return nil, err
		}
		client, err := a.httpClient()
		if err != nil {
			return nil, err
		}
		blobs = attach.NewSupabaseStorage(client, a.creds.SupabaseURL, a.creds.SupabaseAnonKey,
			a.cfg.AttachmentBucket, token)
	default:
		dir, err := attach.NewDirStorage(config.GetAttachmentsDir(a.dataDir))
		if err != nil {
			return nil, err
		}
		blobs = dir
	}
	return attach.NewUploader(blobs, a.cfg.MaxAttachmentBytes(), a.log), nil
}

// gateway builds the provider gateway with one sender per provider
func (a *app) gateway() (*api.Gateway, error) {
	client, err := a.httpClient()
	if err != nil {
		return nil, err
	}
	if missing := a.creds.Missing(a.cfg); len(missing) > 0 {
		a.log.Warn().Strs("missing", missing).Msg("Some credentials are not set")
	}
	return api.NewGateway(a.log,
		api.NewOpenRouterSender(client, a.creds.OpenRouterAPIKey, a.cfg.AppURL, a.cfg.AppTitle),
		api.NewAIMLSender(client, a.creds.AIMLAPIKey),
	), nil
}

// tuiDeps wires every service the interactive client needs
func (a *app) tuiDeps() (*tui.Deps, error) {
	gw, err := a.gateway()
	if err != nil {
		return nil, err
	}
	manager, err := a.authManager()
	if err != nil {
		return nil, err
	}
	up, err := a.uploader(manager.AccessToken)
	if err != nil {
		return nil, err
	}

	palette, ok := render.PaletteByName(a.cfg.TUITheme)
	if !ok {
		a.log.Warn().Str("theme", a.cfg.TUITheme).Msg("Unknown TUI theme, using default")
		palette = render.TokyoNight
	}

	return &tui.Deps{
		Store:     a.store,
		Auth:      manager,
		Gateway:   gw,
		Uploader:  up,
		Settings:  a.settings,
		Markdown:  render.OptionsFromConfig(a.cfg.Markdown, 80),
		Palette:   palette,
		Clipboard: clipboardWriter(),
		AutoCopy:  a.cfg.CopyToClipboard,
		Log:       a.log,
	}, nil
}

// clipboardWriter returns nil when no clipboard utility is available
func clipboardWriter() func(string) error {
	if clipboard.Unsupported {
		return nil
	}
	return clipboard.WriteAll
}

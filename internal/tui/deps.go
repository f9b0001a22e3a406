package tui

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/diogo/foldchat/internal/api"
	"github.com/diogo/foldchat/internal/attach"
	"github.com/diogo/foldchat/internal/auth"
	"github.com/diogo/foldchat/internal/history"
	"github.com/diogo/foldchat/internal/models"
	"github.com/diogo/foldchat/internal/render"
)

// Authenticator is the session flow driven by the auth screen
type Authenticator interface {
	Initialize(ctx context.Context) error
	SignIn(ctx context.Context, email, password string) error
	SignUp(ctx context.Context, email, password string) error
	SignOut(ctx context.Context) error
	User() *auth.User
	Subscribe(fn func(auth.State)) func()
}

// FileUploader pushes a local file to blob storage
type FileUploader interface {
	UploadFile(ctx context.Context, filePath, userID string) (*attach.Attachment, error)
}

// ModelSettings holds the selected model
type ModelSettings interface {
	SelectedModel() string
	SetSelectedModel(modelID string) error
}

// Deps are the services the TUI works with
type Deps struct {
	Store    *history.Store
	Auth     Authenticator
	Gateway  api.MessageSender
	Uploader FileUploader // nil disables attachments
	Settings ModelSettings

	Markdown render.Options
	Palette  render.Palette

	// Clipboard copies text; nil disables ctrl+y
	Clipboard func(text string) error
	// AutoCopy copies every assistant reply as it arrives
	AutoCopy bool

	Log zerolog.Logger
}

// Messages produced by commands
type (
	authInitDoneMsg struct{ err error }
	authResultMsg   struct {
		signUp bool
		err    error
	}
	authStateMsg  struct{ state auth.State }
	signedOutMsg  struct{ err error }
	storeEventMsg struct{ ev history.Event }
	replyMsg      struct {
		chatID string
		reply  models.Message
		err    error
	}
	uploadDoneMsg struct {
		chatID string
		att    *attach.Attachment
		err    error
	}
)

package tui

import (
	"context"
	"fmt"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/diogo/foldchat/internal/attach"
	"github.com/diogo/foldchat/internal/auth"
	"github.com/diogo/foldchat/internal/config"
	"github.com/diogo/foldchat/internal/history"
	"github.com/diogo/foldchat/internal/models"
	"github.com/diogo/foldchat/internal/persist"
	"github.com/diogo/foldchat/internal/render"
)

type fakeAuth struct {
	user      *auth.User
	initErr   error
	signInErr error
	signUpErr error
	signIns   int
	signOuts  int
}

func (f *fakeAuth) Initialize(context.Context) error { return f.initErr }

func (f *fakeAuth) SignIn(_ context.Context, email, _ string) error {
	f.signIns++
	if f.signInErr != nil {
		return f.signInErr
	}
	f.user = &auth.User{ID: "user-1", Email: email}
	return nil
}

func (f *fakeAuth) SignUp(context.Context, string, string) error { return f.signUpErr }

func (f *fakeAuth) SignOut(context.Context) error {
	f.signOuts++
	f.user = nil
	return nil
}

func (f *fakeAuth) User() *auth.User { return f.user }

func (f *fakeAuth) Subscribe(func(auth.State)) func() { return func() {} }

type fakeSender struct {
	mu    sync.Mutex
	reply string
	err   error
	calls []sentCall
}

type sentCall struct {
	history []models.Message
	modelID string
}

func (f *fakeSender) SendMessage(_ context.Context, history []models.Message, modelID string) (models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, sentCall{history: history, modelID: modelID})
	if f.err != nil {
		return models.Message{}, f.err
	}
	return models.AssistantMessage(f.reply), nil
}

type fakeUploader struct {
	path   string
	userID string
	err    error
}

func (f *fakeUploader) UploadFile(_ context.Context, filePath, userID string) (*attach.Attachment, error) {
	f.path, f.userID = filePath, userID
	if f.err != nil {
		return nil, f.err
	}
	return &attach.Attachment{Name: "notes.txt", URL: "https://files.example/notes.txt"}, nil
}

func newTestStore(t *testing.T) *history.Store {
	t.Helper()
	n := 0
	store, err := history.NewStore(persist.NewMemoryKV(), history.WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("id-%03d", n)
	}))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	return store
}

func newTestDeps(t *testing.T) (*Deps, *fakeAuth, *fakeSender) {
	t.Helper()
	settings, err := config.LoadSettings(persist.NewMemoryKV(), zerolog.Nop())
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}
	fa := &fakeAuth{user: &auth.User{ID: "user-1", Email: "ada@example.com"}}
	fs := &fakeSender{reply: "Hi there"}
	deps := &Deps{
		Store:    newTestStore(t),
		Auth:     fa,
		Gateway:  fs,
		Settings: settings,
		Markdown: render.DefaultOptions().WithStyle(render.StyleNoTTY),
		Palette:  render.TokyoNight,
		Log:      zerolog.Nop(),
	}
	return deps, fa, fs
}

// newTestChat returns a sized chat screen over deps
func newTestChat(deps *Deps) chatModel {
	m := newChatModel(context.Background(), deps)
	m, _ = m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m
}

// seedSidebar builds the layout
//
//	0 ▾ Work (1)
//	1     id-003
//	2   Recent Chats (3)
//	3   id-001
//	4   id-002
//	5   id-005   (active)
func seedSidebar(store *history.Store) (folderID string) {
	store.CreateChat(models.DefaultModelID)
	store.CreateChat(models.DefaultModelID)
	c3 := store.CreateChat(models.DefaultModelID)
	folderID = store.CreateFolder("Work")
	store.MoveChat(c3, folderID)
	store.CreateChat(models.DefaultModelID)
	return folderID
}

func key(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press feeds keys to the chat screen, dropping the commands
func press(m chatModel, keys ...tea.KeyMsg) chatModel {
	for _, k := range keys {
		m, _ = m.Update(k)
	}
	return m
}

// collect runs cmd and returns the messages it produces, expanding batches
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func chatIDs(chats []history.Chat) []string {
	ids := make([]string, len(chats))
	for i, c := range chats {
		ids[i] = c.ID
	}
	return ids
}

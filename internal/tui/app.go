package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/foldchat/internal/auth"
	"github.com/diogo/foldchat/internal/history"
)

type screen int

const (
	screenLoading screen = iota
	screenAuth
	screenChat
)

// App is the root model. It shows the loading screen while the saved session
// is restored, then the auth screen or the chat screen depending on whether
// someone is signed in.
type App struct {
	ctx  context.Context
	deps *Deps

	screen  screen
	spinner spinner.Model
	auth    authModel
	chat    chatModel

	width  int
	height int
}

// NewApp creates the root model
func NewApp(ctx context.Context, deps *Deps) App {
	ApplyPalette(deps.Palette)

	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = loadingStyle

	return App{
		ctx:     ctx,
		deps:    deps,
		screen:  screenLoading,
		spinner: s,
		auth:    newAuthModel(ctx, deps.Auth),
		chat:    newChatModel(ctx, deps),
	}
}

func (a App) Init() tea.Cmd {
	authn, ctx := a.deps.Auth, a.ctx
	return tea.Batch(a.spinner.Tick, func() tea.Msg {
		return authInitDoneMsg{err: authn.Initialize(ctx)}
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if msg.String() == "ctrl+l" && a.screen == screenChat {
			authn, ctx := a.deps.Auth, a.ctx
			return a, func() tea.Msg {
				return signedOutMsg{err: authn.SignOut(ctx)}
			}
		}

	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		var cmd tea.Cmd
		a.auth, _ = a.auth.Update(msg)
		a.chat, cmd = a.chat.Update(msg)
		return a, cmd

	case spinner.TickMsg:
		if a.screen == screenLoading {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}

	case authInitDoneMsg:
		next, cmd := a.afterAuthChange()
		if msg.err != nil {
			next.auth.err = msg.err
		}
		return next, cmd

	case authResultMsg:
		var cmd tea.Cmd
		a.auth, cmd = a.auth.Update(msg)
		if msg.err != nil {
			return a, cmd
		}
		next, switchCmd := a.afterAuthChange()
		return next, tea.Batch(cmd, switchCmd)

	case authStateMsg:
		if msg.state.Loading {
			return a, nil
		}
		return a.afterAuthChange()

	case signedOutMsg:
		a.auth = a.auth.reset()
		if msg.err != nil {
			a.auth.err = msg.err
		}
		a.screen = screenAuth
		return a, nil
	}

	var cmd tea.Cmd
	switch a.screen {
	case screenAuth:
		a.auth, cmd = a.auth.Update(msg)
	case screenChat:
		a.chat, cmd = a.chat.Update(msg)
	}
	return a, cmd
}

// afterAuthChange picks the screen for the current session state
func (a App) afterAuthChange() (App, tea.Cmd) {
	if a.deps.Auth.User() == nil {
		if a.screen != screenAuth {
			a.auth = a.auth.reset()
		}
		a.screen = screenAuth
		return a, nil
	}
	if a.screen == screenChat {
		return a, nil
	}
	a.screen = screenChat
	a.chat.refresh()
	return a, a.chat.Init()
}

func (a App) View() string {
	switch a.screen {
	case screenAuth:
		return a.auth.View()
	case screenChat:
		return a.chat.View()
	default:
		text := a.spinner.View() + loadingStyle.Render(" Restoring session...")
		if a.width == 0 || a.height == 0 {
			return text
		}
		return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, text)
	}
}

// Run starts the TUI and blocks until it exits
func Run(ctx context.Context, deps *Deps) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(
		NewApp(ctx, deps),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	// Send is called from a goroutine: subscribers run inside Update
	unsubscribe := deps.Store.Subscribe(func(ev history.Event) {
		go p.Send(storeEventMsg{ev: ev})
	})
	defer unsubscribe()
	unsubscribeAuth := deps.Auth.Subscribe(func(s auth.State) {
		go p.Send(authStateMsg{state: s})
	})
	defer unsubscribeAuth()

	deps.Log.Info().Msg("TUI started")
	_, err := p.Run()
	deps.Log.Info().Err(err).Msg("TUI stopped")
	return err
}

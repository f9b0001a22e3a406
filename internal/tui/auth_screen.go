package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/foldchat/internal/auth"
	apierrors "github.com/diogo/foldchat/internal/errors"
)

const (
	fieldEmail = iota
	fieldPassword
)

// authModel is the sign-in / sign-up form
type authModel struct {
	ctx    context.Context
	auth   Authenticator
	inputs []textinput.Model
	focus  int
	signUp bool

	submitting bool
	fieldErrs  map[string]string
	err        error
	notice     string

	width  int
	height int
}

func newAuthModel(ctx context.Context, a Authenticator) authModel {
	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.Prompt = ""
	email.CharLimit = 254
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.Prompt = ""
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 128

	return authModel{
		ctx:       ctx,
		auth:      a,
		inputs:    []textinput.Model{email, password},
		fieldErrs: map[string]string{},
	}
}

// reset clears the form for a new sign in
func (m authModel) reset() authModel {
	for i := range m.inputs {
		m.inputs[i].Reset()
	}
	m.submitting = false
	m.fieldErrs = map[string]string{}
	m.err = nil
	return m.focusField(fieldEmail)
}

func (m authModel) focusField(i int) authModel {
	m.focus = i
	for j := range m.inputs {
		if j == i {
			m.inputs[j].Focus()
		} else {
			m.inputs[j].Blur()
		}
	}
	return m
}

func (m authModel) Update(msg tea.Msg) (authModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case authResultMsg:
		m.submitting = false
		m.fieldErrs = map[string]string{}
		m.err = nil
		m.notice = ""

		var vErr *apierrors.ValidationError
		switch {
		case msg.err == nil:
		case errors.As(msg.err, &vErr):
			m.fieldErrs[vErr.Field] = vErr.Message
		case errors.Is(msg.err, auth.ErrConfirmationPending):
			m.notice = "Check your email to confirm your account, then sign in"
			m.signUp = false
			m.inputs[fieldPassword].Reset()
		default:
			m.err = msg.err
		}
		return m, nil

	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		switch msg.String() {
		case "tab", "down":
			return m.focusField((m.focus + 1) % len(m.inputs)), nil
		case "shift+tab", "up":
			return m.focusField((m.focus - 1 + len(m.inputs)) % len(m.inputs)), nil
		case "ctrl+t":
			m.signUp = !m.signUp
			m.fieldErrs = map[string]string{}
			m.err = nil
			m.notice = ""
			return m, nil
		case "enter":
			if m.focus == fieldEmail {
				return m.focusField(fieldPassword), nil
			}
			return m.submit()
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

// submit validates locally and starts the provider call
func (m authModel) submit() (authModel, tea.Cmd) {
	email := strings.TrimSpace(m.inputs[fieldEmail].Value())
	password := m.inputs[fieldPassword].Value()

	m.fieldErrs = map[string]string{}
	m.err = nil
	if err := auth.ValidateCredentials(email, password, m.signUp); err != nil {
		var vErr *apierrors.ValidationError
		if errors.As(err, &vErr) {
			m.fieldErrs[vErr.Field] = vErr.Message
		}
		return m, nil
	}

	m.submitting = true
	signUp := m.signUp
	a, ctx := m.auth, m.ctx
	return m, func() tea.Msg {
		var err error
		if signUp {
			err = a.SignUp(ctx, email, password)
		} else {
			err = a.SignIn(ctx, email, password)
		}
		return authResultMsg{signUp: signUp, err: err}
	}
}

func (m authModel) View() string {
	var b strings.Builder

	title := "Sign in"
	if m.signUp {
		title = "Create account"
	}
	b.WriteString(titleStyle.Render("foldchat · " + title))
	b.WriteString("\n\n")

	b.WriteString(m.fieldView("Email", "email", fieldEmail))
	b.WriteString("\n")
	b.WriteString(m.fieldView("Password", "password", fieldPassword))
	b.WriteString("\n")

	switch {
	case m.submitting:
		b.WriteString(loadingStyle.Render("Please wait..."))
	case m.err != nil:
		b.WriteString(formatBanner(m.err))
	case m.notice != "":
		b.WriteString(noticeStyle.Render(m.notice))
	}
	b.WriteString("\n\n")

	toggle := "ctrl+t: need an account? Sign up"
	if m.signUp {
		toggle = "ctrl+t: have an account? Sign in"
	}
	b.WriteString(strings.Join([]string{
		shortcut("Enter", "Submit"),
		shortcut("Tab", "Next field"),
		hintStyle.Render(toggle),
	}, "  │  "))

	box := panelStyle.Width(56).Render(b.String())
	if m.width == 0 || m.height == 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m authModel) fieldView(label, field string, idx int) string {
	labelStyle := subtitleStyle
	if m.focus == idx {
		labelStyle = inputLabelStyle
	}
	out := labelStyle.Render(label) + "\n" + m.inputs[idx].View() + "\n"
	if msg, ok := m.fieldErrs[field]; ok {
		out += fieldErrorStyle.Render(msg) + "\n"
	}
	return out
}

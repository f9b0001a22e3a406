package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/diogo/foldchat/internal/auth"
	apierrors "github.com/diogo/foldchat/internal/errors"
)

// initApp runs Init and feeds back the restore result
func initApp(t *testing.T, deps *Deps) App {
	t.Helper()
	app := NewApp(context.Background(), deps)
	if app.screen != screenLoading {
		t.Fatalf("screen = %v, want loading", app.screen)
	}
	for _, msg := range collect(app.Init()) {
		if done, ok := msg.(authInitDoneMsg); ok {
			next, _ := app.Update(done)
			return next.(App)
		}
	}
	t.Fatal("Init produced no restore result")
	return app
}

func update(a App, msgs ...tea.Msg) (App, tea.Cmd) {
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = a.Update(msg)
		a = next.(App)
	}
	return a, cmd
}

func TestApp_RestoredSessionShowsChat(t *testing.T) {
	deps, _, _ := newTestDeps(t)
	app := initApp(t, deps)
	if app.screen != screenChat {
		t.Errorf("screen = %v, want chat", app.screen)
	}
}

func TestApp_NoSessionShowsAuth(t *testing.T) {
	deps, fa, _ := newTestDeps(t)
	fa.user = nil
	app := initApp(t, deps)
	if app.screen != screenAuth {
		t.Errorf("screen = %v, want auth", app.screen)
	}
}

func TestApp_RestoreErrorShowsBanner(t *testing.T) {
	deps, fa, _ := newTestDeps(t)
	fa.user = nil
	fa.initErr = apierrors.NewAuthError("Could not restore your session", nil)
	app := initApp(t, deps)
	if app.screen != screenAuth || app.auth.err == nil {
		t.Errorf("screen = %v, err = %v", app.screen, app.auth.err)
	}
	app, _ = update(app, tea.WindowSizeMsg{Width: 100, Height: 30})
	if !strings.Contains(app.View(), "Could not restore your session") {
		t.Error("view should show the restore error")
	}
}

func TestApp_SignInFlow(t *testing.T) {
	deps, fa, _ := newTestDeps(t)
	fa.user = nil
	app := initApp(t, deps)

	app, cmd := update(app, runes("ada@example.com"), key(tea.KeyEnter), runes("secret1"), key(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("expected a sign in command")
	}
	if !app.auth.submitting {
		t.Error("form should be submitting")
	}

	msgs := collect(cmd)
	app, _ = update(app, msgs...)
	if fa.signIns != 1 {
		t.Errorf("SignIn calls = %d", fa.signIns)
	}
	if app.screen != screenChat {
		t.Errorf("screen = %v, want chat", app.screen)
	}
}

func TestApp_SignInValidation(t *testing.T) {
	deps, fa, _ := newTestDeps(t)
	fa.user = nil
	app := initApp(t, deps)

	app, cmd := update(app, key(tea.KeyEnter), key(tea.KeyEnter))
	if cmd != nil {
		t.Error("invalid form should not call the provider")
	}
	if got := app.auth.fieldErrs["email"]; got != "Email is required" {
		t.Errorf("email error = %q", got)
	}

	app, _ = update(app, key(tea.KeyTab), runes("not-an-email"), key(tea.KeyTab), runes("x"), key(tea.KeyEnter))
	if got := app.auth.fieldErrs["email"]; got != "Invalid email format" {
		t.Errorf("email error = %q", got)
	}
	if fa.signIns != 0 {
		t.Errorf("SignIn calls = %d", fa.signIns)
	}
}

func TestApp_SignInRejected(t *testing.T) {
	deps, fa, _ := newTestDeps(t)
	fa.user = nil
	fa.signInErr = apierrors.NewAuthError("Invalid login credentials", nil)
	app := initApp(t, deps)

	app, cmd := update(app, runes("ada@example.com"), key(tea.KeyEnter), runes("wrong"), key(tea.KeyEnter))
	app, _ = update(app, collect(cmd)...)

	if app.screen != screenAuth {
		t.Errorf("screen = %v, want auth", app.screen)
	}
	if app.auth.submitting || !apierrors.IsAuthError(app.auth.err) {
		t.Errorf("submitting = %v, err = %v", app.auth.submitting, app.auth.err)
	}
}

func TestApp_SignUpPending(t *testing.T) {
	deps, fa, _ := newTestDeps(t)
	fa.user = nil
	fa.signUpErr = auth.ErrConfirmationPending
	app := initApp(t, deps)

	app, _ = update(app, key(tea.KeyCtrlT))
	if !app.auth.signUp {
		t.Fatal("ctrl+t should switch to sign up")
	}

	app, cmd := update(app, runes("ada@example.com"), key(tea.KeyEnter), runes("secret1"), key(tea.KeyEnter))
	app, _ = update(app, collect(cmd)...)

	if app.screen != screenAuth || app.auth.signUp {
		t.Errorf("screen = %v, signUp = %v", app.screen, app.auth.signUp)
	}
	if app.auth.notice == "" {
		t.Error("expected a confirmation notice")
	}
	if app.auth.inputs[fieldEmail].Value() != "ada@example.com" || app.auth.inputs[fieldPassword].Value() != "" {
		t.Error("email should be kept and the password cleared")
	}
}

func TestApp_SignUpShortPassword(t *testing.T) {
	deps, fa, _ := newTestDeps(t)
	fa.user = nil
	app := initApp(t, deps)

	app, cmd := update(app, key(tea.KeyCtrlT), runes("ada@example.com"), key(tea.KeyEnter), runes("abc"), key(tea.KeyEnter))
	if cmd != nil {
		t.Error("short password should not reach the provider")
	}
	if got := app.auth.fieldErrs["password"]; !strings.Contains(got, "at least 6") {
		t.Errorf("password error = %q", got)
	}
}

func TestApp_SignOut(t *testing.T) {
	deps, fa, _ := newTestDeps(t)
	app := initApp(t, deps)

	app, cmd := update(app, key(tea.KeyCtrlL))
	if cmd == nil {
		t.Fatal("ctrl+l should sign out")
	}
	app, _ = update(app, collect(cmd)...)

	if fa.signOuts != 1 || app.screen != screenAuth {
		t.Errorf("signOuts = %d, screen = %v", fa.signOuts, app.screen)
	}
}

func TestApp_AuthStateChange(t *testing.T) {
	deps, fa, _ := newTestDeps(t)
	app := initApp(t, deps)

	fa.user = nil
	app, _ = update(app, authStateMsg{state: auth.State{Loading: true}})
	if app.screen != screenChat {
		t.Error("loading state should not switch screens")
	}
	app, _ = update(app, authStateMsg{state: auth.State{}})
	if app.screen != screenAuth {
		t.Errorf("screen = %v, want auth after the session ended", app.screen)
	}
}

func TestApp_CtrlCQuits(t *testing.T) {
	deps, _, _ := newTestDeps(t)
	app := initApp(t, deps)

	_, cmd := update(app, key(tea.KeyCtrlC))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+c should quit")
	}
}

func TestApp_LoadingView(t *testing.T) {
	deps, _, _ := newTestDeps(t)
	app := NewApp(context.Background(), deps)
	if !strings.Contains(app.View(), "Restoring session") {
		t.Errorf("view = %q", app.View())
	}
}

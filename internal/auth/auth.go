// Package auth wraps the identity provider's sign-up, sign-in, sign-out and
// session-restore flow.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	apierrors "github.com/diogo/foldchat/internal/errors"
	"github.com/diogo/foldchat/internal/persist"
)

// MinPasswordLength is enforced on sign-up
const MinPasswordLength = 6

// ErrConfirmationPending is returned by SignUp when the account was created
// but the provider requires the email address to be confirmed first
var ErrConfirmationPending = errors.New("check your email to confirm your account, then sign in")

// User identifies the signed-in account
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is an authenticated session as cached on disk
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at,omitempty"`
	User         User      `json:"user"`
}

// Expired reports whether the session is past (or within skew of) its expiry
func (s *Session) Expired(now time.Time, skew time.Duration) bool {
	if s.ExpiresAt.IsZero() {
		return false
	}
	return !now.Add(skew).Before(s.ExpiresAt)
}

// Provider is an identity provider. CurrentSession returns nil without an
// error when nobody is signed in.
type Provider interface {
	SignUp(ctx context.Context, email, password string) (*Session, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context) error
	CurrentSession(ctx context.Context) (*Session, error)
}

// ValidateCredentials checks the sign-in form locally before any provider call
func ValidateCredentials(email, password string, signUp bool) error {
	if email == "" {
		return apierrors.NewValidationError("email", "Email is required")
	}
	if !strings.Contains(email, "@") {
		return apierrors.NewValidationError("email", "Invalid email format")
	}
	if password == "" {
		return apierrors.NewValidationError("password", "Password is required")
	}
	if signUp && len(password) < MinPasswordLength {
		return apierrors.NewValidationError("password",
			fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// sessionCache keeps the current session under persist.KeyAuthSession
type sessionCache struct {
	kv persist.KV
}

func (c sessionCache) load() (*Session, error) {
	data, err := c.kv.Get(persist.KeyAuthSession)
	if err != nil {
		if errors.Is(err, persist.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		// A corrupt cache is the same as no session
		return nil, nil
	}
	if sess.AccessToken == "" || sess.User.ID == "" {
		return nil, nil
	}
	return &sess, nil
}

func (c sessionCache) save(sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := c.kv.Put(persist.KeyAuthSession, data); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (c sessionCache) clear() error {
	return c.kv.Delete(persist.KeyAuthSession)
}

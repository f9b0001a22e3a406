package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	apierrors "github.com/diogo/foldchat/internal/errors"
	"github.com/diogo/foldchat/internal/persist"
)

// localAccount is one entry of the persist.KeyAuthUsers blob
type localAccount struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// LocalProvider keeps accounts in the KV store with bcrypt password hashes.
// It lets foldchat run without a hosted identity service.
type LocalProvider struct {
	mu    sync.Mutex
	kv    persist.KV
	cache sessionCache
	cost  int
}

var _ Provider = (*LocalProvider)(nil)

// NewLocalProvider creates a provider over kv
func NewLocalProvider(kv persist.KV) *LocalProvider {
	return &LocalProvider{kv: kv, cache: sessionCache{kv: kv}, cost: bcrypt.DefaultCost}
}

// WithCost sets the bcrypt cost, used by tests to keep hashing fast
func (p *LocalProvider) WithCost(cost int) *LocalProvider {
	p.cost = cost
	return p
}

func (p *LocalProvider) SignUp(_ context.Context, email, password string) (*Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	accounts, err := p.accounts()
	if err != nil {
		return nil, err
	}
	if _, exists := accounts[email]; exists {
		return nil, apierrors.NewAuthError("User already registered", nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	acct := localAccount{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}
	accounts[email] = acct
	if err := p.saveAccounts(accounts); err != nil {
		return nil, err
	}

	return p.startSession(acct)
}

func (p *LocalProvider) SignIn(_ context.Context, email, password string) (*Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	accounts, err := p.accounts()
	if err != nil {
		return nil, err
	}

	acct, ok := accounts[email]
	if !ok || bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)) != nil {
		return nil, apierrors.NewAuthError("Invalid login credentials", nil)
	}
	return p.startSession(acct)
}

func (p *LocalProvider) SignOut(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cache.clear()
}

// CurrentSession returns the cached session if its account still exists
func (p *LocalProvider) CurrentSession(_ context.Context) (*Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	sess, err := p.cache.load()
	if err != nil || sess == nil {
		return nil, err
	}

	accounts, err := p.accounts()
	if err != nil {
		return nil, err
	}
	if acct, ok := accounts[sess.User.Email]; !ok || acct.ID != sess.User.ID {
		_ = p.cache.clear()
		return nil, nil
	}
	return sess, nil
}

func (p *LocalProvider) startSession(acct localAccount) (*Session, error) {
	sess := &Session{
		AccessToken: uuid.NewString(),
		User:        User{ID: acct.ID, Email: acct.Email},
	}
	if err := p.cache.save(sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (p *LocalProvider) accounts() (map[string]localAccount, error) {
	data, err := p.kv.Get(persist.KeyAuthUsers)
	if err != nil {
		if errors.Is(err, persist.ErrNotFound) {
			return make(map[string]localAccount), nil
		}
		return nil, fmt.Errorf("failed to read accounts: %w", err)
	}

	accounts := make(map[string]localAccount)
	if err := json.Unmarshal(data, &accounts); err != nil {
		return nil, fmt.Errorf("failed to parse accounts: %w", err)
	}
	return accounts, nil
}

func (p *LocalProvider) saveAccounts(accounts map[string]localAccount) error {
	data, err := json.Marshal(accounts)
	if err != nil {
		return fmt.Errorf("failed to marshal accounts: %w", err)
	}
	if err := p.kv.Put(persist.KeyAuthUsers, data); err != nil {
		return fmt.Errorf("failed to save accounts: %w", err)
	}
	return nil
}

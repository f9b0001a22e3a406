package auth

import (
	"context"
	"time"

	http "github.com/bogdanfinn/fhttp"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"github.com/diogo/foldchat/internal/api"
	apierrors "github.com/diogo/foldchat/internal/errors"
	"github.com/diogo/foldchat/internal/persist"
)

// GoTrue REST paths, relative to the project URL
const (
	pathSignUp   = "/auth/v1/signup"
	pathToken    = "/auth/v1/token"
	pathLogout   = "/auth/v1/logout"
	pathUser     = "/auth/v1/user"
	expirySkew   = 30 * time.Second
	providerName = "identity"
)

// GoTrueProvider talks to a hosted GoTrue identity service (the auth API of
// a Supabase project) and caches the session in the KV store
type GoTrueProvider struct {
	client  api.HTTPDoer
	baseURL string
	anonKey string
	cache   sessionCache
	now     func() time.Time
	log     zerolog.Logger
}

var _ Provider = (*GoTrueProvider)(nil)

// NewGoTrueProvider creates a provider for the project at baseURL
func NewGoTrueProvider(client api.HTTPDoer, baseURL, anonKey string, kv persist.KV, log zerolog.Logger) *GoTrueProvider {
	return &GoTrueProvider{
		client:  client,
		baseURL: baseURL,
		anonKey: anonKey,
		cache:   sessionCache{kv: kv},
		now:     time.Now,
		log:     log.With().Str("component", "gotrue").Logger(),
	}
}

type credentialsBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (p *GoTrueProvider) SignUp(ctx context.Context, email, password string) (*Session, error) {
	body, err := p.post(ctx, pathSignUp, "", credentialsBody{Email: email, Password: password})
	if err != nil {
		return nil, err
	}

	// Without auto-confirm the response is the bare user object
	if !gjson.GetBytes(body, "access_token").Exists() {
		return nil, nil
	}
	return p.storeSession(body)
}

func (p *GoTrueProvider) SignIn(ctx context.Context, email, password string) (*Session, error) {
	body, err := p.post(ctx, pathToken+"?grant_type=password", "", credentialsBody{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	return p.storeSession(body)
}

func (p *GoTrueProvider) SignOut(ctx context.Context) error {
	sess, err := p.cache.load()
	if err != nil {
		return err
	}
	if sess == nil {
		return nil
	}

	_, postErr := p.post(ctx, pathLogout, sess.AccessToken, nil)
	if clearErr := p.cache.clear(); clearErr != nil {
		return clearErr
	}
	// An already revoked token is still a successful sign out
	if postErr != nil && !isAuthRejection(postErr) {
		return postErr
	}
	return nil
}

// CurrentSession returns the cached session after checking it with the
// service. A rejected or expired token is refreshed; a rejected refresh
// clears the cache. When the service cannot be reached the cached session is
// trusted.
func (p *GoTrueProvider) CurrentSession(ctx context.Context) (*Session, error) {
	sess, err := p.cache.load()
	if err != nil || sess == nil {
		return nil, err
	}

	if !sess.Expired(p.now(), expirySkew) {
		user, err := p.FetchUser(ctx, sess.AccessToken)
		switch {
		case err == nil:
			if user.ID != "" {
				sess.User = *user
			}
			return sess, nil
		case !isAuthRejection(err):
			p.log.Warn().Err(err).Msg("Identity service unreachable, using cached session")
			return sess, nil
		}
	}

	if sess.RefreshToken == "" {
		_ = p.cache.clear()
		return nil, nil
	}

	p.log.Debug().Msg("Refreshing session")
	body, err := p.post(ctx, pathToken+"?grant_type=refresh_token", "", map[string]string{
		"refresh_token": sess.RefreshToken,
	})
	if err != nil {
		if isAuthRejection(err) {
			_ = p.cache.clear()
			return nil, nil
		}
		return nil, err
	}
	return p.storeSession(body)
}

// FetchUser validates the access token against the service
func (p *GoTrueProvider) FetchUser(ctx context.Context, accessToken string) (*User, error) {
	req, err := api.NewJSONRequest(ctx, http.MethodGet, p.baseURL+pathUser, nil)
	if err != nil {
		return nil, err
	}
	body, err := p.do(req, accessToken)
	if err != nil {
		return nil, err
	}
	return &User{
		ID:    gjson.GetBytes(body, "id").String(),
		Email: gjson.GetBytes(body, "email").String(),
	}, nil
}

func (p *GoTrueProvider) storeSession(body []byte) (*Session, error) {
	parsed := gjson.ParseBytes(body)

	sess := &Session{
		AccessToken:  parsed.Get("access_token").String(),
		RefreshToken: parsed.Get("refresh_token").String(),
		User: User{
			ID:    parsed.Get("user.id").String(),
			Email: parsed.Get("user.email").String(),
		},
	}
	if exp := parsed.Get("expires_at").Int(); exp > 0 {
		sess.ExpiresAt = time.Unix(exp, 0)
	} else if in := parsed.Get("expires_in").Int(); in > 0 {
		sess.ExpiresAt = p.now().Add(time.Duration(in) * time.Second)
	}

	if sess.AccessToken == "" || sess.User.ID == "" {
		return nil, apierrors.NewInvalidResponseError(providerName, "access_token")
	}
	if err := p.cache.save(sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (p *GoTrueProvider) post(ctx context.Context, path, accessToken string, payload any) ([]byte, error) {
	req, err := api.NewJSONRequest(ctx, http.MethodPost, p.baseURL+path, payload)
	if err != nil {
		return nil, err
	}
	return p.do(req, accessToken)
}

func (p *GoTrueProvider) do(req *http.Request, accessToken string) ([]byte, error) {
	token := p.anonKey
	if accessToken != "" {
		token = accessToken
	}
	req.Header.Set("apikey", p.anonKey)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, apierrors.NewNetworkError(providerName, req.URL.Path, err)
	}
	body, err := api.ReadBody(resp)
	if err != nil {
		return nil, apierrors.NewNetworkError(providerName, req.URL.Path, err)
	}

	switch {
	case resp.StatusCode >= 500:
		return nil, apierrors.NewProviderHTTPError(providerName, resp.StatusCode, gotrueMessage(body, resp.StatusCode))
	case !api.IsSuccess(resp.StatusCode):
		return nil, apierrors.NewAuthError(gotrueMessage(body, resp.StatusCode), nil)
	}
	return body, nil
}

// gotrueMessage picks the human readable message out of an error body
func gotrueMessage(body []byte, status int) string {
	for _, path := range []string{"error_description", "msg", "message", "error"} {
		if v := gjson.GetBytes(body, path); v.Type == gjson.String && v.String() != "" {
			return v.String()
		}
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return "authentication failed"
}

// isAuthRejection reports whether the service answered and said no, as
// opposed to not answering at all
func isAuthRejection(err error) bool {
	return apierrors.IsAuthError(err) && !apierrors.IsNetworkError(err)
}

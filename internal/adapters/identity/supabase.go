package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// SupabaseConfig holds the GoTrue project settings.
type SupabaseConfig struct {
	URL        string
	AnonKey    string
	ServiceKey string
	JWTSecret  string
}

// SupabaseProvider calls the GoTrue REST API of a Supabase project.
// Bearer tokens are verified locally with the project JWT secret.
type SupabaseProvider struct {
	cfg    SupabaseConfig
	base   string
	client *http.Client
	signer *TokenSigner
}

var _ Provider = (*SupabaseProvider)(nil)

// adminPageSize is the page size used when scanning users by email.
const adminPageSize = 200

// NewSupabaseProvider creates a provider. client may be nil.
// PRE: cfg.URL, cfg.AnonKey, cfg.ServiceKey and cfg.JWTSecret are set
func NewSupabaseProvider(cfg SupabaseConfig, client *http.Client) *SupabaseProvider {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &SupabaseProvider{
		cfg:    cfg,
		base:   strings.TrimRight(cfg.URL, "/") + "/auth/v1",
		client: client,
		signer: NewTokenSigner(cfg.JWTSecret, 0, ""),
	}
}

type gotrueUser struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	EmailConfirmedAt *time.Time `json:"email_confirmed_at"`
	ConfirmedAt      *time.Time `json:"confirmed_at"`
	// Identities is nil when the field is absent and empty when GoTrue
	// returns an obfuscated user for an address that is already registered.
	Identities []json.RawMessage `json:"identities"`
}

func (u gotrueUser) obfuscated() bool {
	return u.Identities != nil && len(u.Identities) == 0
}

func (u gotrueUser) toUser() User {
	return User{ID: u.ID, Email: u.Email, EmailConfirmed: u.EmailConfirmedAt != nil || u.ConfirmedAt != nil}
}

type gotrueSession struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	ExpiresIn    int64      `json:"expires_in"`
	ExpiresAt    int64      `json:"expires_at"`
	User         gotrueUser `json:"user"`
}

// gotrueError covers the error shapes GoTrue has used across versions.
type gotrueError struct {
	status           int
	Code             any    `json:"code"`
	ErrorCode        string `json:"error_code"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	Err              string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (e *gotrueError) Error() string {
	return fmt.Sprintf("gotrue %d: %s", e.status, e.text())
}

func (e *gotrueError) text() string {
	for _, s := range []string{e.Msg, e.Message, e.ErrorDescription, e.Err} {
		if s != "" {
			return s
		}
	}
	return http.StatusText(e.status)
}

func (e *gotrueError) mentions(parts ...string) bool {
	all := strings.ToLower(e.text() + " " + e.ErrorCode + " " + e.Err)
	for _, p := range parts {
		if strings.Contains(all, p) {
			return true
		}
	}
	return false
}

// do sends a JSON request and decodes a 2xx answer into out.
// POST: transport failures and 5xx wrap ErrUnavailable; other non-2xx return *gotrueError
func (p *SupabaseProvider) do(ctx context.Context, method, path string, admin bool, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, p.base+path, reader)
	if err != nil {
		return err
	}
	key := p.cfg.AnonKey
	if admin {
		key = p.cfg.ServiceKey
	}
	req.Header.Set("apikey", key)
	req.Header.Set("Authorization", "Bearer "+key)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}

	if resp.StatusCode >= 500 {
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
	if resp.StatusCode >= 300 {
		ge := &gotrueError{status: resp.StatusCode}
		_ = json.Unmarshal(raw, ge)
		return ge
	}
	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode gotrue response: %w", err)
		}
	}
	return nil
}

// SignUp registers the user; GoTrue sends the confirmation email itself.
// POST: a duplicate address returns ErrUserExists, including the 200 answer
// GoTrue gives when confirmations are on
func (p *SupabaseProvider) SignUp(ctx context.Context, req SignUpRequest) (User, error) {
	// With auto-confirm on the answer is a session, otherwise the bare user.
	var resp struct {
		gotrueUser
		User *gotrueUser `json:"user"`
	}
	err := p.do(ctx, http.MethodPost, "/signup", false, map[string]any{
		"email":    req.Email,
		"password": req.Password,
		"data":     req.Metadata,
	}, &resp)
	if err != nil {
		return User{}, mapSignUpError(err)
	}
	u := resp.gotrueUser
	if resp.User != nil {
		u = *resp.User
	}
	if u.obfuscated() {
		return User{}, ErrUserExists
	}
	return u.toUser(), nil
}

func mapSignUpError(err error) error {
	var ge *gotrueError
	if errors.As(err, &ge) && ge.mentions("already registered", "already been registered", "user_already_exists", "email_exists") {
		return ErrUserExists
	}
	return err
}

// SignIn uses the password grant.
func (p *SupabaseProvider) SignIn(ctx context.Context, email, password string) (Session, error) {
	var s gotrueSession
	err := p.do(ctx, http.MethodPost, "/token?grant_type=password", false, map[string]string{
		"email":    email,
		"password": password,
	}, &s)
	if err != nil {
		var ge *gotrueError
		if errors.As(err, &ge) {
			switch {
			case ge.mentions("email not confirmed", "email_not_confirmed"):
				return Session{}, ErrEmailNotConfirmed
			case ge.status == http.StatusTooManyRequests:
				return Session{}, ErrAccountLocked
			case ge.mentions("invalid_grant", "invalid login credentials", "invalid_credentials"):
				return Session{}, ErrInvalidCredentials
			}
		}
		return Session{}, err
	}
	exp := time.Unix(s.ExpiresAt, 0)
	if s.ExpiresAt == 0 {
		exp = time.Now().Add(time.Duration(s.ExpiresIn) * time.Second)
	}
	return Session{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		ExpiresAt:    exp,
		User:         s.User.toUser(),
	}, nil
}

// VerifyEmail redeems the token hash from a confirmation link.
func (p *SupabaseProvider) VerifyEmail(ctx context.Context, token string) error {
	err := p.do(ctx, http.MethodPost, "/verify", false, map[string]string{
		"type":       "signup",
		"token_hash": token,
	}, nil)
	var ge *gotrueError
	if errors.As(err, &ge) {
		switch {
		case ge.mentions("already confirmed"):
			return ErrAlreadyConfirmed
		case ge.mentions("expired"):
			return ErrTokenExpired
		default:
			return ErrTokenInvalid
		}
	}
	return err
}

// ResendVerification asks GoTrue to send a new confirmation email.
func (p *SupabaseProvider) ResendVerification(ctx context.Context, email string) (string, error) {
	err := p.do(ctx, http.MethodPost, "/resend", false, map[string]string{"type": "signup", "email": email}, nil)
	var ge *gotrueError
	if errors.As(err, &ge) && ge.mentions("already confirmed") {
		return "", ErrAlreadyConfirmed
	}
	return "", err
}

// AdminCreateUser uses the service-role key.
func (p *SupabaseProvider) AdminCreateUser(ctx context.Context, req AdminCreateRequest) (User, error) {
	var u gotrueUser
	err := p.do(ctx, http.MethodPost, "/admin/users", true, map[string]any{
		"email":         req.Email,
		"password":      req.Password,
		"email_confirm": req.EmailConfirmed,
		"user_metadata": req.Metadata,
	}, &u)
	if err != nil {
		return User{}, mapSignUpError(err)
	}
	return u.toUser(), nil
}

// AdminDeleteUser removes the user. A missing user counts as deleted.
func (p *SupabaseProvider) AdminDeleteUser(ctx context.Context, id string) error {
	err := p.do(ctx, http.MethodDelete, "/admin/users/"+url.PathEscape(id), true, nil, nil)
	var ge *gotrueError
	if errors.As(err, &ge) && ge.status == http.StatusNotFound {
		return nil
	}
	return err
}

// FindUserByEmail pages through the admin user list.
func (p *SupabaseProvider) FindUserByEmail(ctx context.Context, email string) (User, error) {
	want := strings.ToLower(strings.TrimSpace(email))
	for page := 1; ; page++ {
		var resp struct {
			Users []gotrueUser `json:"users"`
		}
		path := fmt.Sprintf("/admin/users?page=%d&per_page=%d", page, adminPageSize)
		if err := p.do(ctx, http.MethodGet, path, true, nil, &resp); err != nil {
			return User{}, err
		}
		for _, u := range resp.Users {
			if strings.ToLower(u.Email) == want {
				return u.toUser(), nil
			}
		}
		if len(resp.Users) < adminPageSize {
			return User{}, ErrUserNotFound
		}
	}
}

// ParseAccessToken verifies a GoTrue-issued JWT with the project secret.
func (p *SupabaseProvider) ParseAccessToken(_ context.Context, token string) (Claims, error) {
	return p.signer.Parse(token)
}

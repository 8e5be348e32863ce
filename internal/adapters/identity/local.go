package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"coachhub/internal/adapters/storage"
	accountstore "coachhub/internal/adapters/storage/account"
	"coachhub/internal/domain/account"
)

// LocalProvider keeps identities in the account table.
// Access tokens are HS256 JWTs; there are no refresh tokens.
type LocalProvider struct {
	accounts accountstore.Store
	signer   *TokenSigner
	now      func() time.Time
}

var _ Provider = (*LocalProvider)(nil)

// NewLocalProvider creates a provider over accounts.
func NewLocalProvider(accounts accountstore.Store, signer *TokenSigner) *LocalProvider {
	return &LocalProvider{accounts: accounts, signer: signer, now: time.Now}
}

// WithClock replaces the time source, for tests.
func (p *LocalProvider) WithClock(now func() time.Time) *LocalProvider {
	p.now = now
	return p
}

// SignUp creates a pending account and its first verification token.
func (p *LocalProvider) SignUp(ctx context.Context, req SignUpRequest) (User, error) {
	return p.create(ctx, req.Email, req.Password, false)
}

// AdminCreateUser creates an account that may skip email confirmation.
func (p *LocalProvider) AdminCreateUser(ctx context.Context, req AdminCreateRequest) (User, error) {
	return p.create(ctx, req.Email, req.Password, req.EmailConfirmed)
}

func (p *LocalProvider) create(ctx context.Context, email, password string, confirmed bool) (User, error) {
	email = account.NormalizeEmail(email)
	if err := account.ValidateEmail(email); err != nil {
		return User{}, err
	}
	if _, err := p.accounts.GetByEmail(ctx, email); err == nil {
		return User{}, ErrUserExists
	} else if !errors.Is(err, storage.ErrNotFound) {
		return User{}, fmt.Errorf("lookup account: %w", err)
	}

	now := p.now()
	a := account.Account{
		ID:        uuid.NewString(),
		Email:     email,
		Status:    account.StatusPendingVerification,
		CreatedAt: now,
	}
	if confirmed {
		a.Status = account.StatusActive
		a.ConfirmedAt = now
	}
	if err := a.SetPassword(password); err != nil {
		return User{}, err
	}
	if err := p.accounts.Save(ctx, a); err != nil {
		if storage.IsUniqueViolation(err) {
			return User{}, ErrUserExists
		}
		return User{}, err
	}

	u := User{ID: a.ID, Email: a.Email, EmailConfirmed: confirmed}
	if !confirmed {
		token, err := p.issueVerification(ctx, a.ID, now)
		if err != nil {
			_ = p.accounts.Delete(ctx, a.ID)
			return User{}, err
		}
		u.VerificationToken = token
	}
	return u, nil
}

func (p *LocalProvider) issueVerification(ctx context.Context, accountID string, now time.Time) (string, error) {
	t := account.VerificationToken{
		ID:        uuid.NewString(),
		AccountID: accountID,
		Token:     uuid.NewString(),
		ExpiresAt: now.Add(account.VerificationTTL),
		CreatedAt: now,
	}
	if err := p.accounts.SaveVerificationToken(ctx, t); err != nil {
		return "", fmt.Errorf("save verification token: %w", err)
	}
	return t.Token, nil
}

// SignIn checks the password and issues an access token.
// A correct password on an unconfirmed account yields ErrEmailNotConfirmed.
func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (Session, error) {
	a, err := p.accounts.GetByEmail(ctx, email)
	if errors.Is(err, storage.ErrNotFound) {
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, err
	}

	now := p.now()
	if a.IsLocked(now) {
		return Session{}, ErrAccountLocked
	}
	if err := a.CheckPassword(password); err != nil {
		a.RecordFailedLogin(now)
		if saveErr := p.accounts.Save(ctx, a); saveErr != nil {
			return Session{}, saveErr
		}
		if a.IsLocked(now) {
			return Session{}, ErrAccountLocked
		}
		return Session{}, ErrInvalidCredentials
	}
	if a.FailedLogins > 0 {
		a.ResetFailedLogins()
		if err := p.accounts.Save(ctx, a); err != nil {
			return Session{}, err
		}
	}
	if a.IsPendingVerification() {
		return Session{}, ErrEmailNotConfirmed
	}

	token, exp, err := p.signer.Issue(a.ID, a.Email, now)
	if err != nil {
		return Session{}, err
	}
	return Session{
		AccessToken: token,
		ExpiresAt:   exp,
		User:        User{ID: a.ID, Email: a.Email, EmailConfirmed: true},
	}, nil
}

// VerifyEmail confirms the account the token belongs to.
func (p *LocalProvider) VerifyEmail(ctx context.Context, token string) error {
	t, err := p.accounts.GetVerificationToken(ctx, token)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrTokenInvalid
	}
	if err != nil {
		return err
	}
	a, err := p.accounts.GetByID(ctx, t.AccountID)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrTokenInvalid
	}
	if err != nil {
		return err
	}
	if !a.IsPendingVerification() {
		return ErrAlreadyConfirmed
	}
	now := p.now()
	if t.Used {
		return ErrTokenInvalid
	}
	if t.IsExpired(now) {
		return ErrTokenExpired
	}
	if err := a.Confirm(now); err != nil {
		return err
	}
	if err := p.accounts.Save(ctx, a); err != nil {
		return err
	}
	return p.accounts.InvalidateTokensForAccount(ctx, a.ID)
}

// ResendVerification replaces outstanding tokens with a fresh one.
func (p *LocalProvider) ResendVerification(ctx context.Context, email string) (string, error) {
	a, err := p.accounts.GetByEmail(ctx, email)
	if errors.Is(err, storage.ErrNotFound) {
		return "", ErrUserNotFound
	}
	if err != nil {
		return "", err
	}
	if !a.IsPendingVerification() {
		return "", ErrAlreadyConfirmed
	}
	if err := p.accounts.InvalidateTokensForAccount(ctx, a.ID); err != nil {
		return "", err
	}
	return p.issueVerification(ctx, a.ID, p.now())
}

// AdminDeleteUser removes the account. Deleting a missing account succeeds.
func (p *LocalProvider) AdminDeleteUser(ctx context.Context, id string) error {
	return p.accounts.Delete(ctx, id)
}

// FindUserByEmail looks an identity up without a password.
func (p *LocalProvider) FindUserByEmail(ctx context.Context, email string) (User, error) {
	a, err := p.accounts.GetByEmail(ctx, email)
	if errors.Is(err, storage.ErrNotFound) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, err
	}
	return User{ID: a.ID, Email: a.Email, EmailConfirmed: !a.IsPendingVerification()}, nil
}

// ParseAccessToken verifies a token issued by SignIn.
func (p *LocalProvider) ParseAccessToken(_ context.Context, token string) (Claims, error) {
	return p.signer.Parse(token)
}

// PurgeExpiredTokens deletes verification tokens that expired before now.
func (p *LocalProvider) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	return p.accounts.DeleteExpiredTokens(ctx, storage.FormatTime(p.now()))
}

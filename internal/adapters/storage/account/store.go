package account

import (
	"context"

	domain "coachhub/internal/domain/account"
)

// Store persists local identity accounts and their verification tokens.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Account, error)
	GetByEmail(ctx context.Context, email string) (domain.Account, error)
	Save(ctx context.Context, value domain.Account) error
	Delete(ctx context.Context, id string) error
	SaveVerificationToken(ctx context.Context, token domain.VerificationToken) error
	GetVerificationToken(ctx context.Context, token string) (domain.VerificationToken, error)
	InvalidateTokensForAccount(ctx context.Context, accountID string) error
	DeleteExpiredTokens(ctx context.Context, before string) (int64, error)
}

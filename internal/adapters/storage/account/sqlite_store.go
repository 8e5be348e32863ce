package account

import (
	"context"
	"database/sql"
	"fmt"

	"coachhub/internal/adapters/storage"
	domain "coachhub/internal/domain/account"
)

const accountColumns = "id, email, password_hash, status, created_at, confirmed_at, failed_logins, locked_until"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new account store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves an Account by its ID.
// PRE: id is non-empty
// POST: Returns the entity or a wrapped storage.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Account, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+accountColumns+" FROM account WHERE id = ?", id)
	entity, err := scanAccount(row.Scan)
	return entity, storage.NotFound("account", err)
}

// GetByEmail retrieves an Account by normalized email.
// PRE: email is non-empty
// POST: Returns the entity or a wrapped storage.ErrNotFound
func (s *SQLiteStore) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+accountColumns+" FROM account WHERE email = ?", domain.NormalizeEmail(email))
	entity, err := scanAccount(row.Scan)
	return entity, storage.NotFound("account", err)
}

// Save inserts or updates an Account.
// PRE: entity has been validated
// POST: Entity is persisted; a duplicate email fails with a UNIQUE violation
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Account) error {
	query := `INSERT INTO account (` + accountColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			email=excluded.email,
			password_hash=excluded.password_hash,
			status=excluded.status,
			confirmed_at=excluded.confirmed_at,
			failed_logins=excluded.failed_logins,
			locked_until=excluded.locked_until`

	_, err := s.db.ExecContext(ctx, query,
		entity.ID,
		domain.NormalizeEmail(entity.Email),
		entity.PasswordHash,
		entity.Status,
		storage.FormatTime(entity.CreatedAt),
		storage.NullTime(entity.ConfirmedAt),
		entity.FailedLogins,
		storage.NullTime(entity.LockedUntil),
	)
	if err != nil {
		return fmt.Errorf("save account: %w", err)
	}
	return nil
}

// Delete removes an Account; its tokens cascade.
// POST: no row with id remains (deleting a missing id is not an error)
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM account WHERE id = ?", id)
	return err
}

// SaveVerificationToken inserts or updates a token.
func (s *SQLiteStore) SaveVerificationToken(ctx context.Context, t domain.VerificationToken) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO verification_token (id, account_id, token, expires_at, used, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET used=excluded.used`,
		t.ID, t.AccountID, t.Token, storage.FormatTime(t.ExpiresAt), t.Used, storage.FormatTime(t.CreatedAt))
	return err
}

// GetVerificationToken looks a token up by its value.
// POST: Returns the token or a wrapped storage.ErrNotFound
func (s *SQLiteStore) GetVerificationToken(ctx context.Context, token string) (domain.VerificationToken, error) {
	var t domain.VerificationToken
	var expiresAt, createdAt string
	err := s.db.QueryRowContext(ctx,
		"SELECT id, account_id, token, expires_at, used, created_at FROM verification_token WHERE token = ?", token,
	).Scan(&t.ID, &t.AccountID, &t.Token, &expiresAt, &t.Used, &createdAt)
	if err != nil {
		return domain.VerificationToken{}, storage.NotFound("verification token", err)
	}
	t.ExpiresAt, _ = storage.ParseTime(expiresAt)
	t.CreatedAt, _ = storage.ParseTime(createdAt)
	return t, nil
}

// InvalidateTokensForAccount marks every unused token of the account as used.
// POST: only the next issued token can verify the account
func (s *SQLiteStore) InvalidateTokensForAccount(ctx context.Context, accountID string) error {
	_, err := s.db.ExecContext(ctx, "UPDATE verification_token SET used = 1 WHERE account_id = ? AND used = 0", accountID)
	return err
}

// DeleteExpiredTokens removes tokens that expired before the RFC 3339 instant.
func (s *SQLiteStore) DeleteExpiredTokens(ctx context.Context, before string) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM verification_token WHERE expires_at < ?", before)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// scanAccount extracts an Account from a row scanner function.
func scanAccount(scan func(dest ...interface{}) error) (domain.Account, error) {
	var entity domain.Account
	var createdAt string
	var confirmedAt, lockedUntil sql.NullString
	err := scan(
		&entity.ID,
		&entity.Email,
		&entity.PasswordHash,
		&entity.Status,
		&createdAt,
		&confirmedAt,
		&entity.FailedLogins,
		&lockedUntil,
	)
	if err != nil {
		return domain.Account{}, err
	}
	entity.CreatedAt, _ = storage.ParseTime(createdAt)
	entity.ConfirmedAt = storage.ParseNullTime(confirmedAt)
	entity.LockedUntil = storage.ParseNullTime(lockedUntil)
	return entity, nil
}

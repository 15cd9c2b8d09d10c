package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"jobaggregator/internal/hhtoken"
	"jobaggregator/pkg/crypto"
)

const upsertQuery = `
	INSERT INTO hh_tokens (user_id, access_token, refresh_token, issued_at, expires_in_seconds)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (user_id) DO UPDATE
	SET access_token       = EXCLUDED.access_token,
	    refresh_token      = EXCLUDED.refresh_token,
	    issued_at          = EXCLUDED.issued_at,
	    expires_in_seconds = EXCLUDED.expires_in_seconds`

// PostgresTokenRepository хранит токены hh.ru. SQL переносим: в тестах тот же код
// работает поверх SQLite.
type PostgresTokenRepository struct {
	db     *sql.DB
	cipher *crypto.Cipher
}

// NewPostgresTokenRepository: при cipher == nil токены хранятся как есть
func NewPostgresTokenRepository(db *sql.DB, cipher *crypto.Cipher) *PostgresTokenRepository {
	return &PostgresTokenRepository{db: db, cipher: cipher}
}

func (r *PostgresTokenRepository) Find(ctx context.Context, userID int64) (*hhtoken.ExternalToken, error) {
	var (
		t        = &hhtoken.ExternalToken{}
		issuedAt sql.NullTime
	)

	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, access_token, refresh_token, issued_at, expires_in_seconds
		 FROM hh_tokens WHERE user_id = $1`,
		userID).Scan(&t.UserID, &t.AccessToken, &t.RefreshToken, &issuedAt, &t.ExpiresIn)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, hhtoken.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find hh token: %w", err)
	}

	if issuedAt.Valid {
		ts := issuedAt.Time
		t.IssuedAt = &ts
	}

	if t.AccessToken, err = r.open(t.AccessToken); err != nil {
		return nil, fmt.Errorf("failed to decrypt hh access token: %w", err)
	}
	if t.RefreshToken, err = r.open(t.RefreshToken); err != nil {
		return nil, fmt.Errorf("failed to decrypt hh refresh token: %w", err)
	}

	return t, nil
}

// Upsert создает или перезаписывает запись пользователя. Все четыре поля пишутся
// одним оператором внутри одной транзакции: при гонке обновлений побеждает последний,
// но запись никогда не остается наполовину обновленной.
func (r *PostgresTokenRepository) Upsert(ctx context.Context, t *hhtoken.ExternalToken) error {
	access, err := r.seal(t.AccessToken)
	if err != nil {
		return fmt.Errorf("failed to encrypt hh access token: %w", err)
	}
	refresh, err := r.seal(t.RefreshToken)
	if err != nil {
		return fmt.Errorf("failed to encrypt hh refresh token: %w", err)
	}

	var issuedAt sql.NullTime
	if t.IssuedAt != nil {
		issuedAt = sql.NullTime{Time: *t.IssuedAt, Valid: true}
	}

	tx, err := r.beginTransaction(ctx)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, upsertQuery, t.UserID, access, refresh, issuedAt, t.ExpiresIn); err != nil {
		r.rollback(tx)
		return fmt.Errorf("failed to upsert hh token: %w", err)
	}

	return r.commit(tx)
}

func (r *PostgresTokenRepository) seal(value string) (string, error) {
	if r.cipher == nil {
		return value, nil
	}
	return r.cipher.Encrypt(value)
}

func (r *PostgresTokenRepository) open(value string) (string, error) {
	if r.cipher == nil {
		return value, nil
	}
	return r.cipher.Decrypt(value)
}

// Вспомогательные функции для транзакций
func (r *PostgresTokenRepository) beginTransaction(ctx context.Context) (*sql.Tx, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

func (r *PostgresTokenRepository) rollback(tx *sql.Tx) {
	if tx != nil {
		_ = tx.Rollback()
	}
}

func (r *PostgresTokenRepository) commit(tx *sql.Tx) error {
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

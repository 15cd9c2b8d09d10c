package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"jobaggregator/internal/token"
)

type RefreshTokenRepository struct {
	db *sql.DB
}

func NewRefreshTokenRepository(db *sql.DB) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

func (r *RefreshTokenRepository) GetByToken(ctx context.Context, tokenStr string) (*token.Token, error) {
	t := &token.Token{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, token, expires_at, created_at FROM refresh_tokens WHERE token = $1`,
		tokenStr).Scan(&t.ID, &t.UserID, &t.Token, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, token.ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}
	return t, nil
}

// Rotate удаляет все refresh-токены пользователя и сохраняет новый в одной транзакции
func (r *RefreshTokenRepository) Rotate(ctx context.Context, next *token.Token) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, next.UserID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to invalidate refresh tokens: %w", err)
	}

	err = tx.QueryRowContext(ctx,
		`INSERT INTO refresh_tokens (user_id, token, expires_at, created_at) VALUES ($1, $2, $3, $4) RETURNING id`,
		next.UserID, next.Token, next.ExpiresAt, next.CreatedAt).Scan(&next.ID)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to save refresh token: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteByToken отзывает один refresh-токен (выход из сессии)
func (r *RefreshTokenRepository) DeleteByToken(ctx context.Context, tokenStr string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE token = $1`, tokenStr)
	if err != nil {
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return token.ErrInvalidToken
	}
	return nil
}

// DeleteExpired чистит просроченные токены, возвращает число удаленных
func (r *RefreshTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired refresh tokens: %w", err)
	}
	return res.RowsAffected()
}

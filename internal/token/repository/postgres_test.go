package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"jobaggregator/internal/testutil"
	"jobaggregator/internal/token"
)

func TestRotateAndGet(t *testing.T) {
	ctx := context.Background()
	db := testutil.OpenSQLite(t)
	uid := testutil.InsertUser(t, db, "anna")
	repo := NewRefreshTokenRepository(db)
	now := time.Now().UTC()

	first, err := token.NewRefreshToken(uid, now)
	require.NoError(t, err)
	require.NoError(t, repo.Rotate(ctx, first))
	require.NotZero(t, first.ID)

	got, err := repo.GetByToken(ctx, first.Token)
	require.NoError(t, err)
	require.Equal(t, uid, got.UserID)
	require.False(t, got.Expired(now))

	second, err := token.NewRefreshToken(uid, now)
	require.NoError(t, err)
	require.NoError(t, repo.Rotate(ctx, second))

	_, err = repo.GetByToken(ctx, first.Token)
	require.ErrorIs(t, err, token.ErrInvalidToken)

	got, err = repo.GetByToken(ctx, second.Token)
	require.NoError(t, err)
	require.Equal(t, second.ID, got.ID)
}

func TestDeleteExpired(t *testing.T) {
	ctx := context.Background()
	db := testutil.OpenSQLite(t)
	repo := NewRefreshTokenRepository(db)

	past := time.Now().UTC().Add(-48 * time.Hour)
	old, err := token.NewRefreshToken(testutil.InsertUser(t, db, "boris"), past)
	require.NoError(t, err)
	require.NoError(t, repo.Rotate(ctx, old))

	fresh, err := token.NewRefreshToken(testutil.InsertUser(t, db, "vera"), time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, repo.Rotate(ctx, fresh))

	n, err := repo.DeleteExpired(ctx, time.Now().UTC())
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	_, err = repo.GetByToken(ctx, fresh.Token)
	require.NoError(t, err)
}

func TestDeleteByToken(t *testing.T) {
	ctx := context.Background()
	db := testutil.OpenSQLite(t)
	repo := NewRefreshTokenRepository(db)

	tok, err := token.NewRefreshToken(testutil.InsertUser(t, db, "gleb"), time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, repo.Rotate(ctx, tok))

	require.NoError(t, repo.DeleteByToken(ctx, tok.Token))
	_, err = repo.GetByToken(ctx, tok.Token)
	require.ErrorIs(t, err, token.ErrInvalidToken)

	require.ErrorIs(t, repo.DeleteByToken(ctx, tok.Token), token.ErrInvalidToken)
}

package jwt_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"jobaggregator/pkg/jwt"
)

func TestGenerateAndParse(t *testing.T) {
	t.Parallel()

	token, err := jwt.Generate("secret", 42, jwt.PurposeAccess, time.Minute)
	require.NoError(t, err)

	userID, err := jwt.Parse("secret", token, jwt.PurposeAccess)
	require.NoError(t, err)
	require.Equal(t, int64(42), userID)
}

func TestParseRejects(t *testing.T) {
	t.Parallel()

	t.Run("wrong secret", func(t *testing.T) {
		token, err := jwt.Generate("secret", 1, jwt.PurposeAccess, time.Minute)
		require.NoError(t, err)

		_, err = jwt.Parse("other", token, jwt.PurposeAccess)
		require.ErrorIs(t, err, jwt.ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		token, err := jwt.Generate("secret", 1, jwt.PurposeAccess, -time.Minute)
		require.NoError(t, err)

		_, err = jwt.Parse("secret", token, jwt.PurposeAccess)
		require.ErrorIs(t, err, jwt.ErrInvalidToken)
	})

	t.Run("state token is not an access token", func(t *testing.T) {
		token, err := jwt.Generate("secret", 1, jwt.PurposeState, time.Minute)
		require.NoError(t, err)

		_, err = jwt.Parse("secret", token, jwt.PurposeAccess)
		require.ErrorIs(t, err, jwt.ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := jwt.Parse("secret", "not-a-jwt", jwt.PurposeAccess)
		require.ErrorIs(t, err, jwt.ErrInvalidToken)
	})
}

package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCipherRoundTrip(t *testing.T) {
	c, err := NewCipher("short")
	require.NoError(t, err)

	enc, err := c.Encrypt("access-token-value")
	require.NoError(t, err)
	require.NotEqual(t, "access-token-value", enc)

	dec, err := c.Decrypt(enc)
	require.NoError(t, err)
	require.Equal(t, "access-token-value", dec)
}

func TestCipherWrongKey(t *testing.T) {
	a, err := NewCipher("key-a")
	require.NoError(t, err)
	b, err := NewCipher("key-b")
	require.NoError(t, err)

	enc, err := a.Encrypt("secret")
	require.NoError(t, err)

	_, err = b.Decrypt(enc)
	require.Error(t, err)
}

func TestCipherMalformed(t *testing.T) {
	c, err := NewCipher("k")
	require.NoError(t, err)

	_, err = c.Decrypt("%%%")
	require.ErrorIs(t, err, ErrMalformedCiphertext)

	_, err = c.Decrypt("YQ==")
	require.ErrorIs(t, err, ErrMalformedCiphertext)
}

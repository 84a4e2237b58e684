package aescbc

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCipher_RoundTrip(t *testing.T) {
	c, err := New([]byte("0123456789abcdef"))
	require.NoError(t, err)

	for _, phone := range []string{"", "01012345678", "+82-10-1234-5678"} {
		enc, err := c.Encrypt(phone)
		require.NoError(t, err)
		require.NotEqual(t, phone, enc)

		dec, err := c.Decrypt(enc)
		require.NoError(t, err)
		require.Equal(t, phone, dec)
	}
}

func TestCipher_RandomIV(t *testing.T) {
	c, err := New([]byte("0123456789abcdef"))
	require.NoError(t, err)

	a, err := c.Encrypt("01012345678")
	require.NoError(t, err)
	b, err := c.Encrypt("01012345678")
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestCipher_WrongKey(t *testing.T) {
	c1, err := New([]byte("0123456789abcdef"))
	require.NoError(t, err)
	c2, err := New([]byte("fedcba9876543210"))
	require.NoError(t, err)

	enc, err := c1.Encrypt("01012345678")
	require.NoError(t, err)

	// A wrong key almost always breaks the padding; if it happens to survive, the text differs.
	dec, err := c2.Decrypt(enc)
	if err == nil {
		require.NotEqual(t, "01012345678", dec)
	}
}

func TestCipher_Malformed(t *testing.T) {
	c, err := New([]byte("0123456789abcdef"))
	require.NoError(t, err)

	_, err = c.Decrypt("not base64!!")
	require.ErrorIs(t, err, ErrMalformed)

	_, err = c.Decrypt(base64.StdEncoding.EncodeToString([]byte("short")))
	require.ErrorIs(t, err, ErrMalformed)
}

func TestNew_BadKey(t *testing.T) {
	_, err := New([]byte("short"))
	require.Error(t, err)
}

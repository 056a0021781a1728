package crypto

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCipher(t *testing.T) *AESGCM {
	t.Helper()
	c, err := NewAESGCM(bytes.Repeat([]byte{0x42}, 32))
	require.NoError(t, err)
	return c
}

func TestNewAESGCM_RejectsBadKeyLength(t *testing.T) {
	_, err := NewAESGCM([]byte("short"))
	require.Error(t, err)
}

func TestAESGCM_RoundTrip(t *testing.T) {
	c := testCipher(t)

	ciphertext, err := c.Encrypt("opaque-access-token")
	require.NoError(t, err)
	assert.NotEqual(t, "opaque-access-token", ciphertext)

	plaintext, err := c.Decrypt(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, "opaque-access-token", plaintext)
}

func TestAESGCM_NonceMakesOutputDiffer(t *testing.T) {
	c := testCipher(t)

	first, err := c.Encrypt("token")
	require.NoError(t, err)
	second, err := c.Encrypt("token")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestAESGCM_RejectsTamperedCiphertext(t *testing.T) {
	c := testCipher(t)

	ciphertext, err := c.Encrypt("token")
	require.NoError(t, err)

	_, err = c.Decrypt("x" + ciphertext[1:])
	assert.Error(t, err)
}

func TestAESGCM_RejectsGarbage(t *testing.T) {
	c := testCipher(t)

	_, err := c.Decrypt("not base64 at all!!!")
	assert.Error(t, err)

	_, err = c.Decrypt("c2hvcnQ=") // valid base64, too short for a nonce
	assert.Error(t, err)
}

func TestNoop_PassesThrough(t *testing.T) {
	var c Noop

	out, err := c.Encrypt("token")
	require.NoError(t, err)
	assert.Equal(t, "token", out)

	out, err = c.Decrypt("token")
	require.NoError(t, err)
	assert.Equal(t, "token", out)
}

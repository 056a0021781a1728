// Package crypto encrypts tokens at rest in the credential store.
//
// Tokens are opaque strings to the rest of the system; the credential store
// passes them through a Cipher before persisting. Noop keeps dev setups
// working without a key.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
)

type Cipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// Noop passes tokens through without encryption (dev/test mode).
type Noop struct{}

func (Noop) Encrypt(plaintext string) (string, error)  { return plaintext, nil }
func (Noop) Decrypt(ciphertext string) (string, error) { return ciphertext, nil }

// AESGCM encrypts with AES-256-GCM. Output layout is nonce || ciphertext ||
// tag, base64-encoded.
type AESGCM struct {
	aead cipher.AEAD
}

// NewAESGCM creates a cipher from a 32-byte key. Key format validation
// happens at config load; this only rejects wrong lengths.
func NewAESGCM(key []byte) (*AESGCM, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &AESGCM{aead: aead}, nil
}

func (c *AESGCM) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (c *AESGCM) Decrypt(ciphertext string) (string, error) {
	sealed, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("failed to decode ciphertext: %w", err)
	}

	nonceSize := c.aead.NonceSize()
	if len(sealed) < nonceSize {
		return "", fmt.Errorf("ciphertext too short")
	}

	nonce, body := sealed[:nonceSize], sealed[nonceSize:]
	plain, err := c.aead.Open(nil, nonce, body, nil)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt: %w", err)
	}

	return string(plain), nil
}

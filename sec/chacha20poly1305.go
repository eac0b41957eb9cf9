package sec

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
)

// Read https://pkg.go.dev/golang.org/x/crypto/chacha20poly1305

// ConfKeyEnv holds the base64url key that decrypts `pw_enc` in database confs.
const ConfKeyEnv = "SQLDB_CONF_KEY"

var ErrNoKey = errors.New("sec: encryption key not set")

type XChaCha20Poly1305Cipher struct {
	aead       cipher.AEAD
	encodeFunc func([]byte) string          // e.g. base64.RawURLEncoding.EncodeToString, hex.EncodeToString
	decodeFunc func(string) ([]byte, error) // e.g. base64.RawURLEncoding.DecodeString, hex.DecodeString
}

func NewXChaCha20Poly1305Cipher(
	key []byte,
	encodeFunc func([]byte) string,
	decodeFunc func(string) ([]byte, error),
) (*XChaCha20Poly1305Cipher, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("key must be %d bytes, got %d", chacha20poly1305.KeySize, len(key))
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	return &XChaCha20Poly1305Cipher{aead: aead, encodeFunc: encodeFunc, decodeFunc: decodeFunc}, nil
}

// NewXChaCha20Poly1305CipherBase64 encodes ciphertexts as unpadded base64url.
func NewXChaCha20Poly1305CipherBase64(key []byte) (*XChaCha20Poly1305Cipher, error) {
	return NewXChaCha20Poly1305Cipher(key, base64.RawURLEncoding.EncodeToString, base64.RawURLEncoding.DecodeString)
}

// CipherFromEnv builds a base64url cipher from the base64url key in env.
// ErrNoKey is returned when env is unset.
func CipherFromEnv(env string) (*XChaCha20Poly1305Cipher, error) {
	encoded := strings.TrimSpace(os.Getenv(env))
	if encoded == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoKey, env)
	}
	key, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(encoded, "="))
	if err != nil {
		return nil, fmt.Errorf("invalid key in %s: %w", env, err)
	}
	return NewXChaCha20Poly1305CipherBase64(key)
}

func (c *XChaCha20Poly1305Cipher) EncryptEncode(plaintext []byte) (string, error) {
	// random nonce every time, with capacity left for the sealed text
	nonce := make([]byte, c.aead.NonceSize(), c.aead.NonceSize()+len(plaintext)+c.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	return c.encodeFunc(c.aead.Seal(nonce, nonce, plaintext, nil)), nil
}

// DecodeDecrypt reverses EncryptEncode. Tampered input fails authentication.
func (c *XChaCha20Poly1305Cipher) DecodeDecrypt(encodedCiphertext string) ([]byte, error) {
	data, err := c.decodeFunc(encodedCiphertext)
	if err != nil {
		return nil, err
	}
	nonceSize := c.aead.NonceSize()
	if len(data) < nonceSize {
		return nil, errors.New("ciphertext too short")
	}
	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	return c.aead.Open(nil, nonce, ciphertext, nil)
}

// Package fieldcrypt encrypts individual text columns before they reach the
// database and decrypts them on the way out. Display values use AES-256-GCM
// with a fresh random nonce per call; lookups use a separate keyed hash so
// that equality matching never depends on ciphertext bytes.
package fieldcrypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"

	"golang.org/x/crypto/hkdf"
)

const (
	masterKeySize = 32
	nonceSize     = 12
)

var errMalformedToken = errors.New("malformed token")

// Cipher holds the derived key material for one master key. It is immutable
// and safe for concurrent use once constructed.
type Cipher struct {
	aead      cipher.AEAD
	lookupKey []byte
}

// New derives the encryption and lookup keys from the master key. The master
// key must be the raw bytes returned by LoadOrCreateKey.
func New(master []byte) (*Cipher, error) {
	if len(master) != masterKeySize {
		return nil, errors.New("master key must be 32 bytes")
	}

	kdf := hkdf.New(sha256.New, master, nil, []byte("contest-fieldcrypt-v1"))

	encKey := make([]byte, 32)
	if _, err := io.ReadFull(kdf, encKey); err != nil {
		return nil, err
	}
	lookupKey := make([]byte, 32)
	if _, err := io.ReadFull(kdf, lookupKey); err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(encKey)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	return &Cipher{aead: aead, lookupKey: lookupKey}, nil
}

// Encrypt seals the plaintext and returns a text token suitable for a TEXT
// column: base64url(nonce || ciphertext). The empty string encrypts to a
// valid token that decrypts back to "".
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. It never fails: an empty token yields "", and a
// malformed or foreign-keyed token yields "" after logging the occurrence.
// Callers treat the empty string as a degraded read, not an error.
func (c *Cipher) Decrypt(token string) string {
	if token == "" {
		return ""
	}

	plaintext, err := c.open(token)
	if err != nil {
		slog.Warn("field decryption failed, returning empty value", "error", err)
		return ""
	}
	return plaintext
}

func (c *Cipher) open(token string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return "", errMalformedToken
	}
	if len(raw) < nonceSize {
		return "", errMalformedToken
	}

	plaintext, err := c.aead.Open(nil, raw[:nonceSize], raw[nonceSize:], nil)
	if err != nil {
		return "", errMalformedToken
	}
	return string(plaintext), nil
}

// LookupHash returns a deterministic keyed hash of the plaintext, stored in
// an indexed column so rows can be found by value without deterministic
// encryption. The hash key is independent of the encryption key.
func (c *Cipher) LookupHash(plaintext string) string {
	mac := hmac.New(sha256.New, c.lookupKey)
	mac.Write([]byte(plaintext))
	return hex.EncodeToString(mac.Sum(nil))
}

// Package broker holds helpers shared by vendor integrations.
package broker

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// KeySize is the size of the AES-256 key in bytes.
	KeySize = 32
	// PBKDF2Iterations is the number of iterations for key derivation.
	PBKDF2Iterations = 100000
)

var (
	ErrInvalidKey        = errors.New("invalid sealing secret: must be at least 32 bytes")
	ErrInvalidCiphertext = errors.New("invalid ciphertext")
	ErrDecryptionFailed  = errors.New("decryption failed")
)

// Sealed is an AES-GCM ciphertext with its nonce.
type Sealed struct {
	Ciphertext []byte
	Nonce      []byte
}

// Sealer keeps secrets encrypted while they sit in process memory.
// The key is derived once from a master secret and a purpose label.
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer derives a sealing key from secret and label.
// The secret should be at least 32 bytes.
func NewSealer(secret []byte, label string) (*Sealer, error) {
	if len(secret) < KeySize {
		return nil, ErrInvalidKey
	}
	master := sha256.Sum256(secret)
	key := pbkdf2.Key(master[:], []byte("tradebot:"+label), PBKDF2Iterations, KeySize, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("creating GCM: %w", err)
	}
	return &Sealer{aead: aead}, nil
}

// NewRandomSealer creates a Sealer from a fresh random secret.
// Anything it seals is unreadable after the process exits.
func NewRandomSealer(label string) (*Sealer, error) {
	secret := make([]byte, KeySize)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("generating sealing secret: %w", err)
	}
	return NewSealer(secret, label)
}

// Seal encrypts plaintext with a random nonce.
func (s *Sealer) Seal(plaintext string) (Sealed, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return Sealed{}, fmt.Errorf("generating nonce: %w", err)
	}
	return Sealed{
		Ciphertext: s.aead.Seal(nil, nonce, []byte(plaintext), nil),
		Nonce:      nonce,
	}, nil
}

// Open decrypts a value produced by Seal.
func (s *Sealer) Open(sealed Sealed) (string, error) {
	if len(sealed.Ciphertext) == 0 || len(sealed.Nonce) != s.aead.NonceSize() {
		return "", ErrInvalidCiphertext
	}
	plaintext, err := s.aead.Open(nil, sealed.Nonce, sealed.Ciphertext, nil)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	return string(plaintext), nil
}

package lockbox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/secretbox"
)

// Versioned strategy identifiers. A scheme change is a new identifier so
// envelopes tagged with an old one remain decryptable forever.
const (
	// StrategySecretBox identifies the NaCl secretbox strategy.
	StrategySecretBox = "secretbox/v1"

	// StrategyAESGCM identifies the AES-256-GCM strategy.
	StrategyAESGCM = "aes-gcm/v1"

	// StrategyAge identifies the age X25519 strategy.
	StrategyAge = "age/v1"
)

// deriveKey stretches an arbitrary-length secret into a 256-bit key.
// The secret itself is never retained.
func deriveKey(secret string) [32]byte {
	return sha256.Sum256([]byte(secret))
}

const secretBoxNonceSize = 24

// secretBoxStrategy implements NaCl secretbox (XSalsa20-Poly1305).
type secretBoxStrategy struct {
	key [32]byte
}

// SecretBox returns the reference strategy: secret-key authenticated
// encryption with a random 24-byte nonce prepended to the sealed box.
// The key is derived from secret via SHA-256.
func SecretBox(secret string) (Strategy, error) {
	if secret == "" {
		return nil, newConfigError(ErrMissingKey, "secretbox strategy requires a secret")
	}
	return &secretBoxStrategy{key: deriveKey(secret)}, nil
}

func (s *secretBoxStrategy) ID() string {
	return StrategySecretBox
}

func (s *secretBoxStrategy) Encrypt(plaintext []byte) ([]byte, error) {
	var nonce [secretBoxNonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, err
	}

	// Prepend nonce to ciphertext
	return secretbox.Seal(nonce[:], plaintext, &nonce, &s.key), nil
}

func (s *secretBoxStrategy) Decrypt(ciphertext []byte) ([]byte, error) {
	if len(ciphertext) < secretBoxNonceSize+secretbox.Overhead {
		return nil, ErrCiphertextShort
	}

	var nonce [secretBoxNonceSize]byte
	copy(nonce[:], ciphertext[:secretBoxNonceSize])

	plaintext, ok := secretbox.Open(nil, ciphertext[secretBoxNonceSize:], &nonce, &s.key)
	if !ok {
		return nil, fmt.Errorf("%w: message authentication failed", ErrDecrypt)
	}

	return plaintext, nil
}

// aesGCMStrategy implements AES-256-GCM.
type aesGCMStrategy struct {
	gcm cipher.AEAD
}

// AESGCM returns an AES-256-GCM strategy with a random nonce prepended to
// the ciphertext. The key is derived from secret via SHA-256.
func AESGCM(secret string) (Strategy, error) {
	if secret == "" {
		return nil, newConfigError(ErrMissingKey, "aes-gcm strategy requires a secret")
	}

	key := deriveKey(secret)
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	return &aesGCMStrategy{gcm: gcm}, nil
}

func (s *aesGCMStrategy) ID() string {
	return StrategyAESGCM
}

func (s *aesGCMStrategy) Encrypt(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, s.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	// Prepend nonce to ciphertext
	return s.gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func (s *aesGCMStrategy) Decrypt(ciphertext []byte) ([]byte, error) {
	nonceSize := s.gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return nil, ErrCiphertextShort
	}

	nonce, ciphertext := ciphertext[:nonceSize], ciphertext[nonceSize:]
	plaintext, err := s.gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecrypt, err)
	}

	return plaintext, nil
}

package lockbox

import (
	"bytes"
	"fmt"
	"io"

	"filippo.io/age"
)

// ageStrategy implements age X25519 encryption. It exists mainly for
// interop with data produced by age-based tooling and as a decrypt-only
// legacy strategy; secretbox is the better default for new data.
type ageStrategy struct {
	identity  *age.X25519Identity
	recipient *age.X25519Recipient
}

// Age returns a strategy backed by an age X25519 identity
// ("AGE-SECRET-KEY-1..."). Encryption targets the identity's own recipient,
// so the same key material serves both directions.
func Age(identity string) (Strategy, error) {
	if identity == "" {
		return nil, newConfigError(ErrMissingKey, "age strategy requires an identity")
	}

	id, err := age.ParseX25519Identity(identity)
	if err != nil {
		return nil, newConfigError(ErrInvalidKeySize, fmt.Sprintf("parse age identity: %v", err))
	}

	return &ageStrategy{identity: id, recipient: id.Recipient()}, nil
}

func (s *ageStrategy) ID() string {
	return StrategyAge
}

func (s *ageStrategy) Encrypt(plaintext []byte) ([]byte, error) {
	var encrypted bytes.Buffer

	w, err := age.Encrypt(&encrypted, s.recipient)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncrypt, err)
	}

	if _, err := w.Write(plaintext); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncrypt, err)
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncrypt, err)
	}

	return encrypted.Bytes(), nil
}

func (s *ageStrategy) Decrypt(ciphertext []byte) ([]byte, error) {
	r, err := age.Decrypt(bytes.NewReader(ciphertext), s.identity)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecrypt, err)
	}

	plaintext, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecrypt, err)
	}

	return plaintext, nil
}

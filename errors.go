package lockbox

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmatic error handling.
// Use errors.Is() to check for these error types.
var (
	// ErrMissingKey indicates no key material was supplied at construction.
	ErrMissingKey = errors.New("missing key material")

	// ErrInvalidKeySize indicates key material has an invalid size or format.
	ErrInvalidKeySize = errors.New("invalid key size")

	// ErrMissingService indicates middleware was constructed without a service.
	ErrMissingService = errors.New("missing service")

	// ErrDuplicateStrategy indicates two registered strategies share an identifier.
	ErrDuplicateStrategy = errors.New("duplicate strategy")

	// ErrUnknownStrategy indicates an envelope names a strategy that is not registered.
	ErrUnknownStrategy = errors.New("unknown strategy")

	// ErrMalformedEnvelope indicates a value carries the encrypted discriminant
	// but is missing required attributes or has them with the wrong type.
	ErrMalformedEnvelope = errors.New("malformed envelope")

	// ErrEncrypt indicates encryption of a value failed.
	ErrEncrypt = errors.New("encrypt failed")

	// ErrDecrypt indicates a malformed, truncated, or tampered ciphertext
	// was rejected during decryption.
	ErrDecrypt = errors.New("decrypt failed")

	// ErrCiphertextShort indicates ciphertext is too short to contain its
	// nonce. It is a decryption failure: errors.Is(ErrCiphertextShort,
	// ErrDecrypt) holds, truncation being just the cheapest rejection.
	ErrCiphertextShort = fmt.Errorf("%w: ciphertext too short", ErrDecrypt)

	// ErrMarshal indicates the codec failed to marshal a plaintext value.
	ErrMarshal = errors.New("marshal failed")

	// ErrUnmarshal indicates the codec failed to unmarshal decrypted bytes.
	ErrUnmarshal = errors.New("unmarshal failed")
)

// ConfigError represents a service configuration error. It is fatal and
// surfaced at construction; retrying will not change the outcome.
type ConfigError struct {
	Err    error  // Underlying sentinel error (ErrMissingKey, etc.)
	Detail string // Human-readable context; never contains key material
}

func (e *ConfigError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Detail)
	}
	return e.Err.Error()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// EnvelopeError represents a structurally invalid envelope: the discriminant
// is present but a required attribute is missing, mistyped, or undecodable.
type EnvelopeError struct {
	Err       error  // Underlying sentinel error (ErrMalformedEnvelope)
	Attribute string // Envelope attribute that failed validation
	Cause     error  // Original error, if any (e.g., base64 decode failure)
}

func (e *EnvelopeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: attribute %q: %v", e.Err.Error(), e.Attribute, e.Cause)
	}
	return fmt.Sprintf("%s: attribute %q", e.Err.Error(), e.Attribute)
}

func (e *EnvelopeError) Unwrap() error {
	return e.Err
}

// StrategyError represents a strategy resolution failure: an envelope names
// a strategy absent from the registry. The remedy is to register the legacy
// strategy, not to retry.
type StrategyError struct {
	Err        error  // Underlying sentinel error (ErrUnknownStrategy)
	StrategyID string // Identifier the envelope carried
}

func (e *StrategyError) Error() string {
	return fmt.Sprintf("%s: %q", e.Err.Error(), e.StrategyID)
}

func (e *StrategyError) Unwrap() error {
	return e.Err
}

// newConfigError creates a ConfigError for construction failures.
func newConfigError(sentinel error, detail string) error {
	return &ConfigError{Err: sentinel, Detail: detail}
}

// newEnvelopeError creates an EnvelopeError for a bad envelope attribute.
func newEnvelopeError(attribute string, cause error) error {
	return &EnvelopeError{Err: ErrMalformedEnvelope, Attribute: attribute, Cause: cause}
}

// newStrategyError creates a StrategyError for an unregistered identifier.
func newStrategyError(id string) error {
	return &StrategyError{Err: ErrUnknownStrategy, StrategyID: id}
}

package lockbox

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DefaultStepDataField is the per-step payload field processed by the
// step-tree operations. Step identifiers, ordering metadata, and error
// fields are never encrypted.
const DefaultStepDataField = "data"

// Service converts plaintext structured values into tagged encrypted
// envelopes and back. It is stateless after construction and safe for
// concurrent use: operations only read the strategy registry and codec
// fixed at construction time.
//
// Both directions are idempotent by design. Hosts call these operations
// speculatively on every value crossing a process boundary, so a value that
// is already an envelope is returned unchanged by Encrypt, and a value that
// was never encrypted is returned unchanged by Decrypt.
type Service struct {
	codec         Codec
	registry      *registry
	stepDataField string
}

// Option configures a Service.
type Option func(*serviceOptions)

type serviceOptions struct {
	strategy      Strategy
	legacy        []Strategy
	codec         Codec
	stepDataField string
}

// WithStrategy replaces the default secretbox strategy as the active
// strategy used for all new encryption. The strategy carries its own key
// material, so the key passed to New may be empty in this case.
func WithStrategy(s Strategy) Option {
	return func(o *serviceOptions) {
		o.strategy = s
	}
}

// WithLegacyStrategies registers additional strategies for decrypt-only
// support of data produced before the active strategy was adopted.
func WithLegacyStrategies(strategies ...Strategy) Option {
	return func(o *serviceOptions) {
		o.legacy = append(o.legacy, strategies...)
	}
}

// WithCodec replaces the JSON canonical encoding used for plaintext values.
func WithCodec(c Codec) Option {
	return func(o *serviceOptions) {
		o.codec = c
	}
}

// WithStepDataField overrides the per-step payload field processed by
// EncryptSteps and DecryptSteps.
func WithStepDataField(name string) Option {
	return func(o *serviceOptions) {
		o.stepDataField = name
	}
}

// New constructs a Service. The key is the secret the default strategy
// derives its encryption key from; it is required unless WithStrategy
// supplies an active strategy with its own key material. The key is never
// persisted, logged, or echoed.
func New(key string, opts ...Option) (*Service, error) {
	o := serviceOptions{
		codec:         JSON(),
		stepDataField: DefaultStepDataField,
	}
	for _, opt := range opts {
		opt(&o)
	}

	if o.strategy == nil {
		if key == "" {
			return nil, newConfigError(ErrMissingKey, "a key is required")
		}
		strategy, err := SecretBox(key)
		if err != nil {
			return nil, err
		}
		o.strategy = strategy
	}

	reg, err := newRegistry(o.strategy, o.legacy...)
	if err != nil {
		return nil, err
	}

	s := &Service{
		codec:         o.codec,
		registry:      reg,
		stepDataField: o.stepDataField,
	}

	emitServiceCreated(context.Background(), o.codec.ContentType(), reg.active.ID(), len(reg.order))
	return s, nil
}

// Strategies returns the registered strategy identifiers, active first.
func (s *Service) Strategies() []string {
	return s.registry.ids()
}

// Encrypt converts value into encrypted form under the given target.
//
// For the whole-value target, value is encoded with the canonical codec,
// encrypted with the active strategy, and returned as an Envelope. For a
// field target applied to an object value, a shallow copy is returned where
// each selected, present field is encrypted whole and every other field
// passes through untouched; absent selected fields are a no-op. A value
// that is already an envelope is returned unchanged.
func (s *Service) Encrypt(ctx context.Context, value any, target Target) (any, error) {
	start := time.Now()
	emitEncryptStart(ctx, s.registry.active.ID(), len(target.fields))

	var retErr error
	var retSize int
	defer func() {
		emitEncryptComplete(ctx, s.registry.active.ID(),
			len(target.fields), retSize, time.Since(start), retErr)
	}()

	// An existing envelope is returned unchanged regardless of the target;
	// re-encrypting it would bury the original strategy marker.
	if _, isEnv, err := classify(value); err != nil {
		retErr = err
		return nil, err
	} else if isEnv {
		return value, nil
	}

	obj, isObject := value.(map[string]any)
	if target.whole() || !isObject {
		out, err := s.encryptWhole(value)
		if err != nil {
			retErr = err
			return nil, err
		}
		if env, ok := out.(Envelope); ok {
			retSize = len(env.Payload)
		}
		return out, nil
	}

	out := make(map[string]any, len(obj))
	for k, v := range obj {
		out[k] = v
	}

	for _, name := range target.fields {
		v, ok := out[name]
		if !ok {
			continue
		}
		sealed, err := s.encryptWhole(v)
		if err != nil {
			retErr = fmt.Errorf("field %q: %w", name, err)
			return nil, retErr
		}
		if env, ok := sealed.(Envelope); ok {
			retSize += len(env.Payload)
		}
		out[name] = sealed
	}

	return out, nil
}

// Decrypt is the mirror of Encrypt. Values recognized as envelopes are
// decrypted with the strategy resolved from their marker; plaintext values
// pass through unchanged, which tolerates legacy data that predates
// encryption being enabled.
func (s *Service) Decrypt(ctx context.Context, value any, target Target) (any, error) {
	start := time.Now()
	emitDecryptStart(ctx, len(target.fields))

	var retErr error
	var retStrategy string
	defer func() {
		emitDecryptComplete(ctx, retStrategy, len(target.fields), time.Since(start), retErr)
	}()

	// An envelope at the top level is decrypted whole regardless of the
	// target: the field structure only exists inside the plaintext.
	if env, isEnv, err := classify(value); err != nil {
		retErr = err
		return nil, err
	} else if isEnv {
		retStrategy = env.Strategy
		out, err := s.decryptEnvelope(env)
		if err != nil {
			retErr = err
			return nil, err
		}
		return out, nil
	}

	obj, isObject := value.(map[string]any)
	if target.whole() || !isObject {
		return value, nil
	}

	out := make(map[string]any, len(obj))
	for k, v := range obj {
		out[k] = v
	}

	for _, name := range target.fields {
		v, ok := out[name]
		if !ok {
			continue
		}
		opened, err := s.decryptWhole(v)
		if err != nil {
			retErr = fmt.Errorf("field %q: %w", name, err)
			return nil, retErr
		}
		out[name] = opened
	}

	return out, nil
}

// EncryptSteps applies whole-value encryption to the payload field of each
// step entry in a tree of named step results. Entries that are not objects,
// and object entries without the payload field, pass through unchanged.
func (s *Service) EncryptSteps(ctx context.Context, steps map[string]any) (map[string]any, error) {
	if steps == nil {
		return nil, nil
	}

	out := make(map[string]any, len(steps))
	for id, entry := range steps {
		transformed, err := s.transformStep(entry, func(v any) (any, error) {
			return s.Encrypt(ctx, v, WholeValue())
		})
		if err != nil {
			return nil, fmt.Errorf("step %q: %w", id, err)
		}
		out[id] = transformed
	}

	return out, nil
}

// DecryptSteps applies whole-value decryption to the payload field of each
// step entry. A step entry that is itself an envelope (a host persisting
// bare payloads) is decrypted whole. Error fields and identifiers are never
// touched, and plaintext entries pass through for mixed histories.
func (s *Service) DecryptSteps(ctx context.Context, steps map[string]any) (map[string]any, error) {
	if steps == nil {
		return nil, nil
	}

	out := make(map[string]any, len(steps))
	for id, entry := range steps {
		transformed, err := s.transformStep(entry, func(v any) (any, error) {
			return s.Decrypt(ctx, v, WholeValue())
		})
		if err != nil {
			return nil, fmt.Errorf("step %q: %w", id, err)
		}
		out[id] = transformed
	}

	return out, nil
}

// transformStep applies op to the payload portion of a single step entry.
func (s *Service) transformStep(entry any, op func(any) (any, error)) (any, error) {
	// A bare envelope in place of a step object is a whole payload.
	if _, isEnv, err := classify(entry); err != nil {
		return nil, err
	} else if isEnv {
		return op(entry)
	}

	obj, ok := entry.(map[string]any)
	if !ok {
		return entry, nil
	}

	payload, ok := obj[s.stepDataField]
	if !ok {
		return entry, nil
	}

	transformed, err := op(payload)
	if err != nil {
		return nil, err
	}

	out := make(map[string]any, len(obj))
	for k, v := range obj {
		out[k] = v
	}
	out[s.stepDataField] = transformed

	return out, nil
}

// encryptWhole encrypts a single value with the active strategy,
// skipping values that are already envelopes.
func (s *Service) encryptWhole(value any) (any, error) {
	if _, isEnv, err := classify(value); err != nil {
		return nil, err
	} else if isEnv {
		return value, nil
	}

	data, err := s.codec.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMarshal, err)
	}

	ciphertext, err := s.registry.active.Encrypt(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncrypt, err)
	}

	return wrap(s.registry.active.ID(), ciphertext), nil
}

// decryptWhole decrypts a single value if it is an envelope,
// passing plaintext through unchanged.
func (s *Service) decryptWhole(value any) (any, error) {
	env, isEnv, err := classify(value)
	if err != nil {
		return nil, err
	}
	if !isEnv {
		return value, nil
	}
	return s.decryptEnvelope(env)
}

// decryptEnvelope resolves the envelope's strategy against the registry and
// reverses the canonical encoding of the recovered plaintext.
func (s *Service) decryptEnvelope(env Envelope) (any, error) {
	id, ciphertext, err := unwrap(env)
	if err != nil {
		return nil, err
	}

	strategy, err := s.registry.lookup(id)
	if err != nil {
		return nil, err
	}

	plaintext, err := strategy.Decrypt(ciphertext)
	if err != nil {
		// Custom strategies may return bare errors; callers still get a
		// uniform ErrDecrypt to branch on.
		if !errors.Is(err, ErrDecrypt) {
			err = fmt.Errorf("%w: %w", ErrDecrypt, err)
		}
		return nil, fmt.Errorf("strategy %q: %w", id, err)
	}

	var out any
	if err := s.codec.Unmarshal(plaintext, &out); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnmarshal, err)
	}

	return out, nil
}

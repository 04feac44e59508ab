// Package lockbox provides transparent payload encryption for durable
// workflow SDKs.
//
// Workflow engines persist step results with a remote orchestrator and send
// event payloads across process boundaries. lockbox encrypts that application
// data on the way out and decrypts it on the way back in, without the engine
// or user code ever handling ciphertext directly. Control metadata (step
// identifiers, timestamps, error envelopes) is never touched.
//
// # Envelopes
//
// Encrypted values travel as tagged envelopes that survive JSON transport:
//
//	{"__encrypted": true, "__strategy": "secretbox/v1", "payload": "<base64>"}
//
// Any value that does not carry the discriminant is plaintext. Both Encrypt
// and Decrypt are idempotent: encrypting an envelope returns it unchanged,
// and decrypting plaintext returns it unchanged. Callers are expected to run
// every value through both paths unconditionally, which keeps mixed histories
// working when encryption is enabled mid-lifetime of a long-running workflow.
//
// # Strategies
//
// A Strategy is a named encryption/decryption pair. Exactly one strategy is
// active and produces all new ciphertext; any number of legacy strategies may
// be registered for decrypt-only support of historical data. The strategy
// identifier embedded in each envelope selects the decryption path, so data
// produced by a retired strategy remains readable.
//
// Built-in strategies:
//
//   - SecretBox - NaCl secretbox (XSalsa20-Poly1305), the default
//   - AESGCM - AES-256-GCM
//   - Age - age X25519 (filippo.io/age)
//
// # Basic Usage
//
//	svc, _ := lockbox.New(os.Getenv("LOCKBOX_KEY"))
//
//	// Encrypt a step result before it is persisted.
//	sealed, _ := svc.Encrypt(ctx, result, lockbox.WholeValue())
//
//	// Decrypt prior step results before user code observes them.
//	plain, _ := svc.Decrypt(ctx, sealed, lockbox.WholeValue())
//
// # Middleware
//
// Middleware wires a Service into the three hook points of a workflow host:
// outbound event send, step-input materialization, and step-output
// persistence. See NewMiddleware.
//
// # Field Selection
//
// By default the whole value is encrypted. A Target can restrict encryption
// to named top-level fields of an object value; unselected fields pass
// through untouched. Targets can also be derived from struct tags:
//
//	type Signup struct {
//	    Plan  string `json:"plan"`
//	    Email string `json:"email" encrypt:"true"`
//	}
//
//	target := lockbox.FieldsFor[Signup]() // selects "email"
package lockbox

// Codec provides the canonical byte encoding used for plaintext values
// before encryption and after decryption.
type Codec interface {
	// ContentType returns the MIME type for this codec (e.g., "application/json").
	ContentType() string

	// Marshal encodes v into bytes.
	Marshal(v any) ([]byte, error)

	// Unmarshal decodes data into v.
	Unmarshal(data []byte, v any) error
}

// Strategy is a named encryption/decryption algorithm pair.
//
// Implementations must be safe for concurrent use and must embed any
// per-message material (nonces, salts) in the ciphertext itself, so that
// decryption needs no side channel beyond the key fixed at construction.
// Decrypt must fail on malformed, truncated, or tampered ciphertext; it must
// never silently return garbage plaintext.
type Strategy interface {
	// ID returns the stable identifier recorded in envelopes produced by
	// this strategy. Identifiers are versioned (e.g., "secretbox/v1") so a
	// scheme change is a new identifier, never a silent behavior change.
	ID() string

	// Encrypt encrypts plaintext and returns ciphertext.
	Encrypt(plaintext []byte) ([]byte, error)

	// Decrypt decrypts ciphertext and returns plaintext.
	Decrypt(ciphertext []byte) ([]byte, error)
}

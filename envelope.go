package lockbox

import "encoding/base64"

// Envelope attribute names as they appear on the wire. The double-underscore
// prefix keeps the discriminant out of the way of ordinary payload fields.
const (
	attrEncrypted = "__encrypted"
	attrStrategy  = "__strategy"
	attrPayload   = "payload"
)

// Envelope is the tagged structure marking a value as encrypted and naming
// the strategy that produced it. Envelopes are only ever produced by the
// service itself; user data that merely resembles one is still classified
// carefully before any branching (see classify).
type Envelope struct {
	Encrypted bool   `json:"__encrypted" msgpack:"__encrypted"`
	Strategy  string `json:"__strategy" msgpack:"__strategy"`
	Payload   string `json:"payload" msgpack:"payload"`
}

// classify decodes an arbitrary value into the {plaintext, envelope} variant.
//
// A value is an envelope iff it carries the discriminant attribute with the
// boolean value true. Anything else is plaintext, including an object whose
// discriminant is absent, false, or not a bool at all. A value that does
// carry the discriminant but lacks a well-typed strategy or payload is
// neither: it fails with ErrMalformedEnvelope, since treating half-formed
// stored data as plaintext would hand ciphertext to user code.
func classify(v any) (Envelope, bool, error) {
	switch obj := v.(type) {
	case Envelope:
		return validateEnvelope(obj)
	case *Envelope:
		if obj == nil {
			return Envelope{}, false, nil
		}
		return validateEnvelope(*obj)
	case map[string]any:
		raw, ok := obj[attrEncrypted]
		if !ok {
			return Envelope{}, false, nil
		}
		flag, ok := raw.(bool)
		if !ok || !flag {
			return Envelope{}, false, nil
		}

		strategy, ok := obj[attrStrategy].(string)
		if !ok || strategy == "" {
			return Envelope{}, false, newEnvelopeError(attrStrategy, nil)
		}

		payload, ok := obj[attrPayload].(string)
		if !ok {
			return Envelope{}, false, newEnvelopeError(attrPayload, nil)
		}

		return Envelope{Encrypted: true, Strategy: strategy, Payload: payload}, true, nil
	default:
		return Envelope{}, false, nil
	}
}

// validateEnvelope applies the same attribute rules to an already-typed
// envelope, so in-memory values round-trip identically to wire values.
func validateEnvelope(env Envelope) (Envelope, bool, error) {
	if !env.Encrypted {
		return Envelope{}, false, nil
	}
	if env.Strategy == "" {
		return Envelope{}, false, newEnvelopeError(attrStrategy, nil)
	}
	return env, true, nil
}

// wrap constructs the tagged envelope for ciphertext produced by the named
// strategy. Ciphertext is base64-encoded so the envelope survives the host's
// JSON-based transport and persistence without extra escaping rules.
func wrap(strategyID string, ciphertext []byte) Envelope {
	return Envelope{
		Encrypted: true,
		Strategy:  strategyID,
		Payload:   base64.StdEncoding.EncodeToString(ciphertext),
	}
}

// unwrap extracts the strategy identifier and raw ciphertext from an
// envelope previously accepted by classify.
func unwrap(env Envelope) (string, []byte, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(env.Payload)
	if err != nil {
		return "", nil, newEnvelopeError(attrPayload, err)
	}
	return env.Strategy, ciphertext, nil
}

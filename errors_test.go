package lockbox

import (
	"errors"
	"strings"
	"testing"
)

func TestConfigError_Format(t *testing.T) {
	err := newConfigError(ErrMissingKey, "a key is required")

	if !errors.Is(err, ErrMissingKey) {
		t.Error("ConfigError should unwrap to its sentinel")
	}
	if got := err.Error(); !strings.Contains(got, "a key is required") {
		t.Errorf("Error() = %q, want detail included", got)
	}

	bare := newConfigError(ErrMissingKey, "")
	if bare.Error() != ErrMissingKey.Error() {
		t.Errorf("Error() = %q, want bare sentinel message", bare.Error())
	}
}

func TestEnvelopeError_Format(t *testing.T) {
	err := newEnvelopeError(attrPayload, errors.New("illegal base64 data"))

	if !errors.Is(err, ErrMalformedEnvelope) {
		t.Error("EnvelopeError should unwrap to ErrMalformedEnvelope")
	}

	got := err.Error()
	if !strings.Contains(got, attrPayload) || !strings.Contains(got, "illegal base64 data") {
		t.Errorf("Error() = %q, want attribute and cause included", got)
	}

	bare := newEnvelopeError(attrStrategy, nil)
	if !strings.Contains(bare.Error(), attrStrategy) {
		t.Errorf("Error() = %q, want attribute included", bare.Error())
	}
}

func TestStrategyError_Format(t *testing.T) {
	err := newStrategyError("retired/v0")

	if !errors.Is(err, ErrUnknownStrategy) {
		t.Error("StrategyError should unwrap to ErrUnknownStrategy")
	}
	if !strings.Contains(err.Error(), "retired/v0") {
		t.Errorf("Error() = %q, want strategy id included", err.Error())
	}
}

package lockbox

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
)

// Signals for lockbox events. Plaintext and key material never appear in
// signal fields; only strategy identifiers, sizes, and durations do.
var (
	SignalServiceCreated  = capitan.NewSignal("lockbox.service.created", "Encryption service instantiated")
	SignalEncryptStart    = capitan.NewSignal("lockbox.encrypt.start", "Encrypt operation beginning")
	SignalEncryptComplete = capitan.NewSignal("lockbox.encrypt.complete", "Encrypt operation finished")
	SignalDecryptStart    = capitan.NewSignal("lockbox.decrypt.start", "Decrypt operation beginning")
	SignalDecryptComplete = capitan.NewSignal("lockbox.decrypt.complete", "Decrypt operation finished")
)

// Keys for typed event data.
var (
	KeyContentType = capitan.NewStringKey("content_type")
	KeyStrategy    = capitan.NewStringKey("strategy")
	KeyFieldCount  = capitan.NewIntKey("field_count")
	KeyStrategies  = capitan.NewIntKey("strategies")
	KeySize        = capitan.NewIntKey("size")
	KeyDuration    = capitan.NewDurationKey("duration")
	KeyError       = capitan.NewErrorKey("error")
)

// emitServiceCreated emits an event when a service is constructed.
func emitServiceCreated(ctx context.Context, contentType, activeStrategy string, strategies int) {
	capitan.Emit(ctx, SignalServiceCreated,
		KeyContentType.Field(contentType),
		KeyStrategy.Field(activeStrategy),
		KeyStrategies.Field(strategies),
	)
}

// emitEncryptStart emits an event when encryption begins.
func emitEncryptStart(ctx context.Context, strategy string, fieldCount int) {
	capitan.Emit(ctx, SignalEncryptStart,
		KeyStrategy.Field(strategy),
		KeyFieldCount.Field(fieldCount),
	)
}

// emitEncryptComplete emits an event when encryption finishes.
func emitEncryptComplete(ctx context.Context, strategy string, fieldCount, size int, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyStrategy.Field(strategy),
		KeyFieldCount.Field(fieldCount),
		KeySize.Field(size),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalEncryptComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalEncryptComplete, fields...)
	}
}

// emitDecryptStart emits an event when decryption begins.
func emitDecryptStart(ctx context.Context, fieldCount int) {
	capitan.Emit(ctx, SignalDecryptStart,
		KeyFieldCount.Field(fieldCount),
	)
}

// emitDecryptComplete emits an event when decryption finishes. The strategy
// is the one resolved from the envelope, or empty for plaintext pass-through.
func emitDecryptComplete(ctx context.Context, strategy string, fieldCount int, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyStrategy.Field(strategy),
		KeyFieldCount.Field(fieldCount),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalDecryptComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalDecryptComplete, fields...)
	}
}

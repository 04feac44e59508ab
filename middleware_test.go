package lockbox

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func newTestMiddleware(t *testing.T, opts ...MiddlewareOption) *Middleware {
	t.Helper()
	mw, err := NewMiddleware(newTestService(t), opts...)
	if err != nil {
		t.Fatalf("NewMiddleware() error: %v", err)
	}
	return mw
}

func TestNewMiddleware_NilService(t *testing.T) {
	_, err := NewMiddleware(nil)
	if !errors.Is(err, ErrMissingService) {
		t.Errorf("expected ErrMissingService, got %v", err)
	}

	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Errorf("expected *ConfigError, got %T", err)
	}
}

func TestMiddleware_EventEncryptionDisabled(t *testing.T) {
	mw := newTestMiddleware(t)

	data := map[string]any{"foo": "bar"}
	evt := &Event{Name: "my.event", Data: data}

	if err := mw.TransformEvent(context.Background(), evt); err != nil {
		t.Fatalf("TransformEvent() error: %v", err)
	}

	if !reflect.DeepEqual(evt.Data, data) {
		t.Errorf("data = %v, want unchanged %v", evt.Data, data)
	}
	if evt.Name != "my.event" {
		t.Error("event name should never change")
	}
}

func TestMiddleware_EventEncryptionEnabled(t *testing.T) {
	mw := newTestMiddleware(t, WithEventEncryption())

	evt := &Event{Name: "my.event", Data: map[string]any{"foo": "bar"}}

	if err := mw.TransformEvent(context.Background(), evt); err != nil {
		t.Fatalf("TransformEvent() error: %v", err)
	}

	env, ok := evt.Data.(Envelope)
	if !ok {
		t.Fatalf("data = %T, want Envelope", evt.Data)
	}
	if !env.Encrypted || env.Strategy == "" || env.Payload == "" {
		t.Errorf("envelope = %+v, want discriminants present and text payload", env)
	}
	if evt.Name != "my.event" {
		t.Error("event name should never change")
	}
}

func TestMiddleware_EventFieldTarget(t *testing.T) {
	mw := newTestMiddleware(t, WithEventEncryption(), WithEventTarget(Fields("secret")))

	evt := &Event{
		Name: "my.event",
		Data: map[string]any{"secret": "hush", "public": "ok"},
	}

	if err := mw.TransformEvent(context.Background(), evt); err != nil {
		t.Fatalf("TransformEvent() error: %v", err)
	}

	obj := evt.Data.(map[string]any)
	if _, ok := obj["secret"].(Envelope); !ok {
		t.Errorf("secret = %T, want Envelope", obj["secret"])
	}
	if obj["public"] != "ok" {
		t.Error("unselected event field should pass through")
	}
}

func TestMiddleware_StepResultRoundTrip(t *testing.T) {
	ctx := context.Background()
	mw := newTestMiddleware(t)

	// A step returns {foo: "foo"}; the middleware encrypts it before the
	// host persists it.
	result := &StepResult{ID: "a1b2c3", Data: map[string]any{"foo": "foo"}}
	if err := mw.TransformStepResult(ctx, result); err != nil {
		t.Fatalf("TransformStepResult() error: %v", err)
	}

	if _, ok := result.Data.(Envelope); !ok {
		t.Fatalf("persisted data = %T, want Envelope", result.Data)
	}
	if result.ID != "a1b2c3" {
		t.Error("step identifier should never change")
	}

	// On a later request the host materializes the persisted record; the
	// middleware decrypts before user code observes it.
	memos := wireTrip(t, map[string]any{
		result.ID: map[string]any{"data": result.Data},
	}).(map[string]any)

	hydrated, err := mw.HydrateSteps(ctx, memos)
	if err != nil {
		t.Fatalf("HydrateSteps() error: %v", err)
	}

	entry := hydrated[result.ID].(map[string]any)
	want := map[string]any{"foo": "foo"}
	if !reflect.DeepEqual(entry["data"], want) {
		t.Errorf("observed step data = %v, want %v", entry["data"], want)
	}
}

func TestMiddleware_StepResultAlwaysEncrypted(t *testing.T) {
	// Event encryption stays off; step persistence encrypts regardless.
	mw := newTestMiddleware(t)

	result := &StepResult{ID: "a1b2c3", Data: "sensitive"}
	if err := mw.TransformStepResult(context.Background(), result); err != nil {
		t.Fatalf("TransformStepResult() error: %v", err)
	}

	if _, ok := result.Data.(Envelope); !ok {
		t.Errorf("data = %T, want Envelope", result.Data)
	}
}

func TestMiddleware_ErrorResultPassThrough(t *testing.T) {
	mw := newTestMiddleware(t)

	result := &StepResult{ID: "a1b2c3", Error: &StepError{Name: "Error", Message: "boom"}}
	if err := mw.TransformStepResult(context.Background(), result); err != nil {
		t.Fatalf("TransformStepResult() error: %v", err)
	}

	if result.Error == nil || result.Error.Message != "boom" {
		t.Error("error envelope should never be encrypted")
	}
	if result.Data != nil {
		t.Error("nil data should stay nil")
	}
}

func TestMiddleware_HydrateMixedHistory(t *testing.T) {
	ctx := context.Background()
	mw := newTestMiddleware(t)

	sealed, err := mw.svc.Encrypt(ctx, map[string]any{"foo": "bar"}, WholeValue())
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}

	// One step predates encryption being enabled, one does not.
	memos := wireTrip(t, map[string]any{
		"old-step": map[string]any{"data": map[string]any{"plain": "value"}},
		"new-step": map[string]any{"data": sealed},
	}).(map[string]any)

	hydrated, err := mw.HydrateSteps(ctx, memos)
	if err != nil {
		t.Fatalf("HydrateSteps() error: %v", err)
	}

	oldEntry := hydrated["old-step"].(map[string]any)
	if !reflect.DeepEqual(oldEntry["data"], map[string]any{"plain": "value"}) {
		t.Error("plaintext history should pass through unchanged")
	}

	newEntry := hydrated["new-step"].(map[string]any)
	if !reflect.DeepEqual(newEntry["data"], map[string]any{"foo": "bar"}) {
		t.Error("encrypted history should decrypt to the original value")
	}
}

func TestMiddleware_DecryptFailureSurfaces(t *testing.T) {
	ctx := context.Background()
	mw := newTestMiddleware(t)

	memos := map[string]any{
		"step-a": map[string]any{
			"data": map[string]any{
				attrEncrypted: true,
				attrStrategy:  "retired/v0",
				attrPayload:   "aGVsbG8=",
			},
		},
	}

	_, err := mw.HydrateSteps(ctx, memos)
	if !errors.Is(err, ErrUnknownStrategy) {
		t.Errorf("expected ErrUnknownStrategy, got %v", err)
	}
}

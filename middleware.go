package lockbox

import "context"

// Event is the outbound event shape shared with the workflow host. Only
// Data is ever encrypted; the name and identifiers are control metadata the
// orchestrator routes on.
type Event struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	Data      any    `json:"data"`
	Timestamp int64  `json:"ts,omitempty"`
}

// StepError is the host's error envelope for a failed step. It is control
// metadata and is never encrypted.
type StepError struct {
	Name    string `json:"name"`
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

// StepResult is a completed step's durable record. The host derives ID by
// hashing the step name; lockbox does not participate in naming.
type StepResult struct {
	ID    string     `json:"id"`
	Data  any        `json:"data,omitempty"`
	Error *StepError `json:"error,omitempty"`
}

// Middleware wires a Service into the three hook points of a workflow host:
// outbound event send, step-input materialization, and step-output
// persistence. The host must present step results here before user code
// observes them, submit replacement values for persistence exactly as
// returned, and never interpret envelope internals itself.
type Middleware struct {
	svc           *Service
	encryptEvents bool
	eventTarget   Target
}

// MiddlewareOption configures a Middleware.
type MiddlewareOption func(*Middleware)

// WithEventEncryption enables encryption of outbound event data. Step
// results are always encrypted; this flag gates events only, and defaults
// to off because events commonly fan out to consumers without the key.
func WithEventEncryption() MiddlewareOption {
	return func(m *Middleware) {
		m.encryptEvents = true
	}
}

// WithEventTarget overrides the whole-value default for outbound event
// data, restricting encryption to named top-level fields.
func WithEventTarget(t Target) MiddlewareOption {
	return func(m *Middleware) {
		m.eventTarget = t
	}
}

// NewMiddleware constructs the hook adapter around an existing Service.
func NewMiddleware(svc *Service, opts ...MiddlewareOption) (*Middleware, error) {
	if svc == nil {
		return nil, newConfigError(ErrMissingService, "middleware requires a service")
	}

	m := &Middleware{
		svc:         svc,
		eventTarget: WholeValue(),
	}
	for _, opt := range opts {
		opt(m)
	}

	return m, nil
}

// TransformEvent encrypts an outbound event's data in place when event
// encryption is enabled, and leaves it untouched otherwise. Called by the
// host before the event is sent to the orchestrator.
func (m *Middleware) TransformEvent(ctx context.Context, evt *Event) error {
	if !m.encryptEvents || evt == nil || evt.Data == nil {
		return nil
	}

	data, err := m.svc.Encrypt(ctx, evt.Data, m.eventTarget)
	if err != nil {
		return err
	}

	evt.Data = data
	return nil
}

// HydrateSteps decrypts previously completed step results, keyed by step
// identifier, before they are made available to user function code. Called
// by the host during step-input materialization. Every entry flows through
// the decrypt path regardless of whether it was actually encrypted.
func (m *Middleware) HydrateSteps(ctx context.Context, steps map[string]any) (map[string]any, error) {
	return m.svc.DecryptSteps(ctx, steps)
}

// TransformStepResult encrypts a newly produced step result's data in place
// before the host persists it. Error results carry no data and pass through.
func (m *Middleware) TransformStepResult(ctx context.Context, result *StepResult) error {
	if result == nil || result.Data == nil {
		return nil
	}

	data, err := m.svc.Encrypt(ctx, result.Data, WholeValue())
	if err != nil {
		return err
	}

	result.Data = data
	return nil
}

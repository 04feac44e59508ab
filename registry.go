package lockbox

// registry is the fixed mapping from strategy identifier to Strategy.
// Exactly one entry is active and produces all new ciphertext; the rest are
// retained solely to decrypt previously produced data. Composition is fixed
// at service construction and never changes during a run.
type registry struct {
	active Strategy
	byID   map[string]Strategy
	order  []string
}

// newRegistry builds a registry from the active strategy plus any number of
// decrypt-only legacy strategies. Duplicate identifiers fail construction.
func newRegistry(active Strategy, legacy ...Strategy) (*registry, error) {
	r := &registry{
		active: active,
		byID:   make(map[string]Strategy, 1+len(legacy)),
	}

	for _, s := range append([]Strategy{active}, legacy...) {
		id := s.ID()
		if _, exists := r.byID[id]; exists {
			return nil, newConfigError(ErrDuplicateStrategy, id)
		}
		r.byID[id] = s
		r.order = append(r.order, id)
	}

	return r, nil
}

// lookup resolves a strategy identifier carried by an envelope.
func (r *registry) lookup(id string) (Strategy, error) {
	s, ok := r.byID[id]
	if !ok {
		return nil, newStrategyError(id)
	}
	return s, nil
}

// ids returns the registered identifiers in registration order,
// active strategy first.
func (r *registry) ids() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

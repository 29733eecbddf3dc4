package symbolic

import "sync"

var (
	registryMu sync.Mutex
	registry   = map[string]*Model{}
)

// GetModel returns the process-wide model registered under name, creating
// it on first reference. Models are a canonical, shared resource: every
// cyber-system, role, and experience bound to the same name operates on the
// same interned states and actions.
func GetModel(name string) *Model {
	registryMu.Lock()
	defer registryMu.Unlock()
	m, ok := registry[name]
	if !ok {
		m = newModel(name)
		registry[name] = m
	}
	return m
}

// RemoveAllModels destroys every registered model. Outstanding pointers
// into a removed model remain valid Go pointers but are no longer found by
// any subsequent canonicalization call against a freshly created model of
// the same name. Intended for test teardown.
func RemoveAllModels() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = map[string]*Model{}
}

// Model is a named, canonical registry of entity state types, environment
// states, and actions. All of Model's exported methods are safe for
// concurrent use; the mutex embedded here is what lets higher layers treat
// the registry as an ordinary shared resource without serializing access
// themselves.
type Model struct {
	name string

	mu               sync.Mutex
	entityStateTypes map[string]*EntityStateType

	statesByKey map[string]*EnvironmentState
	stateOrder  []*EnvironmentState
	stateIndex  map[*EnvironmentState]int

	actionsByKey map[string]*Action
	actionOrder  []*Action
	actionIndex  map[*Action]int
}

func newModel(name string) *Model {
	return &Model{
		name:             name,
		entityStateTypes: map[string]*EntityStateType{},
		statesByKey:      map[string]*EnvironmentState{},
		stateIndex:       map[*EnvironmentState]int{},
		actionsByKey:     map[string]*Action{},
		actionIndex:      map[*Action]int{},
	}
}

// Name returns the model's registry name.
func (m *Model) Name() string {
	return m.name
}

// SetEntityStateType registers (or replaces) an entity state type.
func (m *Model) SetEntityStateType(t *EntityStateType) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entityStateTypes[t.TypeName] = t
}

// EntityStateType resolves a registered entity state type by name.
func (m *Model) EntityStateType(typeName string) (*EntityStateType, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.entityStateTypes[typeName]
	return t, ok
}

// CanonicalState interns state: if an equal state is already registered,
// the existing canonical pointer is returned; otherwise state itself is
// registered and returned. Callers should discard any scratch pointer in
// favor of the returned one.
func (m *Model) CanonicalState(state *EnvironmentState) *EnvironmentState {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := state.Key()
	if existing, ok := m.statesByKey[key]; ok {
		return existing
	}
	m.statesByKey[key] = state
	m.stateIndex[state] = len(m.stateOrder)
	m.stateOrder = append(m.stateOrder, state)
	return state
}

// IndexOfState returns state's stable insertion index among this model's
// canonical states, used by the persist package to encode episodes compactly.
func (m *Model) IndexOfState(state *EnvironmentState) (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.stateIndex[state]
	return i, ok
}

// StateAt returns the canonical state at index i, the inverse of IndexOfState.
func (m *Model) StateAt(i int) (*EnvironmentState, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i < 0 || i >= len(m.stateOrder) {
		return nil, false
	}
	return m.stateOrder[i], true
}

// CanonicalAction interns action the same way CanonicalState interns states.
func (m *Model) CanonicalAction(action *Action) *Action {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := action.Key()
	if existing, ok := m.actionsByKey[key]; ok {
		return existing
	}
	m.actionsByKey[key] = action
	m.actionIndex[action] = len(m.actionOrder)
	m.actionOrder = append(m.actionOrder, action)
	return action
}

// IndexOfAction returns action's stable insertion index among this model's
// canonical actions.
func (m *Model) IndexOfAction(action *Action) (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.actionIndex[action]
	return i, ok
}

// ActionAt returns the canonical action at index i, the inverse of IndexOfAction.
func (m *Model) ActionAt(i int) (*Action, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i < 0 || i >= len(m.actionOrder) {
		return nil, false
	}
	return m.actionOrder[i], true
}

// ClearStoredStates empties the canonical state and action registries.
// Outstanding pointers become logically stale: they are still valid Go
// pointers, but will no longer be found by CanonicalState/CanonicalAction or
// resolved by IndexOfState/IndexOfAction. Entity state types are untouched.
func (m *Model) ClearStoredStates() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statesByKey = map[string]*EnvironmentState{}
	m.stateOrder = nil
	m.stateIndex = map[*EnvironmentState]int{}
	m.actionsByKey = map[string]*Action{}
	m.actionOrder = nil
	m.actionIndex = map[*Action]int{}
}

// StateCount returns the number of canonical states currently registered.
func (m *Model) StateCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.stateOrder)
}

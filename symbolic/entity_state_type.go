// Package symbolic implements the symbolic state representation shared by
// every cyber-system: entity state types, entity states, environment
// states, actions, and the canonical interning registry (Model) that makes
// equal states and actions compare equal by pointer identity.
package symbolic

// EntityStateType is a named schema describing one kind of symbolic entity.
// Types may derive from a single parent type, resolved through the owning
// Model's type registry.
type EntityStateType struct {
	TypeName               string
	ParentTypeName         string
	ModelName              string
	DefaultPropertyValues  map[string]string
	PossiblePropertyValues map[string][]string
	Links                  []string
}

// NewEntityStateType builds a type, defaulting the possible-values map to an
// empty map when nil so callers may omit restricted properties entirely.
func NewEntityStateType(
	modelName, typeName, parentTypeName string,
	defaults map[string]string,
	possible map[string][]string,
	links []string,
) *EntityStateType {
	if defaults == nil {
		defaults = map[string]string{}
	}
	if possible == nil {
		possible = map[string][]string{}
	}
	return &EntityStateType{
		TypeName:               typeName,
		ParentTypeName:         parentTypeName,
		ModelName:              modelName,
		DefaultPropertyValues:  defaults,
		PossiblePropertyValues: possible,
		Links:                  links,
	}
}

// DerivesFrom walks the parent chain, resolving each ancestor through model,
// and reports whether ancestorTypeName appears anywhere in that chain.
func (t *EntityStateType) DerivesFrom(model *Model, ancestorTypeName string) bool {
	current := t
	for current.ParentTypeName != "" {
		parent, ok := model.EntityStateType(current.ParentTypeName)
		if !ok {
			return false
		}
		if parent.TypeName == ancestorTypeName {
			return true
		}
		current = parent
	}
	return false
}

// IsA reports whether t is, or derives from, typeName.
func (t *EntityStateType) IsA(model *Model, typeName string) bool {
	return t.TypeName == typeName || t.DerivesFrom(model, typeName)
}

// IsPropertyRestricted reports whether name has a declared set of possible
// values, and returns it.
func (t *EntityStateType) IsPropertyRestricted(name string) ([]string, bool) {
	values, ok := t.PossiblePropertyValues[name]
	return values, ok && len(values) > 0
}

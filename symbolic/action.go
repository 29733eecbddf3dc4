package symbolic

import "strings"

// Action is a symbolic action an agent may take: a type id plus its
// positional string parameters.
type Action struct {
	TypeId string
	Params []string
}

// NewAction builds an action from a type id and parameters.
func NewAction(typeId string, params ...string) *Action {
	return &Action{TypeId: typeId, Params: append([]string(nil), params...)}
}

// Key returns a deterministic string encoding of a, used for equality and
// canonical interning.
func (a *Action) Key() string {
	var b strings.Builder
	b.WriteString(a.TypeId)
	for _, p := range a.Params {
		b.WriteByte('|')
		b.WriteString(p)
	}
	return b.String()
}

// Equal reports whether a and other encode the same action.
func (a *Action) Equal(other *Action) bool {
	if a == other {
		return true
	}
	if a == nil || other == nil {
		return false
	}
	return a.Key() == other.Key()
}

func (a *Action) String() string {
	return a.Key()
}

// Package fastview implements a small builder pattern for server-pushed
// views: given an input data model, apply a transformation to a view
// model, and multiplex that data out to one or more view components, each
// rendering its own fragment of html/template and its own stream of
// fine-grained element updates.
package fastview

import (
	"html/template"
)

// EleUpdate is an element identifier and a set of operations to apply to
// its attributes/content.
type EleUpdate struct {
	// EleId is the id by which to find the element.
	EleId string
	// Ops are attribute/content operations keyed by attribute name; the
	// reserved key "textContent" sets the element's text content directly.
	Ops []Op
}

// Op is one attribute (or "textContent") and the value to set it to.
type Op struct {
	Key   string
	Value string
}

// ViewComponent is one server-rendered view: Parse registers its template
// fragment against a shared parent template, and Updates streams the
// element-level changes needed to keep a rendered page in sync.
type ViewComponent interface {
	Updates() <-chan []EleUpdate
	// Parse adds this view's template definition to parent, returning the
	// name by which it can be invoked (e.g. {{ template name . }}).
	Parse(parent *template.Template) (name string, err error)
}

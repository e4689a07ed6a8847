package notifications

import "strings"

// Attr is a single key="value" pair on an element.
type Attr struct {
	Key   string
	Value string
}

// Attribute presets understood by the client's XML-to-object parser.
var (
	TypeDate     = []Attr{{Key: "type", Value: "date"}}
	TypeDatetime = []Attr{{Key: "type", Value: "datetime"}}
	TypeArray    = []Attr{{Key: "type", Value: "array"}}
	TypeSymbol   = []Attr{{Key: "type", Value: "symbol"}}
	TypeBoolean  = []Attr{{Key: "type", Value: "boolean"}}
	NilTrue      = []Attr{{Key: "nil", Value: "true"}}
)

// Element is an immutable XML fragment: either a named element with ordered
// attributes and children, or a bare text run when name is empty.
//
// Nothing is escaped. Every value rendered by this package is a literal or a
// caller-supplied identifier token.
type Element struct {
	name     string
	text     string
	attrs    []Attr
	children []Element
}

// Node builds an element without attributes.
func Node(name string, children ...Element) Element {
	return Element{name: name, children: children}
}

// NodeWithAttrs builds an element with the given attributes.
func NodeWithAttrs(name string, attrs []Attr, children ...Element) Element {
	return Element{name: name, attrs: attrs, children: children}
}

// Text builds a text run.
func Text(s string) Element {
	return Element{text: s}
}

// Leaf is shorthand for an element holding a single text run.
func Leaf(name, text string) Element {
	return Node(name, Text(text))
}

// LeafWithAttrs is Leaf with attributes.
func LeafWithAttrs(name string, attrs []Attr, text string) Element {
	return NodeWithAttrs(name, attrs, Text(text))
}

func (e Element) String() string {
	var b strings.Builder
	e.render(&b)
	return b.String()
}

func (e Element) render(b *strings.Builder) {
	if e.name == "" {
		b.WriteString(e.text)
		return
	}

	b.WriteByte('<')
	b.WriteString(e.name)
	for _, a := range e.attrs {
		b.WriteByte(' ')
		b.WriteString(a.Key)
		b.WriteString(`="`)
		b.WriteString(a.Value)
		b.WriteByte('"')
	}
	b.WriteByte('>')
	for _, child := range e.children {
		child.render(b)
	}
	b.WriteString("</")
	b.WriteString(e.name)
	b.WriteByte('>')
}

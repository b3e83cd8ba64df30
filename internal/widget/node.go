package widget

import (
	"html"
	"strings"
)

// Node is a minimal HTML element tree. Template renderers are pure
// functions from view state to a Node tree; the tree renders to markup
// with escaped text and attribute values.
type Node struct {
	Tag      string
	Attrs    []attr
	Text     string
	Children []*Node
}

type attr struct {
	key   string
	value string
}

// El creates an element node with the given children.
func El(tag string, children ...*Node) *Node {
	return &Node{Tag: tag, Children: children}
}

// Text creates a text node.
func Text(s string) *Node {
	return &Node{Text: s}
}

// Attr sets an attribute and returns the node for chaining. Attribute
// order is preserved so rendering is deterministic.
func (n *Node) Attr(key, value string) *Node {
	n.Attrs = append(n.Attrs, attr{key: key, value: value})
	return n
}

// Class sets the class attribute.
func (n *Node) Class(value string) *Node {
	return n.Attr("class", value)
}

// Style sets the style attribute.
func (n *Node) Style(value string) *Node {
	return n.Attr("style", value)
}

// Add appends children and returns the node.
func (n *Node) Add(children ...*Node) *Node {
	n.Children = append(n.Children, children...)
	return n
}

var voidTags = map[string]bool{
	"br":    true,
	"hr":    true,
	"img":   true,
	"input": true,
}

// HTML renders the node tree to markup.
func (n *Node) HTML() string {
	var b strings.Builder
	n.write(&b)
	return b.String()
}

func (n *Node) write(b *strings.Builder) {
	if n == nil {
		return
	}
	if n.Tag == "" {
		b.WriteString(html.EscapeString(n.Text))
		return
	}

	b.WriteByte('<')
	b.WriteString(n.Tag)
	for _, a := range n.Attrs {
		b.WriteByte(' ')
		b.WriteString(a.key)
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(a.value))
		b.WriteByte('"')
	}
	b.WriteByte('>')

	if voidTags[n.Tag] {
		return
	}

	if n.Text != "" {
		b.WriteString(html.EscapeString(n.Text))
	}
	for _, c := range n.Children {
		c.write(b)
	}

	b.WriteString("</")
	b.WriteString(n.Tag)
	b.WriteByte('>')
}

// Package xmltree provides path-addressed read, write and remove access to
// the attributes and sub-elements of a parsed settings document.
//
// Read methods on a nil *Node are valid and report absence, so callers can
// chain lookups through optional sub-elements without nil checks.
package xmltree

import (
	"fmt"

	"github.com/beevik/etree"
)

// Document is a parsed, mutable settings document.
type Document struct {
	doc *etree.Document
}

// Parse parses an XML document.
func Parse(data []byte) (*Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if doc.Root() == nil {
		return nil, ErrNoRoot
	}
	return &Document{doc: doc}, nil
}

// ParseString parses an XML document held in a string.
func ParseString(s string) (*Document, error) {
	return Parse([]byte(s))
}

// New creates a document with an empty root element.
func New(rootTag string) *Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	doc.CreateElement(rootTag)
	return &Document{doc: doc}
}

// Root returns the document element.
func (d *Document) Root() *Node {
	return wrap(d.doc.Root())
}

// String serializes the whole document with two-space indentation.
func (d *Document) String() (string, error) {
	d.doc.Indent(2)
	return d.doc.WriteToString()
}

// Bytes serializes the whole document with two-space indentation.
func (d *Document) Bytes() ([]byte, error) {
	d.doc.Indent(2)
	return d.doc.WriteToBytes()
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	return &Document{doc: d.doc.Copy()}
}

// Node is one element of a Document.
type Node struct {
	elem *etree.Element
}

func wrap(e *etree.Element) *Node {
	if e == nil {
		return nil
	}
	return &Node{elem: e}
}

// Tag returns the element tag, or "" for a nil node.
func (n *Node) Tag() string {
	if n == nil {
		return ""
	}
	return n.elem.Tag
}

// Attr returns the attribute value and whether it is present.
func (n *Node) Attr(name string) (string, bool) {
	if n == nil {
		return "", false
	}
	a := n.elem.SelectAttr(name)
	if a == nil {
		return "", false
	}
	return a.Value, true
}

// HasAttr reports whether the attribute is present.
func (n *Node) HasAttr(name string) bool {
	_, ok := n.Attr(name)
	return ok
}

// AttrOr returns the attribute value or dflt when absent.
func (n *Node) AttrOr(name, dflt string) string {
	if v, ok := n.Attr(name); ok {
		return v
	}
	return dflt
}

// Attrs returns a copy of all attributes in document order.
func (n *Node) Attrs() map[string]string {
	out := make(map[string]string)
	if n == nil {
		return out
	}
	for _, a := range n.elem.Attr {
		out[a.Key] = a.Value
	}
	return out
}

// SetAttr creates or replaces an attribute.
func (n *Node) SetAttr(name, value string) {
	n.elem.CreateAttr(name, value)
}

// RemoveAttr deletes an attribute; absent attributes are ignored.
func (n *Node) RemoveAttr(name string) {
	if n == nil {
		return
	}
	n.elem.RemoveAttr(name)
}

// Child returns the first direct child element with tag.
func (n *Node) Child(tag string) *Node {
	if n == nil {
		return nil
	}
	return wrap(n.elem.SelectElement(tag))
}

// Children returns all direct child elements with tag, in order.
func (n *Node) Children(tag string) []*Node {
	if n == nil {
		return nil
	}
	elems := n.elem.SelectElements(tag)
	out := make([]*Node, 0, len(elems))
	for _, e := range elems {
		out = append(out, wrap(e))
	}
	return out
}

// EnsureChild returns the first child with tag, creating it when missing.
func (n *Node) EnsureChild(tag string) *Node {
	if c := n.Child(tag); c != nil {
		return c
	}
	return n.AddChild(tag)
}

// AddChild appends a new child element.
func (n *Node) AddChild(tag string) *Node {
	return wrap(n.elem.CreateElement(tag))
}

// RemoveChildren deletes every direct child with tag and returns how many
// were removed.
func (n *Node) RemoveChildren(tag string) int {
	if n == nil {
		return 0
	}
	removed := 0
	for _, e := range n.elem.SelectElements(tag) {
		n.elem.RemoveChild(e)
		removed++
	}
	return removed
}

// Find returns the first element matching an etree path such as
// "SiteSettings/Site[@id='0']".
func (n *Node) Find(path string) *Node {
	if n == nil {
		return nil
	}
	return wrap(n.elem.FindElement(path))
}

// FindAll returns every element matching an etree path.
func (n *Node) FindAll(path string) []*Node {
	if n == nil {
		return nil
	}
	elems := n.elem.FindElements(path)
	out := make([]*Node, 0, len(elems))
	for _, e := range elems {
		out = append(out, wrap(e))
	}
	return out
}

// Same reports whether both nodes wrap the same element.
func (n *Node) Same(other *Node) bool {
	if n == nil || other == nil {
		return n == nil && other == nil
	}
	return n.elem == other.elem
}

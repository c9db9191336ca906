package html

import (
	stdhtml "html"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// Node kinds produced by tree-sitter-html that matter to extractors.
const (
	KindDocument = "document"
	KindElement  = "element"
	KindScript   = "script_element"
	KindStyle    = "style_element"
	KindComment  = "comment"
	KindText     = "text"
)

// Node is a non-owning view of a syntax node inside a Document.
type Node struct {
	doc *Document
	raw *sitter.Node
}

func (n Node) IsZero() bool {
	return n.raw == nil
}

func (n Node) Kind() string {
	if n.raw == nil {
		return ""
	}
	return n.raw.Kind()
}

// Same reports whether n and other refer to the same syntax node.
func (n Node) Same(other Node) bool {
	if n.raw == nil || other.raw == nil {
		return n.raw == other.raw
	}
	return n.doc == other.doc && n.raw.Id() == other.raw.Id()
}

func (n Node) IsElement() bool {
	return isElementKind(n.Kind())
}

func (n Node) IsComment() bool {
	return n.Kind() == KindComment
}

// HasError reports whether the subtree contains ERROR or MISSING nodes.
func (n Node) HasError() bool {
	return n.raw != nil && n.raw.HasError()
}

// InsideError reports whether an ancestor of n is an ERROR node.
func (n Node) InsideError() bool {
	if n.raw == nil {
		return false
	}
	for p := n.raw.Parent(); p != nil; p = p.Parent() {
		if p.IsError() {
			return true
		}
	}
	return false
}

// Text returns the raw source text covered by the node.
func (n Node) Text() string {
	if n.raw == nil || n.doc == nil {
		return ""
	}
	return string(n.doc.source[n.raw.StartByte():n.raw.EndByte()])
}

// TagName returns the lower-cased tag name of an element or of an opening
// tag recovered from an ERROR node, or "" for any other node.
func (n Node) TagName() string {
	if n.Kind() == "tag_name" {
		if !isRecoveredTagName(n.raw) {
			return ""
		}
		return strings.ToLower(strings.TrimSpace(n.raw.Utf8Text(n.doc.source)))
	}
	tag := n.openTag()
	if tag == nil {
		return ""
	}
	for i := uint(0); i < tag.ChildCount(); i++ {
		child := tag.Child(i)
		if child.Kind() == "tag_name" {
			return strings.ToLower(strings.TrimSpace(child.Utf8Text(n.doc.source)))
		}
	}
	return ""
}

// Attribute returns the decoded value of the named attribute. A bare
// attribute such as <div hidden> yields "", true.
func (n Node) Attribute(name string) (string, bool) {
	name = strings.ToLower(name)
	for _, attr := range n.attributeNodes() {
		attrName, value := n.readAttribute(attr)
		if attrName == name {
			return value, true
		}
	}
	return "", false
}

func (n Node) attributeNodes() []*sitter.Node {
	var out []*sitter.Node
	if n.Kind() == "tag_name" {
		if !isRecoveredTagName(n.raw) {
			return nil
		}
		// Recovered tag without a start_tag wrapper: attributes follow the name.
		for sib := n.raw.NextSibling(); sib != nil && sib.Kind() == "attribute"; sib = sib.NextSibling() {
			out = append(out, sib)
		}
		return out
	}
	tag := n.openTag()
	if tag == nil {
		return nil
	}
	for i := uint(0); i < tag.ChildCount(); i++ {
		if child := tag.Child(i); child.Kind() == "attribute" {
			out = append(out, child)
		}
	}
	return out
}

func (n Node) HasAttribute(name string) bool {
	_, ok := n.Attribute(name)
	return ok
}

func (n Node) readAttribute(attr *sitter.Node) (string, string) {
	name := ""
	value := ""
	for j := uint(0); j < attr.ChildCount(); j++ {
		part := attr.Child(j)
		switch part.Kind() {
		case "attribute_name":
			name = strings.ToLower(strings.TrimSpace(part.Utf8Text(n.doc.source)))
		case "attribute_value":
			value = part.Utf8Text(n.doc.source)
		case "quoted_attribute_value":
			for k := uint(0); k < part.ChildCount(); k++ {
				if inner := part.Child(k); inner.Kind() == "attribute_value" {
					value = inner.Utf8Text(n.doc.source)
				}
			}
		}
	}
	return name, stdhtml.UnescapeString(value)
}

// openTag finds the start_tag or self_closing_tag of an element. A node
// that is itself an opening tag is its own open tag.
func (n Node) openTag() *sitter.Node {
	switch n.Kind() {
	case "start_tag", "self_closing_tag":
		return n.raw
	}
	if !n.IsElement() {
		return nil
	}
	for i := uint(0); i < n.raw.ChildCount(); i++ {
		child := n.raw.Child(i)
		switch child.Kind() {
		case "start_tag", "self_closing_tag":
			return child
		}
	}
	return nil
}

// Children returns the content nodes of n in document order. A <template>
// element has no children here; use Document.TemplateContent for its body.
func (n Node) Children() []Node {
	return n.contentChildren(false)
}

func (n Node) contentChildren(includeTemplateContent bool) []Node {
	if n.raw == nil {
		return nil
	}
	if !includeTemplateContent && n.TagName() == "template" {
		return nil
	}
	out := make([]Node, 0, n.raw.ChildCount())
	for i := uint(0); i < n.raw.ChildCount(); i++ {
		child := n.raw.Child(i)
		if !isContentKind(child) {
			continue
		}
		out = append(out, n.doc.wrap(child))
	}
	return out
}

// PreviousSibling returns the closest preceding content node sharing n's parent.
func (n Node) PreviousSibling() (Node, bool) {
	if n.raw == nil {
		return Node{}, false
	}
	prev := n.raw.PrevSibling()
	if prev == nil || !isContentKind(prev) {
		return Node{}, false
	}
	return n.doc.wrap(prev), true
}

// isContentKind filters out tag delimiters and other structural pieces
// that tree-sitter-html nests under an element.
func isContentKind(raw *sitter.Node) bool {
	if !raw.IsNamed() {
		return false
	}
	switch raw.Kind() {
	case "start_tag", "end_tag", "self_closing_tag", "erroneous_end_tag", "raw_text":
		return false
	}
	return true
}

// isRecoveredTagName matches a tag name that error recovery left directly
// under an ERROR node right after "<", i.e. an opening tag with no
// start_tag wrapper.
func isRecoveredTagName(raw *sitter.Node) bool {
	parent := raw.Parent()
	if parent == nil || !parent.IsError() {
		return false
	}
	prev := raw.PrevSibling()
	return prev != nil && prev.Kind() == "<"
}

func isElementKind(kind string) bool {
	switch kind {
	case KindElement, KindScript, KindStyle:
		return true
	}
	return false
}

package html

// Container is anything with ordered child nodes: an element, the document
// node, or a template body.
type Container interface {
	Children() []Node
}

// Fragment is the body of a <template> element.
type Fragment struct {
	host Node
}

// Host returns the owning <template> element, or the zero Node.
func (f Fragment) Host() Node {
	return f.host
}

func (f Fragment) IsZero() bool {
	return f.host.IsZero()
}

func (f Fragment) Children() []Node {
	if f.host.IsZero() {
		return nil
	}
	return f.host.contentChildren(true)
}

// Query returns the first descendant of root matching p in document order.
func Query(root Container, p Predicate) (Node, bool) {
	var found Node
	ok := false
	walk(root, func(n Node) bool {
		if p(n) {
			found = n
			ok = true
			return false
		}
		return true
	})
	return found, ok
}

// QueryAll returns every descendant of root matching p in document order.
func QueryAll(root Container, p Predicate) []Node {
	var matches []Node
	walk(root, func(n Node) bool {
		if p(n) {
			matches = append(matches, n)
		}
		return true
	})
	return matches
}

// walk visits descendants depth-first until fn returns false.
func walk(root Container, fn func(Node) bool) bool {
	for _, child := range root.Children() {
		if !fn(child) {
			return false
		}
		if !walk(child, fn) {
			return false
		}
	}
	return true
}

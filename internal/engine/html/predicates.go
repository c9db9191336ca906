package html

import "strings"

// Predicate is a boolean test over a node.
type Predicate func(Node) bool

func HasTagName(name string) Predicate {
	name = strings.ToLower(name)
	return func(n Node) bool {
		return n.IsElement() && n.TagName() == name
	}
}

func HasAttr(name string) Predicate {
	return func(n Node) bool {
		return n.HasAttribute(name)
	}
}

func HasAttrValue(name, value string) Predicate {
	return func(n Node) bool {
		v, ok := n.Attribute(name)
		return ok && v == value
	}
}

func AND(preds ...Predicate) Predicate {
	return func(n Node) bool {
		for _, p := range preds {
			if !p(n) {
				return false
			}
		}
		return true
	}
}

func OR(preds ...Predicate) Predicate {
	return func(n Node) bool {
		for _, p := range preds {
			if p(n) {
				return true
			}
		}
		return false
	}
}

func NOT(p Predicate) Predicate {
	return func(n Node) bool {
		return !p(n)
	}
}

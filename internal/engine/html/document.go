package html

import (
	"context"
	"domscan/internal/core/errors"
	"domscan/internal/engine/model"
	"strings"
	"sync"
	"unicode/utf8"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

var (
	defaultPoolOnce sync.Once
	defaultPool     *ParserPool
)

func sharedPool() *ParserPool {
	defaultPoolOnce.Do(func() {
		defaultPool = NewParserPool(Language())
	})
	return defaultPool
}

// Document is a parsed HTML file. Nodes handed out by a Document borrow its
// syntax tree and are invalid once Close has been called.
type Document struct {
	path   string
	source []byte
	tree   *sitter.Tree
	root   *sitter.Node
}

// Parse parses source as HTML using the shared parser pool.
func Parse(path string, source []byte) (*Document, error) {
	return ParseWithPool(sharedPool(), path, source)
}

func ParseWithPool(pool *ParserPool, path string, source []byte) (*Document, error) {
	sp := pool.Get()
	defer pool.Put(sp)

	tree := sp.Parse(source, nil)
	if tree == nil {
		return nil, errors.AddContext(errors.New(errors.CodeInternal, "html parse failed"), errors.CtxPath, path)
	}

	return &Document{
		path:   path,
		source: source,
		tree:   tree,
		root:   tree.RootNode(),
	}, nil
}

func (d *Document) Path() string {
	return d.path
}

func (d *Document) Source() []byte {
	return d.source
}

// Root returns the document node.
func (d *Document) Root() Node {
	return d.wrap(d.root)
}

func (d *Document) Close() {
	if d == nil || d.tree == nil {
		return
	}
	d.tree.Close()
	d.tree = nil
	d.root = nil
}

func (d *Document) wrap(raw *sitter.Node) Node {
	if raw == nil {
		return Node{}
	}
	return Node{doc: d, raw: raw}
}

// SourceRangeForNode computes the span of n. It reports false for the zero
// Node and for nodes that belong to another document.
func (d *Document) SourceRangeForNode(n Node) (model.SourceRange, bool) {
	if n.raw == nil || n.doc != d {
		return model.SourceRange{}, false
	}
	return model.SourceRange{
		File:  d.path,
		Start: d.position(n.raw.StartByte(), n.raw.StartPosition()),
		End:   d.position(n.raw.EndByte(), n.raw.EndPosition()),
	}, true
}

// position converts a tree-sitter point, whose column counts bytes, into a
// Position whose column counts characters.
func (d *Document) position(offset uint, p sitter.Point) model.Position {
	lineStart := offset - p.Column
	if offset > uint(len(d.source)) || lineStart > offset {
		return model.Position{Line: int(p.Row), Column: int(p.Column)}
	}
	return model.Position{Line: int(p.Row), Column: utf8.RuneCount(d.source[lineStart:offset])}
}

// RecoveredTags returns, in document order, the opening tags named name that
// error recovery left outside any element. Such tags are never delivered by
// Visit. A document without parse errors has none.
func (d *Document) RecoveredTags(name string) []Node {
	if d.root == nil || !d.root.HasError() {
		return nil
	}
	name = strings.ToLower(name)

	var out []Node
	stack := []*sitter.Node{d.root}
	for len(stack) > 0 {
		raw := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch raw.Kind() {
		case "start_tag", "self_closing_tag":
			parent := raw.Parent()
			if parent != nil && isElementKind(parent.Kind()) {
				continue
			}
			if tag := d.wrap(raw); tag.TagName() == name {
				out = append(out, tag)
			}
			continue
		}

		for i := int(raw.ChildCount()) - 1; i >= 0; i-- {
			stack = append(stack, raw.Child(uint(i)))
		}
	}
	return out
}

// TemplateContent returns the body of a <template> element. Template bodies
// are not reachable through Node.Children, only through this accessor.
func (d *Document) TemplateContent(template Node) Fragment {
	if template.doc != d || template.TagName() != "template" {
		return Fragment{}
	}
	return Fragment{host: template}
}

// Visit walks every node of the document in pre-order, template bodies
// included in place, calling visitor once per node. It returns ctx.Err() if
// the context is cancelled before the walk completes.
func (d *Document) Visit(ctx context.Context, visitor Visitor) error {
	if d.root == nil {
		return errors.AddContext(errors.New(errors.CodeInternal, "document is closed"), errors.CtxPath, d.path)
	}

	stack := []Node{d.Root()}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		visitor(n)

		children := n.contentChildren(true)
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
	return nil
}

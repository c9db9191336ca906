package html

import (
	"context"
	"domscan/internal/engine/model"
)

// Visitor is invoked once per node. It must not block.
type Visitor func(n Node)

// VisitFunc drives a Visitor over a document. Document.Visit satisfies it.
type VisitFunc func(ctx context.Context, visitor Visitor) error

// Scanner extracts traversal-time records from a parsed document.
type Scanner interface {
	Scan(ctx context.Context, doc *Document, visit VisitFunc) ([]model.Resolvable, error)
}

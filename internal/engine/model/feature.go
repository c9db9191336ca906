package model

// Feature is a resolved, immutable record exposed to the analysis model.
// Kinds and Identifiers drive cross-feature indexing.
type Feature interface {
	Kinds() Set
	Identifiers() Set
	Range() SourceRange
	FeatureWarnings() []Warning
}

// Resolvable is a traversal-time record that can be turned into a Feature.
type Resolvable interface {
	Resolve() Feature
}

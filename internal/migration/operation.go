// Package migration implements the lifecycle transition resolver and the
// host-side diffing/planning tooling around it. The resolver maps an
// (old descriptor, new descriptor) pair per column to the schema operation
// payload required to reconcile them.
package migration

// OpKind is the coarse operation kind detected by the differ.
type OpKind string

const (
	OpAddColumn   OpKind = "add-column"
	OpAlterColumn OpKind = "alter-column"
	OpDropColumn  OpKind = "drop-column"
)

// Payload is the SQL/type half of an operation. The resolver assigns a
// fully formed payload in one step; fields are never patched independently,
// so width and expression always move together.
type Payload struct {
	// TypeSQL is the column's storage type string, e.g. "BINARY(32)".
	TypeSQL string
	// Expression is the generated-column expression, empty for plain columns.
	Expression string
	// Persisted marks the generated value as materialized on write.
	Persisted bool
	// Computed marks the column as database-computed rather than writable.
	Computed bool
}

// Operation is one schema change for one column. The differ fills the
// generic fields and a default payload; the resolver may rewrite the payload
// based on the old/new annotation state.
type Operation struct {
	Kind   OpKind
	Table  string
	Column string

	// Annotation state on either side of the change. Nil means the side
	// does not exist (added or dropped column).
	OldAnnotations map[string]string
	NewAnnotations map[string]string

	// ExplicitType is a user-supplied storage type on the new side, if any.
	ExplicitType string

	Payload Payload
}

// Package types defines the core data structures for the Lineage genealogy
// service: persons, families, parent/child relations, and the graph node and
// edge payloads returned by the exploration API.
package types

// Node type constants for graph payloads.
const (
	// NodePerson is a person node.
	NodePerson = "person"

	// NodeFamily is a synthetic family-hub node connecting a parental
	// union to its children.
	NodeFamily = "family"
)

// Edge type constants for graph payloads.
const (
	// EdgeParent connects a parent person to a family hub. In the direct
	// layout it connects a parent person straight to a child person, with
	// no role.
	EdgeParent = "parent"

	// EdgeChild connects a family hub to a child person.
	EdgeChild = "child"

	// EdgePartner connects two persons who are parents on the same family
	// record (direct layout only).
	EdgePartner = "partner"
)

// Parent role constants used on parent edges.
const (
	RoleFather = "father"
	RoleMother = "mother"
)

// Layout constants for the neighborhood operation.
const (
	// LayoutFamily includes family-hub nodes between parents and children.
	LayoutFamily = "family"

	// LayoutDirect returns person nodes only, with parent and partner edges.
	LayoutDirect = "direct"
)

// DisplayNamePrivate is the literal sentinel used as the display name of a
// redacted person. It must never be title-cased or otherwise rewritten.
const DisplayNamePrivate = "Private"

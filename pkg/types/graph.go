package types

// Node is a graph payload node: either a PersonNode or a FamilyNode. A single
// node list mixes both, discriminated by the serialized "type" field.
type Node interface {
	// NodeID returns the node's stable handle.
	NodeID() string

	// NodeType returns NodePerson or NodeFamily.
	NodeType() string
}

// PersonNode is the person summary shape used in every exploration payload.
// The nullable fields are serialized without omitempty: a redacted person
// carries explicit nulls and the literal display name "Private", and clients
// rely on the keys being present.
type PersonNode struct {
	ID      string `json:"id"`
	AliasID string `json:"alias_id,omitempty"`
	Type    string `json:"type"`

	DisplayName *string `json:"display_name"`
	GivenName   *string `json:"given_name"`
	Surname     *string `json:"surname"`
	Gender      *string `json:"gender"`
	Birth       *string `json:"birth"`
	Death       *string `json:"death"`

	// Distance is the hop distance from the traversal root; null outside
	// neighborhood results (hub expansion, path answers).
	Distance *int `json:"distance"`
}

// NodeID implements Node.
func (n PersonNode) NodeID() string { return n.ID }

// NodeType implements Node.
func (n PersonNode) NodeType() string { return NodePerson }

// FamilyNode is a family-hub node. When returned as a stub (no parent edges
// attached) it exists purely to signal that more of the tree can be expanded.
type FamilyNode struct {
	ID      string `json:"id"`
	AliasID string `json:"alias_id,omitempty"`
	Type    string `json:"type"`

	IsPrivate    bool `json:"is_private"`
	ParentsTotal int  `json:"parents_total"`

	// ChildrenTotal is the total number of children recorded for this
	// family, regardless of how many appear in the current payload.
	ChildrenTotal *int `json:"children_total,omitempty"`

	// HasMoreChildren is true when children exist beyond the ones whose
	// edges are included in the current payload.
	HasMoreChildren *bool `json:"has_more_children,omitempty"`

	// Marriage is a best-effort marriage date (ISO date or raw source
	// text). Never set on private families.
	Marriage string `json:"marriage,omitempty"`
}

// NodeID implements Node.
func (n FamilyNode) NodeID() string { return n.ID }

// NodeType implements Node.
func (n FamilyNode) NodeType() string { return NodeFamily }

// GraphEdge is a typed edge in an exploration payload. In neighborhood
// answers every endpoint appears in the accompanying node list; hub
// expansions may additionally reference nodes the client already renders.
type GraphEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
	Type string `json:"type"`

	// Role is set on family-layout parent edges only ("father" or
	// "mother").
	Role string `json:"role,omitempty"`
}

// Graph is a node/edge payload returned by neighborhood and hub-expansion
// operations.
type Graph struct {
	Nodes []Node      `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

// PathPerson is the redacted person summary used in relationship-path
// answers. DisplayName is nil only for ids that could not be loaded.
type PathPerson struct {
	ID          string  `json:"id"`
	AliasID     string  `json:"alias_id,omitempty"`
	DisplayName *string `json:"display_name"`
}

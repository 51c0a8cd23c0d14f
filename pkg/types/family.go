package types

// Family is a parental union. Parent slots are optional; child membership is
// tracked in a separate relation and surfaced here as Children when loaded.
type Family struct {
	// ID is the stable internal handle.
	ID string `json:"id"`

	// AliasID is the optional external identifier (e.g. "F0001").
	AliasID string `json:"alias_id,omitempty"`

	// FatherID and MotherID are the parent slots. Either may be empty.
	FatherID string `json:"father_id,omitempty"`
	MotherID string `json:"mother_id,omitempty"`

	// IsPrivate marks the family record explicitly private.
	IsPrivate bool `json:"is_private"`

	// Children holds the child person ids when the store loaded them.
	// A nil slice means "not loaded", not "no children".
	Children []string `json:"children,omitempty"`
}

// ParentsTotal returns how many parent slots are filled (0–2).
func (f *Family) ParentsTotal() int {
	n := 0
	if f.FatherID != "" {
		n++
	}
	if f.MotherID != "" {
		n++
	}
	return n
}

// IsGhost reports whether the family has neither parent. Ghost families are
// left behind by merges in the source dataset; they may still carry children
// but are never a valid parent-expansion target.
func (f *Family) IsGhost() bool {
	return f.FatherID == "" && f.MotherID == ""
}

// ParentEdge is a direct (child, parent) relation. These rows may exist
// independently of, and inconsistently with, family records; adjacency merges
// both sources because either may be incomplete.
type ParentEdge struct {
	ChildID  string `json:"child_id"`
	ParentID string `json:"parent_id"`
}

// FamilyChildLink is a row of the child-membership relation.
type FamilyChildLink struct {
	FamilyID string `json:"family_id"`
	ChildID  string `json:"child_id"`
}

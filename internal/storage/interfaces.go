// Package storage provides read-only access to the family-tree store.
//
// The store is populated by an external import pipeline; this service never
// writes person, family, or relation rows. The TreeStore interface is shaped
// around the batch lookups the graph engine performs layer by layer, so that
// a BFS issues one query per relation per layer instead of one per node.
package storage

import (
	"context"

	"github.com/lineage-works/lineage/pkg/types"
)

// TreeStore provides the person/family/relation lookups used by the graph
// engine and the API handlers.
type TreeStore interface {
	// ResolvePersonRef resolves an internal handle or an external alias id
	// to the internal handle. Returns ErrNotFound when neither matches.
	ResolvePersonRef(ctx context.Context, ref string) (string, error)

	// FamilyByRef loads a family by internal handle or external alias id,
	// with Children populated. Returns ErrNotFound when neither matches.
	FamilyByRef(ctx context.Context, ref string) (*types.Family, error)

	// PeopleByIDs loads full person records for a set of internal ids.
	// Unknown ids are silently absent from the result map.
	PeopleByIDs(ctx context.Context, ids []string) (map[string]*types.Person, error)

	// ParentEdgesTouching returns the direct parent/child rows where
	// either endpoint is in ids.
	ParentEdgesTouching(ctx context.Context, ids []string) ([]types.ParentEdge, error)

	// FamiliesTouching returns families where a parent slot or a child is
	// in ids, with Children populated.
	FamiliesTouching(ctx context.Context, ids []string) ([]*types.Family, error)

	// CoupleFamiliesOf returns families with both parent slots set where
	// at least one parent is in ids. Used for spouse inference; Children
	// are not populated.
	CoupleFamiliesOf(ctx context.Context, ids []string) ([]*types.Family, error)

	// FamiliesByIDs loads families by internal id, with Children
	// populated. Unknown ids are silently absent.
	FamiliesByIDs(ctx context.Context, ids []string) ([]*types.Family, error)

	// BirthFamilyLinks returns the child-membership rows for the given
	// child ids (i.e. each person's own birth families).
	BirthFamilyLinks(ctx context.Context, childIDs []string) ([]types.FamilyChildLink, error)

	// ChildCounts returns the total recorded children per family id.
	// Families with no children are absent from the map.
	ChildCounts(ctx context.Context, familyIDs []string) (map[string]int, error)

	// MarriageDates returns a best-effort marriage date per family id,
	// either an ISO date or the raw source text. Only non-private
	// marriage/wedding events are considered; families without a match
	// are absent from the map. When no event links directly to the
	// family, an event both parents are independently linked to counts
	// as evidence of a shared ceremony.
	MarriageDates(ctx context.Context, familyIDs []string) (map[string]string, error)

	// Ping verifies the underlying connection.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}

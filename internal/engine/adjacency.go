// Package engine implements the graph exploration core: adjacency
// resolution, bounded neighborhood traversal, historic-anchor privacy
// inference, hub expansion, and relationship path finding.
//
// Every operation is a self-contained read over the store: the engine holds
// no mutable state across calls, traversal loops are iterative with explicit
// frontier queues, and cancellation points sit between BFS layers.
package engine

import (
	"context"

	"github.com/lineage-works/lineage/internal/storage"
	"github.com/lineage-works/lineage/pkg/types"
)

// Adjacency resolves neighbor lookups for sets of person ids.
//
// Parent/child adjacency is the union of direct parent rows and
// family-derived edges (father/mother → family → child), because imports may
// leave either source incomplete. Spouses are inferred from couple families
// and are deliberately not graph edges for multi-hop expansion: they attach
// to already-discovered nodes at the same generation so that a BFS never
// wanders into lateral marriage networks.
type Adjacency struct {
	store storage.TreeStore
}

// NewAdjacency creates an adjacency resolver backed by the given store.
func NewAdjacency(store storage.TreeStore) *Adjacency {
	return &Adjacency{store: store}
}

// ParentChildPairs returns the merged, de-duplicated (parent, child) pairs
// where either endpoint is in ids.
func (a *Adjacency) ParentChildPairs(ctx context.Context, ids []string) ([]types.ParentEdge, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	direct, err := a.store.ParentEdgesTouching(ctx, ids)
	if err != nil {
		return nil, err
	}

	families, err := a.store.FamiliesTouching(ctx, ids)
	if err != nil {
		return nil, err
	}

	type pair struct{ parent, child string }
	seen := make(map[pair]bool, len(direct))
	var out []types.ParentEdge

	add := func(parentID, childID string) {
		if parentID == "" || childID == "" {
			return
		}
		k := pair{parentID, childID}
		if seen[k] {
			return
		}
		seen[k] = true
		out = append(out, types.ParentEdge{ChildID: childID, ParentID: parentID})
	}

	for _, e := range direct {
		add(e.ParentID, e.ChildID)
	}
	for _, f := range families {
		for _, childID := range f.Children {
			add(f.FatherID, childID)
			add(f.MotherID, childID)
		}
	}

	return out, nil
}

// Neighbors returns the undirected parent/child neighbor lists for each id
// in ids. Neighbors outside ids are included in the lists; only the map keys
// are restricted to the requested set.
func (a *Adjacency) Neighbors(ctx context.Context, ids []string) (map[string][]string, error) {
	out := make(map[string][]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	inSet := make(map[string]bool, len(ids))
	for _, id := range ids {
		inSet[id] = true
		out[id] = nil
	}

	pairs, err := a.ParentChildPairs(ctx, ids)
	if err != nil {
		return nil, err
	}

	for _, e := range pairs {
		if inSet[e.ParentID] {
			out[e.ParentID] = append(out[e.ParentID], e.ChildID)
		}
		if inSet[e.ChildID] {
			out[e.ChildID] = append(out[e.ChildID], e.ParentID)
		}
	}

	return out, nil
}

// Spouses returns the inferred spouse lists for each id in ids: any two
// persons who are father and mother on the same family record are spouses.
func (a *Adjacency) Spouses(ctx context.Context, ids []string) (map[string][]string, error) {
	out := make(map[string][]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	inSet := make(map[string]bool, len(ids))
	for _, id := range ids {
		inSet[id] = true
		out[id] = nil
	}

	couples, err := a.store.CoupleFamiliesOf(ctx, ids)
	if err != nil {
		return nil, err
	}

	for _, f := range couples {
		if inSet[f.FatherID] {
			out[f.FatherID] = append(out[f.FatherID], f.MotherID)
		}
		if inSet[f.MotherID] {
			out[f.MotherID] = append(out[f.MotherID], f.FatherID)
		}
	}

	return out, nil
}

// neighborsWithin builds an undirected neighbor map from pairs, keeping only
// edges whose both endpoints are in view. Used by historic-anchor inference,
// which must not reach outside the traversal result.
func neighborsWithin(pairs []types.ParentEdge, view map[string]bool) map[string][]string {
	out := make(map[string][]string, len(view))
	for _, e := range pairs {
		if !view[e.ParentID] || !view[e.ChildID] {
			continue
		}
		out[e.ParentID] = append(out[e.ParentID], e.ChildID)
		out[e.ChildID] = append(out[e.ChildID], e.ParentID)
	}
	return out
}

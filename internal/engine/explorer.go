package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/lineage-works/lineage/internal/names"
	"github.com/lineage-works/lineage/internal/privacy"
	"github.com/lineage-works/lineage/internal/storage"
	"github.com/lineage-works/lineage/pkg/types"
)

// Explorer ties the traversal engines to the privacy policy and exposes the
// four exploration operations. It holds no per-request state; a single
// Explorer serves concurrent requests.
type Explorer struct {
	store    storage.TreeStore
	adj      *Adjacency
	trav     *Traversal
	policy   privacy.Policy
	historic HistoricPolicy

	// now is injectable so that policy decisions are testable against a
	// fixed "today".
	now func() time.Time
}

// NewExplorer creates an Explorer over the given store and policies.
func NewExplorer(store storage.TreeStore, policy privacy.Policy, historic HistoricPolicy) *Explorer {
	adj := NewAdjacency(store)
	return &Explorer{
		store:    store,
		adj:      adj,
		trav:     NewTraversal(adj),
		policy:   policy,
		historic: historic,
		now:      time.Now,
	}
}

// NeighborhoodRequest parameterizes a neighborhood call. Ref may be an
// internal handle or an external alias id.
type NeighborhoodRequest struct {
	Ref      string
	Depth    int
	MaxNodes int

	// Layout selects the payload shape: LayoutFamily inserts family-hub
	// nodes, LayoutDirect returns person nodes with parent/partner edges.
	Layout string

	// OnLayer, when set, receives the privacy-redacted person nodes of
	// each BFS layer as it is discovered. Layer nodes carry the base
	// policy decision only; the final payload additionally applies
	// historic-anchor inference.
	OnLayer func(depth int, nodes []types.Node) error
}

// NeighborhoodResult is the payload of a neighborhood call.
type NeighborhoodResult struct {
	Root     string            `json:"root"`
	Layout   string            `json:"layout"`
	Depth    int               `json:"depth"`
	MaxNodes int               `json:"max_nodes"`
	Nodes    []types.Node      `json:"nodes"`
	Edges    []types.GraphEdge `json:"edges"`
}

// Neighborhood returns the bounded subgraph around one person, with every
// person node privacy-filtered and historic-anchor inference applied.
func (e *Explorer) Neighborhood(ctx context.Context, req NeighborhoodRequest) (*NeighborhoodResult, error) {
	if req.Layout == "" {
		req.Layout = types.LayoutFamily
	}
	if req.Layout != types.LayoutFamily && req.Layout != types.LayoutDirect {
		return nil, fmt.Errorf("%w: unknown layout %q", storage.ErrInvalidInput, req.Layout)
	}

	rootID, err := e.store.ResolvePersonRef(ctx, req.Ref)
	if err != nil {
		return nil, err
	}

	today := e.now()

	var onLayer LayerFunc
	if req.OnLayer != nil {
		onLayer = func(depth int, ids []string) error {
			return e.emitLayerNodes(ctx, depth, ids, today, req.OnLayer)
		}
	}

	bounds := storage.NeighborhoodBounds{Depth: req.Depth, MaxNodes: req.MaxNodes}
	distances, err := e.trav.Distances(ctx, rootID, bounds, onLayer)
	if err != nil {
		return nil, err
	}

	personIDs := make([]string, 0, len(distances))
	for pid := range distances {
		personIDs = append(personIDs, pid)
	}
	sortByDistanceThenID(personIDs, distances)

	people, err := e.store.PeopleByIDs(ctx, personIDs)
	if err != nil {
		return nil, err
	}

	// Base policy per person, then the historic-anchor pass over the
	// in-view parent/child adjacency.
	basePrivate := make(map[string]bool, len(people))
	for pid, p := range people {
		basePrivate[pid] = e.policy.IsEffectivelyPrivate(p, today)
	}

	pairs, err := e.adj.ParentChildPairs(ctx, personIDs)
	if err != nil {
		return nil, err
	}

	view := make(map[string]bool, len(people))
	for pid := range people {
		view[pid] = true
	}
	finalPrivate := e.historic.Promote(people, basePrivate, neighborsWithin(pairs, view), e.policy, today)

	result := &NeighborhoodResult{
		Root:     req.Ref,
		Layout:   req.Layout,
		Depth:    req.Depth,
		MaxNodes: req.MaxNodes,
		Edges:    []types.GraphEdge{},
	}

	personNodeIDs := make(map[string]bool, len(personIDs))
	for _, pid := range personIDs {
		p, ok := people[pid]
		if !ok {
			// Referenced by a relation but missing from the person
			// table; skip rather than invent a node.
			continue
		}
		dist := distances[pid]
		result.Nodes = append(result.Nodes, e.personNode(p, &dist, finalPrivate[pid], today))
		personNodeIDs[pid] = true
	}

	if req.Layout == types.LayoutDirect {
		e.appendDirectEdges(result, pairs, personNodeIDs)
		if err := e.appendPartnerEdges(ctx, result, personIDs, personNodeIDs); err != nil {
			return nil, err
		}
		return result, nil
	}

	if err := e.appendFamilyHubs(ctx, result, personIDs, personNodeIDs); err != nil {
		return nil, err
	}
	return result, nil
}

// emitLayerNodes redacts and forwards one BFS layer to the caller.
func (e *Explorer) emitLayerNodes(ctx context.Context, depth int, ids []string, today time.Time, emit func(int, []types.Node) error) error {
	people, err := e.store.PeopleByIDs(ctx, ids)
	if err != nil {
		return err
	}

	nodes := make([]types.Node, 0, len(ids))
	for _, pid := range ids {
		p, ok := people[pid]
		if !ok {
			continue
		}
		d := depth
		nodes = append(nodes, e.personNode(p, &d, e.policy.IsEffectivelyPrivate(p, today), today))
	}
	return emit(depth, nodes)
}

// appendDirectEdges adds parent→child edges for in-view pairs.
func (e *Explorer) appendDirectEdges(result *NeighborhoodResult, pairs []types.ParentEdge, inView map[string]bool) {
	for _, pr := range pairs {
		if !inView[pr.ParentID] || !inView[pr.ChildID] {
			continue
		}
		result.Edges = append(result.Edges, types.GraphEdge{
			From: pr.ParentID,
			To:   pr.ChildID,
			Type: types.EdgeParent,
		})
	}
}

// appendPartnerEdges adds father→mother partner edges for couples fully in
// view.
func (e *Explorer) appendPartnerEdges(ctx context.Context, result *NeighborhoodResult, personIDs []string, inView map[string]bool) error {
	couples, err := e.store.CoupleFamiliesOf(ctx, personIDs)
	if err != nil {
		return err
	}

	sort.Slice(couples, func(i, j int) bool { return couples[i].ID < couples[j].ID })
	seen := make(map[[2]string]bool, len(couples))
	for _, f := range couples {
		if !inView[f.FatherID] || !inView[f.MotherID] {
			continue
		}
		k := [2]string{f.FatherID, f.MotherID}
		if seen[k] {
			continue
		}
		seen[k] = true
		result.Edges = append(result.Edges, types.GraphEdge{
			From: f.FatherID,
			To:   f.MotherID,
			Type: types.EdgePartner,
		})
	}
	return nil
}

// appendFamilyHubs adds family-hub nodes and their parent/child edges for
// the family layout, including children_total / has_more_children counts
// and marriage metadata on non-private families.
func (e *Explorer) appendFamilyHubs(ctx context.Context, result *NeighborhoodResult, personIDs []string, inView map[string]bool) error {
	families, err := e.store.FamiliesTouching(ctx, personIDs)
	if err != nil {
		return err
	}
	sort.Slice(families, func(i, j int) bool { return families[i].ID < families[j].ID })

	var hubNodes []*types.FamilyNode
	var publicFamilyIDs []string
	shownChildren := make(map[string]int)

	for _, f := range families {
		// Ghost families create confusing bare hubs; a family with no
		// parents is never surfaced as an expandable edge.
		if f.IsGhost() {
			continue
		}

		total := len(f.Children)
		node := &types.FamilyNode{
			ID:            f.ID,
			AliasID:       f.AliasID,
			Type:          types.NodeFamily,
			IsPrivate:     f.IsPrivate,
			ParentsTotal:  f.ParentsTotal(),
			ChildrenTotal: &total,
		}
		hubNodes = append(hubNodes, node)
		if !f.IsPrivate {
			publicFamilyIDs = append(publicFamilyIDs, f.ID)
		}

		if f.FatherID != "" && inView[f.FatherID] {
			result.Edges = append(result.Edges, types.GraphEdge{
				From: f.FatherID, To: f.ID, Type: types.EdgeParent, Role: types.RoleFather,
			})
		}
		if f.MotherID != "" && inView[f.MotherID] {
			result.Edges = append(result.Edges, types.GraphEdge{
				From: f.MotherID, To: f.ID, Type: types.EdgeParent, Role: types.RoleMother,
			})
		}
		for _, childID := range f.Children {
			if !inView[childID] {
				continue
			}
			result.Edges = append(result.Edges, types.GraphEdge{
				From: f.ID, To: childID, Type: types.EdgeChild,
			})
			shownChildren[f.ID]++
		}
	}

	marriages, err := e.store.MarriageDates(ctx, publicFamilyIDs)
	if err != nil {
		return err
	}

	for _, node := range hubNodes {
		hasMore := *node.ChildrenTotal > shownChildren[node.ID]
		node.HasMoreChildren = &hasMore
		if !node.IsPrivate {
			node.Marriage = marriages[node.ID]
		}
		result.Nodes = append(result.Nodes, *node)
	}
	return nil
}

// personNode builds the public or redacted person payload.
func (e *Explorer) personNode(p *types.Person, distance *int, private bool, today time.Time) types.PersonNode {
	node := types.PersonNode{
		ID:       p.ID,
		AliasID:  p.AliasID,
		Type:     types.NodePerson,
		Distance: distance,
	}

	if private {
		sentinel := types.DisplayNamePrivate
		node.DisplayName = &sentinel
		return node
	}

	node.DisplayName, node.GivenName, node.Surname = names.FormatPublicNames(p.DisplayName, p.GivenName, p.Surname)
	node.Gender = strPtr(p.Gender)
	node.Birth = strPtr(p.BirthText)
	node.Death = strPtr(p.DeathText)
	return node
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// sortByDistanceThenID orders ids by hop distance, then lexically, so that
// payloads are deterministic.
func sortByDistanceThenID(ids []string, distances map[string]int) {
	sort.Slice(ids, func(i, j int) bool {
		if distances[ids[i]] != distances[ids[j]] {
			return distances[ids[i]] < distances[ids[j]]
		}
		return ids[i] < ids[j]
	})
}

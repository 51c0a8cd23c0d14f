package engine

import (
	"context"
	"fmt"
	"sort"

	"github.com/lineage-works/lineage/internal/storage"
	"github.com/lineage-works/lineage/pkg/types"
)

// ExpandParents loads the parent couple of one family hub, plus a birth-family
// stub behind each parent so the client can keep climbing. ChildID, when the
// child really belongs to the family, gets its child edge re-attached so the
// new fragment connects to the already-rendered view.
func (e *Explorer) ExpandParents(ctx context.Context, familyRef, childID string) (*types.Graph, error) {
	fam, err := e.store.FamilyByRef(ctx, familyRef)
	if err != nil {
		return nil, err
	}
	if fam.IsGhost() {
		return nil, fmt.Errorf("%w: family has no parents", storage.ErrNotFound)
	}

	today := e.now()
	graph := &types.Graph{Edges: []types.GraphEdge{}}

	parentIDs := make([]string, 0, 2)
	if fam.FatherID != "" {
		parentIDs = append(parentIDs, fam.FatherID)
	}
	if fam.MotherID != "" {
		parentIDs = append(parentIDs, fam.MotherID)
	}

	people, err := e.store.PeopleByIDs(ctx, parentIDs)
	if err != nil {
		return nil, err
	}

	total := len(fam.Children)
	// Only the single expanded child edge comes back; flag when the family
	// holds more children than that.
	hasMore := childID != "" && total > 1
	hub := types.FamilyNode{
		ID:              fam.ID,
		AliasID:         fam.AliasID,
		Type:            types.NodeFamily,
		IsPrivate:       fam.IsPrivate,
		ParentsTotal:    fam.ParentsTotal(),
		ChildrenTotal:   &total,
		HasMoreChildren: &hasMore,
	}
	if !fam.IsPrivate {
		marriages, err := e.store.MarriageDates(ctx, []string{fam.ID})
		if err != nil {
			return nil, err
		}
		hub.Marriage = marriages[fam.ID]
	}
	graph.Nodes = append(graph.Nodes, hub)

	for _, pid := range parentIDs {
		p, ok := people[pid]
		if !ok {
			continue
		}
		graph.Nodes = append(graph.Nodes, e.personNode(p, nil, e.policy.IsEffectivelyPrivate(p, today), today))
		role := types.RoleFather
		if pid == fam.MotherID {
			role = types.RoleMother
		}
		graph.Edges = append(graph.Edges, types.GraphEdge{
			From: pid, To: fam.ID, Type: types.EdgeParent, Role: role,
		})
	}

	if childID != "" && containsID(fam.Children, childID) {
		graph.Edges = append(graph.Edges, types.GraphEdge{
			From: fam.ID, To: childID, Type: types.EdgeChild,
		})
	}

	if err := e.attachBirthStubs(ctx, graph, parentIDs); err != nil {
		return nil, err
	}
	return graph, nil
}

// attachBirthStubs adds one birth-family stub per parent that has a
// non-ghost family of origin, wired with a child edge into the parent.
// Stubs carry no parent edges, so any children at all mark them expandable.
func (e *Explorer) attachBirthStubs(ctx context.Context, graph *types.Graph, parentIDs []string) error {
	links, err := e.store.BirthFamilyLinks(ctx, parentIDs)
	if err != nil {
		return err
	}
	if len(links) == 0 {
		return nil
	}

	famIDs := make([]string, 0, len(links))
	byChild := make(map[string]string, len(links))
	for _, l := range links {
		if _, dup := byChild[l.ChildID]; dup {
			continue
		}
		byChild[l.ChildID] = l.FamilyID
		famIDs = append(famIDs, l.FamilyID)
	}

	families, err := e.store.FamiliesByIDs(ctx, famIDs)
	if err != nil {
		return err
	}
	byID := make(map[string]*types.Family, len(families))
	var publicIDs []string
	for _, f := range families {
		byID[f.ID] = f
		if !f.IsGhost() && !f.IsPrivate {
			publicIDs = append(publicIDs, f.ID)
		}
	}

	marriages, err := e.store.MarriageDates(ctx, publicIDs)
	if err != nil {
		return err
	}

	seen := make(map[string]bool, len(famIDs))
	for _, pid := range parentIDs {
		famID, ok := byChild[pid]
		if !ok {
			continue
		}
		f, ok := byID[famID]
		if !ok || f.IsGhost() {
			continue
		}
		if !seen[famID] {
			seen[famID] = true
			total := len(f.Children)
			hasMore := total > 0
			stub := types.FamilyNode{
				ID:              f.ID,
				AliasID:         f.AliasID,
				Type:            types.NodeFamily,
				IsPrivate:       f.IsPrivate,
				ParentsTotal:    f.ParentsTotal(),
				ChildrenTotal:   &total,
				HasMoreChildren: &hasMore,
			}
			if !f.IsPrivate {
				stub.Marriage = marriages[f.ID]
			}
			graph.Nodes = append(graph.Nodes, stub)
		}
		graph.Edges = append(graph.Edges, types.GraphEdge{
			From: famID, To: pid, Type: types.EdgeChild,
		})
	}
	return nil
}

// ExpandChildren loads all children of one family hub. The answer leads with
// the family node itself, its counts, and the parent edges that reconnect it
// to the rendered view. With spouses enabled, each child additionally brings
// the couple families it parents, the other partner of each, and the child
// count of that family, one level deep.
func (e *Explorer) ExpandChildren(ctx context.Context, familyRef string, includeSpouses bool) (*types.Graph, error) {
	fam, err := e.store.FamilyByRef(ctx, familyRef)
	if err != nil {
		return nil, err
	}

	today := e.now()
	graph := &types.Graph{Edges: []types.GraphEdge{}}

	total := len(fam.Children)
	// Every child edge is included, so nothing further is pending here.
	hasMore := false
	hub := types.FamilyNode{
		ID:              fam.ID,
		AliasID:         fam.AliasID,
		Type:            types.NodeFamily,
		IsPrivate:       fam.IsPrivate,
		ParentsTotal:    fam.ParentsTotal(),
		ChildrenTotal:   &total,
		HasMoreChildren: &hasMore,
	}
	if !fam.IsPrivate {
		marriages, err := e.store.MarriageDates(ctx, []string{fam.ID})
		if err != nil {
			return nil, err
		}
		hub.Marriage = marriages[fam.ID]
	}
	graph.Nodes = append(graph.Nodes, hub)

	// Parent edges reconnect the hub to the parents the client already
	// renders; the parent person nodes themselves are not reloaded.
	if fam.FatherID != "" {
		graph.Edges = append(graph.Edges, types.GraphEdge{
			From: fam.FatherID, To: fam.ID, Type: types.EdgeParent, Role: types.RoleFather,
		})
	}
	if fam.MotherID != "" {
		graph.Edges = append(graph.Edges, types.GraphEdge{
			From: fam.MotherID, To: fam.ID, Type: types.EdgeParent, Role: types.RoleMother,
		})
	}

	childIDs := append([]string(nil), fam.Children...)
	sort.Strings(childIDs)

	people, err := e.store.PeopleByIDs(ctx, childIDs)
	if err != nil {
		return nil, err
	}

	seenPeople := make(map[string]bool, len(childIDs))
	for _, cid := range childIDs {
		p, ok := people[cid]
		if !ok {
			continue
		}
		graph.Nodes = append(graph.Nodes, e.personNode(p, nil, e.policy.IsEffectivelyPrivate(p, today), today))
		seenPeople[cid] = true
		graph.Edges = append(graph.Edges, types.GraphEdge{
			From: fam.ID, To: cid, Type: types.EdgeChild,
		})
	}

	if !includeSpouses {
		return graph, nil
	}
	return graph, e.attachSpouseBlocks(ctx, graph, fam.ID, childIDs, seenPeople)
}

// attachSpouseBlocks adds, for each child, the couple families it heads: a
// hub node carrying the family's child count and expandability, a parent edge
// from the child, and the other partner with their own parent edge.
func (e *Explorer) attachSpouseBlocks(ctx context.Context, graph *types.Graph, hubID string, childIDs []string, seenPeople map[string]bool) error {
	couples, err := e.store.CoupleFamiliesOf(ctx, childIDs)
	if err != nil {
		return err
	}
	sort.Slice(couples, func(i, j int) bool { return couples[i].ID < couples[j].ID })

	childSet := make(map[string]bool, len(childIDs))
	for _, cid := range childIDs {
		childSet[cid] = true
	}

	var famIDs []string
	var publicFamIDs []string
	var spouseIDs []string
	for _, f := range couples {
		if f.ID == hubID {
			continue
		}
		famIDs = append(famIDs, f.ID)
		if !f.IsPrivate {
			publicFamIDs = append(publicFamIDs, f.ID)
		}
		for _, pid := range []string{f.FatherID, f.MotherID} {
			if pid != "" && !childSet[pid] && !seenPeople[pid] {
				spouseIDs = append(spouseIDs, pid)
			}
		}
	}

	counts, err := e.store.ChildCounts(ctx, famIDs)
	if err != nil {
		return err
	}
	marriages, err := e.store.MarriageDates(ctx, publicFamIDs)
	if err != nil {
		return err
	}
	spouses, err := e.store.PeopleByIDs(ctx, spouseIDs)
	if err != nil {
		return err
	}

	now := e.now()
	seenFamilies := make(map[string]bool, len(couples))
	for _, f := range couples {
		if f.ID == hubID || seenFamilies[f.ID] {
			continue
		}
		seenFamilies[f.ID] = true

		total := counts[f.ID]
		hasMore := total > 0
		node := types.FamilyNode{
			ID:              f.ID,
			AliasID:         f.AliasID,
			Type:            types.NodeFamily,
			IsPrivate:       f.IsPrivate,
			ParentsTotal:    f.ParentsTotal(),
			ChildrenTotal:   &total,
			HasMoreChildren: &hasMore,
		}
		if !f.IsPrivate {
			node.Marriage = marriages[f.ID]
		}
		graph.Nodes = append(graph.Nodes, node)

		for _, pid := range []string{f.FatherID, f.MotherID} {
			if pid == "" {
				continue
			}
			if !childSet[pid] && !seenPeople[pid] {
				if p, ok := spouses[pid]; ok {
					graph.Nodes = append(graph.Nodes, e.personNode(p, nil, e.policy.IsEffectivelyPrivate(p, now), now))
					seenPeople[pid] = true
				}
			}
			if !childSet[pid] && !seenPeople[pid] {
				continue
			}
			role := types.RoleFather
			if pid == f.MotherID {
				role = types.RoleMother
			}
			graph.Edges = append(graph.Edges, types.GraphEdge{
				From: pid, To: f.ID, Type: types.EdgeParent, Role: role,
			})
		}
	}
	return nil
}

func containsID(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

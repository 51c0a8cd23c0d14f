package engine

import (
	"context"

	"github.com/lineage-works/lineage/internal/storage"
)

// Traversal performs the bounded neighborhood BFS.
type Traversal struct {
	adj *Adjacency
}

// NewTraversal creates a traversal engine over the given adjacency resolver.
func NewTraversal(adj *Adjacency) *Traversal {
	return &Traversal{adj: adj}
}

// LayerFunc is called once per BFS layer with the ids discovered at that
// depth (including spouses attached at the same depth). Returning an error
// aborts the traversal. Used for progressive streaming; may be nil.
type LayerFunc func(depth int, ids []string) error

// Distances runs a breadth-first neighborhood expansion from root and
// returns the id → hop-distance map.
//
// Expansion moves only through parent/child edges; spouses of each newly
// discovered layer (and of the root) are attached at the layer's distance
// without ever being queued for further expansion. The traversal stops when
// the depth is exhausted, the frontier empties, or the node budget is
// reached; a budget cut mid-layer yields a valid partial result.
//
// Cancellation is checked between layers; nothing is mutated, so there is
// nothing to roll back.
func (t *Traversal) Distances(ctx context.Context, root string, bounds storage.NeighborhoodBounds, onLayer LayerFunc) (map[string]int, error) {
	bounds.Normalize()

	distances := map[string]int{root: 0}
	layer := []string{root}
	full := false

	// The root's spouses attach at distance 0 before hop expansion begins.
	rootSpouses, err := t.adj.Spouses(ctx, []string{root})
	if err != nil {
		return nil, err
	}
	for _, sp := range rootSpouses[root] {
		if _, ok := distances[sp]; ok {
			continue
		}
		if len(distances) >= bounds.MaxNodes {
			full = true
			break
		}
		distances[sp] = 0
		layer = append(layer, sp)
	}

	if err := emitLayer(onLayer, 0, layer); err != nil {
		return nil, err
	}
	if full || bounds.Depth <= 0 {
		return distances, nil
	}

	frontier := []string{root}
	for d := 1; d <= bounds.Depth; d++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		neighbors, err := t.adj.Neighbors(ctx, frontier)
		if err != nil {
			return nil, err
		}

		var nextFrontier, layerIDs []string
		for _, node := range frontier {
			for _, nb := range neighbors[node] {
				if _, ok := distances[nb]; ok {
					continue
				}
				if len(distances) >= bounds.MaxNodes {
					full = true
					break
				}
				distances[nb] = d
				nextFrontier = append(nextFrontier, nb)
				layerIDs = append(layerIDs, nb)
			}
			if full {
				break
			}
		}

		// Attach spouses of this layer's nodes at the same distance.
		// They join the result but never the frontier.
		if !full && len(nextFrontier) > 0 {
			spouses, err := t.adj.Spouses(ctx, nextFrontier)
			if err != nil {
				return nil, err
			}
			for _, pid := range nextFrontier {
				for _, sp := range spouses[pid] {
					if _, ok := distances[sp]; ok {
						continue
					}
					if len(distances) >= bounds.MaxNodes {
						full = true
						break
					}
					distances[sp] = d
					layerIDs = append(layerIDs, sp)
				}
				if full {
					break
				}
			}
		}

		if len(layerIDs) > 0 {
			if err := emitLayer(onLayer, d, layerIDs); err != nil {
				return nil, err
			}
		}
		if full {
			return distances, nil
		}

		frontier = nextFrontier
		if len(frontier) == 0 {
			break
		}
	}

	return distances, nil
}

func emitLayer(onLayer LayerFunc, depth int, ids []string) error {
	if onLayer == nil {
		return nil
	}
	return onLayer(depth, ids)
}

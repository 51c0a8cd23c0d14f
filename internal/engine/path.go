package engine

import (
	"context"
	"fmt"

	"github.com/lineage-works/lineage/internal/names"
	"github.com/lineage-works/lineage/internal/storage"
	"github.com/lineage-works/lineage/pkg/types"
)

// PathResult is a relationship-path answer. An empty Path means the two
// persons are not connected within the bounds: a conclusive negative,
// unlike the ErrBoundsExceeded failure.
type PathResult struct {
	From string             `json:"from"`
	To   string             `json:"to"`
	Path []types.PathPerson `json:"path"`
	Hops int                `json:"hops"`
}

// RelationshipPath finds the shortest lineage path between two persons and
// returns privacy-redacted summaries for each step.
//
// The search runs over the undirected parent/child adjacency only; spouse
// edges are excluded because a path answer is about lineage, not marriage.
func (e *Explorer) RelationshipPath(ctx context.Context, fromRef, toRef string, bounds storage.PathBounds) (*PathResult, error) {
	bounds.Normalize()

	fromID, err := e.store.ResolvePersonRef(ctx, fromRef)
	if err != nil {
		return nil, err
	}
	toID, err := e.store.ResolvePersonRef(ctx, toRef)
	if err != nil {
		return nil, err
	}

	pathIDs, err := e.shortestPath(ctx, fromID, toID, bounds)
	if err != nil {
		return nil, err
	}

	result := &PathResult{From: fromRef, To: toRef, Path: []types.PathPerson{}}
	if len(pathIDs) == 0 {
		return result, nil
	}

	people, err := e.store.PeopleByIDs(ctx, pathIDs)
	if err != nil {
		return nil, err
	}

	today := e.now()
	for _, pid := range pathIDs {
		p, ok := people[pid]
		if !ok {
			// An id the BFS saw but the person table no longer has;
			// return the bare id rather than failing the whole path.
			result.Path = append(result.Path, types.PathPerson{ID: pid})
			continue
		}

		summary := types.PathPerson{ID: p.ID, AliasID: p.AliasID}
		if e.policy.IsEffectivelyPrivate(p, today) {
			private := types.DisplayNamePrivate
			summary.DisplayName = &private
		} else {
			summary.DisplayName = names.SmartTitleCase(p.DisplayName)
		}
		result.Path = append(result.Path, summary)
	}

	result.Hops = len(pathIDs) - 1
	return result, nil
}

// shortestPath runs a layered BFS with a predecessor map. It returns the id
// sequence from start to goal inclusive, an empty slice when the frontier
// empties without reaching the goal, and ErrBoundsExceeded when the
// visited-node budget runs out first.
func (e *Explorer) shortestPath(ctx context.Context, start, goal string, bounds storage.PathBounds) ([]string, error) {
	if start == goal {
		return []string{start}, nil
	}

	predecessor := map[string]string{start: ""}
	depth := map[string]int{start: 0}
	frontier := []string{start}
	visited := 1

	for len(frontier) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if visited > bounds.MaxNodes {
			return nil, fmt.Errorf("%w: path search visited more than %d nodes", storage.ErrBoundsExceeded, bounds.MaxNodes)
		}

		// A frontier already at max hops has nothing left to expand.
		if depth[frontier[0]] >= bounds.MaxHops {
			break
		}

		neighbors, err := e.adj.Neighbors(ctx, frontier)
		if err != nil {
			return nil, err
		}

		var nextFrontier []string
		for _, node := range frontier {
			nodeDepth := depth[node]
			if nodeDepth >= bounds.MaxHops {
				continue
			}

			for _, nb := range neighbors[node] {
				if _, seen := predecessor[nb]; seen {
					continue
				}
				predecessor[nb] = node
				depth[nb] = nodeDepth + 1
				visited++

				if nb == goal {
					return reconstructPath(predecessor, start, goal), nil
				}
				nextFrontier = append(nextFrontier, nb)
			}
		}

		frontier = nextFrontier
	}

	return nil, nil
}

// reconstructPath walks the predecessor map from goal back to start and
// reverses the result.
func reconstructPath(predecessor map[string]string, start, goal string) []string {
	path := []string{goal}
	for cur := predecessor[goal]; cur != ""; cur = predecessor[cur] {
		path = append(path, cur)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

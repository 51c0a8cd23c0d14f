package engine

import (
	"time"

	"github.com/lineage-works/lineage/internal/privacy"
	"github.com/lineage-works/lineage/pkg/types"
)

// HistoricPolicy bounds the anchor-based privacy inference pass.
//
// The base privacy policy over-redacts undocumented ancestors who are
// obviously deceased because they sit right next to clearly historical,
// already-public relatives. This pass corrects that without weakening the
// base policy: it only ever promotes nodes that carry no evidence of their
// own and no explicit privacy or living signal.
type HistoricPolicy struct {
	// CutoffYears is how far before "today" a public person's year hint
	// must lie for them to count as a historic anchor.
	CutoffYears int

	// MaxHops bounds the multi-source BFS from the anchors.
	MaxHops int
}

// DefaultHistoricPolicy returns the documented defaults: anchors are public
// people at least 150 years back, and inference reaches at most 3 hops.
func DefaultHistoricPolicy() HistoricPolicy {
	return HistoricPolicy{CutoffYears: 150, MaxHops: 3}
}

// Promote computes the final per-person privacy decisions for a traversal
// result. It is a pure function over the in-view data.
//
// people holds every in-view person; basePrivate the per-person base-policy
// decisions; neighbors the parent/child adjacency restricted to the view
// (spouse edges excluded). A private node is promoted to public only if all
// of: it is within MaxHops of an anchor, it has no usable year hint of its
// own, it is not explicitly flagged private, and it is not explicitly
// flagged or overridden as living. Explicit signals always win.
func (h HistoricPolicy) Promote(
	people map[string]*types.Person,
	basePrivate map[string]bool,
	neighbors map[string][]string,
	pol privacy.Policy,
	today time.Time,
) map[string]bool {
	historicCutoff := today.Year() - h.CutoffYears

	var anchors []string
	for pid, isPrivate := range basePrivate {
		if isPrivate {
			continue
		}
		p, ok := people[pid]
		if !ok {
			continue
		}
		if y, ok := privacy.YearHint(p, today); ok && y <= historicCutoff {
			anchors = append(anchors, pid)
		}
	}

	// Multi-source BFS from all anchors at once; each node gets its
	// distance to the nearest anchor.
	distToAnchor := make(map[string]int, len(anchors))
	queue := make([]string, 0, len(anchors))
	for _, a := range anchors {
		distToAnchor[a] = 0
		queue = append(queue, a)
	}
	for i := 0; i < len(queue); i++ {
		cur := queue[i]
		d := distToAnchor[cur]
		if d >= h.MaxHops {
			continue
		}
		for _, nb := range neighbors[cur] {
			if _, ok := distToAnchor[nb]; ok {
				continue
			}
			distToAnchor[nb] = d + 1
			queue = append(queue, nb)
		}
	}

	final := make(map[string]bool, len(basePrivate))
	for pid, isPrivate := range basePrivate {
		final[pid] = isPrivate
	}

	for pid, isPrivate := range basePrivate {
		if !isPrivate {
			continue
		}
		p, ok := people[pid]
		if !ok {
			continue
		}
		if p.IsPrivate || privacy.ExplicitlyLiving(p) {
			continue
		}
		if _, ok := privacy.YearHint(p, today); ok {
			// The node has evidence of its own; the base decision stands.
			continue
		}
		if d, ok := distToAnchor[pid]; ok && d <= h.MaxHops {
			final[pid] = false
		}
	}

	return final
}

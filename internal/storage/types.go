package storage

import "errors"

var (
	// ErrNotFound indicates that a person or family reference did not
	// resolve. Safe to surface to callers as-is.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput indicates that a parameter is outside its declared
	// range.
	ErrInvalidInput = errors.New("invalid input")

	// ErrBoundsExceeded indicates that a path search visited more nodes
	// than its budget before reaching the goal. Distinct from "no path":
	// the search was inconclusive, not conclusive-negative.
	ErrBoundsExceeded = errors.New("traversal bounds exceeded")
)

// NeighborhoodBounds limits a neighborhood traversal. Reaching MaxNodes
// mid-layer yields a valid, intentionally partial result.
type NeighborhoodBounds struct {
	// Depth is the hop limit (>= 0). Depth 0 returns the root and its
	// direct spouses only.
	Depth int

	// MaxNodes is the node budget (> 0).
	MaxNodes int
}

// Normalize applies defaults for unset bounds.
func (b *NeighborhoodBounds) Normalize() {
	if b.Depth < 0 {
		b.Depth = 0
	}
	if b.MaxNodes < 1 {
		b.MaxNodes = 1000
	}
}

// PathBounds limits a relationship-path search.
type PathBounds struct {
	// MaxHops is the maximum path length in edges.
	MaxHops int

	// MaxNodes is the visited-node budget. Exhausting it before the goal
	// is found fails the search with ErrBoundsExceeded.
	MaxNodes int
}

// Normalize applies defaults for unset bounds.
func (b *PathBounds) Normalize() {
	if b.MaxHops < 1 {
		b.MaxHops = 12
	}
	if b.MaxNodes < 1 {
		b.MaxNodes = 100000
	}
}

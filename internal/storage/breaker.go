package storage

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/sony/gobreaker"

	"github.com/lineage-works/lineage/pkg/types"
)

// ErrStoreUnavailable is returned while the breaker is open and the store is
// being shed. Callers should surface it as a temporary failure.
var ErrStoreUnavailable = errors.New("store temporarily unavailable")

// BreakerStore decorates a TreeStore with a circuit breaker so that a failing
// database sheds load quickly at the API boundary instead of stacking up
// slow queries. NotFound is a normal answer and never counts as a failure.
type BreakerStore struct {
	inner   TreeStore
	breaker *gobreaker.CircuitBreaker
}

// NewBreakerStore wraps a TreeStore. The breaker trips after five
// consecutive infrastructure failures and probes again after 15 seconds.
func NewBreakerStore(inner TreeStore) *BreakerStore {
	settings := gobreaker.Settings{
		Name:        "TreeStore",
		MaxRequests: 2,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("storage: breaker %s: %s -> %s", name, from, to)
		},
		IsSuccessful: func(err error) bool {
			// Domain conditions are answers, not infrastructure faults.
			return err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidInput)
		},
	}

	return &BreakerStore{
		inner:   inner,
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

// execute routes a call through the breaker, mapping open-circuit rejections
// to ErrStoreUnavailable.
func execute[T any](b *BreakerStore, fn func() (T, error)) (T, error) {
	result, err := b.breaker.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		var zero T
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, ErrStoreUnavailable
		}
		if result == nil {
			return zero, err
		}
		return result.(T), err
	}
	return result.(T), nil
}

// ResolvePersonRef implements TreeStore.
func (b *BreakerStore) ResolvePersonRef(ctx context.Context, ref string) (string, error) {
	return execute(b, func() (string, error) { return b.inner.ResolvePersonRef(ctx, ref) })
}

// FamilyByRef implements TreeStore.
func (b *BreakerStore) FamilyByRef(ctx context.Context, ref string) (*types.Family, error) {
	return execute(b, func() (*types.Family, error) { return b.inner.FamilyByRef(ctx, ref) })
}

// PeopleByIDs implements TreeStore.
func (b *BreakerStore) PeopleByIDs(ctx context.Context, ids []string) (map[string]*types.Person, error) {
	return execute(b, func() (map[string]*types.Person, error) { return b.inner.PeopleByIDs(ctx, ids) })
}

// ParentEdgesTouching implements TreeStore.
func (b *BreakerStore) ParentEdgesTouching(ctx context.Context, ids []string) ([]types.ParentEdge, error) {
	return execute(b, func() ([]types.ParentEdge, error) { return b.inner.ParentEdgesTouching(ctx, ids) })
}

// FamiliesTouching implements TreeStore.
func (b *BreakerStore) FamiliesTouching(ctx context.Context, ids []string) ([]*types.Family, error) {
	return execute(b, func() ([]*types.Family, error) { return b.inner.FamiliesTouching(ctx, ids) })
}

// CoupleFamiliesOf implements TreeStore.
func (b *BreakerStore) CoupleFamiliesOf(ctx context.Context, ids []string) ([]*types.Family, error) {
	return execute(b, func() ([]*types.Family, error) { return b.inner.CoupleFamiliesOf(ctx, ids) })
}

// FamiliesByIDs implements TreeStore.
func (b *BreakerStore) FamiliesByIDs(ctx context.Context, ids []string) ([]*types.Family, error) {
	return execute(b, func() ([]*types.Family, error) { return b.inner.FamiliesByIDs(ctx, ids) })
}

// BirthFamilyLinks implements TreeStore.
func (b *BreakerStore) BirthFamilyLinks(ctx context.Context, childIDs []string) ([]types.FamilyChildLink, error) {
	return execute(b, func() ([]types.FamilyChildLink, error) { return b.inner.BirthFamilyLinks(ctx, childIDs) })
}

// ChildCounts implements TreeStore.
func (b *BreakerStore) ChildCounts(ctx context.Context, familyIDs []string) (map[string]int, error) {
	return execute(b, func() (map[string]int, error) { return b.inner.ChildCounts(ctx, familyIDs) })
}

// MarriageDates implements TreeStore.
func (b *BreakerStore) MarriageDates(ctx context.Context, familyIDs []string) (map[string]string, error) {
	return execute(b, func() (map[string]string, error) { return b.inner.MarriageDates(ctx, familyIDs) })
}

// Ping implements TreeStore. Ping bypasses the breaker so that health checks
// can observe recovery while the circuit is open.
func (b *BreakerStore) Ping(ctx context.Context) error {
	return b.inner.Ping(ctx)
}

// Close implements TreeStore.
func (b *BreakerStore) Close() error {
	return b.inner.Close()
}

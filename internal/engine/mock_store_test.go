package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/lineage-works/lineage/internal/privacy"
	"github.com/lineage-works/lineage/internal/storage"
	"github.com/lineage-works/lineage/pkg/types"
)

// mockStore is an in-memory TreeStore for engine tests. Families carry
// their Children inline; direct parent rows are listed separately so tests
// can exercise the merged adjacency.
type mockStore struct {
	people    map[string]*types.Person
	families  []*types.Family
	parents   []types.ParentEdge
	marriages map[string]string
}

func (m *mockStore) ResolvePersonRef(_ context.Context, ref string) (string, error) {
	if _, ok := m.people[ref]; ok {
		return ref, nil
	}
	for _, p := range m.people {
		if p.AliasID != "" && p.AliasID == ref {
			return p.ID, nil
		}
	}
	return "", fmt.Errorf("%w: person %q", storage.ErrNotFound, ref)
}

func (m *mockStore) FamilyByRef(_ context.Context, ref string) (*types.Family, error) {
	for _, f := range m.families {
		if f.ID == ref || (f.AliasID != "" && f.AliasID == ref) {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%w: family %q", storage.ErrNotFound, ref)
}

func (m *mockStore) PeopleByIDs(_ context.Context, ids []string) (map[string]*types.Person, error) {
	out := make(map[string]*types.Person, len(ids))
	for _, id := range ids {
		if p, ok := m.people[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (m *mockStore) ParentEdgesTouching(_ context.Context, ids []string) ([]types.ParentEdge, error) {
	in := idSet(ids)
	var out []types.ParentEdge
	for _, e := range m.parents {
		if in[e.ChildID] || in[e.ParentID] {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockStore) FamiliesTouching(_ context.Context, ids []string) ([]*types.Family, error) {
	in := idSet(ids)
	var out []*types.Family
	for _, f := range m.families {
		if in[f.FatherID] || in[f.MotherID] {
			out = append(out, f)
			continue
		}
		for _, c := range f.Children {
			if in[c] {
				out = append(out, f)
				break
			}
		}
	}
	return out, nil
}

func (m *mockStore) CoupleFamiliesOf(_ context.Context, ids []string) ([]*types.Family, error) {
	in := idSet(ids)
	var out []*types.Family
	for _, f := range m.families {
		if f.FatherID == "" || f.MotherID == "" {
			continue
		}
		if in[f.FatherID] || in[f.MotherID] {
			out = append(out, f)
		}
	}
	return out, nil
}

func (m *mockStore) FamiliesByIDs(_ context.Context, ids []string) ([]*types.Family, error) {
	in := idSet(ids)
	var out []*types.Family
	for _, f := range m.families {
		if in[f.ID] {
			out = append(out, f)
		}
	}
	return out, nil
}

func (m *mockStore) BirthFamilyLinks(_ context.Context, childIDs []string) ([]types.FamilyChildLink, error) {
	in := idSet(childIDs)
	var out []types.FamilyChildLink
	for _, f := range m.families {
		for _, c := range f.Children {
			if in[c] {
				out = append(out, types.FamilyChildLink{FamilyID: f.ID, ChildID: c})
			}
		}
	}
	return out, nil
}

func (m *mockStore) ChildCounts(_ context.Context, familyIDs []string) (map[string]int, error) {
	in := idSet(familyIDs)
	out := make(map[string]int)
	for _, f := range m.families {
		if in[f.ID] && len(f.Children) > 0 {
			out[f.ID] = len(f.Children)
		}
	}
	return out, nil
}

func (m *mockStore) MarriageDates(_ context.Context, familyIDs []string) (map[string]string, error) {
	out := make(map[string]string)
	for _, id := range familyIDs {
		if d, ok := m.marriages[id]; ok {
			out[id] = d
		}
	}
	return out, nil
}

func (m *mockStore) Ping(context.Context) error { return nil }
func (m *mockStore) Close() error               { return nil }

func idSet(ids []string) map[string]bool {
	s := make(map[string]bool, len(ids))
	for _, id := range ids {
		s[id] = true
	}
	return s
}

// testToday is the fixed clock used by engine tests.
var testToday = time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

func datePtr(year, month, day int) *time.Time {
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return &d
}

func boolPtr(b bool) *bool { return &b }

// fourGenerations builds the fixture shared by most engine tests:
//
//	otto (1845) ═ f1 ═ anna (1850)     marriage 1869-05-01
//	               │
//	             bert ═ f2 ═ dora      (bert and dora undated)
//	                     │
//	                   carl (1960)
//
// Plus a ghost family f3 listing anna and dora as children, and zara, a
// person with no relations at all.
func fourGenerations() *mockStore {
	return &mockStore{
		people: map[string]*types.Person{
			"anna": {ID: "anna", AliasID: "I0001", DisplayName: "anna de vries", GivenName: "anna", Surname: "de vries", Gender: "F", BirthDate: datePtr(1850, 3, 1), DeathDate: datePtr(1920, 11, 2)},
			"otto": {ID: "otto", AliasID: "I0002", DisplayName: "otto de vries", BirthText: "abt 1845"},
			"bert": {ID: "bert", AliasID: "I0003", DisplayName: "bert de vries"},
			"dora": {ID: "dora", AliasID: "I0004", DisplayName: "dora jansen"},
			"carl": {ID: "carl", AliasID: "I0005", DisplayName: "carl de vries", BirthDate: datePtr(1960, 7, 4)},
			"zara": {ID: "zara", AliasID: "I0006", DisplayName: "zara solo", BirthDate: datePtr(1840, 1, 1)},
		},
		families: []*types.Family{
			{ID: "f1", AliasID: "F0001", FatherID: "otto", MotherID: "anna", Children: []string{"bert"}},
			{ID: "f2", AliasID: "F0002", FatherID: "bert", MotherID: "dora", Children: []string{"carl"}},
			{ID: "f3", AliasID: "F0003", Children: []string{"anna", "dora"}},
		},
		marriages: map[string]string{"f1": "1869-05-01"},
	}
}

// newTestExplorer wires an Explorer over the store with the default
// policies and the fixed test clock.
func newTestExplorer(store storage.TreeStore) *Explorer {
	e := NewExplorer(store, privacy.DefaultPolicy(), DefaultHistoricPolicy())
	e.now = func() time.Time { return testToday }
	return e
}

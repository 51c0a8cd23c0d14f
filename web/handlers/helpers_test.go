package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/lineage-works/lineage/internal/config"
	"github.com/lineage-works/lineage/internal/engine"
	"github.com/lineage-works/lineage/internal/privacy"
	"github.com/lineage-works/lineage/internal/storage"
	"github.com/lineage-works/lineage/pkg/types"
)

// stubStore is a fixed three-generation tree for handler tests:
// jan (1820-1880) and mia (1825-1890) with child leo (1851-1930), whose
// family with ada (born 1955, private) has child kim (born 1980).
type stubStore struct {
	pingErr error
}

func (s *stubStore) people() map[string]*types.Person {
	d := func(y int) *time.Time {
		t := time.Date(y, 1, 1, 0, 0, 0, 0, time.UTC)
		return &t
	}
	return map[string]*types.Person{
		"jan": {ID: "jan", AliasID: "I0001", DisplayName: "jan bakker", BirthDate: d(1820), DeathDate: d(1880)},
		"mia": {ID: "mia", AliasID: "I0002", DisplayName: "mia bakker", BirthDate: d(1825), DeathDate: d(1890)},
		"leo": {ID: "leo", AliasID: "I0003", DisplayName: "leo bakker", BirthDate: d(1851), DeathDate: d(1930)},
		"ada": {ID: "ada", AliasID: "I0004", DisplayName: "ada smit", BirthDate: d(1955)},
		"kim": {ID: "kim", AliasID: "I0005", DisplayName: "kim bakker", BirthDate: d(1980)},
	}
}

func (s *stubStore) fams() []*types.Family {
	return []*types.Family{
		{ID: "f1", AliasID: "F0001", FatherID: "jan", MotherID: "mia", Children: []string{"leo"}},
		{ID: "f2", AliasID: "F0002", FatherID: "leo", MotherID: "ada", Children: []string{"kim"}},
		{ID: "f9", AliasID: "F0009", Children: []string{"jan"}},
	}
}

func (s *stubStore) ResolvePersonRef(_ context.Context, ref string) (string, error) {
	for id, p := range s.people() {
		if id == ref || p.AliasID == ref {
			return id, nil
		}
	}
	return "", fmt.Errorf("%w: person %q", storage.ErrNotFound, ref)
}

func (s *stubStore) FamilyByRef(_ context.Context, ref string) (*types.Family, error) {
	for _, f := range s.fams() {
		if f.ID == ref || f.AliasID == ref {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%w: family %q", storage.ErrNotFound, ref)
}

func (s *stubStore) PeopleByIDs(_ context.Context, ids []string) (map[string]*types.Person, error) {
	all := s.people()
	out := make(map[string]*types.Person, len(ids))
	for _, id := range ids {
		if p, ok := all[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (s *stubStore) ParentEdgesTouching(context.Context, []string) ([]types.ParentEdge, error) {
	return nil, nil
}

func (s *stubStore) FamiliesTouching(_ context.Context, ids []string) ([]*types.Family, error) {
	in := make(map[string]bool, len(ids))
	for _, id := range ids {
		in[id] = true
	}
	var out []*types.Family
	for _, f := range s.fams() {
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

func (s *stubStore) CoupleFamiliesOf(_ context.Context, ids []string) ([]*types.Family, error) {
	in := make(map[string]bool, len(ids))
	for _, id := range ids {
		in[id] = true
	}
	var out []*types.Family
	for _, f := range s.fams() {
		if f.FatherID != "" && f.MotherID != "" && (in[f.FatherID] || in[f.MotherID]) {
			out = append(out, f)
		}
	}
	return out, nil
}

func (s *stubStore) FamiliesByIDs(_ context.Context, ids []string) ([]*types.Family, error) {
	in := make(map[string]bool, len(ids))
	for _, id := range ids {
		in[id] = true
	}
	var out []*types.Family
	for _, f := range s.fams() {
		if in[f.ID] {
			out = append(out, f)
		}
	}
	return out, nil
}

func (s *stubStore) BirthFamilyLinks(_ context.Context, childIDs []string) ([]types.FamilyChildLink, error) {
	in := make(map[string]bool, len(childIDs))
	for _, id := range childIDs {
		in[id] = true
	}
	var out []types.FamilyChildLink
	for _, f := range s.fams() {
		for _, c := range f.Children {
			if in[c] {
				out = append(out, types.FamilyChildLink{FamilyID: f.ID, ChildID: c})
			}
		}
	}
	return out, nil
}

func (s *stubStore) ChildCounts(_ context.Context, familyIDs []string) (map[string]int, error) {
	in := make(map[string]bool, len(familyIDs))
	for _, id := range familyIDs {
		in[id] = true
	}
	out := make(map[string]int)
	for _, f := range s.fams() {
		if in[f.ID] && len(f.Children) > 0 {
			out[f.ID] = len(f.Children)
		}
	}
	return out, nil
}

func (s *stubStore) MarriageDates(_ context.Context, familyIDs []string) (map[string]string, error) {
	out := make(map[string]string)
	for _, id := range familyIDs {
		if id == "f1" {
			out[id] = "1849-06-12"
		}
	}
	return out, nil
}

func (s *stubStore) Ping(context.Context) error { return s.pingErr }
func (s *stubStore) Close() error               { return nil }

func newTestHandlers(store storage.TreeStore) *APIHandlers {
	cfg, _ := config.LoadConfig()
	explorer := engine.NewExplorer(store, privacy.DefaultPolicy(), engine.DefaultHistoricPolicy())
	return NewAPIHandlers(explorer, store, cfg)
}

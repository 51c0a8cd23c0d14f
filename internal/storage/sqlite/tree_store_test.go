package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lineage-works/lineage/internal/storage"
)

// newSeededStore creates a store with a small fixture:
//
//	piet ═ f1 ═ neel  (marriage event, direct family link)
//	       │
//	      joop ═ f2 ═ riet  (marriage only via shared person events)
//	              │
//	            hans
//
// Plus a direct person_parent row (hans → opa) with no family record.
func newSeededStore(t *testing.T) *TreeStore {
	t.Helper()

	store, err := NewTreeStore(filepath.Join(t.TempDir(), "tree.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	db := store.GetDB()
	stmts := []string{
		`INSERT INTO person (id, alias_id, display_name, given_name, surname, gender, birth_date, death_date, is_living, is_private) VALUES
			('piet', 'I0001', 'piet de boer', 'piet', 'de boer', 'M', '1840-03-02', '1910-06-30', 0, 0),
			('neel', 'I0002', 'neel de boer', 'neel', 'visser', 'F', '1844-01-15', NULL, NULL, 0),
			('joop', 'I0003', 'joop de boer', 'joop', 'de boer', 'M', '1870-09-09', '1940-02-02', 0, 0),
			('riet', 'I0004', 'riet de boer', 'riet', 'mulder', 'F', NULL, NULL, NULL, 0),
			('hans', 'I0005', 'hans de boer', 'hans', 'de boer', 'M', '1902-12-24', NULL, NULL, 1),
			('opa',  'I0006', 'opa mulder', NULL, NULL, 'M', NULL, NULL, NULL, 0)`,
		`INSERT INTO family (id, alias_id, father_id, mother_id, is_private) VALUES
			('f1', 'F0001', 'piet', 'neel', 0),
			('f2', 'F0002', 'joop', 'riet', 0),
			('f9', 'F0009', '', '', 0)`,
		`INSERT INTO family_child (family_id, child_id) VALUES
			('f1', 'joop'),
			('f2', 'hans'),
			('f9', 'riet')`,
		`INSERT INTO person_parent (child_id, parent_id) VALUES
			('hans', 'opa')`,
		`INSERT INTO event (id, event_type, event_date, event_date_text, is_private) VALUES
			('e1', 'Marriage', '1868-05-20', NULL, 0),
			('e2', 'Wedding', NULL, 'rond 1895', 0),
			('e3', 'Marriage', '1869-01-01', NULL, 1)`,
		`INSERT INTO family_event (family_id, event_id) VALUES
			('f1', 'e1'),
			('f1', 'e3')`,
		`INSERT INTO person_event (person_id, event_id) VALUES
			('joop', 'e2'),
			('riet', 'e2')`,
	}
	for _, stmt := range stmts {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
	return store
}

func TestResolvePersonRef(t *testing.T) {
	store := newSeededStore(t)
	ctx := context.Background()

	id, err := store.ResolvePersonRef(ctx, "piet")
	require.NoError(t, err)
	assert.Equal(t, "piet", id)

	id, err = store.ResolvePersonRef(ctx, "I0003")
	require.NoError(t, err)
	assert.Equal(t, "joop", id)

	_, err = store.ResolvePersonRef(ctx, "I9999")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestFamilyByRef(t *testing.T) {
	store := newSeededStore(t)
	ctx := context.Background()

	fam, err := store.FamilyByRef(ctx, "F0001")
	require.NoError(t, err)
	assert.Equal(t, "f1", fam.ID)
	assert.Equal(t, "piet", fam.FatherID)
	assert.Equal(t, "neel", fam.MotherID)
	assert.Equal(t, []string{"joop"}, fam.Children)

	_, err = store.FamilyByRef(ctx, "F1234")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestPeopleByIDs(t *testing.T) {
	store := newSeededStore(t)

	people, err := store.PeopleByIDs(context.Background(), []string{"piet", "riet", "ghost"})
	require.NoError(t, err)
	require.Len(t, people, 2, "unknown ids are silently absent")

	piet := people["piet"]
	require.NotNil(t, piet)
	assert.Equal(t, "I0001", piet.AliasID)
	require.NotNil(t, piet.BirthDate)
	assert.Equal(t, time.Date(1840, 3, 2, 0, 0, 0, 0, time.UTC), *piet.BirthDate)
	require.NotNil(t, piet.IsLiving)
	assert.False(t, *piet.IsLiving)

	riet := people["riet"]
	require.NotNil(t, riet)
	assert.Nil(t, riet.BirthDate)
	assert.Nil(t, riet.IsLiving)
	assert.False(t, riet.IsPrivate)
}

func TestPeopleByIDs_PrivateFlag(t *testing.T) {
	store := newSeededStore(t)

	people, err := store.PeopleByIDs(context.Background(), []string{"hans"})
	require.NoError(t, err)
	require.Contains(t, people, "hans")
	assert.True(t, people["hans"].IsPrivate)
}

func TestParentEdgesTouching(t *testing.T) {
	store := newSeededStore(t)

	edges, err := store.ParentEdgesTouching(context.Background(), []string{"hans"})
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, "hans", edges[0].ChildID)
	assert.Equal(t, "opa", edges[0].ParentID)
}

func TestFamiliesTouching(t *testing.T) {
	store := newSeededStore(t)

	families, err := store.FamiliesTouching(context.Background(), []string{"joop"})
	require.NoError(t, err)

	ids := make(map[string][]string)
	for _, f := range families {
		ids[f.ID] = f.Children
	}
	require.Len(t, ids, 2, "joop is a child in f1 and a father in f2")
	assert.Equal(t, []string{"joop"}, ids["f1"])
	assert.Equal(t, []string{"hans"}, ids["f2"])
}

func TestCoupleFamiliesOf(t *testing.T) {
	store := newSeededStore(t)

	families, err := store.CoupleFamiliesOf(context.Background(), []string{"riet"})
	require.NoError(t, err)
	require.Len(t, families, 1)
	assert.Equal(t, "f2", families[0].ID)
}

func TestBirthFamilyLinks(t *testing.T) {
	store := newSeededStore(t)

	links, err := store.BirthFamilyLinks(context.Background(), []string{"riet", "joop"})
	require.NoError(t, err)

	byChild := make(map[string]string)
	for _, l := range links {
		byChild[l.ChildID] = l.FamilyID
	}
	assert.Equal(t, "f1", byChild["joop"])
	assert.Equal(t, "f9", byChild["riet"])
}

func TestChildCounts(t *testing.T) {
	store := newSeededStore(t)

	counts, err := store.ChildCounts(context.Background(), []string{"f1", "f2", "f9"})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"f1": 1, "f2": 1, "f9": 1}, counts)
}

func TestMarriageDates_DirectEvent(t *testing.T) {
	store := newSeededStore(t)

	dates, err := store.MarriageDates(context.Background(), []string{"f1"})
	require.NoError(t, err)
	assert.Equal(t, "1868-05-20", dates["f1"], "the private event must not win")
}

func TestMarriageDates_SharedPersonEventFallback(t *testing.T) {
	store := newSeededStore(t)

	dates, err := store.MarriageDates(context.Background(), []string{"f2"})
	require.NoError(t, err)
	assert.Equal(t, "rond 1895", dates["f2"], "falls back to the ceremony both parents attended")
}

func TestMarriageDates_NoEvidence(t *testing.T) {
	store := newSeededStore(t)

	dates, err := store.MarriageDates(context.Background(), []string{"f9"})
	require.NoError(t, err)
	assert.NotContains(t, dates, "f9")
}

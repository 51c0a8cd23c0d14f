package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lineage-works/lineage/internal/privacy"
	"github.com/lineage-works/lineage/pkg/types"
)

func chain(pairs ...[2]string) map[string][]string {
	out := make(map[string][]string)
	for _, p := range pairs {
		out[p[0]] = append(out[p[0]], p[1])
		out[p[1]] = append(out[p[1]], p[0])
	}
	return out
}

func TestPromote_UndatedRelativesOfHistoricAnchors(t *testing.T) {
	people := map[string]*types.Person{
		"anchor": {ID: "anchor", BirthDate: datePtr(1850, 1, 1)},
		"hop1":   {ID: "hop1"},
		"hop2":   {ID: "hop2"},
		"hop3":   {ID: "hop3"},
		"hop4":   {ID: "hop4"},
	}
	basePrivate := map[string]bool{
		"anchor": false,
		"hop1":   true,
		"hop2":   true,
		"hop3":   true,
		"hop4":   true,
	}
	neighbors := chain(
		[2]string{"anchor", "hop1"},
		[2]string{"hop1", "hop2"},
		[2]string{"hop2", "hop3"},
		[2]string{"hop3", "hop4"},
	)

	got := DefaultHistoricPolicy().Promote(people, basePrivate, neighbors, privacy.DefaultPolicy(), testToday)

	assert.False(t, got["anchor"])
	assert.False(t, got["hop1"])
	assert.False(t, got["hop2"])
	assert.False(t, got["hop3"])
	assert.True(t, got["hop4"], "beyond the hop limit the base decision stands")
}

func TestPromote_ExplicitSignalsAlwaysWin(t *testing.T) {
	people := map[string]*types.Person{
		"anchor":  {ID: "anchor", BirthDate: datePtr(1820, 1, 1)},
		"flagged": {ID: "flagged", IsPrivate: true},
		"living":  {ID: "living", IsLiving: boolPtr(true)},
		"dated":   {ID: "dated", BirthText: "geb 1950"},
		"clean":   {ID: "clean"},
	}
	basePrivate := map[string]bool{
		"anchor":  false,
		"flagged": true,
		"living":  true,
		"dated":   true,
		"clean":   true,
	}
	neighbors := chain(
		[2]string{"anchor", "flagged"},
		[2]string{"anchor", "living"},
		[2]string{"anchor", "dated"},
		[2]string{"anchor", "clean"},
	)

	got := DefaultHistoricPolicy().Promote(people, basePrivate, neighbors, privacy.DefaultPolicy(), testToday)

	assert.True(t, got["flagged"], "an explicit private flag is terminal")
	assert.True(t, got["living"], "an explicit living flag is terminal")
	assert.True(t, got["dated"], "a person with their own year hint keeps the base decision")
	assert.False(t, got["clean"])
}

func TestPromote_RecentPublicPeopleAreNotAnchors(t *testing.T) {
	// Public but well inside the historic cutoff: no promotion radiates
	// from them.
	people := map[string]*types.Person{
		"recent": {ID: "recent", BirthDate: datePtr(1920, 1, 1), DeathDate: datePtr(1990, 1, 1)},
		"kin":    {ID: "kin"},
	}
	basePrivate := map[string]bool{"recent": false, "kin": true}
	neighbors := chain([2]string{"recent", "kin"})

	got := DefaultHistoricPolicy().Promote(people, basePrivate, neighbors, privacy.DefaultPolicy(), testToday)

	assert.True(t, got["kin"])
}

func TestPromote_NoAnchorsIsANoOp(t *testing.T) {
	people := map[string]*types.Person{
		"a": {ID: "a"},
		"b": {ID: "b"},
	}
	basePrivate := map[string]bool{"a": true, "b": true}

	got := DefaultHistoricPolicy().Promote(people, basePrivate, chain([2]string{"a", "b"}), privacy.DefaultPolicy(), testToday)

	assert.Equal(t, basePrivate, got)
}

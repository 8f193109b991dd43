package domain

import (
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "demoprep/internal/platform/errors"
)

func fixture() Catalog {
	return Catalog{
		Questions: []Question{
			{ID: "q-1", Question: "Who builds reports?", Category: "Current State", Industries: []string{"retail"}},
			{ID: "q-2", Question: "Which warehouse?", Category: "Data", Industries: []string{"healthcare", "retail"}},
		},
		UseCases: []UseCase{{ID: "uc-1", Name: "Self-Service", Category: "BI"}},
		Competitors: map[string]Competitor{
			"zeta":  {Name: "Zeta BI", Differentiators: []Differentiator{{ID: "d-z1", Feature: "Search"}}},
			"alpha": {Name: "Alpha", Differentiators: []Differentiator{{ID: "d-a1", Feature: "Live query"}, {ID: "d-a2", Feature: "Adoption"}}},
		},
		Objections: []Objection{{ID: "o-1", Objection: "Too expensive", Category: "Pricing"}},
	}
}

func TestDifferentiatorsFlattenInCompetitorOrder(t *testing.T) {
	t.Parallel()
	diffs := fixture().Differentiators()
	require.Len(t, diffs, 3)
	require.Equal(t, []string{"d-a1", "d-a2", "d-z1"}, []string{diffs[0].ID, diffs[1].ID, diffs[2].ID})
	require.Equal(t, "alpha", diffs[0].CompetitorID)
	require.Equal(t, "Zeta BI", diffs[2].CompetitorName)
}

func TestResolveWithoutSelectionTakesEverything(t *testing.T) {
	t.Parallel()
	b := fixture().Resolve(Selection{})
	require.Equal(t, 7, b.Total())
}

func TestResolveKeepsCatalogOrderAndSkipsUnknownIDs(t *testing.T) {
	t.Parallel()
	b := fixture().Resolve(Selection{
		Discovery:       []string{"q-2", "q-1", "q-404"},
		Differentiators: []string{"d-z1"},
	})
	require.Len(t, b.Discovery, 2)
	require.Equal(t, "q-1", b.Discovery[0].ID)
	require.Empty(t, b.UseCases)
	require.Len(t, b.Differentiators, 1)
	require.Equal(t, "Zeta BI", b.Differentiators[0].CompetitorName)
	require.Empty(t, b.Objections)
}

func TestValidateRejectsDuplicateIDs(t *testing.T) {
	t.Parallel()
	c := fixture()
	require.NoError(t, c.Validate())
	c.Objections = append(c.Objections, Objection{ID: "o-1"})
	require.ErrorIs(t, c.Validate(), apperrors.ErrInvalidInput)

	c = fixture()
	c.UseCases = append(c.UseCases, UseCase{Name: "nameless"})
	require.ErrorIs(t, c.Validate(), apperrors.ErrInvalidInput)
}

func TestSearchFiltersByQueryAndIndustry(t *testing.T) {
	t.Parallel()
	c := fixture()
	items, err := c.Search(CategoryDiscovery, "", "healthcare")
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "q-2", items[0].ID)

	items, err = c.Search(CategoryDifferentiators, "LIVE", "")
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "Alpha", items[0].Group)

	_, err = c.Search("pricing", "", "")
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)

	require.Equal(t, []string{"healthcare", "retail"}, c.Industries())
}

func TestFindAcrossCategories(t *testing.T) {
	t.Parallel()
	item, ok := fixture().Find("o-1")
	require.True(t, ok)
	require.Equal(t, CategoryObjections, item.Category)
	_, ok = fixture().Find("nope")
	require.False(t, ok)
}

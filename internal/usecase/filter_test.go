package usecase

import (
	"testing"

	"newsapp/internal/domain"

	"github.com/stretchr/testify/assert"
)

func article(title, source, published string) domain.Article {
	return domain.Article{
		Title:       title,
		Description: "d",
		URL:         "https://example.com/" + title,
		ImageURL:    "https://example.com/img.jpg",
		Source:      domain.SourceRef{Name: source},
		PublishedAt: published,
	}
}

func titles(articles []domain.Article) []string {
	out := make([]string, len(articles))
	for i, a := range articles {
		out[i] = a.Title
	}
	return out
}

func scenarioSet() []domain.Article {
	return []domain.Article{
		article("first", "A", "2024-01-01T08:00:00Z"),
		article("third", "B", "2024-01-03T08:00:00Z"),
		article("second", "A", "2024-01-02T08:00:00Z"),
	}
}

func TestDeriveVisible_SortsByRecency(t *testing.T) {
	visible := DeriveVisible(scenarioSet(), "All", "All")

	assert.Equal(t, []string{"third", "second", "first"}, titles(visible))
}

func TestDeriveVisible_SourceFilter(t *testing.T) {
	visible := DeriveVisible(scenarioSet(), "A", "All")

	assert.Equal(t, []string{"second", "first"}, titles(visible))
}

func TestDeriveVisible_DateFilter(t *testing.T) {
	visible := DeriveVisible(scenarioSet(), domain.FilterAll, "2024-01-02")

	assert.Equal(t, []string{"second"}, titles(visible))
}

func TestDeriveVisible_UnknownSource(t *testing.T) {
	visible := DeriveVisible(scenarioSet(), "Reuters", "All")

	assert.Empty(t, visible)
}

func TestDeriveVisible_EmptyFilterMeansAll(t *testing.T) {
	assert.Equal(t, DeriveVisible(scenarioSet(), "All", "All"), DeriveVisible(scenarioSet(), "", ""))
}

func TestDeriveVisible_IdempotentAndPure(t *testing.T) {
	canonical := scenarioSet()
	before := append([]domain.Article(nil), canonical...)

	once := DeriveVisible(canonical, "All", "All")
	twice := DeriveVisible(once, "All", "All")

	assert.Equal(t, once, twice)
	assert.Equal(t, before, canonical, "input must not be reordered")
	assert.ElementsMatch(t, canonical, once)
}

func TestDeriveVisible_StableTiesAndInvalidDatesLast(t *testing.T) {
	canonical := []domain.Article{
		article("broken", "A", "not a date"),
		article("tie-1", "A", "2024-01-02T00:00:00Z"),
		article("tie-2", "B", "2024-01-02T00:00:00+00:00"),
		article("newest", "B", "2024-01-05T00:00:00Z"),
	}

	visible := DeriveVisible(canonical, "All", "All")

	assert.Equal(t, []string{"newest", "tie-1", "tie-2", "broken"}, titles(visible))
}

func TestDeriveVisible_DateFilterUsesUTCDate(t *testing.T) {
	canonical := []domain.Article{
		article("late-local", "A", "2024-01-03T01:00:00+03:00"),
	}

	assert.Len(t, DeriveVisible(canonical, "All", "2024-01-02"), 1)
	assert.Empty(t, DeriveVisible(canonical, "All", "2024-01-03"))
}

func TestDeriveFacets_Distinct(t *testing.T) {
	canonical := []domain.Article{
		article("1", "A", "2024-01-01T08:00:00Z"),
		article("2", "B", "2024-01-01T09:00:00Z"),
		article("3", "A", "2024-01-02T08:00:00Z"),
		article("4", "C", "garbage"),
	}

	facets := DeriveFacets(canonical)

	assert.Equal(t, []string{"A", "B", "C"}, facets.Sources)
	assert.Equal(t, []string{"2024-01-01", "2024-01-02"}, facets.PublishedDates)
}

func TestDeriveFacets_Empty(t *testing.T) {
	facets := DeriveFacets(nil)

	assert.NotNil(t, facets.Sources)
	assert.Empty(t, facets.Sources)
	assert.Empty(t, facets.PublishedDates)
}

package usecase

import (
	"slices"

	"newsapp/internal/domain"
)

// DeriveFacets собирает уникальные источники и календарные даты в порядке первого появления.
// Статьи с неразборчивой датой не дают значения в PublishedDates.
func DeriveFacets(articles []domain.Article) domain.Facets {
	facets := domain.Facets{
		Sources:        []string{},
		PublishedDates: []string{},
	}
	seenSource := make(map[string]struct{})
	seenDate := make(map[string]struct{})
	for _, a := range articles {
		if _, ok := seenSource[a.Source.Name]; !ok {
			seenSource[a.Source.Name] = struct{}{}
			facets.Sources = append(facets.Sources, a.Source.Name)
		}
		date := a.CalendarDate()
		if date == "" {
			continue
		}
		if _, ok := seenDate[date]; !ok {
			seenDate[date] = struct{}{}
			facets.PublishedDates = append(facets.PublishedDates, date)
		}
	}
	return facets
}

// DeriveVisible вычисляет видимый список из канонического набора и текущих фильтров.
// "All" или пустая строка отключают соответствующий фильтр. Результат отсортирован
// по времени публикации от новых к старым; сортировка устойчивая, статьи с
// неразборчивой датой идут в конце. Входной срез не изменяется.
func DeriveVisible(canonical []domain.Article, sourceFilter, dateFilter string) []domain.Article {
	type entry struct {
		article domain.Article
		unix    int64
		valid   bool
	}
	entries := make([]entry, 0, len(canonical))
	for _, a := range canonical {
		if !isAll(sourceFilter) && a.Source.Name != sourceFilter {
			continue
		}
		if !isAll(dateFilter) && a.CalendarDate() != dateFilter {
			continue
		}
		t, ok := a.PublishedTime()
		entries = append(entries, entry{article: a, unix: t.UnixNano(), valid: ok})
	}
	slices.SortStableFunc(entries, func(x, y entry) int {
		switch {
		case x.valid && !y.valid:
			return -1
		case !x.valid && y.valid:
			return 1
		case x.unix > y.unix:
			return -1
		case x.unix < y.unix:
			return 1
		}
		return 0
	})
	visible := make([]domain.Article, len(entries))
	for i, e := range entries {
		visible[i] = e.article
	}
	return visible
}

// isAll сообщает, что фильтр не задан.
func isAll(filter string) bool {
	return filter == "" || filter == domain.FilterAll
}

package domain

import (
	"errors"
	"fmt"
)

// Category выбирает, какие источники участвуют в поиске.
type Category string

const (
	CategoryAll      Category = "All"
	CategoryNewsAPI  Category = "NewsAPI"
	CategoryNYTimes  Category = "New York Times"
	CategoryGuardian Category = "The Guardian"
)

// FilterAll значение фильтра источника или даты, которое ничего не отсекает.
const FilterAll = "All"

var ErrUnknownCategory = errors.New("unknown category")

// Categories возвращает все допустимые категории в порядке отображения.
func Categories() []Category {
	return []Category{CategoryAll, CategoryNewsAPI, CategoryNYTimes, CategoryGuardian}
}

// ParseCategory проверяет строковое значение категории.
// Пустая строка трактуется как All.
func ParseCategory(s string) (Category, error) {
	if s == "" {
		return CategoryAll, nil
	}
	for _, c := range Categories() {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// Includes сообщает, входит ли источник other в выборку категории c.
func (c Category) Includes(other Category) bool {
	return c == CategoryAll || c == other
}

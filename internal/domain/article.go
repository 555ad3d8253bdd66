package domain

import (
	"strings"
	"time"
)

// SourceRef описывает происхождение статьи.
type SourceRef struct {
	Name string `json:"name"`
}

// Article представляет нормализованную статью, общую для всех источников.
// Поля JSON совпадают с моделью, которую отдает API клиенту.
type Article struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	ImageURL    string    `json:"urlToImage"`
	Source      SourceRef `json:"source"`
	PublishedAt string    `json:"publishedAt"`
}

// Complete сообщает, заполнены ли все четыре обязательных поля.
// Статья без любого из них не попадает в результат.
func (a Article) Complete() bool {
	return a.Title != "" && a.Description != "" && a.URL != "" && a.ImageURL != ""
}

// PublishedTime разбирает PublishedAt как момент времени.
// Второе значение false, если строку не удалось разобрать.
func (a Article) PublishedTime() (time.Time, bool) {
	return ParseTimestamp(a.PublishedAt)
}

// CalendarDate возвращает дату публикации в UTC в формате YYYY-MM-DD
// или пустую строку для неразборчивой даты.
func (a Article) CalendarDate() string {
	t, ok := a.PublishedTime()
	if !ok {
		return ""
	}
	return t.UTC().Format(DateLayout)
}

// DateLayout формат календарной даты для группировки и фильтрации.
const DateLayout = "2006-01-02"

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05.000-0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	DateLayout,
}

// ParseTimestamp разбирает дату в одном из форматов, которые встречаются в ответах API.
// NYT отдает смещение без двоеточия ("+0000"), остальные - RFC3339.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Facets содержит производные списки уникальных значений для селекторов фильтра.
type Facets struct {
	Sources        []string `json:"sources"`
	PublishedDates []string `json:"publishedDates"`
}

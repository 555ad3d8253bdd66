package source

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"newsapp/internal/domain"
)

const (
	DefaultNYTimesBaseURL = "https://api.nytimes.com"
	nytimesSourceName     = "New York Times"
	nytimesMediaHost      = "https://www.nytimes.com/"
)

// nytimesResponse ответ Article Search API; документы лежат в response.docs.
type nytimesResponse struct {
	Response *struct {
		Docs []nytimesDoc `json:"docs"`
	} `json:"response"`
}

// nytimesDoc документ поиска; multimedia бывает массивом или объектом.
type nytimesDoc struct {
	Headline *struct {
		Main *string `json:"main"`
	} `json:"headline"`
	Abstract   *string         `json:"abstract"`
	WebURL     *string         `json:"web_url"`
	Multimedia json.RawMessage `json:"multimedia"`
	PubDate    *string         `json:"pub_date"`
}

// nytimesMedia элемент multimedia; url бывает относительным.
type nytimesMedia struct {
	URL *string `json:"url"`
}

// NYTimes адаптер для Article Search API New York Times.
type NYTimes struct {
	settings Settings
	log      *slog.Logger
}

// NewNYTimes создает адаптер New York Times. Пустой BaseURL заменяется адресом по умолчанию.
func NewNYTimes(settings Settings, log *slog.Logger) *NYTimes {
	if settings.BaseURL == "" {
		settings.BaseURL = DefaultNYTimesBaseURL
	}
	return &NYTimes{
		settings: settings,
		log:      log.With(slog.String("component", "source"), slog.String("source", string(domain.CategoryNYTimes))),
	}
}

// Category возвращает категорию, к которой относится источник.
func (n *NYTimes) Category() domain.Category { return domain.CategoryNYTimes }

// RequestURL строит запрос articlesearch.json с ключом api-key.
func (n *NYTimes) RequestURL(term string) (string, error) {
	params := url.Values{}
	params.Set("q", term)
	params.Set("api-key", n.settings.APIKey)
	return n.settings.endpoint("/svc/search/v2/articlesearch.json", params)
}

// Normalize берет заголовок из headline.main, описание из abstract без изменений
// и первую картинку из multimedia. Источник всегда "New York Times".
func (n *NYTimes) Normalize(ctx context.Context, r io.Reader) ([]domain.Article, error) {
	var resp nytimesResponse
	if err := decode(ctx, r, &resp); err != nil {
		n.log.Error("Error decoding response", slog.Any("error", err))
		return nil, err
	}
	if resp.Response == nil {
		n.log.Warn("Response has no docs container")
		return []domain.Article{}, nil
	}
	articles := make([]domain.Article, 0, len(resp.Response.Docs))
	for _, doc := range resp.Response.Docs {
		var title string
		if doc.Headline != nil {
			title = stringOr(doc.Headline.Main, "")
		}
		articles = append(articles, domain.Article{
			Title:       title,
			Description: stringOr(doc.Abstract, ""),
			URL:         stringOr(doc.WebURL, ""),
			ImageURL:    firstMediaURL(doc.Multimedia),
			Source:      domain.SourceRef{Name: nytimesSourceName},
			PublishedAt: stringOr(doc.PubDate, ""),
		})
	}
	return keepComplete(n.log, articles), nil
}

// firstMediaURL достает URL первой картинки. Поддерживаются массив медиа
// и объект вида {"default": {"url": ...}}; все остальное дает пустую строку.
func firstMediaURL(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var list []nytimesMedia
	if err := json.Unmarshal(raw, &list); err == nil {
		if len(list) == 0 {
			return ""
		}
		return absoluteMediaURL(stringOr(list[0].URL, ""))
	}
	var obj struct {
		Default *nytimesMedia `json:"default"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Default != nil {
		return absoluteMediaURL(stringOr(obj.Default.URL, ""))
	}
	return ""
}

// absoluteMediaURL дополняет относительные пути вида "images/2024/..." хостом nytimes.com.
func absoluteMediaURL(u string) string {
	if u == "" || strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return u
	}
	return nytimesMediaHost + strings.TrimLeft(u, "/")
}

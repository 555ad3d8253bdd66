package source

import (
	"context"
	"io"
	"log/slog"
	"net/url"

	"newsapp/internal/domain"
)

const (
	DefaultGuardianBaseURL = "https://content.guardianapis.com"
	guardianSourceName     = "The Guardian"
)

// guardianResponse ответ Content API; статьи лежат в response.results.
type guardianResponse struct {
	Response *struct {
		Results []guardianResult `json:"results"`
	} `json:"response"`
}

// guardianResult одна статья из results.
type guardianResult struct {
	WebTitle           *string         `json:"webTitle"`
	WebURL             *string         `json:"webUrl"`
	WebPublicationDate *string         `json:"webPublicationDate"`
	Fields             *guardianFields `json:"fields"`
}

// guardianFields поля, запрошенные через show-fields.
type guardianFields struct {
	TrailText *string `json:"trailText"`
	Thumbnail *string `json:"thumbnail"`
}

// Guardian адаптер для Content API The Guardian (/search).
type Guardian struct {
	settings Settings
	log      *slog.Logger
}

// NewGuardian создает адаптер The Guardian. Пустой BaseURL заменяется адресом по умолчанию.
func NewGuardian(settings Settings, log *slog.Logger) *Guardian {
	if settings.BaseURL == "" {
		settings.BaseURL = DefaultGuardianBaseURL
	}
	return &Guardian{
		settings: settings,
		log:      log.With(slog.String("component", "source"), slog.String("source", string(domain.CategoryGuardian))),
	}
}

// Category возвращает категорию, к которой относится источник.
func (g *Guardian) Category() domain.Category { return domain.CategoryGuardian }

// RequestURL строит запрос /search с первой страницей и полями trailText и thumbnail.
func (g *Guardian) RequestURL(term string) (string, error) {
	params := url.Values{}
	params.Set("page", "1")
	params.Set("q", term)
	params.Set("api-key", g.settings.APIKey)
	params.Set("show-fields", "trailText,thumbnail")
	return g.settings.endpoint("/search", params)
}

// Normalize берет описание и картинку из необязательного блока fields.
// trailText приходит с HTML-разметкой.
func (g *Guardian) Normalize(ctx context.Context, r io.Reader) ([]domain.Article, error) {
	var resp guardianResponse
	if err := decode(ctx, r, &resp); err != nil {
		g.log.Error("Error decoding response", slog.Any("error", err))
		return nil, err
	}
	if resp.Response == nil {
		g.log.Warn("Response has no results container")
		return []domain.Article{}, nil
	}
	articles := make([]domain.Article, 0, len(resp.Response.Results))
	for _, res := range resp.Response.Results {
		var trailText, thumbnail string
		if res.Fields != nil {
			trailText = stringOr(res.Fields.TrailText, "")
			thumbnail = stringOr(res.Fields.Thumbnail, "")
		}
		articles = append(articles, domain.Article{
			Title:       stringOr(res.WebTitle, ""),
			Description: htmlText(trailText),
			URL:         stringOr(res.WebURL, ""),
			ImageURL:    thumbnail,
			Source:      domain.SourceRef{Name: guardianSourceName},
			PublishedAt: stringOr(res.WebPublicationDate, ""),
		})
	}
	return keepComplete(g.log, articles), nil
}

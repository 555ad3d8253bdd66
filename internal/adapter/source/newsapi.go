package source

import (
	"context"
	"io"
	"log/slog"
	"net/url"

	"newsapp/internal/domain"
)

const DefaultNewsAPIBaseURL = "https://newsapi.org"

// newsAPIResponse ответ /v2/everything. При ошибке API поле articles отсутствует.
type newsAPIResponse struct {
	Status   string           `json:"status"`
	Articles []newsAPIArticle `json:"articles"`
}

// newsAPIArticle статья NewsAPI; любое поле может быть null.
type newsAPIArticle struct {
	Title       *string        `json:"title"`
	Description *string        `json:"description"`
	URL         *string        `json:"url"`
	URLToImage  *string        `json:"urlToImage"`
	Source      *newsAPISource `json:"source"`
	PublishedAt *string        `json:"publishedAt"`
}

// newsAPISource блок source статьи; сам блок тоже может быть null.
type newsAPISource struct {
	Name *string `json:"name"`
}

// NewsAPI адаптер для newsapi.org (/v2/everything).
type NewsAPI struct {
	settings Settings
	log      *slog.Logger
}

// NewNewsAPI создает адаптер NewsAPI. Пустой BaseURL заменяется адресом по умолчанию.
func NewNewsAPI(settings Settings, log *slog.Logger) *NewsAPI {
	if settings.BaseURL == "" {
		settings.BaseURL = DefaultNewsAPIBaseURL
	}
	return &NewsAPI{
		settings: settings,
		log:      log.With(slog.String("component", "source"), slog.String("source", string(domain.CategoryNewsAPI))),
	}
}

// Category возвращает категорию, к которой относится источник.
func (n *NewsAPI) Category() domain.Category { return domain.CategoryNewsAPI }

// RequestURL строит запрос /v2/everything с языком en и ключом apiKey.
func (n *NewsAPI) RequestURL(term string) (string, error) {
	params := url.Values{}
	params.Set("q", term)
	params.Set("language", "en")
	params.Set("apiKey", n.settings.APIKey)
	return n.settings.endpoint("/v2/everything", params)
}

// Normalize переносит поля один в один, urlToImage становится ImageURL.
// Описание не изменяется.
func (n *NewsAPI) Normalize(ctx context.Context, r io.Reader) ([]domain.Article, error) {
	var resp newsAPIResponse
	if err := decode(ctx, r, &resp); err != nil {
		n.log.Error("Error decoding response", slog.Any("error", err))
		return nil, err
	}
	articles := make([]domain.Article, 0, len(resp.Articles))
	for _, item := range resp.Articles {
		var sourceName string
		if item.Source != nil {
			sourceName = stringOr(item.Source.Name, "")
		}
		articles = append(articles, domain.Article{
			Title:       stringOr(item.Title, ""),
			Description: stringOr(item.Description, ""),
			URL:         stringOr(item.URL, ""),
			ImageURL:    stringOr(item.URLToImage, ""),
			Source:      domain.SourceRef{Name: sourceName},
			PublishedAt: stringOr(item.PublishedAt, ""),
		})
	}
	return keepComplete(n.log, articles), nil
}

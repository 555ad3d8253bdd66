package usecase

import (
	"context"
	"io"

	"newsapp/internal/domain"
)

// ArticleFetcher определяет интерфейс для загрузки сырых ответов новостных API.
// Возвращает io.ReadCloser, который должен быть закрыт после использования.
type ArticleFetcher interface {
	Fetch(ctx context.Context, url string) (io.ReadCloser, error)
}

// SourceAdapter строит запрос к конкретному API и нормализует его ответ.
// Реализации находятся в пакете adapter/source.
type SourceAdapter interface {
	Category() domain.Category
	RequestURL(term string) (string, error)
	Normalize(ctx context.Context, r io.Reader) ([]domain.Article, error)
}

package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"newsapp/internal/domain"

	"golang.org/x/sync/errgroup"
)

// Result итог одной агрегации: объединенный список статей, фасеты и ошибки источников.
type Result struct {
	Articles []domain.Article
	Facets   domain.Facets
	Errors   []error
}

// AggregationUseCase опрашивает включенные источники и объединяет их ответы.
// Сбой одного источника не прерывает и не отменяет остальные.
type AggregationUseCase struct {
	fetcher  ArticleFetcher
	adapters []SourceAdapter
	log      *slog.Logger
}

// NewAggregationUseCase создает UseCase агрегации.
// Порядок adapters определяет порядок статей в объединенном результате.
func NewAggregationUseCase(fetcher ArticleFetcher, adapters []SourceAdapter, log *slog.Logger) *AggregationUseCase {
	return &AggregationUseCase{
		fetcher:  fetcher,
		adapters: adapters,
		log:      log.With(slog.String("component", "aggregator")),
	}
}

// FetchArticles запрашивает все источники, подходящие под category, параллельно.
// Статьи объединяются в порядке объявления источников, внутри источника - в исходном порядке.
// Ошибки источников собираются в Result.Errors и не прерывают агрегацию.
func (uc *AggregationUseCase) FetchArticles(ctx context.Context, searchTerm string, category domain.Category) Result {
	start := time.Now()
	log := uc.log.With(
		slog.String("op", "usecase/FetchArticles"),
		slog.String("term", searchTerm),
		slog.String("category", string(category)),
	)

	enabled := make([]SourceAdapter, 0, len(uc.adapters))
	for _, a := range uc.adapters {
		if category.Includes(a.Category()) {
			enabled = append(enabled, a)
		}
	}

	batches := make([][]domain.Article, len(enabled))
	errs := make([]error, len(enabled))
	var g errgroup.Group
	for i, a := range enabled {
		g.Go(func() error {
			batches[i], errs[i] = uc.fetchSource(ctx, a, searchTerm)
			return nil
		})
	}
	_ = g.Wait()

	var result Result
	for i, a := range enabled {
		if errs[i] != nil {
			log.Error("Source failed, skipping",
				slog.String("source", string(a.Category())),
				slog.Any("error", errs[i]),
			)
			result.Errors = append(result.Errors, errs[i])
			continue
		}
		result.Articles = append(result.Articles, batches[i]...)
	}
	result.Facets = DeriveFacets(result.Articles)

	log.Info("Aggregation completed",
		slog.Int("sources", len(enabled)),
		slog.Int("errors", len(result.Errors)),
		slog.Int("count", len(result.Articles)),
		slog.Duration("duration", time.Since(start)),
	)
	return result
}

// fetchSource загружает и нормализует ответ одного источника.
// Тело ответа закрывается после нормализации.
func (uc *AggregationUseCase) fetchSource(ctx context.Context, a SourceAdapter, term string) ([]domain.Article, error) {
	name := string(a.Category())
	reqURL, err := a.RequestURL(term)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", name, err)
	}
	body, err := uc.fetcher.Fetch(ctx, reqURL)
	if err != nil {
		return nil, fmt.Errorf("fetch failed for %s: %w", name, err)
	}
	defer body.Close()
	articles, err := a.Normalize(ctx, body)
	if err != nil {
		return nil, fmt.Errorf("normalize failed for %s: %w", name, err)
	}
	uc.log.Debug("Source fetched",
		slog.String("source", name),
		slog.Int("items_found", len(articles)),
	)
	return articles, nil
}

package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"newsapp/internal/domain"
	"newsapp/internal/usecase"
)

// EmptyPolicy определяет, что делать с текущими результатами, когда поиск не вернул статей.
type EmptyPolicy string

const (
	// KeepOnEmpty оставляет последний удачный результат на экране.
	KeepOnEmpty EmptyPolicy = "keep"
	// ClearOnEmpty очищает результаты и фасеты.
	ClearOnEmpty EmptyPolicy = "clear"
)

// ParseEmptyPolicy проверяет значение политики из конфигурации. Пустая строка дает KeepOnEmpty.
func ParseEmptyPolicy(s string) (EmptyPolicy, error) {
	switch EmptyPolicy(s) {
	case "", KeepOnEmpty:
		return KeepOnEmpty, nil
	case ClearOnEmpty:
		return ClearOnEmpty, nil
	}
	return "", fmt.Errorf("unknown empty result policy %q (valid: keep, clear)", s)
}

// Aggregator выполняет одну агрегацию по всем подходящим источникам.
type Aggregator interface {
	FetchArticles(ctx context.Context, searchTerm string, category domain.Category) usecase.Result
}

// Snapshot неизменяемый срез состояния сессии для отрисовки.
type Snapshot struct {
	Term          string           `json:"term"`
	Category      domain.Category  `json:"category"`
	SourceFilter  string           `json:"sourceFilter"`
	DateFilter    string           `json:"dateFilter"`
	Facets        domain.Facets    `json:"facets"`
	Articles      []domain.Article `json:"articles"`
	Total         int              `json:"total"`
	Loading       bool             `json:"loading"`
	Searched      bool             `json:"searched"`
	FailedSources int              `json:"failedSources"`
}

// Session хранит состояние одного пользователя: поисковый запрос, категорию,
// канонический набор статей, фасеты, фильтры и флаг загрузки.
// Каждый поиск получает номер поколения; результат применяется, только если
// за время запроса не был запущен более новый поиск.
type Session struct {
	agg    Aggregator
	policy EmptyPolicy
	log    *slog.Logger

	mu           sync.Mutex
	term         string
	category     domain.Category
	canonical    []domain.Article
	facets       domain.Facets
	sourceFilter string
	dateFilter   string
	generation   uint64
	loading      bool
	searched     bool
	failed       int
}

// New создает сессию с начальным запросом term и категорией All.
// Поиск не запускается до первого вызова Search или Update.
func New(agg Aggregator, policy EmptyPolicy, term string, log *slog.Logger) *Session {
	return &Session{
		agg:          agg,
		policy:       policy,
		log:          log.With(slog.String("component", "session")),
		term:         term,
		category:     domain.CategoryAll,
		facets:       domain.Facets{Sources: []string{}, PublishedDates: []string{}},
		sourceFilter: domain.FilterAll,
		dateFilter:   domain.FilterAll,
	}
}

// Search запускает агрегацию и применяет ее результат, если он не устарел.
// Возвращает false, если результат был отброшен из-за более нового поиска.
func (s *Session) Search(ctx context.Context, term string, category domain.Category) bool {
	gen := s.begin(term, category)
	result := s.agg.FetchArticles(ctx, term, category)
	return s.apply(ctx, gen, result)
}

// Update запускает поиск только если запрос или категория изменились,
// либо если сессия еще ни разу не искала.
func (s *Session) Update(ctx context.Context, term string, category domain.Category) bool {
	s.mu.Lock()
	unchanged := s.searched && s.term == term && s.category == category
	s.mu.Unlock()
	if unchanged {
		return false
	}
	return s.Search(ctx, term, category)
}

// Start помечает сессию как загружающуюся и возвращает функцию, выполняющую поиск.
// Используется для фонового поиска: флаг Loading виден сразу после Start.
func (s *Session) Start(term string, category domain.Category) func(ctx context.Context) bool {
	gen := s.begin(term, category)
	return func(ctx context.Context) bool {
		return s.apply(ctx, gen, s.agg.FetchArticles(ctx, term, category))
	}
}

// begin открывает новое поколение поиска и запоминает запрос.
func (s *Session) begin(term string, category domain.Category) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.term = term
	s.category = category
	s.loading = true
	s.searched = true
	return s.generation
}

// apply публикует результат поколения gen, если оно последнее.
// Результат отмененного поиска не публикуется, а сессия снова считается
// не искавшей, чтобы следующий Update повторил запрос.
func (s *Session) apply(ctx context.Context, gen uint64, result usecase.Result) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		s.log.Info("Discarding superseded result",
			slog.Uint64("generation", gen),
			slog.Uint64("current", s.generation),
			slog.Int("count", len(result.Articles)),
		)
		return false
	}
	if err := ctx.Err(); err != nil {
		s.log.Warn("Discarding result of cancelled search",
			slog.String("term", s.term),
			slog.Any("error", err),
		)
		s.loading = false
		s.searched = false
		return false
	}
	s.loading = false
	s.failed = len(result.Errors)
	if len(result.Articles) == 0 {
		s.log.Warn("Search returned no articles",
			slog.String("term", s.term),
			slog.String("policy", string(s.policy)),
		)
		if s.policy == ClearOnEmpty {
			s.canonical = nil
			s.facets = domain.Facets{Sources: []string{}, PublishedDates: []string{}}
		}
		return true
	}
	s.canonical = result.Articles
	s.facets = result.Facets
	return true
}

// SetSourceFilter выбирает источник; пустая строка означает All.
func (s *Session) SetSourceFilter(source string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sourceFilter = normalizeFilter(source)
}

// SetDateFilter выбирает календарную дату YYYY-MM-DD; пустая строка означает All.
func (s *Session) SetDateFilter(date string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dateFilter = normalizeFilter(date)
}

// Snapshot возвращает текущее состояние с видимым списком, пересчитанным из канонического набора.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Term:          s.term,
		Category:      s.category,
		SourceFilter:  s.sourceFilter,
		DateFilter:    s.dateFilter,
		Facets:        s.facets,
		Articles:      usecase.DeriveVisible(s.canonical, s.sourceFilter, s.dateFilter),
		Total:         len(s.canonical),
		Loading:       s.loading,
		Searched:      s.searched,
		FailedSources: s.failed,
	}
}

// normalizeFilter заменяет пустое значение фильтра на All.
func normalizeFilter(v string) string {
	if v == "" {
		return domain.FilterAll
	}
	return v
}

package session

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"newsapp/internal/domain"
	"newsapp/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

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

func resultOf(articles ...domain.Article) usecase.Result {
	return usecase.Result{Articles: articles, Facets: usecase.DeriveFacets(articles)}
}

// fakeAggregator отвечает по запросу; если задан gate, ответ ждет закрытия канала.
type fakeAggregator struct {
	mu      sync.Mutex
	results map[string]usecase.Result
	gates   map[string]chan struct{}
	calls   []string
}

func (f *fakeAggregator) FetchArticles(ctx context.Context, term string, category domain.Category) usecase.Result {
	f.mu.Lock()
	f.calls = append(f.calls, term+"|"+string(category))
	gate := f.gates[term]
	res := f.results[term]
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return res
}

func TestSession_SearchPublishesResult(t *testing.T) {
	agg := &fakeAggregator{results: map[string]usecase.Result{
		"go": resultOf(
			article("old", "A", "2024-01-01T00:00:00Z"),
			article("new", "B", "2024-01-03T00:00:00Z"),
		),
	}}
	s := New(agg, KeepOnEmpty, "go", discardLogger())

	applied := s.Search(context.Background(), "go", domain.CategoryAll)

	require.True(t, applied)
	snap := s.Snapshot()
	assert.False(t, snap.Loading)
	assert.True(t, snap.Searched)
	assert.Equal(t, 2, snap.Total)
	assert.Equal(t, "new", snap.Articles[0].Title)
	assert.Equal(t, []string{"A", "B"}, snap.Facets.Sources)
}

func TestSession_Filters(t *testing.T) {
	agg := &fakeAggregator{results: map[string]usecase.Result{
		"go": resultOf(
			article("a1", "A", "2024-01-01T00:00:00Z"),
			article("b1", "B", "2024-01-03T00:00:00Z"),
			article("a2", "A", "2024-01-02T00:00:00Z"),
		),
	}}
	s := New(agg, KeepOnEmpty, "go", discardLogger())
	s.Search(context.Background(), "go", domain.CategoryAll)

	s.SetSourceFilter("A")
	snap := s.Snapshot()
	require.Len(t, snap.Articles, 2)
	assert.Equal(t, "a2", snap.Articles[0].Title)
	assert.Equal(t, 3, snap.Total)

	s.SetDateFilter("2024-01-01")
	snap = s.Snapshot()
	require.Len(t, snap.Articles, 1)
	assert.Equal(t, "a1", snap.Articles[0].Title)

	s.SetSourceFilter("")
	s.SetDateFilter("")
	snap = s.Snapshot()
	assert.Equal(t, "All", snap.SourceFilter)
	assert.Equal(t, "All", snap.DateFilter)
	assert.Len(t, snap.Articles, 3)
}

func TestSession_EmptyResultPolicy(t *testing.T) {
	results := map[string]usecase.Result{
		"go":      resultOf(article("a1", "A", "2024-01-01T00:00:00Z")),
		"nothing": {Facets: usecase.DeriveFacets(nil)},
	}

	keep := New(&fakeAggregator{results: results}, KeepOnEmpty, "go", discardLogger())
	keep.Search(context.Background(), "go", domain.CategoryAll)
	keep.Search(context.Background(), "nothing", domain.CategoryAll)
	snap := keep.Snapshot()
	assert.Equal(t, 1, snap.Total)
	assert.Equal(t, "nothing", snap.Term)
	assert.False(t, snap.Loading)

	cleared := New(&fakeAggregator{results: results}, ClearOnEmpty, "go", discardLogger())
	cleared.Search(context.Background(), "go", domain.CategoryAll)
	cleared.Search(context.Background(), "nothing", domain.CategoryAll)
	snap = cleared.Snapshot()
	assert.Equal(t, 0, snap.Total)
	assert.Empty(t, snap.Articles)
	assert.Empty(t, snap.Facets.Sources)
}

func TestSession_SupersededResultDiscarded(t *testing.T) {
	slowGate := make(chan struct{})
	agg := &fakeAggregator{
		results: map[string]usecase.Result{
			"slow": resultOf(article("stale", "A", "2024-01-01T00:00:00Z")),
			"fast": resultOf(article("fresh", "B", "2024-01-02T00:00:00Z")),
		},
		gates: map[string]chan struct{}{"slow": slowGate},
	}
	s := New(agg, KeepOnEmpty, "", discardLogger())

	slow := s.Start("slow", domain.CategoryAll)
	done := make(chan bool)
	go func() { done <- slow(context.Background()) }()

	require.True(t, s.Search(context.Background(), "fast", domain.CategoryAll))
	close(slowGate)
	assert.False(t, <-done)

	snap := s.Snapshot()
	require.Len(t, snap.Articles, 1)
	assert.Equal(t, "fresh", snap.Articles[0].Title)
	assert.Equal(t, "fast", snap.Term)
	assert.False(t, snap.Loading)
}

func TestSession_LoadingUntilLatestSettles(t *testing.T) {
	gate := make(chan struct{})
	agg := &fakeAggregator{
		results: map[string]usecase.Result{"go": resultOf(article("a", "A", "2024-01-01T00:00:00Z"))},
		gates:   map[string]chan struct{}{"go": gate},
	}
	s := New(agg, KeepOnEmpty, "", discardLogger())

	run := s.Start("go", domain.CategoryNYTimes)
	assert.True(t, s.Snapshot().Loading)
	assert.Equal(t, domain.CategoryNYTimes, s.Snapshot().Category)

	close(gate)
	assert.True(t, run(context.Background()))
	assert.False(t, s.Snapshot().Loading)
}

func TestSession_UpdateOnlyOnChange(t *testing.T) {
	agg := &fakeAggregator{results: map[string]usecase.Result{}}
	s := New(agg, KeepOnEmpty, "go", discardLogger())

	s.Update(context.Background(), "go", domain.CategoryAll)
	s.Update(context.Background(), "go", domain.CategoryAll)
	s.Update(context.Background(), "go", domain.CategoryGuardian)
	s.Update(context.Background(), "rust", domain.CategoryGuardian)

	assert.Equal(t, []string{"go|All", "go|The Guardian", "rust|The Guardian"}, agg.calls)
}

func TestSession_FailedSourcesReported(t *testing.T) {
	res := resultOf(article("a", "A", "2024-01-01T00:00:00Z"))
	res.Errors = []error{assert.AnError}
	s := New(&fakeAggregator{results: map[string]usecase.Result{"go": res}}, KeepOnEmpty, "", discardLogger())

	s.Search(context.Background(), "go", domain.CategoryAll)

	assert.Equal(t, 1, s.Snapshot().FailedSources)
}

func TestParseEmptyPolicy(t *testing.T) {
	p, err := ParseEmptyPolicy("")
	require.NoError(t, err)
	assert.Equal(t, KeepOnEmpty, p)

	p, err = ParseEmptyPolicy("clear")
	require.NoError(t, err)
	assert.Equal(t, ClearOnEmpty, p)

	_, err = ParseEmptyPolicy("drop")
	assert.Error(t, err)
}

func TestSession_CancelledSearchIsRetried(t *testing.T) {
	agg := &fakeAggregator{results: map[string]usecase.Result{
		"India":   resultOf(article("india", "A", "2024-01-01T00:00:00Z")),
		"climate": resultOf(article("climate", "B", "2024-01-02T00:00:00Z")),
	}}
	s := New(agg, KeepOnEmpty, "India", discardLogger())
	require.True(t, s.Update(context.Background(), "India", domain.CategoryAll))

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, s.Update(cancelled, "climate", domain.CategoryAll))
	snap := s.Snapshot()
	assert.False(t, snap.Loading)
	assert.Equal(t, "india", snap.Articles[0].Title)

	require.True(t, s.Update(context.Background(), "climate", domain.CategoryAll))

	assert.Equal(t, []string{"India|All", "climate|All", "climate|All"}, agg.calls)
	snap = s.Snapshot()
	require.Len(t, snap.Articles, 1)
	assert.Equal(t, "climate", snap.Articles[0].Title)
	assert.Equal(t, "climate", snap.Term)
}

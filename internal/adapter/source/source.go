package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"newsapp/internal/domain"

	"github.com/PuerkitoBio/goquery"
)

// Adapter преобразует ответ одного новостного API в общую модель статьи.
// Каждый источник знает, как построить URL запроса и как нормализовать ответ;
// логика агрегации от конкретного формата не зависит.
type Adapter interface {
	Category() domain.Category
	RequestURL(term string) (string, error)
	Normalize(ctx context.Context, r io.Reader) ([]domain.Article, error)
}

var (
	_ Adapter = (*NewsAPI)(nil)
	_ Adapter = (*NYTimes)(nil)
	_ Adapter = (*Guardian)(nil)
)

// Settings общие параметры адаптера: базовый URL API и ключ доступа.
type Settings struct {
	BaseURL string
	APIKey  string
}

// endpoint собирает URL запроса из базового адреса, пути и параметров.
func (s Settings) endpoint(path string, params url.Values) (string, error) {
	base, err := url.Parse(strings.TrimRight(s.BaseURL, "/") + path)
	if err != nil {
		return "", fmt.Errorf("invalid base url %q: %w", s.BaseURL, err)
	}
	base.RawQuery = params.Encode()
	return base.String(), nil
}

// decode разбирает JSON-ответ, предварительно проверив контекст.
func decode(ctx context.Context, r io.Reader, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := json.NewDecoder(r).Decode(v); err != nil {
		return fmt.Errorf("failed to decode JSON: %w", err)
	}
	return nil
}

// keepComplete отбрасывает статьи без заголовка, описания, ссылки или картинки.
func keepComplete(log *slog.Logger, articles []domain.Article) []domain.Article {
	out := articles[:0]
	dropped := 0
	for _, a := range articles {
		if !a.Complete() {
			dropped++
			continue
		}
		out = append(out, a)
	}
	if dropped > 0 {
		log.Debug("Dropped incomplete articles", slog.Int("dropped", dropped), slog.Int("kept", len(out)))
	}
	return out
}

// stringOr возвращает значение необязательного поля или def, если поле отсутствует или null.
func stringOr(p *string, def string) string {
	if p == nil {
		return def
	}
	return *p
}

// htmlText превращает HTML-фрагмент в текст. Если после очистки ничего не осталось,
// возвращается исходная строка: наличие описания проверяется по сырому значению.
func htmlText(s string) string {
	if text := plainText(s); text != "" {
		return text
	}
	return s
}

// plainText убирает HTML-разметку и схлопывает пробелы.
// Применяется только к полям, которые API отдает в виде HTML.
func plainText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.Join(strings.Fields(s), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

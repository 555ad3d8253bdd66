package http

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"newsapp/internal/domain"
	"newsapp/internal/session"

	"github.com/google/uuid"
)

const (
	sessionCookie    = "newsapp_session"
	placeholderImage = "/static/placeholder.svg"
	pageTitle        = "Innoscriptalogy"
)

//go:embed templates
var templateFS embed.FS

var pageTemplate = template.Must(template.New("index.html.tmpl").Funcs(template.FuncMap{
	"formatDate": formatDate,
	"imageOr":    imageOr,
}).ParseFS(templateFS, "templates/index.html.tmpl"))

// sessionStore определяет часть хранилища сессий, нужную обработчику.
type sessionStore interface {
	Get(id string) (*session.Session, bool)
	Put(id string, s *session.Session)
}

// Handler обслуживает страницу и API. Сессии посетителей берутся из store
// по cookie; фоновые поиски выполняются в контексте baseCtx.
type Handler struct {
	log        *slog.Logger
	store      sessionStore
	newSession func() *session.Session
	baseCtx    context.Context
	background sync.WaitGroup
}

// NewHandler создает обработчик HTTP-запросов.
// newSession вызывается для каждого нового посетителя; baseCtx ограничивает время жизни фоновых поисков.
func NewHandler(baseCtx context.Context, log *slog.Logger, store sessionStore, newSession func() *session.Session) *Handler {
	return &Handler{
		log:        log.With(slog.String("component", "http")),
		store:      store,
		newSession: newSession,
		baseCtx:    baseCtx,
	}
}

// Wait дожидается завершения фоновых поисков.
func (h *Handler) Wait() {
	h.background.Wait()
}

// pageData данные шаблона страницы.
type pageData struct {
	Title       string
	Placeholder string
	Categories  []domain.Category
	Snapshot    session.Snapshot
}

// index - страница с поиском, фильтрами и карточками статей (GET /).
// Поиск перезапускается при смене q или category, а также по кнопке Search (refresh=1).
func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	const op = "transport.http/index"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", getRequestID(r.Context())),
	)
	sess := h.session(w, r)
	query := r.URL.Query()
	current := sess.Snapshot()

	term := current.Term
	if query.Has("q") {
		term = query.Get("q")
	}
	category := current.Category
	if query.Has("category") {
		c, err := domain.ParseCategory(query.Get("category"))
		if err != nil {
			log.Warn("invalid category parameter", slog.String("category", query.Get("category")))
			http.Error(w, "Invalid 'category' parameter", http.StatusBadRequest)
			return
		}
		category = c
	}
	// Поиск доводится до конца, даже если клиент закрыл соединение.
	fetchCtx := context.WithoutCancel(r.Context())
	if query.Get("refresh") == "1" {
		sess.Search(fetchCtx, term, category)
	} else {
		sess.Update(fetchCtx, term, category)
	}
	applyFilters(sess, query)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := pageTemplate.Execute(w, pageData{
		Title:       pageTitle,
		Placeholder: placeholderImage,
		Categories:  domain.Categories(),
		Snapshot:    sess.Snapshot(),
	})
	if err != nil {
		log.Error("Failed to render page", slog.Any("error", err))
	}
}

// getArticles - хендлер для эндпоинта GET /api/articles.
// Параметры source и date меняют фильтры сессии; поиск не запускается.
func (h *Handler) getArticles(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	applyFilters(sess, r.URL.Query())
	respondWithJSON(w, http.StatusOK, sess.Snapshot())
}

// searchRequest параметры поиска из тела POST /api/search.
type searchRequest struct {
	Query    string
	Category string
}

// postSearch - хендлер для эндпоинта POST /api/search.
// Запускает поиск в фоне и сразу отвечает 202 со снимком, в котором loading=true.
func (h *Handler) postSearch(w http.ResponseWriter, r *http.Request) {
	const op = "transport.http/postSearch"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", getRequestID(r.Context())),
	)
	req, err := decodeSearchRequest(r)
	if err != nil {
		log.Warn("invalid search request", slog.Any("error", err))
		respondWithError(w, http.StatusBadRequest, "Invalid search request")
		return
	}
	category, err := domain.ParseCategory(req.Category)
	if err != nil {
		log.Warn("invalid category parameter", slog.String("category", req.Category))
		respondWithError(w, http.StatusBadRequest, "Invalid 'category' parameter")
		return
	}
	sess := h.session(w, r)
	run := sess.Start(req.Query, category)
	h.background.Add(1)
	go func() {
		defer h.background.Done()
		start := time.Now()
		applied := run(h.baseCtx)
		log.Debug("background search finished",
			slog.Bool("applied", applied),
			slog.Duration("duration", time.Since(start)),
		)
	}()
	respondWithJSON(w, http.StatusAccepted, sess.Snapshot())
}

// decodeSearchRequest читает запрос поиска из JSON или формы. Поле q обязательно
// в обоих случаях, пустая строка допустима.
func decodeSearchRequest(r *http.Request) (searchRequest, error) {
	var req searchRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var body struct {
			Query    *string `json:"q"`
			Category string  `json:"category"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return req, err
		}
		if body.Query == nil {
			return req, errors.New("missing q")
		}
		req.Query = *body.Query
		req.Category = body.Category
		return req, nil
	}
	if err := r.ParseForm(); err != nil {
		return req, err
	}
	if !r.Form.Has("q") {
		return req, errors.New("missing q")
	}
	req.Query = r.Form.Get("q")
	req.Category = r.Form.Get("category")
	return req, nil
}

// healthCheck - хендлер для проверки состояния сервиса
func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// session возвращает сессию посетителя по cookie, при необходимости создавая новую.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) *session.Session {
	if c, err := r.Cookie(sessionCookie); err == nil {
		if s, ok := h.store.Get(c.Value); ok {
			return s
		}
	}
	id := uuid.NewString()
	s := h.newSession()
	h.store.Put(id, s)
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	h.log.Debug("Session created", slog.String("request_id", getRequestID(r.Context())))
	return s
}

// queryValues часть url.Values, нужная для чтения фильтров.
type queryValues interface {
	Has(key string) bool
	Get(key string) string
}

// applyFilters применяет к сессии фильтры source и date, если они переданы в запросе.
func applyFilters(sess *session.Session, query queryValues) {
	if query.Has("source") {
		sess.SetSourceFilter(query.Get("source"))
	}
	if query.Has("date") {
		sess.SetDateFilter(query.Get("date"))
	}
}

// formatDate выводит дату публикации как "Jan 2, 2006"; неразобранная дата выводится как есть.
func formatDate(publishedAt string) string {
	t, ok := domain.ParseTimestamp(publishedAt)
	if !ok {
		return publishedAt
	}
	return t.Format("Jan 2, 2006")
}

// imageOr возвращает fallback для статьи без картинки.
func imageOr(imageURL, fallback string) string {
	if imageURL == "" {
		return fallback
	}
	return imageURL
}

// Вспомогательные функции для ответов
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithJSON сериализует payload и пишет его с кодом code.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

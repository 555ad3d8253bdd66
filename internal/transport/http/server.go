package http

import (
	"embed"
	"io/fs"
	"log/slog"
	"net/http"
)

//go:embed static
var staticFS embed.FS

// NewServer создает роутер с эндпоинтами страницы, API и статических файлов.
// Порядок middleware: request id, CORS, логирование.
func NewServer(log *slog.Logger, h *Handler) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/articles", h.getArticles)
	mux.HandleFunc("POST /api/search", h.postSearch)
	mux.HandleFunc("GET /api/health", h.healthCheck)
	static, _ := fs.Sub(staticFS, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))
	mux.HandleFunc("GET /{$}", h.index)

	var handler http.Handler = mux
	handler = loggingMiddleware(log)(handler)
	handler = corsMiddleware()(handler)
	handler = requestIDMiddleware()(handler)
	return handler
}

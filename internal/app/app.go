package app

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"newsapp/internal/adapter/fetcher"
	"newsapp/internal/adapter/source"
	"newsapp/internal/config"
	"newsapp/internal/logger"
	"newsapp/internal/session"
	server "newsapp/internal/transport/http"
	"newsapp/internal/usecase"
	"newsapp/internal/worker"
	"newsapp/storage"
)

// App представляет основное приложение агрегатора новостей.
// Координирует работу HTTP-сервера, хранилища сессий, воркера очистки
// и системы логирования. Обеспечивает graceful startup и shutdown.
type App struct {
	config    *config.Config
	logger    *slog.Logger
	server    *http.Server
	handler   *server.Handler
	worker    *worker.Worker
	sessions  storage.SessionStore
	sources   []usecase.SourceAdapter
	cancel    context.CancelFunc
	closeLogs func() error
	stopChan  chan os.Signal
	wg        sync.WaitGroup
}

// New создает и инициализирует новый экземпляр приложения.
// Конфигурация должна быть уже проверена через Validate и содержать ключи API.
func New(cfg *config.Config) (*App, error) {
	appLogger, closeLogs, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to setup logger: %w", err)
	}
	slog.SetDefault(appLogger)

	policy, err := session.ParseEmptyPolicy(cfg.App.EmptyResultPolicy)
	if err != nil {
		closeLogs()
		return nil, fmt.Errorf("bad init app: %w", err)
	}

	httpFetcher := fetcher.NewHTTPFetcher(appLogger, cfg.App.RequestTimeoutDuration())
	sources := buildSources(cfg.Sources, appLogger)
	if len(sources) == 0 {
		closeLogs()
		return nil, fmt.Errorf("bad init app: no sources enabled")
	}
	aggregator := usecase.NewAggregationUseCase(httpFetcher, sources, appLogger)

	var sessions storage.SessionStore = storage.NewMemorySessions(cfg.App.SessionTTLDuration(), appLogger)
	sweeper := worker.New(sessions, cfg.App.SweepIntervalDuration(), appLogger)

	baseCtx, cancel := context.WithCancel(context.Background())
	defaultSearch := cfg.App.DefaultSearch
	handler := server.NewHandler(baseCtx, appLogger, sessions, func() *session.Session {
		return session.New(aggregator, policy, defaultSearch, appLogger)
	})
	router := server.NewServer(appLogger, handler)

	return &App{
		config:    cfg,
		logger:    appLogger,
		handler:   handler,
		worker:    sweeper,
		sessions:  sessions,
		sources:   sources,
		cancel:    cancel,
		closeLogs: closeLogs,
		server: &http.Server{
			Addr:              cfg.Server.Address,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		stopChan: make(chan os.Signal, 1),
	}, nil
}

// buildSources создает адаптеры включенных источников в фиксированном порядке:
// NewsAPI, New York Times, The Guardian. От порядка зависит порядок статей в выдаче.
func buildSources(cfg config.SourcesConfig, log *slog.Logger) []usecase.SourceAdapter {
	settings := func(sc config.SourceConfig) source.Settings {
		return source.Settings{BaseURL: sc.BaseURL, APIKey: sc.APIKey}
	}
	var sources []usecase.SourceAdapter
	if cfg.NewsAPI.Enabled {
		sources = append(sources, source.NewNewsAPI(settings(cfg.NewsAPI), log))
	}
	if cfg.NYTimes.Enabled {
		sources = append(sources, source.NewNYTimes(settings(cfg.NYTimes), log))
	}
	if cfg.Guardian.Enabled {
		sources = append(sources, source.NewGuardian(settings(cfg.Guardian), log))
	}
	return sources
}

// Run запускает воркер очистки сессий и HTTP-сервер, затем блокируется
// до получения SIGINT/SIGTERM или падения сервера.
func (a *App) Run() error {
	categories := make([]string, 0, len(a.sources))
	for _, s := range a.sources {
		categories = append(categories, string(s.Category()))
	}
	a.logger.Info("Starting News Aggregator",
		slog.String("component", "app"),
		slog.Any("sources", categories),
		slog.String("default_search", a.config.App.DefaultSearch),
		slog.String("sweep_interval", a.worker.GetInterval().String()),
	)
	listener, err := net.Listen("tcp", a.server.Addr)
	if err != nil {
		a.Shutdown()
		return fmt.Errorf("failed to create listener: %w", err)
	}
	a.worker.Start()
	a.logger.Info("HTTP server ready",
		slog.String("component", "server"),
		slog.String("address", listener.Addr().String()),
	)
	serveErr := make(chan error, 1)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			a.logger.Error("HTTP server failed", slog.Any("error", err))
			serveErr <- err
		}
	}()
	signal.Notify(a.stopChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(a.stopChan)

	var runErr error
	select {
	case sig := <-a.stopChan:
		a.logger.Info("Shutdown signal received",
			slog.String("component", "app"),
			slog.String("signal", sig.String()),
		)
	case err := <-serveErr:
		runErr = fmt.Errorf("http server: %w", err)
	}
	if err := a.Shutdown(); err != nil {
		return err
	}
	return runErr
}

// Shutdown выполняет graceful shutdown приложения.
// Отменяет фоновые поиски, останавливает воркер и HTTP-сервер (таймаут 10 секунд)
// и ожидает завершения всех горутин. Файлы логов закрываются последними.
func (a *App) Shutdown() error {
	a.logger.Info("Starting graceful shutdown", slog.String("component", "app"))
	a.cancel()
	if a.worker != nil {
		a.worker.Stop()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	var err error
	if err = a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("HTTP server shutdown failed", slog.Any("error", err))
		err = fmt.Errorf("http server shutdown: %w", err)
	}
	a.handler.Wait()
	a.wg.Wait()
	a.logger.Info("Application stopped gracefully",
		slog.String("component", "app"),
		slog.Int("active_sessions", a.sessions.Len()),
	)
	if closeErr := a.closeLogs(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}

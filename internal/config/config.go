package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var ErrMissingAPIKey = errors.New("api key is not set")

// Config представляет основную конфигурацию приложения.
// Содержит настройки сервера, логгера, приложения и новостных источников.
type Config struct {
	Server  ServerConfig  `json:"server" yaml:"server"`
	Logger  LoggerConfig  `json:"logger" yaml:"logger"`
	App     AppConfig     `json:"app" yaml:"app"`
	Sources SourcesConfig `json:"sources" yaml:"sources"`
}

// ServerConfig содержит настройки HTTP-сервера приложения.
type ServerConfig struct {
	Address string `json:"address" yaml:"address"`
}

// LoggerConfig содержит настройки системы логирования.
// Level - debug, info, warn или error. Пустые File и ErrorFile означают stdout и stderr.
type LoggerConfig struct {
	Level     string `json:"level" yaml:"level"`
	File      string `json:"file" yaml:"file"`
	ErrorFile string `json:"error_file" yaml:"error_file"`
}

// AppConfig содержит настройки поведения агрегатора.
type AppConfig struct {
	DefaultSearch     string `json:"default_search" yaml:"default_search"`
	EmptyResultPolicy string `json:"empty_result_policy" yaml:"empty_result_policy"`
	RequestTimeout    string `json:"request_timeout" yaml:"request_timeout"`
	SessionTTL        string `json:"session_ttl" yaml:"session_ttl"`
	SweepInterval     string `json:"sweep_interval" yaml:"sweep_interval"`
}

// SourceConfig описывает один новостной API.
// Ключ берется из переменной окружения APIKeyEnv; поле APIKey в файле не читается.
type SourceConfig struct {
	Enabled   bool   `json:"enabled" yaml:"enabled"`
	BaseURL   string `json:"base_url" yaml:"base_url"`
	APIKeyEnv string `json:"api_key_env" yaml:"api_key_env"`
	APIKey    string `json:"-" yaml:"-"`
}

// SourcesConfig содержит настройки трех поддерживаемых источников.
type SourcesConfig struct {
	NewsAPI  SourceConfig `json:"newsapi" yaml:"newsapi"`
	NYTimes  SourceConfig `json:"nytimes" yaml:"nytimes"`
	Guardian SourceConfig `json:"guardian" yaml:"guardian"`
}

// Load загружает конфигурацию из файла по указанному пути поверх значений по умолчанию.
// Формат определяется расширением: .yaml/.yml - YAML, иначе JSON.
// Пустой путь возвращает значения по умолчанию.
func Load(configPath string) (*Config, error) {
	cfg := New()
	if configPath == "" {
		return cfg, nil
	}
	fileData, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}
	switch strings.ToLower(filepath.Ext(configPath)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(fileData, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML from file %s: %w", configPath, err)
		}
	default:
		if err := json.Unmarshal(fileData, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON from file %s: %w", configPath, err)
		}
	}
	return cfg, nil
}

// New создает новый экземпляр Config со значениями по умолчанию.
func New() *Config {
	return &Config{
		Server: ServerConfig{
			Address: ":8080",
		},
		Logger: LoggerConfig{
			Level: "info",
		},
		App: AppConfig{
			DefaultSearch:     "India",
			EmptyResultPolicy: "keep",
			SessionTTL:        "30m",
			SweepInterval:     "5m",
		},
		Sources: SourcesConfig{
			NewsAPI: SourceConfig{
				Enabled:   true,
				BaseURL:   "https://newsapi.org",
				APIKeyEnv: "NEWSAPI_KEY",
			},
			NYTimes: SourceConfig{
				Enabled:   true,
				BaseURL:   "https://api.nytimes.com",
				APIKeyEnv: "NYT_API_KEY",
			},
			Guardian: SourceConfig{
				Enabled:   true,
				BaseURL:   "https://content.guardianapis.com",
				APIKeyEnv: "GUARDIAN_API_KEY",
			},
		},
	}
}

// LoadEnv подгружает переменные окружения из env-файлов (.env по умолчанию).
// Отсутствие файла по умолчанию не считается ошибкой; уже заданные переменные не перезаписываются.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load .env: %w", err)
		}
		return nil
	}
	if err := godotenv.Load(paths...); err != nil {
		return fmt.Errorf("failed to load env files %v: %w", paths, err)
	}
	return nil
}

// ResolveSecrets читает ключи API включенных источников из переменных окружения.
func (c *Config) ResolveSecrets() {
	for _, src := range c.Sources.all() {
		if src.cfg.APIKeyEnv != "" {
			src.cfg.APIKey = os.Getenv(src.cfg.APIKeyEnv)
		}
	}
}

// namedSource связывает настройки источника с его ключом в конфигурации.
type namedSource struct {
	name string
	cfg  *SourceConfig
}

// all возвращает источники в фиксированном порядке: newsapi, nytimes, guardian.
func (s *SourcesConfig) all() []namedSource {
	return []namedSource{
		{"newsapi", &s.NewsAPI},
		{"nytimes", &s.NYTimes},
		{"guardian", &s.Guardian},
	}
}

// Validate проверяет корректность конфигурации.
// Возвращает ошибку с описанием первой найденной проблемы.
func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("server.address is not set")
	}
	switch c.App.EmptyResultPolicy {
	case "", "keep", "clear":
	default:
		return fmt.Errorf("invalid app.empty_result_policy %q (valid: keep, clear)", c.App.EmptyResultPolicy)
	}
	if c.App.RequestTimeout != "" {
		if _, err := time.ParseDuration(c.App.RequestTimeout); err != nil {
			return fmt.Errorf("invalid app.request_timeout: %w", err)
		}
	}
	durations := []struct{ key, value string }{
		{"app.session_ttl", c.App.SessionTTL},
		{"app.sweep_interval", c.App.SweepInterval},
	}
	for _, d := range durations {
		parsed, err := time.ParseDuration(d.value)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", d.key, err)
		}
		if parsed <= 0 {
			return fmt.Errorf("%s must be positive", d.key)
		}
	}
	enabled := 0
	for _, src := range c.Sources.all() {
		if !src.cfg.Enabled {
			continue
		}
		enabled++
		u, err := url.ParseRequestURI(src.cfg.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("invalid sources.%s.base_url: %q", src.name, src.cfg.BaseURL)
		}
		if src.cfg.APIKey == "" {
			return fmt.Errorf("sources.%s: %w (set %s)", src.name, ErrMissingAPIKey, src.cfg.APIKeyEnv)
		}
	}
	if enabled == 0 {
		return fmt.Errorf("at least one source must be enabled")
	}
	return nil
}

// RequestTimeoutDuration возвращает таймаут исходящих запросов; 0 - без ограничения.
func (c AppConfig) RequestTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.RequestTimeout)
	return d
}

// SessionTTLDuration возвращает время жизни простаивающей сессии.
func (c AppConfig) SessionTTLDuration() time.Duration {
	d, err := time.ParseDuration(c.SessionTTL)
	if err != nil {
		return 30 * time.Minute
	}
	return d
}

// SweepIntervalDuration возвращает интервал очистки сессий.
func (c AppConfig) SweepIntervalDuration() time.Duration {
	d, err := time.ParseDuration(c.SweepInterval)
	if err != nil {
		return 5 * time.Minute
	}
	return d
}

package client

import (
	"context"
	"fmt"
	"sort"
	gosync "sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"
	"golang.org/x/exp/slog"

	"crownsync/internal/app/client/config"
	"crownsync/internal/domain/catalog"
	"crownsync/internal/domain/metadata"
	"crownsync/internal/domain/reconcile"
	"crownsync/internal/domain/user"
	"crownsync/internal/infrastructure/storage/sqlite"
)

// App клиент: локальная библиотека видео, синхронизируемая с сервером
type App struct {
	config   *config.Config
	log      *slog.Logger
	fs       afero.Fs
	http     *HTTPClient
	catalog  catalog.Repository
	closer   func() error
	thumbs   *Thumbnails
	engine   *reconcile.Engine
	registry *prometheus.Registry
	state    *AppState
	mu       gosync.RWMutex
}

// New собирает клиента. Пустой DataPath означает каталог в памяти.
func New(cfg *config.Config, fs afero.Fs, log *slog.Logger) (*App, error) {
	if err := fs.MkdirAll(cfg.ConfigDir, 0o700); err != nil {
		return nil, fmt.Errorf("ошибка создания директории конфигурации: %w", err)
	}

	state, err := loadAppState(fs, cfg.StatePath)
	if err != nil {
		log.Warn("Не удалось загрузить состояние приложения", "error", err)
		state = &AppState{}
	}

	httpCl := NewHTTPClient(cfg.BaseURL(), cfg.RemoteRoot, log)
	if state.Token != "" {
		httpCl.SetToken(state.Token)
	}

	var repo catalog.Repository
	closer := func() error { return nil }
	if cfg.DataPath == "" {
		repo = catalog.NewMemoryStorage()
	} else if storage, err := sqlite.New(cfg.DataPath, nil, log); err != nil {
		log.Warn("Не удалось инициализировать SQLite, используем память", "error", err)
		repo = catalog.NewMemoryStorage()
	} else {
		repo = storage
		closer = storage.Close
	}

	thumbs, err := NewThumbnails(fs, cfg.ThumbnailsDir)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	app := &App{
		config:   cfg,
		log:      log,
		fs:       fs,
		http:     httpCl,
		catalog:  repo,
		closer:   closer,
		thumbs:   thumbs,
		registry: registry,
		state:    state,
	}

	loader := metadata.NewLoader(httpCl, httpCl.HTTP(), log, metadata.LoaderConfig{
		URLTTLMinutes: cfg.SignedURLTTLMinutes,
		Concurrency:   cfg.SyncConcurrency,
	})
	app.engine = reconcile.NewEngine(reconcile.Deps{
		Store:      httpCl,
		Repo:       repo,
		Loader:     loader,
		Auth:       app,
		Thumbnails: thumbs,
		Metrics:    reconcile.NewMetrics(registry),
	}, reconcile.Config{
		PageSize:    cfg.ListPageSize,
		Concurrency: cfg.SyncConcurrency,
	}, log)

	return app, nil
}

func (a *App) Close() error {
	if a.config.MetricsFile != "" {
		if err := prometheus.WriteToTextfile(a.config.MetricsFile, a.registry); err != nil {
			a.log.Warn("Не удалось записать метрики", "error", err)
		}
	}
	return a.closer()
}

// CheckConnection проверяет соединение с сервером
func (a *App) CheckConnection(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return a.http.HealthCheck(ctx)
}

// IsAuthenticated есть сохранённый токен
func (a *App) IsAuthenticated() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state.Token != ""
}

// CanWrite роль пользователя разрешает удаление в хранилище
func (a *App) CanWrite() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state.Role.CanWrite()
}

func (a *App) UserLogin() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state.UserLogin
}

func (a *App) Role() user.Role {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state.Role
}

// Login выполняет вход и сохраняет токен
func (a *App) Login(ctx context.Context, login, password string) (user.Role, error) {
	token, rawRole, err := a.http.Login(ctx, login, password)
	if err != nil {
		return "", err
	}
	role, err := user.ParseRole(rawRole)
	if err != nil {
		return "", err
	}

	a.mu.Lock()
	a.state.UserLogin = login
	a.state.Role = role
	a.state.Token = token
	err = saveAppState(a.fs, a.config.StatePath, a.state)
	a.mu.Unlock()
	if err != nil {
		return "", err
	}

	a.log.Info("Вход выполнен успешно", "login", login, "role", role)
	return role, nil
}

// Register регистрирует пользователя на сервере
func (a *App) Register(ctx context.Context, login, password string, role user.Role) error {
	if err := a.http.Register(ctx, login, password, string(role)); err != nil {
		return err
	}
	a.log.Info("Пользователь успешно зарегистрирован", "login", login)
	return nil
}

// Logout удаляет токен, статистика сохраняется
func (a *App) Logout() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.state.Token = ""
	a.state.UserLogin = ""
	a.state.Role = ""
	a.http.SetToken("")
	return saveAppState(a.fs, a.config.StatePath, a.state)
}

// SessionSummary локальная сессия с числом клипов
type SessionSummary struct {
	catalog.Session
	Clips       int
	RemoteClips int
}

// Sessions локальные сессии, отсортированные по дате
func (a *App) Sessions(ctx context.Context) ([]SessionSummary, error) {
	sessions, err := a.catalog.GetAllSessions(ctx)
	if err != nil {
		return nil, err
	}
	clips, err := a.catalog.GetAllVideoClips(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]SessionSummary, len(sessions))
	index := make(map[int64]int, len(sessions))
	for i, s := range sessions {
		out[i] = SessionSummary{Session: s}
		index[s.ID] = i
	}
	for _, c := range clips {
		i, ok := index[c.SessionID]
		if !ok {
			continue
		}
		out[i].Clips++
		if c.IsRemote() {
			out[i].RemoteClips++
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

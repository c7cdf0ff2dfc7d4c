package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/exp/slog"

	"crownsync/internal/domain/catalog"
	"crownsync/internal/domain/metadata"
	"crownsync/internal/domain/remote"
)

const (
	defaultPageSize    = 1000
	defaultConcurrency = 4
)

// Authenticator сообщает, есть ли у клиента действующая авторизация
type Authenticator interface {
	IsAuthenticated() bool
}

// ThumbnailStore локальные файлы миниатюр
type ThumbnailStore interface {
	Remove(path string) error
}

// Config параметры движка
type Config struct {
	PageSize    int
	Concurrency int
}

// Deps зависимости движка. Auth, Thumbnails и Metrics необязательны.
type Deps struct {
	Store      remote.ObjectStore
	Repo       catalog.Repository
	Loader     *metadata.Loader
	Auth       Authenticator
	Thumbnails ThumbnailStore
	Metrics    *Metrics
}

// Engine сверяет локальный каталог с хранилищем на сервере
type Engine struct {
	store   remote.ObjectStore
	lister  *remote.Lister
	repo    catalog.Repository
	loader  *metadata.Loader
	auth    Authenticator
	thumbs  ThumbnailStore
	metrics *Metrics
	config  Config
	log     *slog.Logger

	mu      sync.Mutex
	running bool
}

func NewEngine(deps Deps, config Config, log *slog.Logger) *Engine {
	if config.PageSize <= 0 {
		config.PageSize = defaultPageSize
	}
	if config.Concurrency <= 0 {
		config.Concurrency = defaultConcurrency
	}
	log = log.With(slog.String("component", "reconcile"))

	return &Engine{
		store:   deps.Store,
		lister:  remote.NewLister(deps.Store, log),
		repo:    deps.Repo,
		loader:  deps.Loader,
		auth:    deps.Auth,
		thumbs:  deps.Thumbnails,
		metrics: deps.Metrics,
		config:  config,
		log:     log,
	}
}

func (e *Engine) acquire() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return ErrPassInProgress
	}
	e.running = true
	return nil
}

func (e *Engine) release() {
	e.mu.Lock()
	e.running = false
	e.mu.Unlock()
}

func (e *Engine) authenticated() bool {
	return e.auth == nil || e.auth.IsAuthenticated()
}

// Run выполняет полный проход синхронизации для prefix.
// Записи, сделанные до отмены ctx, не откатываются; проход можно безопасно повторить.
func (e *Engine) Run(ctx context.Context, prefix string) (*Report, error) {
	if err := e.acquire(); err != nil {
		return nil, err
	}
	defer e.release()

	if prefix == "" {
		prefix = remote.SessionsPrefix
	}
	report := newReport(prefix)
	log := e.log.With(slog.String("run_id", report.RunID.String()), slog.String("prefix", prefix))

	if !e.authenticated() {
		report.finish(StateNotAuthenticated)
		e.metrics.observe(report)
		return report, ErrNotAuthenticated
	}

	log.Info("reconciliation started")
	pc := NewPassContext(prefix)
	err := e.run(ctx, pc, report, log)

	switch {
	case err == nil:
		report.finish(StateCompleted)
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		report.finish(StateCancelled)
	default:
		report.finish(StateAborted)
	}
	e.metrics.observe(report)

	log.Info("reconciliation finished",
		"state", report.State,
		"imported", report.Imported,
		"updated", report.Updated,
		"orphaned", report.Orphaned,
		"failed", report.Failed,
		"duration", report.Duration,
	)
	return report, err
}

func (e *Engine) run(ctx context.Context, pc *PassContext, report *Report, log *slog.Logger) error {
	// 1. листинг
	objects, err := e.lister.List(ctx, pc.Prefix, e.config.PageSize)
	if err != nil {
		return fmt.Errorf("list %s: %w", pc.Prefix, err)
	}
	report.Listed = len(objects)

	// 2. разбор ключей
	pc.Catalog = remote.Classify(objects)
	report.Skipped = pc.Catalog.Skipped
	log.Debug("listing classified",
		"videos", len(pc.Catalog.Videos),
		"video_sidecars", len(pc.Catalog.VideoSidecars),
		"session_sidecars", len(pc.Catalog.SessionSidecars),
		"skipped", pc.Catalog.Skipped,
	)

	// 3. метаданные сессий
	e.loader.LoadSessions(ctx, pc.Catalog.SessionSidecars, pc.Sessions)
	if err := ctx.Err(); err != nil {
		return err
	}

	// 4. удаление сирот, до импорта
	if err := e.removeOrphans(ctx, pc, report); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	// 5. представления
	clips, err := e.repo.GetAllVideoClips(ctx)
	if err != nil {
		return fmt.Errorf("list local clips: %w", err)
	}
	sessions, err := e.localSessions(ctx, pc)
	if err != nil {
		return err
	}
	localSessions := make(map[int64]catalog.Session, len(sessions))
	for _, s := range sessions {
		localSessions[s.ID] = s
	}

	pc.VideoSidecars = e.loader.LoadVideos(ctx, videoSidecarEntries(pc.Catalog))
	if err := ctx.Err(); err != nil {
		return err
	}
	pc.Videos = BuildVideoViews(pc, clips, localSessions)
	pc.SessionViews = BuildSessionViews(pc, pc.Videos, localSessions)

	linked := make(map[int64]struct{})
	for _, v := range pc.Videos {
		if v.Linked != nil {
			linked[v.Linked.ID] = struct{}{}
		}
		if v.SidecarObject != nil && v.Sidecar == nil {
			e.metrics.sidecarMissing()
		}
	}

	// 6. импорт
	e.importVideos(ctx, pc, report)
	if err := ctx.Err(); err != nil {
		return err
	}

	// 7. поля сессий
	e.pushSessionUpdates(ctx, pc, report)
	if err := ctx.Err(); err != nil {
		return err
	}

	// 8. обновление связанных видео
	e.refreshLinked(ctx, pc, linked, report)
	return ctx.Err()
}

// videoSidecarEntries метаданные только для видео, которые есть в листинге
func videoSidecarEntries(c *remote.Catalog) map[remote.VideoRef]remote.Entry {
	out := make(map[remote.VideoRef]remote.Entry, len(c.VideoSidecars))
	for _, v := range c.Videos {
		ref := v.Key.Ref()
		if e, ok := c.VideoSidecars[ref]; ok {
			out[ref] = e
		}
	}
	return out
}

package metadata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/exp/slog"
	"golang.org/x/sync/errgroup"

	"crownsync/internal/domain/remote"
)

const (
	defaultURLTTLMinutes = 5
	defaultConcurrency   = 4
	maxSidecarBytes      = 4 << 20
)

// LoaderConfig параметры загрузчика метаданных
type LoaderConfig struct {
	URLTTLMinutes int
	Concurrency   int
}

// Loader получает подписанную ссылку на файл метаданных, скачивает и разбирает его.
// Любая ошибка превращается в отсутствие метаданных.
type Loader struct {
	store  remote.ObjectStore
	client *http.Client
	log    *slog.Logger
	config LoaderConfig
}

func NewLoader(store remote.ObjectStore, client *http.Client, log *slog.Logger, config LoaderConfig) *Loader {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if config.URLTTLMinutes <= 0 {
		config.URLTTLMinutes = defaultURLTTLMinutes
	}
	if config.Concurrency <= 0 {
		config.Concurrency = defaultConcurrency
	}

	return &Loader{
		store:  store,
		client: client,
		log:    log.With(slog.String("component", "sidecar_loader")),
		config: config,
	}
}

// LoadSession возвращает метаданные сессии или nil
func (l *Loader) LoadSession(ctx context.Context, key string) *SessionSidecar {
	data, err := l.fetch(ctx, key)
	if err != nil {
		l.log.Warn("session sidecar unavailable", "key", key, "error", err)
		return nil
	}

	s, err := DecodeSession(data)
	if err != nil {
		l.log.Warn("session sidecar ignored", "key", key, "error", err)
		return nil
	}
	return s
}

// LoadVideo возвращает метаданные видео или nil
func (l *Loader) LoadVideo(ctx context.Context, key string) *VideoSidecar {
	data, err := l.fetch(ctx, key)
	if err != nil {
		l.log.Warn("video sidecar unavailable", "key", key, "error", err)
		return nil
	}

	v, err := DecodeVideo(data)
	if err != nil {
		l.log.Warn("video sidecar ignored", "key", key, "error", err)
		return nil
	}
	return v
}

// LoadSessions загружает метаданные сессий в cache. Для каждой сессии
// используется первый файл в порядке листинга, уже закэшированные сессии
// повторно не скачиваются.
func (l *Loader) LoadSessions(ctx context.Context, entries []remote.Entry, cache *SessionCache) {
	pending := make([]remote.Entry, 0, len(entries))
	seen := make(map[int64]struct{}, len(entries))
	for _, e := range entries {
		if _, dup := seen[e.Key.SessionID]; dup {
			continue
		}
		seen[e.Key.SessionID] = struct{}{}
		if cache.Attempted(e.Key.SessionID) {
			continue
		}
		pending = append(pending, e)
	}

	results := make([]*SessionSidecar, len(pending))
	var g errgroup.Group
	g.SetLimit(l.config.Concurrency)
	for i, e := range pending {
		g.Go(func() error {
			results[i] = l.LoadSession(ctx, e.Object.Key)
			return nil
		})
	}
	_ = g.Wait()

	for i, e := range pending {
		s := results[i]
		if s != nil && s.SessionID == 0 {
			s.SessionID = e.Key.SessionID
		}
		cache.Put(e.Key.SessionID, s)
	}
}

// LoadVideos загружает метаданные видео параллельно
func (l *Loader) LoadVideos(ctx context.Context, entries map[remote.VideoRef]remote.Entry) map[remote.VideoRef]*VideoSidecar {
	refs := make([]remote.VideoRef, 0, len(entries))
	for ref := range entries {
		refs = append(refs, ref)
	}

	results := make([]*VideoSidecar, len(refs))
	var g errgroup.Group
	g.SetLimit(l.config.Concurrency)
	for i, ref := range refs {
		g.Go(func() error {
			results[i] = l.LoadVideo(ctx, entries[ref].Object.Key)
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[remote.VideoRef]*VideoSidecar, len(refs))
	for i, ref := range refs {
		if results[i] != nil {
			out[ref] = results[i]
		}
	}
	return out
}

func (l *Loader) fetch(ctx context.Context, key string) ([]byte, error) {
	url, err := l.store.GetSignedDownloadURL(ctx, key, l.config.URLTTLMinutes)
	if err != nil {
		return nil, fmt.Errorf("%w: sign %s: %v", ErrFetch, key, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: request %s: %v", ErrFetch, key, err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %v", ErrFetch, key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: get %s: status %d", ErrFetch, key, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxSidecarBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrFetch, key, err)
	}
	if len(data) > maxSidecarBytes {
		return nil, fmt.Errorf("%w: %s", ErrTooLarge, key)
	}
	return data, nil
}

// SessionCache кэш метаданных сессий на время одного прохода.
// Отсутствующие метаданные тоже запоминаются.
type SessionCache struct {
	mu      sync.RWMutex
	entries map[int64]*SessionSidecar
}

func NewSessionCache() *SessionCache {
	return &SessionCache{entries: make(map[int64]*SessionSidecar)}
}

func (c *SessionCache) Put(sessionID int64, s *SessionSidecar) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[sessionID]; ok {
		return
	}
	c.entries[sessionID] = s
}

// Get возвращает метаданные сессии, nil если их нет
func (c *SessionCache) Get(sessionID int64) *SessionSidecar {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entries[sessionID]
}

func (c *SessionCache) Attempted(sessionID int64) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[sessionID]
	return ok
}

func (c *SessionCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

package reconcile

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/exp/slog"

	"crownsync/internal/domain/catalog"
	"crownsync/internal/domain/metadata"
	"crownsync/internal/domain/remote"
)

// fakeRemote хранилище объектов в памяти с HTTP сервером для подписанных ссылок
type fakeRemote struct {
	mu         sync.Mutex
	objects    map[string]remote.ObjectDescriptor
	bodies     map[string]string
	failDelete map[string]bool
	listErr    error
	listCalls  int
	srv        *httptest.Server
}

func newFakeRemote(t *testing.T) *fakeRemote {
	t.Helper()
	f := &fakeRemote{
		objects:    make(map[string]remote.ObjectDescriptor),
		bodies:     make(map[string]string),
		failDelete: make(map[string]bool),
	}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		body, ok := f.bodies[strings.TrimPrefix(r.URL.Path, "/")]
		f.mu.Unlock()
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeRemote) put(key, body string, modified int64) {
	f.putAt(key, body, time.Unix(modified, 0))
}

func (f *fakeRemote) putAt(key, body string, modified time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = remote.ObjectDescriptor{Key: key, Size: int64(len(body)), LastModified: modified.UTC()}
	f.bodies[key] = body
}

func (f *fakeRemote) remove(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	delete(f.bodies, key)
}

func (f *fakeRemote) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[key]
	return ok
}

func (f *fakeRemote) ListFiles(_ context.Context, prefix, marker string, maxItems int) (*remote.ListPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}

	keys := make([]string, 0, len(f.objects))
	for k := range f.objects {
		if strings.HasPrefix(k, prefix) && k > marker {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	page := &remote.ListPage{}
	for i, k := range keys {
		if i == maxItems {
			page.IsTruncated = true
			page.NextMarker = keys[i-1]
			break
		}
		page.Objects = append(page.Objects, f.objects[k])
	}
	return page, nil
}

func (f *fakeRemote) GetSignedDownloadURL(_ context.Context, key string, _ int) (string, error) {
	return f.srv.URL + "/" + key, nil
}

func (f *fakeRemote) DeleteFile(_ context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDelete[key] {
		return false, errors.New("access denied")
	}
	if _, ok := f.objects[key]; !ok {
		return false, nil
	}
	delete(f.objects, key)
	delete(f.bodies, key)
	return true, nil
}

type fakeThumbs struct {
	mu      sync.Mutex
	removed []string
}

func (f *fakeThumbs) Remove(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, path)
	return nil
}

type authFunc func() bool

func (f authFunc) IsAuthenticated() bool { return f() }

type fixture struct {
	remote   *fakeRemote
	repo     *catalog.MemoryStorage
	thumbs   *fakeThumbs
	registry *prometheus.Registry
	metrics  *Metrics
	engine   *Engine
}

func newTestFixture(t *testing.T, auth Authenticator) *fixture {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	f := &fixture{
		remote:   newFakeRemote(t),
		repo:     catalog.NewMemoryStorage(),
		thumbs:   &fakeThumbs{},
		registry: prometheus.NewRegistry(),
	}
	f.metrics = NewMetrics(f.registry)

	loader := metadata.NewLoader(f.remote, f.remote.srv.Client(), log, metadata.LoaderConfig{Concurrency: 2})
	f.engine = NewEngine(Deps{
		Store:      f.remote,
		Repo:       f.repo,
		Loader:     loader,
		Auth:       auth,
		Thumbnails: f.thumbs,
		Metrics:    f.metrics,
	}, Config{PageSize: 2, Concurrency: 2}, log)
	return f
}

func (f *fixture) clips(t *testing.T) []catalog.VideoClip {
	t.Helper()
	clips, err := f.repo.GetAllVideoClips(context.Background())
	if err != nil {
		t.Fatalf("list clips: %v", err)
	}
	return clips
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}

package object

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/exp/slog"

	"crownsync/internal/domain/remote"
)

const (
	minURLTTL = time.Minute
	maxURLTTL = time.Hour
)

type Servicer interface {
	List(ctx context.Context, prefix, marker string, maxItems int) (*Page, error)
	SignDownload(ctx context.Context, key string, expirationMinutes int) (string, error)
	Upload(ctx context.Context, key, contentType string, body io.Reader, userID int) (Object, error)
	Delete(ctx context.Context, key string) (bool, error)
	Download(ctx context.Context, key string, expires int64, signature string) (Object, io.ReadCloser, error)
}

type Service struct {
	repo      Repository
	blobs     BlobStore
	signer    *Signer
	publicURL string
	log       *slog.Logger
}

func NewService(repo Repository, blobs BlobStore, signer *Signer, publicURL string, log *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		blobs:     blobs,
		signer:    signer,
		publicURL: strings.TrimRight(publicURL, "/"),
		log:       log.With(slog.String("component", "object_service")),
	}
}

// NormalizeKey приводит ключ к виду хранилища и отклоняет пути с выходом из корня
func NormalizeKey(key string) (string, error) {
	k := strings.ReplaceAll(strings.TrimSpace(key), "\\", "/")
	k = strings.TrimLeft(k, "/")
	if k == "" || strings.HasSuffix(k, "/") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	for _, part := range strings.Split(k, "/") {
		if part == "" || part == "." || part == ".." {
			return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
		}
	}
	return k, nil
}

func (s *Service) List(ctx context.Context, prefix, marker string, maxItems int) (*Page, error) {
	if maxItems <= 0 {
		maxItems = DefaultPageSize
	}
	if maxItems > MaxPageSize {
		maxItems = MaxPageSize
	}

	objects, err := s.repo.List(ctx, strings.TrimLeft(prefix, "/"), marker, maxItems+1)
	if err != nil {
		return nil, fmt.Errorf("list objects: %w", err)
	}

	page := &Page{Objects: objects}
	if len(objects) > maxItems {
		page.Objects = objects[:maxItems]
		page.IsTruncated = true
		page.NextMarker = page.Objects[maxItems-1].Key
	}
	return page, nil
}

func (s *Service) SignDownload(ctx context.Context, key string, expirationMinutes int) (string, error) {
	k, err := NormalizeKey(key)
	if err != nil {
		return "", err
	}
	if _, err := s.repo.Get(ctx, k); err != nil {
		return "", err
	}

	ttl := time.Duration(expirationMinutes) * time.Minute
	if ttl < minURLTTL {
		ttl = minURLTTL
	}
	if ttl > maxURLTTL {
		ttl = maxURLTTL
	}
	return s.signer.URL(s.publicURL, k, ttl), nil
}

func (s *Service) Upload(ctx context.Context, key, contentType string, body io.Reader, userID int) (Object, error) {
	k, err := NormalizeKey(key)
	if err != nil {
		return Object{}, err
	}
	if contentType == "" {
		contentType = contentTypeFor(k)
	}

	size, err := s.blobs.Put(k, body)
	if err != nil {
		return Object{}, fmt.Errorf("store blob %s: %w", k, err)
	}

	obj := Object{
		Key:          k,
		Size:         size,
		ContentType:  contentType,
		LastModified: time.Now().UTC().Truncate(time.Second),
		UploadedBy:   userID,
	}
	if err := s.repo.Upsert(ctx, obj); err != nil {
		return Object{}, fmt.Errorf("index object %s: %w", k, err)
	}

	s.log.Info("object uploaded", "key", k, "size", size, "user_id", userID)
	return obj, nil
}

// Delete удаляет объект; false если его не было
func (s *Service) Delete(ctx context.Context, key string) (bool, error) {
	k, err := NormalizeKey(key)
	if err != nil {
		return false, err
	}

	deleted, err := s.repo.Delete(ctx, k)
	if err != nil {
		return false, fmt.Errorf("delete object %s: %w", k, err)
	}
	if !deleted {
		return false, nil
	}

	if err := s.blobs.Remove(k); err != nil {
		s.log.Warn("blob not removed", "key", k, "error", err)
	}
	s.log.Info("object deleted", "key", k)
	return true, nil
}

func (s *Service) Download(ctx context.Context, key string, expires int64, signature string) (Object, io.ReadCloser, error) {
	if err := s.signer.Verify(key, expires, signature); err != nil {
		return Object{}, nil, err
	}

	obj, err := s.repo.Get(ctx, key)
	if err != nil {
		return Object{}, nil, err
	}

	rc, err := s.blobs.Open(key)
	if err != nil {
		return Object{}, nil, fmt.Errorf("open blob %s: %w", key, err)
	}
	return obj, rc, nil
}

func contentTypeFor(key string) string {
	k, ok := remote.ParseKey(key)
	if !ok {
		return "application/octet-stream"
	}
	switch k.Kind {
	case remote.KindVideo:
		return "video/mp4"
	case remote.KindThumbnail:
		return "image/jpeg"
	default:
		return "application/json"
	}
}

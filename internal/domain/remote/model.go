package remote

import (
	"context"
	"time"
)

// ObjectDescriptor снимок одного объекта из листинга
type ObjectDescriptor struct {
	Key          string    `json:"key"`
	IsFolder     bool      `json:"isFolder"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModifiedUtc"`
}

// ListPage страница листинга с маркером продолжения
type ListPage struct {
	Objects     []ObjectDescriptor `json:"objects"`
	IsTruncated bool               `json:"isTruncated"`
	NextMarker  string             `json:"nextMarker,omitempty"`
}

// ObjectStore шлюз к удаленному хранилищу объектов
type ObjectStore interface {
	// ListFiles возвращает не более maxItems объектов с ключами после marker
	ListFiles(ctx context.Context, prefix, marker string, maxItems int) (*ListPage, error)
	// GetSignedDownloadURL выдает временную ссылку на скачивание объекта
	GetSignedDownloadURL(ctx context.Context, key string, expirationMinutes int) (string, error)
	// DeleteFile удаляет объект, false если сервер не подтвердил удаление
	DeleteFile(ctx context.Context, key string) (bool, error)
}

// Entry классифицированный объект листинга
type Entry struct {
	Key    Key
	Object ObjectDescriptor
}

// Catalog результат классификации листинга
type Catalog struct {
	Videos          []Entry
	VideoSidecars   map[VideoRef]Entry
	SessionSidecars []Entry
	Thumbnails      map[VideoRef]Entry
	Skipped         int
}

// VideoPaths возвращает множество нормализованных ключей видео
func (c *Catalog) VideoPaths() map[string]struct{} {
	paths := make(map[string]struct{}, len(c.Videos))
	for _, v := range c.Videos {
		paths[v.Key.Path] = struct{}{}
	}
	return paths
}

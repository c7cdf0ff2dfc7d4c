package object

import (
	"context"
	"io"
)

// Repository индекс объектов
type Repository interface {
	// List возвращает до limit объектов с ключом > marker в порядке ключей
	List(ctx context.Context, prefix, marker string, limit int) ([]Object, error)
	Get(ctx context.Context, key string) (Object, error)
	Upsert(ctx context.Context, obj Object) error
	Delete(ctx context.Context, key string) (bool, error)
}

// BlobStore содержимое объектов
type BlobStore interface {
	Put(key string, r io.Reader) (int64, error)
	Open(key string) (io.ReadCloser, error)
	Remove(key string) error
}

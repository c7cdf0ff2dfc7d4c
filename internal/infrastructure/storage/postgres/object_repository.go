package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"golang.org/x/exp/slog"

	"crownsync/internal/domain/object"
)

type ObjectRepository struct {
	db  *Storage
	log *slog.Logger
}

var _ object.Repository = (*ObjectRepository)(nil)

func NewObjectRepository(db *Storage, log *slog.Logger) *ObjectRepository {
	return &ObjectRepository{
		db:  db,
		log: log,
	}
}

func (r *ObjectRepository) List(ctx context.Context, prefix, marker string, limit int) ([]object.Object, error) {
	rows, err := r.db.Pool().Query(ctx,
		`SELECT key, size, content_type, last_modified, COALESCE(uploaded_by, 0)
         FROM objects
         WHERE starts_with(key, $1) AND key > $2
         ORDER BY key
         LIMIT $3`,
		prefix, marker, limit)
	if err != nil {
		return nil, fmt.Errorf("select objects: %w", err)
	}

	objects, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (object.Object, error) {
		var o object.Object
		err := row.Scan(&o.Key, &o.Size, &o.ContentType, &o.LastModified, &o.UploadedBy)
		o.LastModified = o.LastModified.UTC()
		return o, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan objects: %w", err)
	}
	return objects, nil
}

func (r *ObjectRepository) Get(ctx context.Context, key string) (object.Object, error) {
	var o object.Object
	err := r.db.Pool().QueryRow(ctx,
		`SELECT key, size, content_type, last_modified, COALESCE(uploaded_by, 0)
         FROM objects WHERE key = $1`, key).
		Scan(&o.Key, &o.Size, &o.ContentType, &o.LastModified, &o.UploadedBy)
	if errors.Is(err, pgx.ErrNoRows) {
		return object.Object{}, object.ErrNotFound
	}
	if err != nil {
		return object.Object{}, fmt.Errorf("select object: %w", err)
	}
	o.LastModified = o.LastModified.UTC()
	return o, nil
}

func (r *ObjectRepository) Upsert(ctx context.Context, o object.Object) error {
	var uploadedBy *int
	if o.UploadedBy > 0 {
		uploadedBy = &o.UploadedBy
	}

	_, err := r.db.Pool().Exec(ctx,
		`INSERT INTO objects (key, size, content_type, last_modified, uploaded_by)
         VALUES ($1, $2, $3, $4, $5)
         ON CONFLICT (key) DO UPDATE SET
             size = EXCLUDED.size,
             content_type = EXCLUDED.content_type,
             last_modified = EXCLUDED.last_modified,
             uploaded_by = EXCLUDED.uploaded_by`,
		o.Key, o.Size, o.ContentType, o.LastModified, uploadedBy)
	if err != nil {
		return fmt.Errorf("upsert object: %w", err)
	}
	return nil
}

func (r *ObjectRepository) Delete(ctx context.Context, key string) (bool, error) {
	tag, err := r.db.Pool().Exec(ctx, `DELETE FROM objects WHERE key = $1`, key)
	if err != nil {
		return false, fmt.Errorf("delete object: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

package client

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Thumbnails локальные файлы миниатюр клипов
type Thumbnails struct {
	fs  afero.Fs
	dir string
}

func NewThumbnails(fs afero.Fs, dir string) (*Thumbnails, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ошибка создания каталога миниатюр: %w", err)
	}
	return &Thumbnails{fs: fs, dir: dir}, nil
}

// Path абсолютный путь миниатюры; относительные пути считаются от каталога миниатюр
func (t *Thumbnails) Path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(t.dir, name)
}

// Remove удаляет миниатюру; отсутствующий файл не ошибка
func (t *Thumbnails) Remove(name string) error {
	if name == "" {
		return nil
	}
	if err := t.fs.Remove(t.Path(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("ошибка удаления миниатюры %s: %w", name, err)
	}
	return nil
}

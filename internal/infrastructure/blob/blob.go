package blob

import (
	"fmt"
	"io"
	"os"
	"path"

	"github.com/spf13/afero"
)

// FSStore хранит содержимое объектов в файловой системе под root
type FSStore struct {
	fs afero.Fs
}

func NewFSStore(fs afero.Fs, root string) (*FSStore, error) {
	if err := fs.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create blob root %s: %w", root, err)
	}
	return &FSStore{fs: afero.NewBasePathFs(fs, root)}, nil
}

// Put записывает объект через временный файл, чтобы читатели не видели частичных данных
func (s *FSStore) Put(key string, r io.Reader) (int64, error) {
	name := "/" + key
	if err := s.fs.MkdirAll(path.Dir(name), 0o755); err != nil {
		return 0, fmt.Errorf("create dir for %s: %w", key, err)
	}

	tmp := name + ".part"
	f, err := s.fs.Create(tmp)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", key, err)
	}

	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = s.fs.Remove(tmp)
		return 0, fmt.Errorf("write %s: %w", key, err)
	}

	if err := s.fs.Rename(tmp, name); err != nil {
		_ = s.fs.Remove(tmp)
		return 0, fmt.Errorf("commit %s: %w", key, err)
	}
	return n, nil
}

func (s *FSStore) Open(key string) (io.ReadCloser, error) {
	f, err := s.fs.Open("/" + key)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", key, err)
	}
	return f, nil
}

// Remove удаляет объект; отсутствие файла не ошибка
func (s *FSStore) Remove(key string) error {
	err := s.fs.Remove("/" + key)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

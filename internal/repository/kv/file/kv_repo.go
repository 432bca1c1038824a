// Package file хранит каждое значение в отдельном файле каталога.
// Запись атомарна: временный файл и переименование.
package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"taskList/internal/logger"
	repo "taskList/internal/repository"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

var keyRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

type Storage struct {
	fs  afero.Fs
	dir string
	mtx sync.RWMutex
}

// New использует файловую систему ОС
func New(dir string) (*Storage, error) {
	return NewWithFs(afero.NewOsFs(), dir)
}

func NewWithFs(fs afero.Fs, dir string) (*Storage, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		logger.Error("Repository: Не удалось создать каталог", err, zap.String("dir", dir))
		return nil, fmt.Errorf("создание каталога %s: %w", dir, err)
	}

	logger.Info("Repository: Файловое хранилище готово", zap.String("dir", dir))
	return &Storage{fs: fs, dir: dir}, nil
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	info, err := s.fs.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("проверка каталога: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s не является каталогом", s.dir)
	}
	return nil
}

func (s *Storage) path(key string) (string, error) {
	if !keyRegex.MatchString(key) {
		return "", fmt.Errorf("недопустимый ключ %q", key)
	}
	return filepath.Join(s.dir, key+".json"), nil
}

func (s *Storage) Get(ctx context.Context, key string) (string, error) {
	path, err := s.path(key)
	if err != nil {
		return "", err
	}

	s.mtx.RLock()
	defer s.mtx.RUnlock()

	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", repo.ErrNotFound
		}
		return "", fmt.Errorf("чтение %s: %w", path, err)
	}
	return string(data), nil
}

func (s *Storage) Set(ctx context.Context, key, value string) error {
	start := time.Now()

	path, err := s.path(key)
	if err != nil {
		return err
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	tmp, err := afero.TempFile(s.fs, s.dir, key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("создание временного файла: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("запись временного файла: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("закрытие временного файла: %w", err)
	}

	if err := s.fs.Rename(tmpName, path); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("переименование в %s: %w", path, err)
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленная запись файла", zap.Duration("ms", time.Since(start)))
	}
	return nil
}

// Package files отвечает за файлы вложений на диске: сохранение
// загруженных частей multipart-запроса и удаление по относительному пути.
package files

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"time"

	"tiktask/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StoredFile — результат сохранения одного файла. Path относительный
// POSIX-путь, из него строится публичный URL.
type StoredFile struct {
	OriginalName string
	FileName     string
	Path         string
	MimeType     string
	Size         int64
}

type Store struct {
	root   string // каталог, относительно которого лежат пути из БД
	subdir string // имя подкаталога загрузок, оно же сегмент URL
}

func NewStore(root, subdir string) (*Store, error) {
	if subdir == "" {
		subdir = "uploads"
	}

	dir := filepath.Join(root, subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("создание каталога загрузок: %w", err)
	}

	return &Store{root: root, subdir: subdir}, nil
}

// Dir возвращает абсолютный каталог загрузок для статической раздачи
func (s *Store) Dir() string {
	return filepath.Join(s.root, s.subdir)
}

// Save кладёт файл на диск под неугадываемым именем:
// метка времени + случайный суффикс + исходное расширение.
// Оригинальное имя остаётся только в метаданных.
func (s *Store) Save(fh *multipart.FileHeader) (StoredFile, error) {
	src, err := fh.Open()
	if err != nil {
		return StoredFile{}, fmt.Errorf("открытие загруженного файла: %w", err)
	}
	defer src.Close()

	ext := filepath.Ext(fh.Filename)
	name := fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), uuid.NewString(), ext)

	dst, err := os.Create(filepath.Join(s.Dir(), name))
	if err != nil {
		return StoredFile{}, fmt.Errorf("создание файла: %w", err)
	}
	defer dst.Close()

	size, err := io.Copy(dst, src)
	if err != nil {
		return StoredFile{}, fmt.Errorf("запись файла: %w", err)
	}

	return StoredFile{
		OriginalName: fh.Filename,
		FileName:     name,
		Path:         path.Join(s.subdir, name),
		MimeType:     fh.Header.Get("Content-Type"),
		Size:         size,
	}, nil
}

// Remove удаляет файл по относительному пути. Уже отсутствующий
// файл — не ошибка.
func (s *Store) Remove(storedPath string) error {
	if storedPath == "" {
		return nil
	}

	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(storedPath)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("удаление файла %s: %w", storedPath, err)
	}
	return nil
}

// RemoveAll удаляет пачку файлов и возвращает список тех, что удалить
// не вышло. Сбои только логируются — наружу они не поднимаются.
func (s *Store) RemoveAll(storedPaths []string) []string {
	failed := []string{}
	for _, p := range storedPaths {
		if err := s.Remove(p); err != nil {
			logger.Warn("Files: Не удалось удалить файл вложения",
				zap.String("path", p),
				zap.Error(err))
			failed = append(failed, p)
		}
	}
	return failed
}

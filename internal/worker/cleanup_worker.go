package worker

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"time"

	"tiktask/internal/logger"

	"go.uber.org/zap"
)

type AttachmentIndex interface {
	AllAttachmentPaths(ctx context.Context) ([]string, error)
}

// CleanupWorker периодически сверяет каталог загрузок с БД и удаляет
// файлы, на которые не осталось строк вложений. Такие появляются после
// сбоя в середине пачки вставок или неудачной чистки при удалении.
type CleanupWorker struct {
	index      AttachmentIndex
	uploadsDir string // абсолютный каталог с файлами
	subdir     string // сегмент относительного пути в БД
	interval   time.Duration
	minAge     time.Duration
}

func NewCleanupWorker(index AttachmentIndex, uploadsDir string, interval, minAge time.Duration) *CleanupWorker {
	if interval == 0 {
		interval = time.Hour
	}
	if minAge == 0 {
		minAge = 24 * time.Hour
	}
	return &CleanupWorker{
		index:      index,
		uploadsDir: uploadsDir,
		subdir:     filepath.Base(uploadsDir),
		interval:   interval,
		minAge:     minAge,
	}
}

func (w *CleanupWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			logger.Info("Worker: Проверка осиротевших файлов", zap.Time("started_at", time.Now()))
			w.Sweep(ctx)
		case <-ctx.Done():
			logger.Info("Worker: Фоновая чистка останавливается")
			return
		}
	}
}

// Sweep удаляет файлы без строки в БД, но не моложе minAge —
// свежие могут принадлежать ещё не завершённому запросу
func (w *CleanupWorker) Sweep(ctx context.Context) {
	start := time.Now()

	known, err := w.index.AllAttachmentPaths(ctx)
	if err != nil {
		logger.Warn("Worker: Не удалось получить пути вложений", zap.Error(err))
		return
	}

	knownSet := make(map[string]struct{}, len(known))
	for _, p := range known {
		knownSet[p] = struct{}{}
	}

	entries, err := os.ReadDir(w.uploadsDir)
	if err != nil {
		logger.Warn("Worker: Не удалось прочитать каталог загрузок", zap.Error(err))
		return
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		stored := path.Join(w.subdir, entry.Name())
		if _, ok := knownSet[stored]; ok {
			continue
		}

		info, err := entry.Info()
		if err != nil || time.Since(info.ModTime()) < w.minAge {
			continue
		}

		if err := os.Remove(filepath.Join(w.uploadsDir, entry.Name())); err != nil {
			logger.Warn("Worker: Не удалось удалить осиротевший файл",
				zap.String("file", entry.Name()),
				zap.Error(err))
			continue
		}
		removed++
	}

	logger.Info("Worker: Завершение чистки",
		zap.Duration("ms", time.Since(start)),
		zap.Int("checked", len(entries)),
		zap.Int("removed", removed),
	)
}
